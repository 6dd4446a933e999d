package embeddings

import (
	"annolab.com/seqtag/types"
	"github.com/stretchr/testify/require"
	"math"
	"testing"
)

func TestWordVectorIsDeterministic(t *testing.T) {
	a := NewHashedEmbeddings(32)
	b := NewHashedEmbeddings(32)

	require.Equal(t, a.WordVector("kyoto"), b.WordVector("kyoto"))
	require.Equal(t, a.WordVector("Kyoto"), a.WordVector("kyoto"))
	require.NotEqual(t, a.WordVector("kyoto"), a.WordVector("osaka"))
}

func TestWordVectorIsUnitLength(t *testing.T) {
	embedder := NewHashedEmbeddings(64)

	for _, word := range []string{"alice", "bob", "kyoto"} {
		vector := embedder.WordVector(word)
		require.Len(t, vector, 64)
		norm := 0.0
		for _, v := range vector {
			norm += v * v
		}
		require.InDelta(t, 1.0, math.Sqrt(norm), 1e-9)
	}
}

func TestEmbedPoolsSentenceVector(t *testing.T) {
	embedder := NewHashedEmbeddings(16)
	sent := &types.Sentence{
		ID: 0,
		Tokens: []*types.Token{
			{Text: "Alice", Idx: 0},
			{Text: "slept", Idx: 1},
		},
	}
	embedder.Embed([]*types.Sentence{sent})

	require.Len(t, sent.Vector, 16)
	for _, token := range sent.Tokens {
		require.Len(t, token.Vector, 16)
	}
	for d := range sent.Vector {
		mean := (sent.Tokens[0].Vector[d] + sent.Tokens[1].Vector[d]) / 2
		require.InDelta(t, mean, sent.Vector[d], 1e-12)
	}
}

func TestEmbedEmptySentence(t *testing.T) {
	embedder := NewHashedEmbeddings(8)
	sent := &types.Sentence{ID: 0}
	embedder.Embed([]*types.Sentence{sent})
	require.Len(t, sent.Vector, 8)
}
