package embeddings

import (
	"annolab.com/seqtag/types"
	"annolab.com/seqtag/utils"
	"math"
	"math/rand"
	"strings"
)

// HashedEmbeddings maps every word to a deterministic pseudo-random unit
// vector. The word's murmur3 hash seeds the generator, so the same word
// always produces the same vector without any lookup table on disk.
// Vectors are cached per embedder instance.
type HashedEmbeddings struct {
	dim   int
	cache map[string][]float64
}

func NewHashedEmbeddings(dim int) *HashedEmbeddings {
	if dim <= 0 {
		dim = 64
	}
	return &HashedEmbeddings{
		dim:   dim,
		cache: make(map[string][]float64),
	}
}

func (embedder *HashedEmbeddings) Dim() int {
	return embedder.dim
}

// WordVector returns the unit vector for a word, case-folded.
func (embedder *HashedEmbeddings) WordVector(word string) []float64 {
	key := strings.ToLower(word)
	if vector, ok := embedder.cache[key]; ok {
		return vector
	}

	rng := rand.New(rand.NewSource(int64(utils.HashString(key))))
	vector := make([]float64, embedder.dim)
	norm := 0.0
	for d := range vector {
		vector[d] = rng.NormFloat64()
		norm += vector[d] * vector[d]
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for d := range vector {
			vector[d] /= norm
		}
	}
	embedder.cache[key] = vector
	return vector
}

// Embed fills token vectors and mean-pools them into sentence vectors.
func (embedder *HashedEmbeddings) Embed(sentences []*types.Sentence) {
	for _, sent := range sentences {
		if sent.Len() == 0 {
			sent.Vector = make([]float64, embedder.dim)
			continue
		}
		pooled := make([]float64, embedder.dim)
		for _, token := range sent.Tokens {
			token.Vector = embedder.WordVector(token.Text)
			for d, v := range token.Vector {
				pooled[d] += v
			}
		}
		for d := range pooled {
			pooled[d] /= float64(sent.Len())
		}
		sent.Vector = pooled
	}
}
