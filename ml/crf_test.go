package ml

import (
	"github.com/stretchr/testify/require"
	"math"
	"path"
	"testing"
)

func toyModel() *CRF {
	crf := NewCRF()
	crf.AddState("O")
	crf.AddState("B-PER")
	crf.AddFeature("w=alice")
	crf.AddFeature("w=slept")

	crf.Emissions[crf.Features["w=alice"]][1] = 2.0
	crf.Emissions[crf.Features["w=slept"]][0] = 2.0
	crf.Transitions[1][0] = 0.5
	return crf
}

func TestDecodeViterbi(t *testing.T) {
	crf := toyModel()
	features := [][]string{{"w=alice"}, {"w=slept"}}

	path, score := crf.DecodeViterbi(features)
	require.Equal(t, []int{1, 0}, path)
	require.InDelta(t, 4.5, score, 1e-9)
	require.Equal(t, []string{"B-PER", "O"}, crf.Predict(features))
}

func TestPathScoreMatchesViterbiScore(t *testing.T) {
	crf := toyModel()
	features := [][]string{{"w=alice"}, {"w=slept"}}

	path, score := crf.DecodeViterbi(features)
	require.InDelta(t, score, crf.PathScore(features, path), 1e-9)
}

func TestLogPartitionSumsAllPaths(t *testing.T) {
	crf := toyModel()
	features := [][]string{{"w=alice"}, {"w=slept"}}

	// brute force over the 4 possible paths
	sum := 0.0
	for _, p := range [][]int{{0, 0}, {0, 1}, {1, 0}, {1, 1}} {
		sum += math.Exp(crf.PathScore(features, p))
	}
	require.InDelta(t, math.Log(sum), crf.LogPartition(features), 1e-9)
}

func TestSequenceLogProbabilityIsNonPositive(t *testing.T) {
	crf := toyModel()
	features := [][]string{{"w=alice"}, {"w=slept"}, {"w=unknown"}}

	logProb := crf.SequenceLogProbability(features)
	require.LessOrEqual(t, logProb, 0.0)

	// all path probabilities sum to one
	total := 0.0
	logZ := crf.LogPartition(features[:2])
	for _, p := range [][]int{{0, 0}, {0, 1}, {1, 0}, {1, 1}} {
		total += math.Exp(crf.PathScore(features[:2], p) - logZ)
	}
	require.InDelta(t, 1.0, total, 1e-9)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	crf := toyModel()
	modelPath := path.Join(t.TempDir(), "model.json")
	require.NoError(t, crf.SaveToFile(modelPath))

	loaded, err := LoadCRFFromFile(modelPath)
	require.NoError(t, err)
	require.Equal(t, crf.States, loaded.States)
	require.Equal(t, crf.Features, loaded.Features)

	features := [][]string{{"w=alice"}, {"w=slept"}}
	require.Equal(t, crf.Predict(features), loaded.Predict(features))

	idx, ok := loaded.StateIndex("B-PER")
	require.True(t, ok)
	require.Equal(t, 1, idx)
}

func TestPerceptronLearnsToySequences(t *testing.T) {
	crf := NewCRF()
	o := crf.AddState("O")
	per := crf.AddState("B-PER")
	crf.AddFeature("w=alice")
	crf.AddFeature("w=bob")
	crf.AddFeature("w=slept")
	crf.AddFeature("w=ran")

	samples := []struct {
		features [][]string
		gold     []int
	}{
		{[][]string{{"w=alice"}, {"w=slept"}}, []int{per, o}},
		{[][]string{{"w=bob"}, {"w=ran"}}, []int{per, o}},
		{[][]string{{"w=slept"}, {"w=ran"}}, []int{o, o}},
	}

	p := NewPerceptron(crf, 1.0)
	for epoch := 0; epoch < 10; epoch++ {
		for _, sample := range samples {
			p.Learn(sample.features, sample.gold)
		}
	}
	p.Average()

	for _, sample := range samples {
		decoded, _ := crf.DecodeViterbi(sample.features)
		require.Equal(t, sample.gold, decoded)
	}
}
