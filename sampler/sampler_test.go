package sampler

import (
	"annolab.com/seqtag/corpus"
	"annolab.com/seqtag/embeddings"
	"annolab.com/seqtag/tagger"
	"annolab.com/seqtag/types"
	"github.com/stretchr/testify/require"
	"math/rand"
	"strings"
	"testing"
)

func labeledSentence(id int, text, labels string) *types.Sentence {
	words := strings.Fields(text)
	tags := strings.Fields(labels)
	sent := &types.Sentence{ID: id}
	for i, word := range words {
		token := &types.Token{Text: word, Idx: i}
		token.SetLabel("ner", tags[i])
		sent.Tokens = append(sent.Tokens, token)
	}
	return sent
}

// predictedSentence fakes a decoded sentence without running a model.
func predictedSentence(id int, text, tags string, logProb float64) *types.Sentence {
	sent := labeledSentence(id, text, tags)
	for i, tag := range strings.Fields(tags) {
		sent.Tokens[i].Tag = tag
	}
	sent.LogProb = logProb
	sent.Predicted = true
	return sent
}

func trainedTagger(t *testing.T) *tagger.Tagger {
	t.Helper()
	tgr := tagger.New("ner")
	trainer := tagger.NewTrainer(tgr, types.TrainerParams{Epochs: 20, LearningRate: 1.0})
	trainer.Train(&corpus.Corpus{
		Train: []*types.Sentence{
			labeledSentence(0, "Alice slept in Kyoto", "B-PER O O B-LOC"),
			labeledSentence(1, "Bob ran to Osaka", "B-PER O O B-LOC"),
			labeledSentence(2, "it rained in Kyoto", "O O O B-LOC"),
			labeledSentence(3, "Alice met Bob", "B-PER O B-PER"),
		},
	})
	return tgr
}

func testContext(t *testing.T) *Context {
	return &Context{
		Tagger:   trainedTagger(t),
		Embedder: embeddings.NewHashedEmbeddings(16),
		KMeans:   types.KMeansParams{NClusters: 2, NInit: 10},
		Seed:     0,
	}
}

func TestQueryBudget(t *testing.T) {
	sentences := []*types.Sentence{
		predictedSentence(0, "a b c d", "O O O O", -0.1),
		predictedSentence(1, "e f g h i", "O O O O O", -0.2),
		predictedSentence(2, "j k l m", "O O O O", -0.3),
	}
	ordered := []int{0, 1, 2}

	// a non-positive budget still yields one sentence
	require.Len(t, queryBudget(sentences, ordered, types.QueryParams{Number: 0}), 1)
	require.Len(t, queryBudget(sentences, ordered, types.QueryParams{Number: -1}), 1)

	require.Equal(t, []int{0, 1}, queryBudget(sentences, ordered, types.QueryParams{Number: 2}))
	require.Equal(t, []int{0, 1, 2}, queryBudget(sentences, ordered, types.QueryParams{Number: 100}))

	// 4 tokens cover the budget of 3, 4+5 cover 7
	require.Equal(t, []int{0}, queryBudget(sentences, ordered, types.QueryParams{Number: 3, TokenBased: true}))
	require.Equal(t, []int{0, 1}, queryBudget(sentences, ordered, types.QueryParams{Number: 7, TokenBased: true}))
	require.Equal(t, []int{0}, queryBudget(sentences, ordered, types.QueryParams{Number: -1, TokenBased: true}))
}

func TestRandomSelectIsSeededShuffle(t *testing.T) {
	sentences := make([]*types.Sentence, 10)
	for i := range sentences {
		sentences[i] = predictedSentence(i, "a b", "O O", -0.1)
	}
	ctx := &Context{Seed: 7}

	scorer := &Random{}
	selected, err := scorer.Select(sentences, types.QueryParams{Number: 4}, ctx)
	require.NoError(t, err)
	require.Equal(t, rand.New(rand.NewSource(7)).Perm(10)[:4], selected)
}

func TestLeastConfidenceRanksLowProbabilityFirst(t *testing.T) {
	sentences := []*types.Sentence{
		predictedSentence(0, "a b", "O O", -0.1),
		predictedSentence(1, "c d", "O O", -0.4),
		predictedSentence(2, "e f", "O O", -0.2),
	}
	ctx := &Context{Tagger: tagger.New("ner")}

	scorer := &LeastConfidence{}
	scores, err := scorer.Scores(sentences, ctx)
	require.NoError(t, err)
	require.Greater(t, scores[1], scores[2])
	require.Greater(t, scores[2], scores[0])

	selected, err := scorer.Select(sentences, types.QueryParams{Number: 2}, ctx)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2}, selected)
}

func TestMaxNormLogProbNormalizesByLength(t *testing.T) {
	// same log-probability but different lengths, the shorter sentence is
	// less certain per token
	sentences := []*types.Sentence{
		predictedSentence(0, "a b c d", "O O O O", -0.4),
		predictedSentence(1, "e f", "O O", -0.4),
	}
	ctx := &Context{Tagger: tagger.New("ner")}

	scorer := &MaxNormLogProb{}
	selected, err := scorer.Select(sentences, types.QueryParams{Number: 1}, ctx)
	require.NoError(t, err)
	require.Equal(t, []int{1}, selected)
}

func TestGetEntitiesRequiresPredictions(t *testing.T) {
	sentences := []*types.Sentence{labeledSentence(0, "Alice slept", "B-PER O")}
	ctx := &Context{Embedder: embeddings.NewHashedEmbeddings(8)}

	_, err := GetEntities(sentences, ctx)
	require.Error(t, err)
}

func TestGetEntitiesRequiresEmbedder(t *testing.T) {
	sentences := []*types.Sentence{predictedSentence(0, "Alice slept", "B-PER O", -0.1)}

	_, err := GetEntities(sentences, &Context{})
	require.Error(t, err)
}

func diversityFixture() *types.Entities {
	return &types.Entities{Items: []*types.Entity{
		{ID: 0, SentID: 0, Label: "PER", Vector: []float64{-0.1, 0.1}},
		{ID: 0, SentID: 1, Label: "PER", Vector: []float64{0.1, 0.1}},
		{ID: 1, SentID: 1, Label: "PER", Vector: []float64{0.1, -0.1}},
		{ID: 1, SentID: 0, Label: "LOC", Vector: []float64{-0.1, -0.1}},
	}}
}

func TestDistributeSimilarityDiversities(t *testing.T) {
	scorer := &DistributeSimilarity{}
	diversities := scorer.SentenceDiversities(diversityFixture())

	require.InDelta(t, 0.0, diversities[0], 1e-9)
	require.InDelta(t, -0.5, diversities[1], 1e-9)
}

func TestDistributeSimilarityScoresFollowSentenceOrder(t *testing.T) {
	sentences := []*types.Sentence{
		predictedSentence(0, "a", "O", -0.1),
		predictedSentence(1, "b", "O", -0.1),
	}
	scorer := &DistributeSimilarity{}
	scores := scorer.Scores(sentences, diversityFixture())
	require.InDelta(t, 0.0, scores[0], 1e-9)
	require.InDelta(t, -0.5, scores[1], 1e-9)
}

func TestDistributeSimilarityFallsBackToRandomWithoutEntities(t *testing.T) {
	sentences := []*types.Sentence{
		labeledSentence(0, "nothing here", "O O"),
		labeledSentence(1, "still nothing", "O O"),
		labeledSentence(2, "empty again", "O O"),
	}
	// a model that only knows the outside state never yields entities
	outsideOnly := tagger.New("ner")
	outsideOnly.Model().AddState("O")
	ctx := &Context{
		Tagger:   outsideOnly,
		Embedder: embeddings.NewHashedEmbeddings(16),
		Seed:     3,
	}

	scorer := &DistributeSimilarity{}
	selected, err := scorer.Select(sentences, types.QueryParams{Number: 2}, ctx)
	require.NoError(t, err)
	require.Equal(t, rand.New(rand.NewSource(3)).Perm(3)[:2], selected)
}

func clusterFixture() (*types.Entities, [][]float64) {
	entities := &types.Entities{Items: []*types.Entity{
		{ID: 0, SentID: 0, Cluster: 1, Vector: []float64{1, 2}},
		{ID: 0, SentID: 1, Cluster: 1, Vector: []float64{1, 4}},
		{ID: 1, SentID: 1, Cluster: 1, Vector: []float64{1, 0}},
		{ID: 1, SentID: 0, Cluster: 0, Vector: []float64{10, 2}},
		{ID: 0, SentID: 2, Cluster: 0, Vector: []float64{10, 4}},
		{ID: 1, SentID: 2, Cluster: 0, Vector: []float64{10, 0}},
	}}
	centers := [][]float64{{10, 2}, {1, 2}}
	return entities, centers
}

func TestClusterSimilarityDiversities(t *testing.T) {
	entities, centers := clusterFixture()
	scorer := &ClusterSimilarity{}
	diversities := scorer.SentenceDiversities(entities, centers)

	require.InDelta(t, 0.7138, diversities[0], 1e-3)
}

func TestRunKMeansFindsTheTwoBlocks(t *testing.T) {
	entities, _ := clusterFixture()
	vectors := make([][]float64, entities.Len())
	for i, entity := range entities.Items {
		vectors[i] = entity.Vector
	}

	centers, assignments, err := RunKMeans(vectors, types.KMeansParams{NClusters: 2, NInit: 10})
	require.NoError(t, err)
	require.Len(t, centers, 2)

	// first three vectors share a cluster, last three the other
	require.Equal(t, assignments[0], assignments[1])
	require.Equal(t, assignments[0], assignments[2])
	require.Equal(t, assignments[3], assignments[4])
	require.Equal(t, assignments[3], assignments[5])
	require.NotEqual(t, assignments[0], assignments[3])

	require.InDeltaSlice(t, []float64{1, 2}, centers[assignments[0]], 1e-9)
	require.InDeltaSlice(t, []float64{10, 2}, centers[assignments[3]], 1e-9)
}

func TestRunKMeansRequiresClusterCount(t *testing.T) {
	_, _, err := RunKMeans([][]float64{{1, 2}}, types.KMeansParams{NInit: 10})
	require.Error(t, err)
}

func TestClusterSimilarityRequiresClusterCount(t *testing.T) {
	sentences := []*types.Sentence{labeledSentence(0, "Alice slept", "B-PER O")}
	ctx := testContext(t)
	ctx.KMeans.NClusters = 0

	scorer := &ClusterSimilarity{}
	_, err := scorer.Select(sentences, types.QueryParams{Number: 1}, ctx)
	require.Error(t, err)
}

func TestClusterSimilaritySelectsFromRealPool(t *testing.T) {
	sentences := []*types.Sentence{
		labeledSentence(0, "Alice slept in Kyoto", "B-PER O O B-LOC"),
		labeledSentence(1, "Bob ran to Osaka", "B-PER O O B-LOC"),
		labeledSentence(2, "it rained in Kyoto", "O O O B-LOC"),
		labeledSentence(3, "Alice met Bob", "B-PER O B-PER"),
	}
	ctx := testContext(t)

	scorer := &ClusterSimilarity{}
	selected, err := scorer.Select(sentences, types.QueryParams{Number: 2}, ctx)
	require.NoError(t, err)
	require.Len(t, selected, 2)
	require.NotEqual(t, selected[0], selected[1])
}

func TestNewCombinedValidation(t *testing.T) {
	_, err := NewCombined("lcc_ds", types.CombinedSeries)
	require.Error(t, err)

	_, err = NewCombined(types.ScorerLCDistribute, "")
	require.Error(t, err)

	_, err = NewCombined(types.ScorerLCDistribute, "mix")
	require.Error(t, err)

	for _, name := range []string{
		types.ScorerLCDistribute,
		types.ScorerLCCluster,
		types.ScorerMNLPDistribute,
		types.ScorerMNLPCluster,
	} {
		scorer, err := NewCombined(name, types.CombinedSeries)
		require.NoError(t, err)
		require.Equal(t, name, scorer.Name())
	}
}

func TestCombinedSelects(t *testing.T) {
	sentences := []*types.Sentence{
		labeledSentence(0, "Alice slept in Kyoto", "B-PER O O B-LOC"),
		labeledSentence(1, "Bob ran to Osaka", "B-PER O O B-LOC"),
		labeledSentence(2, "it rained in Kyoto", "O O O B-LOC"),
		labeledSentence(3, "Alice met Bob", "B-PER O B-PER"),
		labeledSentence(4, "Kyoto and Osaka", "B-LOC O B-LOC"),
	}

	for _, combinedType := range []string{types.CombinedSeries, types.CombinedParallel} {
		scorer, err := NewCombined(types.ScorerLCDistribute, combinedType)
		require.NoError(t, err)

		selected, err := scorer.Select(sentences, types.QueryParams{Number: 2}, testContext(t))
		require.NoError(t, err)
		require.Len(t, selected, 2)
		require.NotEqual(t, selected[0], selected[1])
		for _, idx := range selected {
			require.GreaterOrEqual(t, idx, 0)
			require.Less(t, idx, len(sentences))
		}
	}
}

func TestNewScorerFactory(t *testing.T) {
	for _, name := range []string{
		types.ScorerRandom,
		types.ScorerLeastConfidence,
		types.ScorerMaxNormLogProb,
		types.ScorerDistributeSim,
		types.ScorerClusterSim,
	} {
		scorer, err := New(types.QueryParams{Scorer: name})
		require.NoError(t, err)
		require.Equal(t, name, scorer.Name())
	}

	scorer, err := New(types.QueryParams{Scorer: types.ScorerMNLPCluster, CombinedType: types.CombinedParallel})
	require.NoError(t, err)
	require.Equal(t, types.ScorerMNLPCluster, scorer.Name())

	_, err = New(types.QueryParams{Scorer: "entropy"})
	require.Error(t, err)
}
