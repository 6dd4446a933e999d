package sampler

import (
	"annolab.com/seqtag/embeddings"
	"annolab.com/seqtag/tagger"
	"annolab.com/seqtag/types"
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// Context carries the model and embedder a scorer needs to judge a pool.
type Context struct {
	Tagger   *tagger.Tagger
	Embedder *embeddings.HashedEmbeddings
	KMeans   types.KMeansParams
	Seed     int64
}

// Scorer picks the next batch of sentence indices from an unlabeled pool.
// Returned indices point into the sentences slice, most informative first.
type Scorer interface {
	Name() string
	Select(sentences []*types.Sentence, params types.QueryParams, ctx *Context) ([]int, error)
}

// New builds the scorer the query parameters name.
func New(params types.QueryParams) (Scorer, error) {
	switch params.Scorer {
	case types.ScorerRandom:
		return &Random{}, nil
	case types.ScorerLeastConfidence:
		return &LeastConfidence{}, nil
	case types.ScorerMaxNormLogProb:
		return &MaxNormLogProb{}, nil
	case types.ScorerDistributeSim:
		return &DistributeSimilarity{}, nil
	case types.ScorerClusterSim:
		return &ClusterSimilarity{}, nil
	}
	if types.IsCombinedScorer(params.Scorer) {
		return NewCombined(params.Scorer, params.CombinedType)
	}
	return nil, fmt.Errorf("unknown scorer %q", params.Scorer)
}

// queryBudget cuts an ordered index list down to the query budget. A
// non-positive budget still yields one sentence. Token-based budgets take
// sentences until their token total covers the requested count.
func queryBudget(sentences []*types.Sentence, ordered []int, params types.QueryParams) []int {
	if len(ordered) == 0 {
		return nil
	}
	if params.TokenBased {
		taken := 0
		selected := make([]int, 0)
		for _, idx := range ordered {
			if len(selected) > 0 && taken >= params.Number {
				break
			}
			selected = append(selected, idx)
			taken += sentences[idx].Len()
		}
		return selected
	}
	number := params.Number
	if number <= 0 {
		number = 1
	}
	if number > len(ordered) {
		number = len(ordered)
	}
	return ordered[:number]
}

func rankAscending(scores []float64) []int {
	return rankBy(scores, func(a, b float64) bool { return a < b })
}

func rankDescending(scores []float64) []int {
	return rankBy(scores, func(a, b float64) bool { return a > b })
}

func rankBy(scores []float64, less func(a, b float64) bool) []int {
	ordered := make([]int, len(scores))
	for i := range ordered {
		ordered[i] = i
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return less(scores[ordered[i]], scores[ordered[j]])
	})
	return ordered
}

func randomOrder(count int, seed int64) []int {
	return rand.New(rand.NewSource(seed)).Perm(count)
}

// GetEntities extracts predicted entity spans with pooled vectors from the
// pool. Sentences must have been predicted and an embedder must be present,
// otherwise spans carry no usable vectors.
func GetEntities(sentences []*types.Sentence, ctx *Context) (*types.Entities, error) {
	if ctx.Embedder == nil {
		return nil, fmt.Errorf("entity extraction needs an embedder")
	}
	for _, sent := range sentences {
		if !sent.Predicted {
			return nil, fmt.Errorf("sentence %d has no predictions, run the tagger first", sent.ID)
		}
	}
	ctx.Embedder.Embed(sentences)

	entities := &types.Entities{}
	for _, sent := range sentences {
		for _, entity := range sent.PredictedEntities() {
			if entity.Vector == nil {
				return nil, fmt.Errorf("entity %q in sentence %d has no vector", entity.Text, sent.ID)
			}
			entities.Add(entity)
		}
	}
	return entities, nil
}

func cosineSimilarity(a, b []float64) float64 {
	var dot, normA, normB float64
	for d := range a {
		dot += a[d] * b[d]
		normA += a[d] * a[d]
		normB += b[d] * b[d]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
