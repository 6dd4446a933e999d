package sampler

import (
	"annolab.com/seqtag/types"
	"fmt"
	"math"
)

// LeastConfidence prefers sentences whose best decoding has the lowest
// probability. Scores are 1 - exp(logProb), higher means less confident.
type LeastConfidence struct{}

func (scorer *LeastConfidence) Name() string {
	return types.ScorerLeastConfidence
}

func (scorer *LeastConfidence) Scores(sentences []*types.Sentence, ctx *Context) ([]float64, error) {
	if ctx.Tagger == nil {
		return nil, fmt.Errorf("scorer %q needs a tagger", scorer.Name())
	}
	logProbs := ctx.Tagger.LogProbabilities(sentences)
	scores := make([]float64, len(logProbs))
	for i, logProb := range logProbs {
		scores[i] = 1 - math.Exp(logProb)
	}
	return scores, nil
}

func (scorer *LeastConfidence) Select(sentences []*types.Sentence, params types.QueryParams, ctx *Context) ([]int, error) {
	scores, err := scorer.Scores(sentences, ctx)
	if err != nil {
		return nil, err
	}
	return queryBudget(sentences, rankDescending(scores), params), nil
}
