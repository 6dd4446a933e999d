package sampler

import (
	"annolab.com/seqtag/types"
	"fmt"
)

// MaxNormLogProb scores each sentence with its length-normalized
// log-probability. Lower values mean the model is less sure, so the
// ranking is ascending.
type MaxNormLogProb struct{}

func (scorer *MaxNormLogProb) Name() string {
	return types.ScorerMaxNormLogProb
}

func (scorer *MaxNormLogProb) Scores(sentences []*types.Sentence, ctx *Context) ([]float64, error) {
	if ctx.Tagger == nil {
		return nil, fmt.Errorf("scorer %q needs a tagger", scorer.Name())
	}
	logProbs := ctx.Tagger.LogProbabilities(sentences)
	scores := make([]float64, len(logProbs))
	for i, logProb := range logProbs {
		length := sentences[i].Len()
		if length == 0 {
			length = 1
		}
		scores[i] = logProb / float64(length)
	}
	return scores, nil
}

func (scorer *MaxNormLogProb) Select(sentences []*types.Sentence, params types.QueryParams, ctx *Context) ([]int, error) {
	scores, err := scorer.Scores(sentences, ctx)
	if err != nil {
		return nil, err
	}
	return queryBudget(sentences, rankAscending(scores), params), nil
}
