package sampler

import (
	"annolab.com/seqtag/types"
)

// Random selects a seeded random batch, the usual active-learning baseline.
type Random struct{}

func (scorer *Random) Name() string {
	return types.ScorerRandom
}

func (scorer *Random) Select(sentences []*types.Sentence, params types.QueryParams, ctx *Context) ([]int, error) {
	ordered := randomOrder(len(sentences), ctx.Seed)
	return queryBudget(sentences, ordered, params), nil
}
