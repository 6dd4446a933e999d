package sampler

import (
	"annolab.com/seqtag/logger"
	"annolab.com/seqtag/types"
	"fmt"
)

// DistributeSimilarity favors sentences whose entities look unlike the
// other entities carrying the same label. Each entity contributes the sum
// of its cosine similarities to its label peers, a label's lone entity
// contributes its self-similarity, and a sentence scores the mean over its
// entities. Low scores are picked first.
type DistributeSimilarity struct{}

func (scorer *DistributeSimilarity) Name() string {
	return types.ScorerDistributeSim
}

func (scorer *DistributeSimilarity) Select(sentences []*types.Sentence, params types.QueryParams, ctx *Context) ([]int, error) {
	scores, err := scorer.poolScores(sentences, ctx)
	if err != nil {
		return nil, err
	}
	if scores == nil {
		log := logger.NewLogger("DistributeSimilarity")
		log.Warn().Msg("No entities found, falling back to random order")
		return queryBudget(sentences, randomOrder(len(sentences), ctx.Seed), params), nil
	}
	return queryBudget(sentences, rankAscending(scores), params), nil
}

// poolScores predicts the pool and returns its diversity scores, or nil
// when no entities were found.
func (scorer *DistributeSimilarity) poolScores(sentences []*types.Sentence, ctx *Context) ([]float64, error) {
	if ctx.Tagger == nil {
		return nil, fmt.Errorf("scorer %q needs a tagger", scorer.Name())
	}
	ctx.Tagger.Predict(sentences)

	entities, err := GetEntities(sentences, ctx)
	if err != nil {
		return nil, err
	}
	if entities.Len() == 0 {
		return nil, nil
	}
	return scorer.Scores(sentences, entities), nil
}

// Scores maps sentence diversities onto the pool order. Sentences without
// entities score zero.
func (scorer *DistributeSimilarity) Scores(sentences []*types.Sentence, entities *types.Entities) []float64 {
	diversities := scorer.SentenceDiversities(entities)
	scores := make([]float64, len(sentences))
	for i, sent := range sentences {
		scores[i] = diversities[sent.ID]
	}
	return scores
}

func (scorer *DistributeSimilarity) SentenceDiversities(entities *types.Entities) map[int]float64 {
	contributions := make(map[*types.Entity]float64, entities.Len())
	for _, group := range entities.GroupByLabel() {
		for _, entity := range group {
			if len(group) == 1 {
				contributions[entity] = cosineSimilarity(entity.Vector, entity.Vector)
				continue
			}
			sum := 0.0
			for _, other := range group {
				if other == entity {
					continue
				}
				sum += cosineSimilarity(entity.Vector, other.Vector)
			}
			contributions[entity] = sum
		}
	}

	diversities := make(map[int]float64)
	for sentID, group := range entities.GroupBySentence() {
		total := 0.0
		for _, entity := range group {
			total += contributions[entity]
		}
		diversities[sentID] = total / float64(len(group))
	}
	return diversities
}
