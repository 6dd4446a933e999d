package sampler

import (
	"annolab.com/seqtag/logger"
	"annolab.com/seqtag/types"
	"fmt"
)

type uncertaintyScorer interface {
	Scorer
	Scores(sentences []*types.Sentence, ctx *Context) ([]float64, error)
}

type diversityScorer interface {
	Scorer
	poolScores(sentences []*types.Sentence, ctx *Context) ([]float64, error)
}

// Combined chains an uncertainty scorer with a diversity scorer. In series
// mode the uncertainty scorer shortlists twice the query budget and the
// diversity scorer picks the batch from the shortlist. In parallel mode
// both score the whole pool and the normalized preferences are summed.
type Combined struct {
	name           string
	combinedType   string
	uncertainty    uncertaintyScorer
	uncertaintyAsc bool
	diversity      diversityScorer
}

func NewCombined(scorerType, combinedType string) (*Combined, error) {
	combined := &Combined{name: scorerType, combinedType: combinedType}
	switch scorerType {
	case types.ScorerLCDistribute:
		combined.uncertainty = &LeastConfidence{}
		combined.diversity = &DistributeSimilarity{}
	case types.ScorerLCCluster:
		combined.uncertainty = &LeastConfidence{}
		combined.diversity = &ClusterSimilarity{}
	case types.ScorerMNLPDistribute:
		combined.uncertainty = &MaxNormLogProb{}
		combined.uncertaintyAsc = true
		combined.diversity = &DistributeSimilarity{}
	case types.ScorerMNLPCluster:
		combined.uncertainty = &MaxNormLogProb{}
		combined.uncertaintyAsc = true
		combined.diversity = &ClusterSimilarity{}
	default:
		return nil, fmt.Errorf("unknown combined scorer %q", scorerType)
	}
	switch combinedType {
	case types.CombinedSeries, types.CombinedParallel:
	case "":
		return nil, fmt.Errorf("combined scorer %q requires combined_type", scorerType)
	default:
		return nil, fmt.Errorf("unknown combined_type %q", combinedType)
	}
	return combined, nil
}

func (scorer *Combined) Name() string {
	return scorer.name
}

func (scorer *Combined) Select(sentences []*types.Sentence, params types.QueryParams, ctx *Context) ([]int, error) {
	if scorer.combinedType == types.CombinedSeries {
		return scorer.selectSeries(sentences, params, ctx)
	}
	return scorer.selectParallel(sentences, params, ctx)
}

func (scorer *Combined) selectSeries(sentences []*types.Sentence, params types.QueryParams, ctx *Context) ([]int, error) {
	shortlistParams := params
	shortlistParams.Number = params.Number * 2
	if shortlistParams.Number <= 0 {
		shortlistParams.Number = 2
	}
	shortlist, err := scorer.uncertainty.Select(sentences, shortlistParams, ctx)
	if err != nil {
		return nil, err
	}

	candidates := make([]*types.Sentence, len(shortlist))
	for i, idx := range shortlist {
		candidates[i] = sentences[idx]
	}
	picked, err := scorer.diversity.Select(candidates, params, ctx)
	if err != nil {
		return nil, err
	}

	selected := make([]int, len(picked))
	for i, idx := range picked {
		selected[i] = shortlist[idx]
	}
	return selected, nil
}

func (scorer *Combined) selectParallel(sentences []*types.Sentence, params types.QueryParams, ctx *Context) ([]int, error) {
	uncertaintyScores, err := scorer.uncertainty.Scores(sentences, ctx)
	if err != nil {
		return nil, err
	}
	diversityScores, err := scorer.diversity.poolScores(sentences, ctx)
	if err != nil {
		return nil, err
	}
	if diversityScores == nil {
		log := logger.NewLogger("CombinedScorer")
		log.Warn().Str("scorer", scorer.diversity.Name()).Msg("No entities found, using uncertainty only")
		return scorer.uncertainty.Select(sentences, params, ctx)
	}

	// both diversity scorers rank ascending, flip them so higher is better
	preferences := normalizePreferences(uncertaintyScores, scorer.uncertaintyAsc)
	for i, pref := range normalizePreferences(diversityScores, true) {
		preferences[i] += pref
	}
	return queryBudget(sentences, rankDescending(preferences), params), nil
}

// normalizePreferences min-max scales scores to [0, 1], flipping ascending
// scores so that a higher preference always means a better pick.
func normalizePreferences(scores []float64, ascending bool) []float64 {
	if len(scores) == 0 {
		return nil
	}
	low, high := scores[0], scores[0]
	for _, score := range scores {
		if score < low {
			low = score
		}
		if score > high {
			high = score
		}
	}
	preferences := make([]float64, len(scores))
	spread := high - low
	for i, score := range scores {
		if spread == 0 {
			preferences[i] = 0
			continue
		}
		preferences[i] = (score - low) / spread
		if ascending {
			preferences[i] = 1 - preferences[i]
		}
	}
	return preferences
}
