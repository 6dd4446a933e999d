package tagger

import (
	"annolab.com/seqtag/types"
	"fmt"
)

// Metrics holds micro-averaged span-level scores.
type Metrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Gold      int     `json:"gold"`
	Predicted int     `json:"predicted"`
	Correct   int     `json:"correct"`
}

func (m Metrics) String() string {
	return fmt.Sprintf("P=%.4f R=%.4f F1=%.4f (gold=%d pred=%d correct=%d)",
		m.Precision, m.Recall, m.F1, m.Gold, m.Predicted, m.Correct)
}

// Evaluate predicts the sentences and scores predicted entity spans
// against the gold layer. A span counts as correct when sentence, span
// boundaries and label all match.
func (tagger *Tagger) Evaluate(sentences []*types.Sentence) Metrics {
	tagger.Predict(sentences)

	var metrics Metrics
	for _, sent := range sentences {
		gold := sent.GoldEntities(tagger.tagType)
		predicted := sent.PredictedEntities()
		metrics.Gold += len(gold)
		metrics.Predicted += len(predicted)

		goldSet := make(map[string]bool, len(gold))
		for _, entity := range gold {
			goldSet[spanKey(entity)] = true
		}
		for _, entity := range predicted {
			if goldSet[spanKey(entity)] {
				metrics.Correct++
			}
		}
	}

	if metrics.Predicted > 0 {
		metrics.Precision = float64(metrics.Correct) / float64(metrics.Predicted)
	}
	if metrics.Gold > 0 {
		metrics.Recall = float64(metrics.Correct) / float64(metrics.Gold)
	}
	if metrics.Precision+metrics.Recall > 0 {
		metrics.F1 = 2 * metrics.Precision * metrics.Recall / (metrics.Precision + metrics.Recall)
	}
	return metrics
}

func spanKey(entity *types.Entity) string {
	return fmt.Sprintf("%d:%d:%d:%s", entity.SentID, entity.Start, entity.End, entity.Label)
}
