package tagger

import (
	"annolab.com/seqtag/corpus"
	"annolab.com/seqtag/logger"
	"annolab.com/seqtag/ml"
	"annolab.com/seqtag/types"
	"math/rand"
)

// Trainer fits the tagger's model with averaged perceptron updates.
type Trainer struct {
	tagger *Tagger
	params types.TrainerParams
}

func NewTrainer(tagger *Tagger, params types.TrainerParams) *Trainer {
	if params.Epochs <= 0 {
		params.Epochs = 10
	}
	return &Trainer{tagger: tagger, params: params}
}

// Train registers states and features from the train split, then runs the
// perceptron for the configured number of epochs over a seeded shuffle.
// Dev scores per epoch come from the raw weights; averaging happens once
// after the last epoch.
func (trainer *Trainer) Train(data *corpus.Corpus) Metrics {
	log := logger.NewLogger("Trainer")
	tagger := trainer.tagger
	model := tagger.model

	// "O" first so unknown inputs decode to the outside state
	model.AddState("O")
	featureRows := make([][][]string, len(data.Train))
	goldRows := make([][]int, len(data.Train))
	for i, sent := range data.Train {
		feats := tagger.extractor.Extract(sent)
		for _, tokenFeats := range feats {
			for _, feat := range tokenFeats {
				model.AddFeature(feat)
			}
		}
		gold := make([]int, sent.Len())
		for t, label := range sent.LabelSequence(tagger.tagType) {
			gold[t] = model.AddState(label)
		}
		featureRows[i] = feats
		goldRows[i] = gold
	}
	log.Info().
		Int("sentences", len(data.Train)).
		Int("states", len(model.States)).
		Int("features", len(model.Features)).
		Msg("Starting training")

	rng := rand.New(rand.NewSource(trainer.params.Seed))
	perceptron := ml.NewPerceptron(model, trainer.params.LearningRate)
	order := make([]int, len(data.Train))
	for i := range order {
		order[i] = i
	}

	for epoch := 1; epoch <= trainer.params.Epochs; epoch++ {
		rng.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
		mistakes := 0
		for _, i := range order {
			if !perceptron.Learn(featureRows[i], goldRows[i]) {
				mistakes++
			}
		}
		event := log.Info().Int("epoch", epoch).Int("mistakes", mistakes)
		if len(data.Dev) > 0 {
			event = event.Float64("dev_f1", tagger.Evaluate(data.Dev).F1)
		}
		event.Msg("Finished epoch")
		if mistakes == 0 {
			break
		}
	}
	perceptron.Average()

	if len(data.Dev) > 0 {
		metrics := tagger.Evaluate(data.Dev)
		log.Info().Str("dev", metrics.String()).Msg("Finished training")
		return metrics
	}
	metrics := tagger.Evaluate(data.Train)
	log.Info().Str("train", metrics.String()).Msg("Finished training")
	return metrics
}
