package tagger

import (
	"annolab.com/seqtag/features"
	"annolab.com/seqtag/ml"
	"annolab.com/seqtag/types"
	"math"
)

// Tagger binds the linear-chain model to a label layer. Predict writes its
// output back onto the sentences so scorers can consume predictions and
// log-probabilities without re-decoding.
type Tagger struct {
	model     *ml.CRF
	extractor *features.Extractor
	tagType   string
}

func New(tagType string) *Tagger {
	return &Tagger{
		model:     ml.NewCRF(),
		extractor: features.NewExtractor(),
		tagType:   tagType,
	}
}

func Load(modelPath, tagType string) (*Tagger, error) {
	model, err := ml.LoadCRFFromFile(modelPath)
	if err != nil {
		return nil, err
	}
	return &Tagger{
		model:     model,
		extractor: features.NewExtractor(),
		tagType:   tagType,
	}, nil
}

func (tagger *Tagger) Save(modelPath string) error {
	return tagger.model.SaveToFile(modelPath)
}

func (tagger *Tagger) TagType() string {
	return tagger.tagType
}

func (tagger *Tagger) Model() *ml.CRF {
	return tagger.model
}

func (tagger *Tagger) Extractor() *features.Extractor {
	return tagger.extractor
}

// Predict decodes every sentence, filling token tags and scores plus the
// sentence log-probability.
func (tagger *Tagger) Predict(sentences []*types.Sentence) {
	for _, sent := range sentences {
		tagger.predictSentence(sent)
	}
}

func (tagger *Tagger) predictSentence(sent *types.Sentence) {
	feats := tagger.extractor.Extract(sent)
	tags := tagger.model.Predict(feats)
	logProb := tagger.model.SequenceLogProbability(feats)

	tokenProb := 0.0
	if sent.Len() > 0 {
		tokenProb = math.Exp(logProb / float64(sent.Len()))
	}
	for i, token := range sent.Tokens {
		if i < len(tags) {
			token.Tag = tags[i]
		} else {
			token.Tag = "O"
		}
		token.Score = tokenProb
	}
	sent.LogProb = logProb
	sent.Predicted = true
}

// LogProbabilities predicts any not-yet-predicted sentence and returns the
// per-sentence log-probability vector in input order.
func (tagger *Tagger) LogProbabilities(sentences []*types.Sentence) []float64 {
	logProbs := make([]float64, len(sentences))
	for i, sent := range sentences {
		if !sent.Predicted {
			tagger.predictSentence(sent)
		}
		logProbs[i] = sent.LogProb
	}
	return logProbs
}
