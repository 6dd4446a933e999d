package selection

import (
	"annolab.com/seqtag/corpus"
	"annolab.com/seqtag/embeddings"
	"annolab.com/seqtag/logger"
	"annolab.com/seqtag/sampler"
	"annolab.com/seqtag/tagger"
	"annolab.com/seqtag/types"
	"encoding/json"
	"github.com/rs/zerolog"
	"path"
	"strings"
)

type Params struct {
	ModelFolder    string                `json:"model_folder"`
	Configurations []types.Configuration `json:"configurations"`
}

type Result struct {
	ConfigName string
	Data       interface{}
}

type selectionData struct {
	Scorer    string             `json:"scorer"`
	Selected  []int              `json:"selected"`
	Sentences []selectedSentence `json:"sentences"`
}

type selectedSentence struct {
	ID     int      `json:"id"`
	Text   string   `json:"text"`
	Tokens []string `json:"tokens"`
}

type configScorer struct {
	cfg      types.Configuration
	scorer   sampler.Scorer
	tagger   *tagger.Tagger
	embedder *embeddings.HashedEmbeddings
}

// ModelFileKey is the model file name for a configuration inside the
// model folder.
func ModelFileKey(cfgName string) string {
	return cfgName + ".model.json"
}

// New loads one tagger and scorer per configuration and returns the
// pipeline that scores pool snapshots against all of them.
func New(params Params) (Pipeline, error) {
	selLogger := logger.NewLogger("Selection pipeline")
	errLogger := selLogger.With().Caller().Logger()
	selLogger.Info().
		Interface("params", params).
		Msg("Starting selection pipeline (see parameters in 'params' field)")

	scorers := make([]configScorer, len(params.Configurations))
	for i, cfg := range params.Configurations {
		modelPath := path.Join(params.ModelFolder, ModelFileKey(cfg.Name))
		tgr, err := tagger.Load(modelPath, cfg.TagType)
		if err != nil {
			errLogger.Err(err).
				Str("model_path", modelPath).
				Str("config_name", cfg.Name).
				Msg("Failed to load tagger model")
			return nil, err
		}
		scorer, err := sampler.New(cfg.Query)
		if err != nil {
			errLogger.Err(err).
				Interface("query", cfg.Query).
				Str("config_name", cfg.Name).
				Msg("Failed to create scorer")
			return nil, err
		}
		scorers[i] = configScorer{
			cfg:      cfg,
			scorer:   scorer,
			tagger:   tgr,
			embedder: embeddings.NewHashedEmbeddings(cfg.EmbeddingDim),
		}
	}

	return func(request Request) <-chan string {
		responseChan := make(chan string)
		pplnLog := selLogger.With().Str("tid", request.Tid).Logger()
		pplnLog.Info().Msg("Started selection pipeline")
		errLog := pplnLog.With().Caller().Logger()

		go func() {
			sentences, err := corpus.ParsePlain(strings.NewReader(request.Text))
			if err != nil {
				errLog.Err(err).Msg("Failed to parse pool text")
				close(responseChan)
				return
			}
			if len(sentences) == 0 {
				errLog.Error().Msg("Pool text contains no sentences")
				close(responseChan)
				return
			}

			resultChannel := make(chan Result)
			defer close(resultChannel)

			for _, cs := range scorers {
				go func(cs configScorer) {
					resultChannel <- cs.run(sentences, &pplnLog)
				}(cs)
			}

			response := make(map[string]interface{})
			failed := false
			for i := 0; i < len(scorers); i++ {
				res := <-resultChannel
				if res.Data == nil {
					pplnLog.Error().
						Str("config_name", res.ConfigName).
						Msg("Selection failed for configuration")
					failed = true
					continue
				}
				pplnLog.Info().
					Str("config_name", res.ConfigName).
					Msg("Finished selection for configuration")
				response[res.ConfigName] = res.Data
			}
			if failed {
				close(responseChan)
				return
			}

			buf, err := json.Marshal(response)
			if err != nil {
				errLog.Err(err).Msg("Failed to marshall response")
				close(responseChan)
				return
			}
			pplnLog.Info().Msg("Finished selection pipeline")
			responseChan <- string(buf)
		}()

		return responseChan
	}, nil
}

func (cs configScorer) run(pool []*types.Sentence, log *zerolog.Logger) Result {
	// Each configuration works on its own copy so predictions and vectors
	// never cross between scorers.
	sentences := make([]*types.Sentence, len(pool))
	for i, sent := range pool {
		sentences[i] = sent.Clone()
	}
	ctx := &sampler.Context{
		Tagger:   cs.tagger,
		Embedder: cs.embedder,
		KMeans:   cs.cfg.KMeans,
		Seed:     cs.cfg.Trainer.Seed,
	}
	selected, err := cs.scorer.Select(sentences, cs.cfg.Query, ctx)
	if err != nil {
		log.Err(err).
			Str("config_name", cs.cfg.Name).
			Str("scorer", cs.scorer.Name()).
			Msg("Scorer failed on pool")
		return Result{ConfigName: cs.cfg.Name}
	}
	data := selectionData{
		Scorer:    cs.scorer.Name(),
		Selected:  selected,
		Sentences: make([]selectedSentence, len(selected)),
	}
	for i, idx := range selected {
		sent := sentences[idx]
		data.Sentences[i] = selectedSentence{
			ID:     sent.ID,
			Text:   sent.Text(),
			Tokens: sent.Texts(),
		}
	}
	return Result{ConfigName: cs.cfg.Name, Data: data}
}
