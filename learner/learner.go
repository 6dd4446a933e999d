package learner

import (
	"annolab.com/seqtag/corpus"
	"annolab.com/seqtag/embeddings"
	"annolab.com/seqtag/logger"
	"annolab.com/seqtag/sampler"
	"annolab.com/seqtag/tagger"
	"annolab.com/seqtag/types"
	"fmt"
	"github.com/rs/zerolog"
)

// Oracle supplies labels for queried sentences.
type Oracle interface {
	Annotate(sentences []*types.Sentence) ([]*types.Sentence, error)
}

// SimulatedOracle reveals the gold labels the pool already carries, the
// standard setup for benchmark runs against fully labeled data.
type SimulatedOracle struct {
	TagType string
}

func (oracle SimulatedOracle) Annotate(sentences []*types.Sentence) ([]*types.Sentence, error) {
	for _, sent := range sentences {
		for _, token := range sent.Tokens {
			if token.Label(oracle.TagType) == "" {
				token.SetLabel(oracle.TagType, "O")
			}
		}
	}
	return sentences, nil
}

// ActiveLearner drives the query/teach loop. Fit trains the tagger on the
// current training set, Query ranks the pool, Teach moves a queried batch
// through the oracle into the training set and refits.
type ActiveLearner struct {
	cfg      types.Configuration
	tagger   *tagger.Tagger
	scorer   sampler.Scorer
	corpus   *corpus.Corpus
	embedder *embeddings.HashedEmbeddings
	round    int
	log      zerolog.Logger
}

func New(cfg types.Configuration, data *corpus.Corpus) (*ActiveLearner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	scorer, err := sampler.New(cfg.Query)
	if err != nil {
		return nil, err
	}
	return &ActiveLearner{
		cfg:      cfg,
		tagger:   tagger.New(cfg.TagType),
		scorer:   scorer,
		corpus:   data,
		embedder: embeddings.NewHashedEmbeddings(cfg.EmbeddingDim),
		log:      logger.NewLogger("ActiveLearner"),
	}, nil
}

func (learner *ActiveLearner) Tagger() *tagger.Tagger {
	return learner.tagger
}

func (learner *ActiveLearner) Corpus() *corpus.Corpus {
	return learner.corpus
}

func (learner *ActiveLearner) Round() int {
	return learner.round
}

// Fit trains a fresh model on the current training set.
func (learner *ActiveLearner) Fit() tagger.Metrics {
	learner.tagger = tagger.New(learner.cfg.TagType)
	trainer := tagger.NewTrainer(learner.tagger, learner.cfg.Trainer)
	metrics := trainer.Train(learner.corpus)
	learner.log.Info().
		Int("round", learner.round).
		Int("train_size", len(learner.corpus.Train)).
		Float64("f1", metrics.F1).
		Msg("Fitted model")
	return metrics
}

// Query ranks the pool with the configured scorer and returns the indices
// of the next batch. The pool is left untouched.
func (learner *ActiveLearner) Query(pool *corpus.Pool) ([]int, error) {
	if pool.Len() == 0 {
		return nil, fmt.Errorf("pool is empty")
	}
	ctx := &sampler.Context{
		Tagger:   learner.tagger,
		Embedder: learner.embedder,
		KMeans:   learner.cfg.KMeans,
		Seed:     learner.cfg.Trainer.Seed + int64(learner.round),
	}
	selected, err := learner.scorer.Select(pool.Sentences, learner.cfg.Query, ctx)
	if err != nil {
		return nil, fmt.Errorf("query with scorer %s: %w", learner.scorer.Name(), err)
	}
	return selected, nil
}

// Teach removes the selected sentences from the pool, lets the oracle
// label them, folds them into the training set and refits the model.
func (learner *ActiveLearner) Teach(pool *corpus.Pool, selected []int, oracle Oracle) (tagger.Metrics, error) {
	taken := pool.Take(selected)
	labeled, err := oracle.Annotate(taken)
	if err != nil {
		return tagger.Metrics{}, fmt.Errorf("oracle annotation: %w", err)
	}
	added := learner.corpus.AddTrain(labeled)
	learner.round++
	learner.log.Info().
		Int("round", learner.round).
		Int("queried", len(taken)).
		Int("added", added).
		Int("pool_left", pool.Len()).
		Msg("Teaching queried batch")
	return learner.Fit(), nil
}

// Step runs one full query/teach round.
func (learner *ActiveLearner) Step(pool *corpus.Pool, oracle Oracle) (tagger.Metrics, error) {
	selected, err := learner.Query(pool)
	if err != nil {
		return tagger.Metrics{}, err
	}
	return learner.Teach(pool, selected, oracle)
}
