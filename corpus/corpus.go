package corpus

import (
	"annolab.com/seqtag/types"
	"math/rand"
	"path"
)

// Corpus is the train/dev/test partition of a labeled dataset. Train is
// usually a small seed set that the active learner grows by teaching.
type Corpus struct {
	Train []*types.Sentence
	Dev   []*types.Sentence
	Test  []*types.Sentence
}

// NewColumnCorpus loads the three partitions from column files inside
// dataDir. Dev and test file names may be empty.
func NewColumnCorpus(dataDir string, columns map[int]string, trainFile, devFile, testFile string) (*Corpus, error) {
	corpus := &Corpus{}

	train, err := ReadColumnFile(path.Join(dataDir, trainFile), columns)
	if err != nil {
		return nil, err
	}
	corpus.Train = train

	if devFile != "" {
		dev, err := ReadColumnFile(path.Join(dataDir, devFile), columns)
		if err != nil {
			return nil, err
		}
		corpus.Dev = dev
	}
	if testFile != "" {
		test, err := ReadColumnFile(path.Join(dataDir, testFile), columns)
		if err != nil {
			return nil, err
		}
		corpus.Test = test
	}
	return corpus, nil
}

// DownsampleTrain keeps a random fraction of the training sentences,
// at least one. The discarded remainder is returned so callers can use
// it as a simulation pool.
func (corpus *Corpus) DownsampleTrain(fraction float64, seed int64) []*types.Sentence {
	if fraction >= 1 || len(corpus.Train) == 0 {
		return nil
	}
	keep := int(float64(len(corpus.Train)) * fraction)
	if keep < 1 {
		keep = 1
	}
	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(len(corpus.Train))

	kept := make([]*types.Sentence, 0, keep)
	rest := make([]*types.Sentence, 0, len(corpus.Train)-keep)
	for i, p := range perm {
		if i < keep {
			kept = append(kept, corpus.Train[p])
		} else {
			rest = append(rest, corpus.Train[p])
		}
	}
	corpus.Train = kept
	reindex(corpus.Train)
	reindex(rest)
	return rest
}

// AddTrain appends labeled sentences to the training set, skipping
// sentences already present.
func (corpus *Corpus) AddTrain(sentences []*types.Sentence) int {
	seen := make(map[*types.Sentence]bool, len(corpus.Train))
	for _, sent := range corpus.Train {
		seen[sent] = true
	}
	added := 0
	for _, sent := range sentences {
		if seen[sent] {
			continue
		}
		seen[sent] = true
		corpus.Train = append(corpus.Train, sent)
		added++
	}
	reindex(corpus.Train)
	return added
}

func reindex(sentences []*types.Sentence) {
	for i, sent := range sentences {
		sent.ID = i
	}
}
