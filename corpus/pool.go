package corpus

import (
	"annolab.com/seqtag/types"
)

// Pool holds the unlabeled sentences available for querying. In
// simulation runs the sentences keep their gold labels so an oracle can
// reveal them after a query.
type Pool struct {
	Sentences []*types.Sentence
}

// LoadColumnPool reads a pool that carries gold labels for simulation.
func LoadColumnPool(filePath string, columns map[int]string) (*Pool, error) {
	sentences, err := ReadColumnFile(filePath, columns)
	if err != nil {
		return nil, err
	}
	return &Pool{Sentences: sentences}, nil
}

// LoadPlainPool reads an unlabeled pre-tokenized pool.
func LoadPlainPool(filePath string) (*Pool, error) {
	sentences, err := ReadPlainFile(filePath)
	if err != nil {
		return nil, err
	}
	return &Pool{Sentences: sentences}, nil
}

func (pool *Pool) Len() int {
	return len(pool.Sentences)
}

func (pool *Pool) TokenCount() int {
	count := 0
	for _, sent := range pool.Sentences {
		count += sent.Len()
	}
	return count
}

// Take removes and returns the sentences at the given positions. The
// remainder keeps its relative order and is reindexed.
func (pool *Pool) Take(ids []int) []*types.Sentence {
	wanted := make(map[int]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	taken := make([]*types.Sentence, 0, len(ids))
	remainder := make([]*types.Sentence, 0, len(pool.Sentences)-len(ids))
	for i, sent := range pool.Sentences {
		if wanted[i] {
			taken = append(taken, sent)
		} else {
			remainder = append(remainder, sent)
		}
	}
	pool.Sentences = remainder
	reindex(pool.Sentences)
	return taken
}
