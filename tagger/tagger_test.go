package tagger

import (
	"annolab.com/seqtag/corpus"
	"annolab.com/seqtag/types"
	"github.com/stretchr/testify/require"
	"path"
	"strings"
	"testing"
)

func labeledSentence(id int, text, labels string) *types.Sentence {
	words := strings.Fields(text)
	tags := strings.Fields(labels)
	sent := &types.Sentence{ID: id}
	for i, word := range words {
		token := &types.Token{Text: word, Idx: i}
		token.SetLabel("ner", tags[i])
		sent.Tokens = append(sent.Tokens, token)
	}
	return sent
}

func trainingCorpus() *corpus.Corpus {
	return &corpus.Corpus{
		Train: []*types.Sentence{
			labeledSentence(0, "Alice slept in Kyoto", "B-PER O O B-LOC"),
			labeledSentence(1, "Bob ran to Osaka", "B-PER O O B-LOC"),
			labeledSentence(2, "it rained in Kyoto", "O O O B-LOC"),
			labeledSentence(3, "Alice met Bob", "B-PER O B-PER"),
		},
		Dev: []*types.Sentence{
			labeledSentence(0, "Bob slept in Kyoto", "B-PER O O B-LOC"),
		},
	}
}

func TestTrainLearnsTrainingSet(t *testing.T) {
	tagger := New("ner")
	trainer := NewTrainer(tagger, types.TrainerParams{Epochs: 20, LearningRate: 1.0})
	metrics := trainer.Train(trainingCorpus())
	require.Equal(t, 1.0, metrics.F1)

	data := trainingCorpus()
	tagger.Predict(data.Train)
	for _, sent := range data.Train {
		require.True(t, sent.Predicted)
		require.Equal(t, sent.LabelSequence("ner"), sent.TagSequence())
	}
}

func TestEvaluateCountsSpans(t *testing.T) {
	tagger := New("ner")
	trainer := NewTrainer(tagger, types.TrainerParams{Epochs: 20, LearningRate: 1.0})
	trainer.Train(trainingCorpus())

	metrics := tagger.Evaluate([]*types.Sentence{
		labeledSentence(0, "Alice slept", "B-PER O"),
	})
	require.Equal(t, 1, metrics.Gold)
	require.Equal(t, 1, metrics.Correct)
	require.Equal(t, 1.0, metrics.Precision)
	require.Equal(t, 1.0, metrics.Recall)
}

func TestPredictFillsScoresAndLogProb(t *testing.T) {
	tagger := New("ner")
	trainer := NewTrainer(tagger, types.TrainerParams{Epochs: 20, LearningRate: 1.0})
	trainer.Train(trainingCorpus())

	sentences := []*types.Sentence{
		labeledSentence(0, "Alice slept in Kyoto", "B-PER O O B-LOC"),
		labeledSentence(1, "completely unseen words", "O O O"),
	}
	logProbs := tagger.LogProbabilities(sentences)
	require.Len(t, logProbs, 2)
	for i, sent := range sentences {
		require.True(t, sent.Predicted)
		require.LessOrEqual(t, logProbs[i], 0.0)
		require.Equal(t, sent.LogProb, logProbs[i])
		for _, token := range sent.Tokens {
			require.Greater(t, token.Score, 0.0)
			require.LessOrEqual(t, token.Score, 1.0)
		}
	}
}

func TestSaveAndLoadTagger(t *testing.T) {
	tagger := New("ner")
	trainer := NewTrainer(tagger, types.TrainerParams{Epochs: 20, LearningRate: 1.0})
	trainer.Train(trainingCorpus())

	modelPath := path.Join(t.TempDir(), "ner.json")
	require.NoError(t, tagger.Save(modelPath))

	loaded, err := Load(modelPath, "ner")
	require.NoError(t, err)
	require.Equal(t, "ner", loaded.TagType())

	sent := labeledSentence(0, "Alice slept in Kyoto", "B-PER O O B-LOC")
	reloaded := labeledSentence(0, "Alice slept in Kyoto", "B-PER O O B-LOC")
	tagger.Predict([]*types.Sentence{sent})
	loaded.Predict([]*types.Sentence{reloaded})
	require.Equal(t, sent.TagSequence(), reloaded.TagSequence())
	require.InDelta(t, sent.LogProb, reloaded.LogProb, 1e-9)
}
