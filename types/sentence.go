package types

import "strings"

// Sentence is an ordered token sequence. ID is the sentence's stable index
// within the collection it was loaded into. LogProb and Vector are filled
// by the tagger and the embedder respectively; Predicted reports whether
// token tags are current.
type Sentence struct {
	ID        int
	Tokens    []*Token
	LogProb   float64
	Vector    []float64
	Predicted bool
}

func (sent *Sentence) Len() int {
	return len(sent.Tokens)
}

func (sent *Sentence) Text() string {
	var sb strings.Builder
	for i, token := range sent.Tokens {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(token.Text)
	}
	return sb.String()
}

func (sent *Sentence) Texts() []string {
	texts := make([]string, len(sent.Tokens))
	for i, token := range sent.Tokens {
		texts[i] = token.Text
	}
	return texts
}

// LabelSequence returns the annotated labels of the given layer, in order.
func (sent *Sentence) LabelSequence(tagType string) []string {
	labels := make([]string, len(sent.Tokens))
	for i, token := range sent.Tokens {
		labels[i] = token.Label(tagType)
	}
	return labels
}

// TagSequence returns the predicted tags, in order.
func (sent *Sentence) TagSequence() []string {
	tags := make([]string, len(sent.Tokens))
	for i, token := range sent.Tokens {
		tags[i] = token.Tag
	}
	return tags
}

func (sent *Sentence) Clone() *Sentence {
	clone := &Sentence{
		ID:        sent.ID,
		LogProb:   sent.LogProb,
		Predicted: sent.Predicted,
		Tokens:    make([]*Token, len(sent.Tokens)),
	}
	for i, token := range sent.Tokens {
		t := token.Clone()
		clone.Tokens[i] = &t
	}
	if sent.Vector != nil {
		clone.Vector = append([]float64(nil), sent.Vector...)
	}
	return clone
}

// PredictedEntities decodes BIO/BIOES spans from the predicted tags.
// Token vectors must already be set for entity vectors to be pooled.
func (sent *Sentence) PredictedEntities() []*Entity {
	return decodeSpans(sent, sent.TagSequence())
}

// GoldEntities decodes BIO/BIOES spans from the annotated labels.
func (sent *Sentence) GoldEntities(tagType string) []*Entity {
	return decodeSpans(sent, sent.LabelSequence(tagType))
}

func decodeSpans(sent *Sentence, tags []string) []*Entity {
	var entities []*Entity
	start := -1
	label := ""

	flush := func(end int) {
		if start < 0 {
			return
		}
		entities = append(entities, newEntity(len(entities), sent, start, end, label))
		start = -1
		label = ""
	}

	for i, tag := range tags {
		prefix, value := splitTag(tag)
		switch prefix {
		case "B", "S":
			flush(i)
			start = i
			label = value
		case "I", "E":
			if start < 0 || value != label {
				// dangling continuation, treat as a new span
				flush(i)
				start = i
				label = value
			}
		default:
			flush(i)
		}
	}
	flush(len(tags))
	return entities
}

func splitTag(tag string) (prefix, value string) {
	if tag == "" || tag == "O" {
		return "O", ""
	}
	if len(tag) > 2 && tag[1] == '-' {
		switch tag[0] {
		case 'B', 'I', 'E', 'S':
			return string(tag[0]), tag[2:]
		}
	}
	// bare label without a BIO prefix starts a span
	return "B", tag
}
