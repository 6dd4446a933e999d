package features

import (
	"annolab.com/seqtag/types"
	"strings"
)

const (
	beginMarker = "<BOS>"
	endMarker   = "<EOS>"
)

// Extractor builds the per-token feature strings consumed by the
// linear-chain model. Features are encoded as "name=value" so that the
// model's feature vocabulary stays readable in saved snapshots.
type Extractor struct {
	affixLen int
}

func NewExtractor() *Extractor {
	return &Extractor{affixLen: 3}
}

// Extract returns one feature vector per token of the sentence.
func (extractor *Extractor) Extract(sent *types.Sentence) [][]string {
	vectors := make([][]string, len(sent.Tokens))
	for i := range sent.Tokens {
		vectors[i] = extractor.tokenFeatures(sent, i)
	}
	return vectors
}

func (extractor *Extractor) tokenFeatures(sent *types.Sentence, i int) []string {
	token := sent.Tokens[i]
	text := token.Text
	lower := strings.ToLower(text)

	feats := make([]string, 0, 12)
	feats = append(feats,
		"w="+text,
		"lw="+lower,
		"shape="+types.GetShape(text),
	)

	runes := []rune(lower)
	for n := 1; n <= extractor.affixLen; n++ {
		if n > len(runes) {
			break
		}
		feats = append(feats,
			"pre"+digit(n)+"="+string(runes[:n]),
			"suf"+digit(n)+"="+string(runes[len(runes)-n:]),
		)
	}

	if strings.IndexFunc(text, isDigitRune) >= 0 {
		feats = append(feats, "has_digit")
	}
	if lower != text {
		feats = append(feats, "has_upper")
	}

	feats = append(feats, "prev="+neighborText(sent, i-1))
	feats = append(feats, "next="+neighborText(sent, i+1))
	return feats
}

func neighborText(sent *types.Sentence, i int) string {
	if i < 0 {
		return beginMarker
	}
	if i >= len(sent.Tokens) {
		return endMarker
	}
	return strings.ToLower(sent.Tokens[i].Text)
}

func isDigitRune(r rune) bool {
	return r >= '0' && r <= '9'
}

func digit(n int) string {
	return string(rune('0' + n))
}
