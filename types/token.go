package types

import "unicode"

// Token is a single whitespace-delimited unit of a sentence. Labels holds
// the annotated layers keyed by field name (e.g. "ner", "pos") as read from
// a column corpus; Tag and Score hold the latest model prediction.
type Token struct {
	Text   string
	Idx    int
	Labels map[string]string
	Tag    string
	Score  float64
	Vector []float64
}

func (token *Token) Label(tagType string) string {
	if token.Labels == nil {
		return ""
	}
	return token.Labels[tagType]
}

func (token *Token) SetLabel(tagType, value string) {
	if token.Labels == nil {
		token.Labels = make(map[string]string, 1)
	}
	token.Labels[tagType] = value
}

func (token Token) Clone() Token {
	clone := Token{
		Text:  token.Text,
		Idx:   token.Idx,
		Tag:   token.Tag,
		Score: token.Score,
	}
	if token.Labels != nil {
		clone.Labels = make(map[string]string, len(token.Labels))
		for k, v := range token.Labels {
			clone.Labels[k] = v
		}
	}
	if token.Vector != nil {
		clone.Vector = append([]float64(nil), token.Vector...)
	}
	return clone
}

// GetShape maps each rune to a coarse character class: d for digits,
// X for upper case, x for everything else.
func GetShape(txt string) string {
	shape := make([]rune, 0, len(txt))
	for _, r := range txt {
		switch {
		case unicode.IsDigit(r):
			shape = append(shape, 'd')
		case unicode.IsUpper(r):
			shape = append(shape, 'X')
		default:
			shape = append(shape, 'x')
		}
	}
	return string(shape)
}
