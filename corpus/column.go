package corpus

import (
	"annolab.com/seqtag/types"
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

const docStartMarker = "-DOCSTART-"

// TextColumn is the reserved field name that marks the token text column
// in a column map such as {0: "text", 1: "ner"}.
const TextColumn = "text"

// ReadColumnFile parses a column-delimited corpus file: one token per line,
// whitespace-separated columns mapped to fields by the columns map, blank
// lines ending sentences. Label columns missing on a line are left empty.
func ReadColumnFile(filePath string, columns map[int]string) ([]*types.Sentence, error) {
	textIdx := -1
	for idx, field := range columns {
		if field == TextColumn {
			textIdx = idx
		}
	}
	if textIdx < 0 {
		return nil, fmt.Errorf("column map %v has no %q column", columns, TextColumn)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var sentences []*types.Sentence
	var tokens []*types.Token

	flush := func() {
		if len(tokens) == 0 {
			return
		}
		sentences = append(sentences, &types.Sentence{
			ID:     len(sentences),
			Tokens: tokens,
		})
		tokens = nil
	}

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if line == "" {
			flush()
			continue
		}
		if strings.HasPrefix(line, docStartMarker) {
			continue
		}
		fields := strings.Fields(line)
		if textIdx >= len(fields) {
			return nil, fmt.Errorf("line %q has no column %d in %s", line, textIdx, filePath)
		}
		token := &types.Token{
			Text: fields[textIdx],
			Idx:  len(tokens),
		}
		for idx, field := range columns {
			if field == TextColumn || idx >= len(fields) {
				continue
			}
			token.SetLabel(field, fields[idx])
		}
		tokens = append(tokens, token)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()
	return sentences, nil
}

// ReadPlainFile parses a pre-tokenized plain text file: one sentence per
// non-blank line, tokens separated by whitespace, no label columns.
func ReadPlainFile(filePath string) ([]*types.Sentence, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ParsePlain(file)
}

// ParsePlain reads pre-tokenized plain text, one sentence per non-blank
// line.
func ParsePlain(r io.Reader) ([]*types.Sentence, error) {
	var sentences []*types.Sentence
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		tokens := make([]*types.Token, len(fields))
		for i, text := range fields {
			tokens[i] = &types.Token{Text: text, Idx: i}
		}
		sentences = append(sentences, &types.Sentence{
			ID:     len(sentences),
			Tokens: tokens,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return sentences, nil
}

// WriteColumnFile is the inverse of ReadColumnFile for the given column
// map. Columns are emitted in index order; labels fall back to "O".
func WriteColumnFile(filePath string, sentences []*types.Sentence, columns map[int]string) error {
	indices := make([]int, 0, len(columns))
	for idx := range columns {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	file, err := os.Create(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for i, sent := range sentences {
		if i > 0 {
			if _, err := writer.WriteString("\n"); err != nil {
				return err
			}
		}
		for _, token := range sent.Tokens {
			parts := make([]string, len(indices))
			for c, idx := range indices {
				field := columns[idx]
				if field == TextColumn {
					parts[c] = token.Text
					continue
				}
				label := token.Label(field)
				if label == "" {
					label = "O"
				}
				parts[c] = label
			}
			if _, err := writer.WriteString(strings.Join(parts, " ") + "\n"); err != nil {
				return err
			}
		}
	}
	return writer.Flush()
}
