// Package conll reads CoNLL-2003 style tagged corpora.
//
// A corpus file holds one token per line with its tag in the last
// whitespace-separated column. Blank lines terminate sentences and
// "-DOCSTART-" marker lines separate documents; markers are skipped.
package conll

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// docStartMarker begins every document separator line in CoNLL-2003 files.
const docStartMarker = "-DOCSTART-"

// Sample is a single sentence with one tag per token.
type Sample struct {
	Tokens []string
	Tags   []string
}

// Len returns the number of tokens in the sentence.
func (s Sample) Len() int {
	return len(s.Tokens)
}

// Split is an ordered list of sentences from one corpus file.
type Split []Sample

// Dataset bundles the three standard corpus splits.
type Dataset struct {
	Train Split
	Valid Split
	Test  Split
}

// ReadSplit parses a corpus from r. Each non-blank line must carry at
// least a token and a tag column; a line with fewer columns is a parse
// error carrying the offending line number.
func ReadSplit(r io.Reader) (Split, error) {
	var (
		split   Split
		current Sample
		lineNo  int
	)

	flush := func() {
		if len(current.Tokens) > 0 {
			split = append(split, current)
			current = Sample{}
		}
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			flush()
			continue
		}

		fields := strings.Fields(line)
		if fields[0] == docStartMarker {
			flush()
			continue
		}
		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: expected token and tag columns, got %q", lineNo, line)
		}

		current.Tokens = append(current.Tokens, fields[0])
		current.Tags = append(current.Tags, fields[len(fields)-1])
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read corpus: %w", err)
	}
	flush()

	return split, nil
}

// LoadSplit reads one corpus file from disk.
func LoadSplit(path string) (Split, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus file: %w", err)
	}
	defer f.Close()

	split, err := ReadSplit(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return split, nil
}

// LoadDataset reads train, valid and test splits from dir using the
// standard CoNLL-2003 file names (eng.train, eng.testa, eng.testb).
func LoadDataset(dir string) (*Dataset, error) {
	train, err := LoadSplit(filepath.Join(dir, "eng.train"))
	if err != nil {
		return nil, err
	}
	valid, err := LoadSplit(filepath.Join(dir, "eng.testa"))
	if err != nil {
		return nil, err
	}
	test, err := LoadSplit(filepath.Join(dir, "eng.testb"))
	if err != nil {
		return nil, err
	}
	return &Dataset{Train: train, Valid: valid, Test: test}, nil
}

// Tokens collects every token sequence in the split, in order.
func (s Split) Tokens() [][]string {
	out := make([][]string, len(s))
	for i, sample := range s {
		out[i] = sample.Tokens
	}
	return out
}

// Tags collects every tag sequence in the split, in order.
func (s Split) Tags() [][]string {
	out := make([][]string, len(s))
	for i, sample := range s {
		out[i] = sample.Tags
	}
	return out
}
