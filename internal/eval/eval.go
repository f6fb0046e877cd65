// Package eval computes entity-level precision, recall and F1 for BIO
// tagged sequences, following the conlleval conventions.
package eval

import (
	"fmt"
	"sort"
	"strings"
)

// Span is one entity occurrence: tokens [Start, End) carrying Type.
type Span struct {
	Type  string
	Start int
	End   int
}

// Spans extracts entity spans from a BIO tag sequence. A B-X tag always
// opens a span; an I-X tag extends a span of the same type, and opens a
// new one otherwise (the conlleval treatment of orphan I tags). O and
// unrecognized tags close any open span.
func Spans(tags []string) []Span {
	var spans []Span
	openType := ""
	openStart := 0

	flush := func(end int) {
		if openType != "" {
			spans = append(spans, Span{Type: openType, Start: openStart, End: end})
			openType = ""
		}
	}

	for i, tag := range tags {
		prefix, entType, ok := splitTag(tag)
		switch {
		case !ok:
			flush(i)
		case prefix == "B":
			flush(i)
			openType = entType
			openStart = i
		case prefix == "I":
			if openType != entType {
				flush(i)
				openType = entType
				openStart = i
			}
		default:
			flush(i)
		}
	}
	flush(len(tags))
	return spans
}

func splitTag(tag string) (prefix, entType string, ok bool) {
	prefix, entType, found := strings.Cut(tag, "-")
	if !found || entType == "" || (prefix != "B" && prefix != "I") {
		return "", "", false
	}
	return prefix, entType, true
}

// Metrics holds entity-level scores as percentages.
type Metrics struct {
	Precision float64
	Recall    float64
	F1        float64
	Correct   int
	Predicted int
	Expected  int
}

func newMetrics(correct, predicted, expected int) Metrics {
	m := Metrics{Correct: correct, Predicted: predicted, Expected: expected}
	if predicted > 0 {
		m.Precision = 100 * float64(correct) / float64(predicted)
	}
	if expected > 0 {
		m.Recall = 100 * float64(correct) / float64(expected)
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
	return m
}

// Report is the outcome of scoring a full split: micro-averaged overall
// metrics and a per-entity-type breakdown.
type Report struct {
	Overall Metrics
	ByType  map[string]Metrics
}

// String renders the report in the conlleval layout.
func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "precision: %6.2f%%; recall: %6.2f%%; F1: %6.2f (%d/%d correct)\n",
		r.Overall.Precision, r.Overall.Recall, r.Overall.F1, r.Overall.Correct, r.Overall.Predicted)

	types := make([]string, 0, len(r.ByType))
	for t := range r.ByType {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		m := r.ByType[t]
		fmt.Fprintf(&b, "%9s: precision: %6.2f%%; recall: %6.2f%%; F1: %6.2f\n",
			t, m.Precision, m.Recall, m.F1)
	}
	return b.String()
}

type typeCounts struct {
	correct   int
	predicted int
	expected  int
}

// Scorer accumulates tag sequences sentence by sentence. Predicted and
// true sequences must be the same length per sentence.
type Scorer struct {
	counts map[string]*typeCounts
}

// NewScorer creates an empty scorer.
func NewScorer() *Scorer {
	return &Scorer{counts: make(map[string]*typeCounts)}
}

// Add scores one sentence's tag sequences. A predicted span counts as
// correct only when both its boundaries and type match a true span.
func (s *Scorer) Add(trueTags, predTags []string) error {
	if len(trueTags) != len(predTags) {
		return fmt.Errorf("eval: sequence length mismatch: %d true vs %d predicted", len(trueTags), len(predTags))
	}

	trueSpans := Spans(trueTags)
	predSpans := Spans(predTags)

	trueSet := make(map[Span]bool, len(trueSpans))
	for _, sp := range trueSpans {
		trueSet[sp] = true
		s.typeCounts(sp.Type).expected++
	}
	for _, sp := range predSpans {
		c := s.typeCounts(sp.Type)
		c.predicted++
		if trueSet[sp] {
			c.correct++
		}
	}
	return nil
}

func (s *Scorer) typeCounts(entType string) *typeCounts {
	c, ok := s.counts[entType]
	if !ok {
		c = &typeCounts{}
		s.counts[entType] = c
	}
	return c
}

// Report computes the accumulated metrics.
func (s *Scorer) Report() *Report {
	var correct, predicted, expected int
	byType := make(map[string]Metrics, len(s.counts))
	for entType, c := range s.counts {
		byType[entType] = newMetrics(c.correct, c.predicted, c.expected)
		correct += c.correct
		predicted += c.predicted
		expected += c.expected
	}
	return &Report{
		Overall: newMetrics(correct, predicted, expected),
		ByType:  byType,
	}
}
