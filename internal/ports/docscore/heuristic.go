// Package docscore provides the reference DocumentationScorer: a length
// heuristic blended with a keyword heuristic, per spec §6.2.
package docscore

import "strings"

// lengthTiers maps a word-count threshold to the length component awarded
// at or above that threshold. Evaluated from the top down.
var lengthTiers = []struct {
	minWords int
	score    float32
}{
	{50, 0.4},
	{20, 0.3},
	{10, 0.2},
	{5, 0.1},
}

// defaultKeywords are the documentation signal words whose presence
// contributes to the keyword component, each worth an equal share of the
// 0.6 cap, used when no override list is configured.
var defaultKeywords = []string{"returns", "args", "raises", "example"}

const keywordCap = 0.6

// Heuristic is the reference DocumentationScorer implementation: pure
// word/substring counting, with an overridable keyword list.
type Heuristic struct {
	keywords []string
}

// Option configures a Heuristic at construction, matching the
// functional-options idiom used across this codebase.
type Option func(*Heuristic)

// WithKeywords overrides the default documentation signal words, e.g. from
// a loaded contextfootprint.yaml's doc_scorer_keywords.
func WithKeywords(keywords []string) Option {
	return func(h *Heuristic) { h.keywords = keywords }
}

// New constructs a Heuristic scorer, falling back to defaultKeywords when
// WithKeywords is not supplied or supplies an empty list.
func New(opts ...Option) Heuristic {
	h := Heuristic{keywords: defaultKeywords}
	for _, opt := range opts {
		opt(&h)
	}
	if len(h.keywords) == 0 {
		h.keywords = defaultKeywords
	}
	return h
}

// Score blends a length component (tiered over word count) with a keyword
// component (capped at 0.6), total capped at 1.0. Empty documentation
// scores 0.0.
func (h Heuristic) Score(documentation []string) float32 {
	if len(documentation) == 0 {
		return 0.0
	}
	joined := strings.Join(documentation, " ")
	trimmed := strings.TrimSpace(joined)
	if trimmed == "" {
		return 0.0
	}

	words := strings.Fields(trimmed)
	length := lengthComponent(len(words))
	keyword := h.keywordComponent(strings.ToLower(trimmed))

	total := length + keyword
	if total > 1.0 {
		total = 1.0
	}
	return total
}

func lengthComponent(wordCount int) float32 {
	for _, tier := range lengthTiers {
		if wordCount >= tier.minWords {
			return tier.score
		}
	}
	return 0.0
}

func (h Heuristic) keywordComponent(lower string) float32 {
	if len(h.keywords) == 0 {
		return 0.0
	}
	perKeyword := float32(keywordCap) / float32(len(h.keywords))
	var total float32
	for _, kw := range h.keywords {
		if strings.Contains(lower, kw) {
			total += perKeyword
		}
	}
	if total > keywordCap {
		total = keywordCap
	}
	return total
}
