// Package sizefunc provides the reference SizeFunction implementation: a
// cl100k-family BPE tokenizer, the "conventional implementation" spec §6.2
// names.
package sizefunc

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"

	"github.com/contextfp/cf/internal/graphmodel"
)

// defaultEncoding is the cl100k-family encoding used by GPT-3.5/4-class
// models; chosen as the default because it is the encoding the teacher's
// own tiktoken-go usage budgets against.
const defaultEncoding = "cl100k_base"

// Tiktoken measures a span's size by slicing the span's bytes out of the
// file's full source and counting BPE tokens. It is safe for concurrent
// use: the underlying *tiktoken.Tiktoken encoder holds no mutable state
// touched by Encode.
type Tiktoken struct {
	encoding string
	enc      *tiktoken.Tiktoken
}

// Option configures a Tiktoken SizeFunction.
type Option func(*Tiktoken)

// WithEncoding overrides the default cl100k_base encoding, e.g. to
// o200k_base. An empty name is a no-op, so a config with an unset
// tokenizer_encoding field still gets the default.
func WithEncoding(name string) Option {
	return func(t *Tiktoken) {
		if name != "" {
			t.encoding = name
		}
	}
}

// New constructs a Tiktoken SizeFunction, loading the BPE encoding table
// immediately so construction failures surface at startup rather than on
// the first Measure call.
func New(opts ...Option) (*Tiktoken, error) {
	t := &Tiktoken{encoding: defaultEncoding}
	for _, opt := range opts {
		opt(t)
	}
	enc, err := tiktoken.GetEncoding(t.encoding)
	if err != nil {
		return nil, fmt.Errorf("sizefunc: load encoding %q: %w", t.encoding, err)
	}
	t.enc = enc
	return t, nil
}

// Measure returns the BPE token count of the bytes spanned by span within
// sourceBytes. Lines/columns are 0-based and the span is end-exclusive, as
// throughout the Semantic Data Contract.
func (t *Tiktoken) Measure(span graphmodel.Span, sourceBytes []byte) (uint32, error) {
	text := sliceSpan(sourceBytes, span)
	if len(text) == 0 {
		return 0, nil
	}
	tokens := t.enc.Encode(text, nil, nil)
	return uint32(len(tokens)), nil
}

// SliceSpan extracts the text covered by a 0-based, end-exclusive
// line/column span from src. Out-of-range lines/columns are clamped
// rather than causing a panic, since source files and spans can drift out
// of sync with each other (a stale extractor run against edited source).
// Exported so the CLI's context command can reuse the same slicing logic
// for auditing output that Measure uses for sizing.
func SliceSpan(src []byte, span graphmodel.Span) string {
	return sliceSpan(src, span)
}

func sliceSpan(src []byte, span graphmodel.Span) string {
	lines := splitLinesKeepEnds(src)
	if span.StartLine < 0 || span.StartLine >= len(lines) {
		return ""
	}
	endLine := span.EndLine
	if endLine >= len(lines) {
		endLine = len(lines) - 1
	}
	if endLine < span.StartLine {
		return ""
	}

	if span.StartLine == endLine {
		line := lines[span.StartLine]
		start := clamp(span.StartColumn, 0, len(line))
		end := clamp(span.EndColumn, start, len(line))
		return line[start:end]
	}

	var out []byte
	first := lines[span.StartLine]
	start := clamp(span.StartColumn, 0, len(first))
	out = append(out, first[start:]...)
	for i := span.StartLine + 1; i < endLine; i++ {
		out = append(out, lines[i]...)
	}
	last := lines[endLine]
	end := clamp(span.EndColumn, 0, len(last))
	out = append(out, last[:end]...)
	return string(out)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// splitLinesKeepEnds splits src into lines, keeping the trailing newline
// on every line but the last, so column offsets measured against the
// original file remain valid.
func splitLinesKeepEnds(src []byte) []string {
	var lines []string
	start := 0
	for i, b := range src {
		if b == '\n' {
			lines = append(lines, string(src[start:i+1]))
			start = i + 1
		}
	}
	lines = append(lines, string(src[start:]))
	return lines
}
