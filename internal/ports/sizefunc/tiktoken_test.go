package sizefunc

import (
	"testing"

	"github.com/contextfp/cf/internal/graphmodel"
)

func TestSliceSpan_SingleLine(t *testing.T) {
	src := []byte("package main\nfunc Foo() {}\n")
	span := graphmodel.Span{StartLine: 1, StartColumn: 0, EndLine: 1, EndColumn: 8}
	got := SliceSpan(src, span)
	if got != "func Foo" {
		t.Errorf("expected %q, got %q", "func Foo", got)
	}
}

func TestSliceSpan_MultiLine(t *testing.T) {
	src := []byte("line0\nline1\nline2\n")
	span := graphmodel.Span{StartLine: 0, StartColumn: 2, EndLine: 2, EndColumn: 4}
	got := SliceSpan(src, span)
	want := "ne0\nline1\nline"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestSliceSpan_OutOfRangeIsClamped(t *testing.T) {
	src := []byte("only one line")

	t.Run("start line beyond file returns empty", func(t *testing.T) {
		span := graphmodel.Span{StartLine: 5, EndLine: 6}
		if got := SliceSpan(src, span); got != "" {
			t.Errorf("expected empty string, got %q", got)
		}
	})

	t.Run("end line beyond file is clamped to last line", func(t *testing.T) {
		span := graphmodel.Span{StartLine: 0, StartColumn: 0, EndLine: 50, EndColumn: 4}
		if got := SliceSpan(src, span); got == "" {
			t.Error("expected a non-empty clamp result")
		}
	})

	t.Run("negative start line returns empty", func(t *testing.T) {
		span := graphmodel.Span{StartLine: -1, EndLine: 0}
		if got := SliceSpan(src, span); got != "" {
			t.Errorf("expected empty string for negative start line, got %q", got)
		}
	})

	t.Run("end line before start line returns empty", func(t *testing.T) {
		span := graphmodel.Span{StartLine: 2, EndLine: 0}
		src := []byte("a\nb\nc\n")
		if got := SliceSpan(src, span); got != "" {
			t.Errorf("expected empty string when end precedes start, got %q", got)
		}
	})
}

func TestTiktoken_MeasureEmptySpan(t *testing.T) {
	tk, err := New()
	if err != nil {
		t.Fatalf("unexpected error constructing Tiktoken: %v", err)
	}
	n, err := tk.Measure(graphmodel.Span{StartLine: 9, EndLine: 9}, []byte("short"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 tokens for an out-of-range span, got %d", n)
	}
}

func TestTiktoken_MeasureCountsTokens(t *testing.T) {
	tk, err := New()
	if err != nil {
		t.Fatalf("unexpected error constructing Tiktoken: %v", err)
	}
	src := []byte("func Add(a, b int) int { return a + b }\n")
	span := graphmodel.Span{StartLine: 0, StartColumn: 0, EndLine: 0, EndColumn: len(src) - 1}
	n, err := tk.Measure(span, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n == 0 {
		t.Error("expected a non-zero token count for a non-empty span")
	}
}

func TestWithEncoding(t *testing.T) {
	tk, err := New(WithEncoding("o200k_base"))
	if err != nil {
		t.Fatalf("unexpected error constructing Tiktoken with an alternate encoding: %v", err)
	}
	if tk.encoding != "o200k_base" {
		t.Errorf("expected encoding %q, got %q", "o200k_base", tk.encoding)
	}
}
