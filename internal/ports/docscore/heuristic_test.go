package docscore

import "testing"

func TestHeuristic_Score(t *testing.T) {
	h := New()

	t.Run("empty documentation scores zero", func(t *testing.T) {
		if got := h.Score(nil); got != 0.0 {
			t.Errorf("expected 0.0, got %v", got)
		}
	})

	t.Run("whitespace-only documentation scores zero", func(t *testing.T) {
		if got := h.Score([]string{"   ", "\t"}); got != 0.0 {
			t.Errorf("expected 0.0, got %v", got)
		}
	})

	t.Run("short doc with no keywords gets only a length component", func(t *testing.T) {
		got := h.Score([]string{"one two three"})
		if got != 0.0 {
			t.Errorf("expected 0.0 for fewer than 5 words, got %v", got)
		}
	})

	t.Run("five words crosses the smallest length tier", func(t *testing.T) {
		got := h.Score([]string{"one two three four five"})
		if got != float32(0.1) {
			t.Errorf("expected 0.1, got %v", got)
		}
	})

	t.Run("keywords contribute an equal share of the cap", func(t *testing.T) {
		got := h.Score([]string{"Returns the value"})
		want := float32(0.6) / 4
		if got != want {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("a custom keyword list replaces the default one", func(t *testing.T) {
		custom := New(WithKeywords([]string{"widget"}))
		if got := custom.Score([]string{"Returns the value"}); got != 0.0 {
			t.Errorf("expected 0.0 since \"returns\" is no longer a configured keyword, got %v", got)
		}
		if got := custom.Score([]string{"a widget factory"}); got != float32(0.6) {
			t.Errorf("expected the single configured keyword to claim the full 0.6 cap, got %v", got)
		}
	})

	t.Run("an empty keyword override falls back to the default list", func(t *testing.T) {
		fallback := New(WithKeywords(nil))
		if got := fallback.Score([]string{"Returns the value"}); got != float32(0.6)/4 {
			t.Errorf("expected default keyword behavior, got %v", got)
		}
	})

	t.Run("total is capped at 1.0", func(t *testing.T) {
		long := "one two three four five six seven eight nine ten eleven twelve " +
			"thirteen fourteen fifteen sixteen seventeen eighteen nineteen twenty " +
			"twentyone twentytwo twentythree twentyfour twentyfive twentysix twentyseven " +
			"twentyeight twentynine thirty thirtyone thirtytwo thirtythree thirtyfour " +
			"thirtyfive thirtysix thirtyseven thirtyeight thirtynine forty fortyone " +
			"fortytwo fortythree fortyfour fortyfive fortysix fortyseven fortyeight " +
			"fortynine fifty returns args raises example"
		got := h.Score([]string{long})
		if got != 1.0 {
			t.Errorf("expected score to cap at 1.0, got %v", got)
		}
	})
}
