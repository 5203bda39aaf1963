package reading_test

import (
	"testing"

	"github.com/tomekkedziera-maker/poczytajmy-backend/internal/reading"
)

func TestAccuracy_Perfect(t *testing.T) {
	t.Parallel()

	if got := reading.Accuracy("Ala ma kota", "Ala ma kota"); got != 100 {
		t.Errorf("expected 100, got %d", got)
	}
}

func TestAccuracy_IgnoresOrderAndCase(t *testing.T) {
	t.Parallel()

	if got := reading.Accuracy("kota ma ala", "Ala ma kota!"); got != 100 {
		t.Errorf("token-set score ignores order and case, got %d", got)
	}
}

func TestAccuracy_NoExpectedText(t *testing.T) {
	t.Parallel()

	if got := reading.Accuracy("cokolwiek", ""); got != 0 {
		t.Errorf("expected 0 without expected text, got %d", got)
	}
	if got := reading.Accuracy("cokolwiek", "   "); got != 0 {
		t.Errorf("expected 0 for blank expected text, got %d", got)
	}
}

func TestAccuracy_Partial(t *testing.T) {
	t.Parallel()

	// 2 shared tokens of 4 total: 50.
	if got := reading.Accuracy("ala ma", "ala ma kota psa"); got != 50 {
		t.Errorf("expected 50, got %d", got)
	}
}

func TestAccuracy_Disjoint(t *testing.T) {
	t.Parallel()

	if got := reading.Accuracy("jeden dwa", "trzy cztery"); got != 0 {
		t.Errorf("expected 0 for disjoint tokens, got %d", got)
	}
}

func TestSynthesizeTimings(t *testing.T) {
	t.Parallel()

	words := []string{"ala", "ma", "kota"}
	got := reading.SynthesizeTimings(words)
	if len(got) != len(words) {
		t.Fatalf("expected %d windows, got %d", len(words), len(got))
	}
	for i, w := range got {
		if w.Text != words[i] {
			t.Errorf("window %d text: got %q", i, w.Text)
		}
		if w.End <= w.Start {
			t.Errorf("window %d has non-positive duration: %+v", i, w)
		}
		if i > 0 && got[i].Start <= got[i-1].Start {
			t.Errorf("windows must be monotonically spaced: %+v", got)
		}
	}
}

func TestSynthesizeTimings_Empty(t *testing.T) {
	t.Parallel()

	if got := reading.SynthesizeTimings(nil); len(got) != 0 {
		t.Errorf("expected empty result, got %v", got)
	}
}

func TestMisreadWords_ExactReadingIsClean(t *testing.T) {
	t.Parallel()

	if got := reading.MisreadWords("Ala ma kota", "Ala ma kota"); len(got) != 0 {
		t.Errorf("expected no misread words, got %v", got)
	}
}

func TestMisreadWords_NearMissIsNotMisread(t *testing.T) {
	t.Parallel()

	// "kotka" vs "kota" share a long prefix; a near-miss should not be
	// flagged as a completely misread word.
	if got := reading.MisreadWords("ala ma kotka", "ala ma kota"); len(got) != 0 {
		t.Errorf("near-miss flagged as misread: %v", got)
	}
}

func TestMisreadWords_MissingWordIsFlagged(t *testing.T) {
	t.Parallel()

	got := reading.MisreadWords("ala ma", "ala ma hipopotama")
	if len(got) != 1 || got[0] != "hipopotama" {
		t.Errorf("expected [hipopotama], got %v", got)
	}
}

func TestMisreadWords_NoExpected(t *testing.T) {
	t.Parallel()

	if got := reading.MisreadWords("coś", ""); got != nil {
		t.Errorf("expected nil without expected text, got %v", got)
	}
}
