// Package reading scores a read-aloud attempt against its expected text and
// shapes per-word timing data for the client.
//
// The accuracy score is a token-set Jaccard expressed 0-100. It ignores word
// order and is a placeholder quality signal, not a linguistic alignment; the
// misread-word report refines it without changing the score.
package reading

import (
	"math"
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/tomekkedziera-maker/poczytajmy-backend/internal/textgen"
	"github.com/tomekkedziera-maker/poczytajmy-backend/pkg/provider/asr"
)

// Accuracy returns the token-set Jaccard between recognized and expected text
// as a 0-100 integer. With no expected text the score is 0.
func Accuracy(recognized, expected string) int {
	if strings.TrimSpace(expected) == "" {
		return 0
	}
	return int(math.Round(textgen.Jaccard(recognized, expected) * 100))
}

// Placeholder timing constants used when the ASR provider returns no
// word-level timestamps.
const (
	placeholderWordDur = 0.35 // seconds per word
	placeholderWordGap = 0.05 // seconds between words
)

// SynthesizeTimings returns evenly spaced placeholder windows for the given
// recognized words, so the client always receives a timestamp array equal in
// length to the word count.
func SynthesizeTimings(words []string) []asr.Word {
	out := make([]asr.Word, len(words))
	t := 0.0
	for i, w := range words {
		out[i] = asr.Word{Text: w, Start: t, End: t + placeholderWordDur}
		t += placeholderWordDur + placeholderWordGap
	}
	return out
}

// misreadThreshold is the Jaro-Winkler score below which an expected word is
// considered misread. Jaro-Winkler rewards shared prefixes, which suits
// reading errors (children usually start a word correctly).
const misreadThreshold = 0.84

// MisreadWords reports the expected words whose best Jaro-Winkler match among
// the recognized words falls below the threshold. Comparison is on normalized
// tokens; an exact token present anywhere counts as read correctly.
func MisreadWords(recognized, expected string) []string {
	expTokens := strings.Fields(textgen.Normalize(expected))
	recTokens := strings.Fields(textgen.Normalize(recognized))
	if len(expTokens) == 0 {
		return nil
	}

	recSet := make(map[string]struct{}, len(recTokens))
	for _, tok := range recTokens {
		recSet[tok] = struct{}{}
	}

	var misread []string
	for _, exp := range expTokens {
		if _, ok := recSet[exp]; ok {
			continue
		}
		best := 0.0
		for _, rec := range recTokens {
			if s := matchr.JaroWinkler(exp, rec, false); s > best {
				best = s
			}
		}
		if best < misreadThreshold {
			misread = append(misread, exp)
		}
	}
	return misread
}
