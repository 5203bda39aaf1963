// Package textgen contains the text-shaping heuristics applied to raw chat
// provider output: candidate extraction, novelty selection against per-profile
// history, and the greeting/motivation sanitizers. All functions are pure
// string transforms with no external calls.
package textgen

import (
	"regexp"
	"strings"
)

const (
	// minCandidateWords and maxCandidateWords bound the normalized word count
	// of a usable read-aloud sentence.
	minCandidateWords = 5
	maxCandidateWords = 16

	// maxCandidates caps the candidate set, preserving first-seen order.
	maxCandidates = 20
)

// listMarkerRe matches leading list markers: dashes, bullets and numeric
// prefixes like "1." or "2)".
var listMarkerRe = regexp.MustCompile(`^\s*(?:[-*•–—]+|\d+[.)])\s*`)

// strippedPunct is the fixed set of punctuation and quote characters removed
// during normalization.
const strippedPunct = `.,!?;:"'()[]{}„”“«»…-–—`

// Normalize lowercases s, strips the fixed punctuation set and collapses
// whitespace. Used for both word-count filtering and similarity.
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = strings.Map(func(r rune) rune {
		if strings.ContainsRune(strippedPunct, r) {
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// Tokens returns the set of normalized whitespace-delimited tokens of s.
func Tokens(s string) map[string]struct{} {
	fields := strings.Fields(Normalize(s))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

// Jaccard computes the Jaccard index over the normalized token sets of a and
// b: intersection size divided by union size. Two empty token sets are
// maximally similar by convention.
func Jaccard(a, b string) float64 {
	ta, tb := Tokens(a), Tokens(b)
	if len(ta) == 0 && len(tb) == 0 {
		return 1
	}
	inter := 0
	for tok := range ta {
		if _, ok := tb[tok]; ok {
			inter++
		}
	}
	union := len(ta) + len(tb) - inter
	if union == 0 {
		return 1
	}
	return float64(inter) / float64(union)
}

// ExtractCandidates parses one provider response into a deduplicated,
// word-count-filtered candidate list capped at maxCandidates. If structured
// line parsing yields nothing but raw text exists, sentences split on
// terminal punctuation serve as a secondary candidate source. An empty result
// means the generation produced nothing usable.
func ExtractCandidates(raw string) []string {
	candidates := collectCandidates(strings.Split(raw, "\n"))
	if len(candidates) > 0 {
		return candidates
	}
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return collectCandidates(splitSentences(raw))
}

// collectCandidates trims, strips list markers, dedupes and filters the given
// lines, preserving first-seen order.
func collectCandidates(lines []string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, line := range lines {
		line = strings.TrimSpace(listMarkerRe.ReplaceAllString(line, ""))
		if line == "" {
			continue
		}
		if _, dup := seen[line]; dup {
			continue
		}
		seen[line] = struct{}{}
		n := len(strings.Fields(Normalize(line)))
		if n < minCandidateWords || n > maxCandidateWords {
			continue
		}
		out = append(out, line)
		if len(out) == maxCandidates {
			break
		}
	}
	return out
}

// sentenceSplitRe splits raw text on sentence-ending punctuation or newlines.
var sentenceSplitRe = regexp.MustCompile(`[.!?]+\s+|\n+`)

func splitSentences(raw string) []string {
	return sentenceSplitRe.Split(raw, -1)
}

// SelectNovel picks the candidate least similar to the given history
// (ordered most-recent-first). Each candidate is scored by its maximum
// Jaccard similarity against every history entry; the lowest score wins and
// ties are broken by candidate order. With empty history the first candidate
// is returned. An empty candidate list returns "".
func SelectNovel(candidates, history []string) string {
	if len(candidates) == 0 {
		return ""
	}
	if len(history) == 0 {
		return candidates[0]
	}

	best := candidates[0]
	bestScore := maxSimilarity(candidates[0], history)
	for _, c := range candidates[1:] {
		if score := maxSimilarity(c, history); score < bestScore {
			best, bestScore = c, score
		}
	}
	return best
}

func maxSimilarity(candidate string, history []string) float64 {
	var max float64
	for _, h := range history {
		if s := Jaccard(candidate, h); s > max {
			max = s
		}
	}
	return max
}
