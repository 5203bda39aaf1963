package textgen

import (
	"regexp"
	"strings"
	"unicode"
)

// DefaultMotivationMaxChars is the character budget for a motivational
// message when the caller does not configure one.
const DefaultMotivationMaxChars = 160

// greetingRe strips one leading greeting word from the closed list together
// with the punctuation/space run immediately after it. The upstream model is
// forbidden from greeting, but enforcement cannot rely on prompting alone.
var greetingRe = regexp.MustCompile(`(?i)^(?:cześć|czesc|hej|hejka|witaj|witajcie|siema|halo|dzień dobry|dzien dobry|hello|hi)[\s,.!:;…-]*`)

// leadingPunctRe trims punctuation/dash runs left over after removals.
var leadingPunctRe = regexp.MustCompile(`^[\s,.!:;…—–-]+`)

// nameSuffixes are the inflection endings tried against the name's stem.
// Covers the common Polish vocative and case forms of first names
// (Zosia → Zosiu, Zosi, Zosię, Zosią; Marek → Marku, Markowi, Markiem).
var nameSuffixes = []string{"", "a", "o", "u", "i", "y", "ę", "ą", "iu", "ie", "em", "iem", "owi", "ku"}

// SanitizeGreeting removes a leading greeting word and every inflected form
// of the child's name from text. Name matching is whole-word and
// case-insensitive; an empty name skips name removal.
func SanitizeGreeting(text, name string) string {
	out := greetingRe.ReplaceAllString(strings.TrimSpace(text), "")

	if re := nameRe(name); re != nil {
		// Run twice so adjacent matches sharing a separator are both caught.
		out = re.ReplaceAllString(out, "$1$2")
		out = re.ReplaceAllString(out, "$1$2")
	}

	out = strings.Join(strings.Fields(out), " ")
	out = leadingPunctRe.ReplaceAllString(out, "")
	return strings.TrimSpace(out)
}

// nameRe builds a whole-word regexp matching any inflected variant of name,
// or nil when the name is unusable.
func nameRe(name string) *regexp.Regexp {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	// Polish first names typically inflect by swapping the final vowel.
	stem := name
	if r := []rune(name); len(r) > 2 && strings.ContainsRune("aoeiuy", unicode.ToLower(r[len(r)-1])) {
		stem = string(r[:len(r)-1])
	}

	seen := make(map[string]struct{})
	var variants []string
	for _, base := range []string{name, stem} {
		for _, suf := range nameSuffixes {
			v := base + suf
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			variants = append(variants, regexp.QuoteMeta(v))
		}
	}

	return regexp.MustCompile(`(?i)(^|[^\p{L}])(?:` + strings.Join(variants, "|") + `)($|[^\p{L}])`)
}

var (
	quotedSpanRe  = regexp.MustCompile(`"[^"]*"|„[^”]*”|«[^»]*»|'[^']*'`)
	quoteCharRe   = regexp.MustCompile(`["'„”“«»()\[\]]`)
	sentenceEndRe = regexp.MustCompile(`[.!?…]+(\s+|$)`)
)

// TightenMotivation clamps a motivational message for the UI: quoted spans
// and quote/parenthesis characters are stripped, at most two sentences and
// one pictographic emoji survive, the result is truncated to maxChars at a
// whitespace boundary and always ends in terminal punctuation. maxChars <= 0
// selects DefaultMotivationMaxChars.
func TightenMotivation(text string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultMotivationMaxChars
	}

	out := quotedSpanRe.ReplaceAllString(text, " ")
	out = quoteCharRe.ReplaceAllString(out, "")
	out = strings.Join(strings.Fields(out), " ")

	out = firstSentences(out, 2)
	out = keepFirstEmoji(out)
	out = strings.Join(strings.Fields(out), " ")
	out = truncateAtWord(out, maxChars)

	out = strings.TrimSpace(out)
	if out == "" {
		return out
	}
	if !strings.ContainsRune(".!?…", []rune(out)[len([]rune(out))-1]) {
		out += "."
	}
	return out
}

// firstSentences keeps at most n sentence-like segments, split on terminal
// punctuation followed by whitespace.
func firstSentences(s string, n int) string {
	ends := sentenceEndRe.FindAllStringIndex(s, -1)
	if len(ends) < n {
		return s
	}
	return strings.TrimSpace(s[:ends[n-1][1]])
}

// keepFirstEmoji removes every pictographic emoji after the first.
func keepFirstEmoji(s string) string {
	var b strings.Builder
	kept := false
	for _, r := range s {
		if isEmoji(r) {
			if kept {
				continue
			}
			kept = true
		}
		b.WriteRune(r)
	}
	return b.String()
}

// isEmoji reports whether r falls in the pictographic emoji blocks.
func isEmoji(r rune) bool {
	switch {
	case r >= 0x1F300 && r <= 0x1FAFF: // symbols, emoticons, supplemental
		return true
	case r >= 0x2600 && r <= 0x27BF: // misc symbols, dingbats
		return true
	case r >= 0x2B00 && r <= 0x2BFF: // arrows, stars
		return true
	default:
		return false
	}
}

// truncateAtWord cuts s to at most max runes at a whitespace boundary,
// never mid-word.
func truncateAtWord(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	cut := string(runes[:max])
	if i := strings.LastIndexFunc(cut, unicode.IsSpace); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimSpace(cut)
}
