package textgen

import (
	"fmt"
	"strings"
)

// Level is a reading-difficulty level for generated practice sentences.
type Level string

// Supported reading levels, easiest first.
const (
	LevelA1 Level = "A1"
	LevelA2 Level = "A2"
	LevelB1 Level = "B1"
	LevelB2 Level = "B2"
	LevelC1 Level = "C1"
)

// ParseLevel validates a client-supplied level string. An empty input
// defaults to A1.
func ParseLevel(s string) (Level, error) {
	if s == "" {
		return LevelA1, nil
	}
	switch l := Level(strings.ToUpper(strings.TrimSpace(s))); l {
	case LevelA1, LevelA2, LevelB1, LevelB2, LevelC1:
		return l, nil
	default:
		return "", fmt.Errorf("textgen: unknown level %q", s)
	}
}

// characterThemes maps a client character id to the theme woven into the
// greeting prompt. Unknown ids fall back to a neutral reading theme.
var characterThemes = map[string]string{
	"dragon":   "przygody małego smoka, który uwielbia opowieści",
	"princess": "zamek księżniczki pełen zaczarowanych książek",
	"robot":    "robot odkrywający świat liter i słów",
	"dino":     "dinozaur szukający ukrytych historii",
	"unicorn":  "jednorożec w krainie bajek",
	"pirate":   "pirat szukający skarbu schowanego w książce",
}

const defaultTheme = "wspólne czytanie ciekawych historii"

// ThemeFor returns the prompt theme for a character id.
func ThemeFor(character string) string {
	if t, ok := characterThemes[strings.ToLower(strings.TrimSpace(character))]; ok {
		return t
	}
	return defaultTheme
}

// GreetingPrompt builds the system and user prompts for greeting generation.
// The model is told not to greet or use the name; SanitizeGreeting enforces
// both afterwards.
func GreetingPrompt(name string, age int, character string) (system, user string) {
	system = "Jesteś przyjaznym towarzyszem czytania dla dzieci. " +
		"Piszesz po polsku, jednym krótkim zdaniem (5-16 słów), ciepło i z energią. " +
		"Nie witaj się, nie używaj słów powitania ani imienia dziecka. " +
		"Zaproponuj 5 różnych wariantów, każdy w osobnej linii."

	var sb strings.Builder
	sb.WriteString("Napisz zachętę do wspólnego czytania. Motyw: ")
	sb.WriteString(ThemeFor(character))
	sb.WriteString(".")
	if age > 0 {
		fmt.Fprintf(&sb, " Dziecko ma %d lat.", age)
	}
	if name != "" {
		sb.WriteString(" Nie wymieniaj imienia dziecka.")
	}
	return system, sb.String()
}

// MotivationPrompt builds the prompts for a post-reading motivational message.
func MotivationPrompt(age, accuracy int, excerpt, characterName, lang string) (system, user string) {
	if lang == "" {
		lang = "pl"
	}
	system = fmt.Sprintf("Jesteś wspierającym towarzyszem czytania dla dzieci. "+
		"Odpowiadasz w języku %q, maksymalnie dwoma krótkimi zdaniami, bez cudzysłowów, "+
		"najwyżej jedna emotka.", lang)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Dziecko przeczytało na głos fragment z dokładnością %d%%.", accuracy)
	if age > 0 {
		fmt.Fprintf(&sb, " Wiek dziecka: %d lat.", age)
	}
	if characterName != "" {
		fmt.Fprintf(&sb, " Mów jako postać %s.", characterName)
	}
	if excerpt != "" {
		fmt.Fprintf(&sb, " Fragment: %q.", clip(excerpt, 200))
	}
	sb.WriteString(" Pochwal wysiłek i zachęć do dalszego czytania.")
	return system, sb.String()
}

// ReadingTextPrompt builds the prompts for generating one practice sentence
// at the requested level.
func ReadingTextPrompt(language string, level Level) (system, user string) {
	if language == "" {
		language = "pl"
	}
	system = fmt.Sprintf("Tworzysz zdania do ćwiczenia czytania na głos w języku %q. "+
		"Każde zdanie ma 5-16 słów, bez dialogów i bez numeracji. "+
		"Podaj 5 propozycji, każdą w osobnej linii.", language)
	user = fmt.Sprintf("Poziom trudności: %s. Napisz zdania odpowiednie dla tego poziomu.", level)
	return system, user
}

// clip truncates s to at most n runes.
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// mockSentences is the canned per-level bank served when mock-text mode is
// enabled, so the client can be exercised without a provider credential.
var mockSentences = map[Level][]string{
	LevelA1: {
		"Ala ma kota i psa w domu.",
		"Mama czyta mi książkę przed snem.",
		"Słońce świeci dziś bardzo mocno na niebie.",
	},
	LevelA2: {
		"W sobotę pojedziemy z babcią do zoo.",
		"Mój brat nauczył się jeździć na rowerze.",
		"Po południu bawimy się w parku obok szkoły.",
	},
	LevelB1: {
		"Wczoraj wieczorem cała rodzina oglądała zdjęcia z wakacji nad morzem.",
		"Tomek obiecał koledze, że pomoże mu naprawić zepsuty rower.",
		"W bibliotece szkolnej pojawiły się nowe książki o dalekich podróżach.",
	},
	LevelB2: {
		"Mimo padającego deszczu postanowiliśmy dokończyć budowę szałasu w ogrodzie.",
		"Nauczycielka zaproponowała, żeby klasa przygotowała przedstawienie o historii miasta.",
		"Zanim zapadł zmrok, zdążyliśmy jeszcze obejrzeć start balonów nad doliną.",
	},
	LevelC1: {
		"Gdyby nie wytrwałość młodego odkrywcy, mapa zaginionej wyspy nigdy nie ujrzałaby światła dziennego.",
		"Wielogodzinna wędrówka górskim szlakiem wynagrodziła nam trudy widokiem rozległej panoramy.",
		"Opowieści dziadka o dawnych rzemiosłach brzmiały jak fragmenty przygodowej powieści.",
	},
}

// MockSentence returns a deterministic canned sentence for the level; seed
// selects among the bank entries.
func MockSentence(level Level, seed int) string {
	bank, ok := mockSentences[level]
	if !ok || len(bank) == 0 {
		bank = mockSentences[LevelA1]
	}
	if seed < 0 {
		seed = -seed
	}
	return bank[seed%len(bank)]
}

// MockBank returns the full canned sentence bank for a level.
func MockBank(level Level) []string {
	bank := mockSentences[level]
	out := make([]string, len(bank))
	copy(out, bank)
	return out
}
