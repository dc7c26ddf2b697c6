package textutil

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	sentenceEnd = regexp.MustCompile(`[.!?]+`)
	wordPattern = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
	yearPattern = regexp.MustCompile(`\b(1[0-9]{3}|20[0-9]{2})\b`)
)

// CountWords counts whitespace-separated words
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// Words returns the letter runs of text in their original case
func Words(text string) []string {
	return wordPattern.FindAllString(text, -1)
}

// FoldedWords returns the case-folded words of text
func FoldedWords(text string) []string {
	words := Words(text)
	for i, w := range words {
		words[i] = Fold(w)
	}
	return words
}

// Sentences splits text on terminal punctuation and drops empty fragments
func Sentences(text string) []string {
	raw := sentenceEnd.Split(text, -1)
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

// AverageSentenceLength is the mean number of words per sentence
func AverageSentenceLength(text string) float64 {
	sentences := Sentences(text)
	total, counted := 0, 0
	for _, s := range sentences {
		n := len(Words(s))
		if n == 0 {
			continue
		}
		total += n
		counted++
	}
	if counted == 0 {
		return 0
	}
	return float64(total) / float64(counted)
}

// SentencesMentioning returns the sentences of text that contain term as a
// whole word, case-insensitively.
func SentencesMentioning(text, term string) []string {
	var out []string
	for _, s := range Sentences(text) {
		if ContainsWord(s, term) {
			out = append(out, s)
		}
	}
	return out
}

// ContainsWord reports whether phrase occurs in text on word boundaries,
// ignoring case.
func ContainsWord(text, phrase string) bool {
	return IndexWord(text, phrase) >= 0
}

// IndexWord returns the byte offset in the folded text of the first
// whole-word occurrence of phrase, or -1.
func IndexWord(text, phrase string) int {
	phrase = strings.TrimSpace(phrase)
	if phrase == "" {
		return -1
	}
	return indexBounded(strings.ToLower(text), strings.ToLower(phrase))
}

// ContainsPhrase is the case-sensitive form of ContainsWord
func ContainsPhrase(text, phrase string) bool {
	phrase = strings.TrimSpace(phrase)
	if phrase == "" {
		return false
	}
	return indexBounded(text, phrase) >= 0
}

func indexBounded(lt, lp string) int {
	offset := 0
	for {
		i := strings.Index(lt[offset:], lp)
		if i < 0 {
			return -1
		}
		start := offset + i
		end := start + len(lp)
		if boundaryBefore(lt, start) && boundaryAfter(lt, end) {
			return start
		}
		offset = start + 1
	}
}

func boundaryBefore(s string, i int) bool {
	if i <= 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !isWordRune(r)
}

func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// ContainsAny reports whether text contains any of the phrases as whole words.
// It returns the matched phrases in table order.
func ContainsAny(text string, phrases []string) []string {
	var matched []string
	for _, p := range phrases {
		if ContainsWord(text, p) {
			matched = append(matched, p)
		}
	}
	return matched
}

// ReplaceWordFold replaces every whole-word, case-insensitive occurrence of
// old with replacement.
func ReplaceWordFold(text, old, replacement string) string {
	if strings.TrimSpace(old) == "" {
		return text
	}
	re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(old) + `\b`)
	return re.ReplaceAllLiteralString(text, replacement)
}

// FirstYear returns the first plausible four-digit calendar year in text.
func FirstYear(text string) (string, bool) {
	m := yearPattern.FindString(text)
	return m, m != ""
}

// Capitalized reports whether a word starts with an upper-case letter
func Capitalized(word string) bool {
	for _, r := range word {
		return unicode.IsUpper(r)
	}
	return false
}
