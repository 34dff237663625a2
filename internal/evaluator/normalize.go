package evaluator

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// strippedPunctuation is removed outright; other symbols pass through.
const strippedPunctuation = ".,/#!$%^&*;:{}=-_`~()"

var numberWords = map[string]string{
	"zero":      "0",
	"one":       "1",
	"two":       "2",
	"three":     "3",
	"four":      "4",
	"five":      "5",
	"six":       "6",
	"seven":     "7",
	"eight":     "8",
	"nine":      "9",
	"ten":       "10",
	"eleven":    "11",
	"twelve":    "12",
	"thirteen":  "13",
	"fourteen":  "14",
	"fifteen":   "15",
	"sixteen":   "16",
	"seventeen": "17",
	"eighteen":  "18",
	"nineteen":  "19",
	"twenty":    "20",
	"thirty":    "30",
	"forty":     "40",
	"fifty":     "50",
	"sixty":     "60",
	"seventy":   "70",
	"eighty":    "80",
	"ninety":    "90",
	"hundred":   "100",
	"thousand":  "1000",
}

var abbreviations = map[string]string{
	"ccp":  "chinese communist party",
	"kmt":  "kuomintang",
	"prc":  "peoples republic of china",
	"roc":  "republic of china",
	"pla":  "peoples liberation army",
	"sez":  "special economic zone",
	"dyn":  "dynasty",
	"mov":  "movement",
	"rev":  "revolution",
	"govt": "government",
	"ref":  "reform",
	"mod":  "modernization",
	"ind":  "industrialization",
	"pol":  "political",
	"econ": "economic",
	"soc":  "social",
	"cult": "cultural",
	"edu":  "educational",
	"dipl": "diplomatic",
	"mil":  "military",
}

var stopWords = toSet(
	// articles
	"a", "an", "the",
	// prepositions
	"in", "on", "at", "to", "for", "of", "with", "by", "from", "into", "onto",
	"about", "as", "over", "under", "between", "during", "after", "before",
	"through", "against", "among", "upon", "within", "without",
	// conjunctions
	"and", "or", "but", "nor", "so", "yet",
	// demonstratives
	"this", "that", "these", "those",
	// interrogatives
	"who", "whom", "whose", "what", "which", "where", "when", "why", "how",
)

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// Normalize reduces a free-text answer to its comparison form:
// case-fold, strip punctuation, collapse whitespace, number words to digits,
// expand abbreviations, drop stop words, collapse again.
// Number words are substituted one word at a time, so "nineteen eleven"
// becomes "19 11", not "1911".
func Normalize(s string) string {
	// cases.Caser keeps state and is not safe for concurrent use.
	// Folding through uppercase first maps ı, ſ and ς onto the same
	// letters their uppercase forms lowercase to.
	s = cases.Upper(language.Und).String(s)
	s = cases.Lower(language.Und, cases.HandleFinalSigma(false)).String(s)
	s = stripPunctuation(s)

	words := strings.Fields(s)
	out := make([]string, 0, len(words))
	for _, w := range words {
		if digits, ok := numberWords[w]; ok {
			w = digits
		}
		if full, ok := abbreviations[w]; ok {
			for _, part := range strings.Fields(full) {
				if _, stop := stopWords[part]; !stop {
					out = append(out, part)
				}
			}
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		out = append(out, w)
	}
	return strings.Join(out, " ")
}

func stripPunctuation(s string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(strippedPunctuation, r) {
			return -1
		}
		return r
	}, s)
}
