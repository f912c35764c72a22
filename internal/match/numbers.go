package match

import (
	"strconv"
	"strings"
)

var (
	smallNumberWords = [...]string{
		"zero", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine",
		"ten", "eleven", "twelve", "thirteen", "fourteen", "fifteen", "sixteen",
		"seventeen", "eighteen", "nineteen",
	}
	tensWords = [...]string{
		2: "twenty", 3: "thirty", 4: "forty", 5: "fifty",
		6: "sixty", 7: "seventy", 8: "eighty", 9: "ninety",
	}

	// wordToNumeral and numeralToWord cover 0 through 99.
	wordToNumeral = make(map[string]string, 100)
	numeralToWord = make(map[string]string, 100)
)

func init() {
	for n := 0; n < 100; n++ {
		word := numberWord(n)
		digits := strconv.Itoa(n)
		wordToNumeral[word] = digits
		numeralToWord[digits] = word
	}
}

// numberWord spells n (0-99) in English, hyphenating compound numbers.
func numberWord(n int) string {
	if n < 20 {
		return smallNumberWords[n]
	}
	word := tensWords[n/10]
	if n%10 != 0 {
		word += "-" + smallNumberWords[n%10]
	}
	return word
}

// Numberify lowercases s and replaces whole-word number words with numerals,
// so "Track Twenty-One" becomes "track 21".
func Numberify(s string) string {
	return replaceWords(s, wordToNumeral)
}

// NumberTextify lowercases s and replaces whole-word numerals with number
// words, so "Track 21" becomes "track twenty-one".
func NumberTextify(s string) string {
	return replaceWords(s, numeralToWord)
}

// replaceWords swaps every space-delimited token of the lowercased input
// that appears in table. Tokens are matched whole, so "twenty-one" is never
// rewritten through "one".
func replaceWords(s string, table map[string]string) string {
	tokens := strings.Split(strings.ToLower(s), " ")
	for i, tok := range tokens {
		if repl, ok := table[tok]; ok {
			tokens[i] = repl
		}
	}
	return strings.TrimSpace(strings.Join(tokens, " "))
}
