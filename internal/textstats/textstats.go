// Package textstats computes word- and sentence-level statistics over free
// text. It shares no state with the reservation engine; it backs the
// standalone text-analysis menu of the CLI.
package textstats

import (
	"math"
	"strings"
	"unicode"
)

// Statistics is the full set of measures computed by Analyze.
type Statistics struct {
	CharactersWithSpaces    int     `json:"characters_with_spaces"`
	CharactersWithoutSpaces int     `json:"characters_without_spaces"`
	Letters                 int     `json:"letters"`
	Digits                  int     `json:"digits"`
	Punctuation             int     `json:"punctuation"`
	WordCount               int     `json:"word_count"`
	UniqueWordCount         int     `json:"unique_word_count"`
	MostCommonWord          string  `json:"most_common_word"`
	AverageWordLength       float64 `json:"average_word_length"`
	LongestWord             string  `json:"longest_word"`
	ShortestWord            string  `json:"shortest_word"`
	SentenceCount           int     `json:"sentence_count"`
	AverageWordsPerSentence float64 `json:"average_words_per_sentence"`
	LongestSentence         string  `json:"longest_sentence"`
}

var sentenceDelimiters = map[rune]bool{'.': true, '!': true, '?': true}

func isWordDelimiter(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '.', ',', ';', ':', '!', '?', '-', '—',
		'(', ')', '[', ']', '{', '}', '"', '\'', '/', '\\':
		return true
	}
	return false
}

// Analyze computes every statistic in one pass over the text. Empty input
// yields the zero value.
func Analyze(text string) Statistics {
	if text == "" {
		return Statistics{}
	}

	words := Words(text)
	sentences := Sentences(text)

	return Statistics{
		CharactersWithSpaces:    len([]rune(text)),
		CharactersWithoutSpaces: countRunes(text, func(r rune) bool { return !unicode.IsSpace(r) }),
		Letters:                 countRunes(text, unicode.IsLetter),
		Digits:                  countRunes(text, unicode.IsDigit),
		Punctuation:             countRunes(text, unicode.IsPunct),
		WordCount:               len(words),
		UniqueWordCount:         uniqueWords(words),
		MostCommonWord:          mostCommonWord(words),
		AverageWordLength:       averageWordLength(words),
		LongestWord:             longestWord(words),
		ShortestWord:            shortestWord(words),
		SentenceCount:           len(sentences),
		AverageWordsPerSentence: averageWordsPerSentence(sentences),
		LongestSentence:         longestSentence(sentences),
	}
}

// Words splits text on whitespace and punctuation, dropping empty fragments.
func Words(text string) []string {
	return strings.FieldsFunc(text, isWordDelimiter)
}

// Sentences splits text on '.', '!' and '?', trimming surrounding space and
// keeping the delimiter with its sentence. A trailing fragment without a
// delimiter counts as a sentence.
func Sentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for _, r := range text {
		current.WriteRune(r)
		if sentenceDelimiters[r] {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func countRunes(text string, pred func(rune) bool) int {
	n := 0
	for _, r := range text {
		if pred(r) {
			n++
		}
	}
	return n
}

func uniqueWords(words []string) int {
	seen := make(map[string]bool, len(words))
	for _, w := range words {
		seen[strings.ToLower(w)] = true
	}
	return len(seen)
}

func mostCommonWord(words []string) string {
	if len(words) == 0 {
		return ""
	}
	counts := make(map[string]int, len(words))
	best := strings.ToLower(words[0])
	for _, w := range words {
		lw := strings.ToLower(w)
		counts[lw]++
		if counts[lw] > counts[best] {
			best = lw
		}
	}
	return best
}

func averageWordLength(words []string) float64 {
	if len(words) == 0 {
		return 0
	}
	total := 0
	for _, w := range words {
		total += len([]rune(w))
	}
	return float64(total) / float64(len(words))
}

func longestWord(words []string) string {
	longest := ""
	for _, w := range words {
		if len([]rune(w)) > len([]rune(longest)) {
			longest = w
		}
	}
	return longest
}

func shortestWord(words []string) string {
	if len(words) == 0 {
		return ""
	}
	shortest := words[0]
	for _, w := range words[1:] {
		if len([]rune(w)) < len([]rune(shortest)) {
			shortest = w
		}
	}
	return shortest
}

func averageWordsPerSentence(sentences []string) float64 {
	if len(sentences) == 0 {
		return 0
	}
	total := 0
	for _, s := range sentences {
		total += len(Words(s))
	}
	return float64(total) / float64(len(sentences))
}

func longestSentence(sentences []string) string {
	longest := ""
	most := math.MinInt
	for _, s := range sentences {
		if n := len(Words(s)); n > most {
			most = n
			longest = s
		}
	}
	return longest
}
