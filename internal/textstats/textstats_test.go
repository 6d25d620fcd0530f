package textstats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzeEmpty(t *testing.T) {
	assert.Equal(t, Statistics{}, Analyze(""))
}

func TestAnalyzeCounts(t *testing.T) {
	s := Analyze("Hello world! It has 2 words. Or more?")

	assert.Equal(t, 37, s.CharactersWithSpaces)
	assert.Equal(t, 8, s.WordCount)
	assert.Equal(t, 3, s.SentenceCount)
	assert.Equal(t, 1, s.Digits)
}

func TestWords(t *testing.T) {
	words := Words("one, two; three-four")
	assert.Equal(t, []string{"one", "two", "three", "four"}, words)

	assert.Empty(t, Words("  ,,  "))
}

func TestSentences(t *testing.T) {
	sentences := Sentences("First. Second! Third? trailing fragment")
	assert.Equal(t, []string{"First.", "Second!", "Third?", "trailing fragment"}, sentences)
}

func TestMostCommonWordIsCaseInsensitive(t *testing.T) {
	s := Analyze("Go go GO stop")
	assert.Equal(t, "go", s.MostCommonWord)
	assert.Equal(t, 2, s.UniqueWordCount)
}

func TestWordExtremes(t *testing.T) {
	s := Analyze("a bb ccc")
	assert.Equal(t, "ccc", s.LongestWord)
	assert.Equal(t, "a", s.ShortestWord)
	assert.InDelta(t, 2.0, s.AverageWordLength, 0.001)
}

func TestAverageWordsPerSentence(t *testing.T) {
	s := Analyze("One two three. Four five.")
	assert.Equal(t, 2, s.SentenceCount)
	assert.InDelta(t, 2.5, s.AverageWordsPerSentence, 0.001)
	assert.Equal(t, "One two three.", s.LongestSentence)
}
