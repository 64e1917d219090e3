// Package readability estimates Flesch Reading Ease for page text.
package readability

import (
	"html"
	"math"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Threshold is the score below which page text is reported as hard to read.
const Threshold = 50.0

var (
	whitespace     = regexp.MustCompile(`\s+`)
	specialChars   = regexp.MustCompile(`[^\p{L}\p{N}_\s.,!?;:\-']+`)
	sentenceBreaks = regexp.MustCompile(`[.!?]+`)
	vowelGroups    = regexp.MustCompile(`[aeiouy]+`)

	stripPolicy = bluemonday.StrictPolicy()
)

// Analysis is the full readability breakdown for a text.
type Analysis struct {
	Score                float64 `json:"flesch_reading_ease"`
	GradeLevel           string  `json:"grade_level"`
	WordCount            int     `json:"word_count"`
	SentenceCount        int     `json:"sentence_count"`
	AvgWordsPerSentence  float64 `json:"average_words_per_sentence"`
	AvgCharactersPerWord float64 `json:"average_characters_per_word"`
	Recommendation       string  `json:"recommendation"`
}

// Clean strips markup, collapses whitespace and drops characters other
// than letters, digits and sentence punctuation.
func Clean(text string) string {
	text = html.UnescapeString(stripPolicy.Sanitize(text))
	text = whitespace.ReplaceAllString(text, " ")
	text = specialChars.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// Score returns the Flesch Reading Ease of text clamped to [0, 100] and
// rounded to two decimals. Empty text scores 0.
func Score(text string) float64 {
	text = Clean(text)
	if text == "" {
		return 0
	}
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return 0
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}
	syllables := 0
	for _, w := range words {
		syllables += CountSyllables(w)
	}
	asl := float64(len(words)) / float64(len(sentences))
	asw := float64(syllables) / float64(len(words))
	score := 206.835 - 1.015*asl - 84.6*asw
	return round2(math.Max(0, math.Min(100, score)))
}

// CountSyllables estimates syllables by counting vowel groups. Always >= 1.
func CountSyllables(word string) int {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return 1
	}
	word = strings.TrimSuffix(word, "e")
	count := len(vowelGroups.FindAllString(word, -1))
	if count == 0 {
		return 1
	}
	if strings.HasSuffix(word, "le") && len(word) > 2 {
		count++
	}
	return max(1, count)
}

// GradeLevel maps a Flesch score to a school grade band.
func GradeLevel(score float64) string {
	switch {
	case score >= 90:
		return "5th grade"
	case score >= 80:
		return "6th grade"
	case score >= 70:
		return "7th grade"
	case score >= 60:
		return "8th-9th grade"
	case score >= 50:
		return "10th-12th grade"
	case score >= 30:
		return "College"
	default:
		return "College graduate"
	}
}

// Recommendation returns a one-line suggestion for a Flesch score.
func Recommendation(score float64) string {
	switch {
	case score >= 70:
		return "Text is easily readable for most audiences."
	case score >= Threshold:
		return "Text is fairly readable but could be simplified for broader audience."
	default:
		return "Text is difficult to read. Consider simplifying language and sentence structure."
	}
}

// Analyze scores text and reports the counts behind the score.
func Analyze(text string) Analysis {
	score := Score(text)
	cleaned := Clean(text)
	words := strings.Fields(cleaned)
	sentences := splitSentences(cleaned)

	a := Analysis{
		Score:          score,
		GradeLevel:     GradeLevel(score),
		WordCount:      len(words),
		SentenceCount:  len(sentences),
		Recommendation: Recommendation(score),
	}
	if len(sentences) > 0 {
		a.AvgWordsPerSentence = round2(float64(len(words)) / float64(len(sentences)))
	}
	if len(words) > 0 {
		chars := 0
		for _, w := range words {
			chars += len([]rune(w))
		}
		a.AvgCharactersPerWord = round2(float64(chars) / float64(len(words)))
	}
	return a
}

func splitSentences(text string) []string {
	var out []string
	for _, s := range sentenceBreaks.Split(text, -1) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
