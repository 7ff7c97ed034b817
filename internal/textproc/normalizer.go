package textproc

import (
	"math"
	"regexp"
	"strings"
)

var nonLetters = regexp.MustCompile(`[^a-z ]+`)

// minTokenLength is the shortest token kept by TokenizeWeighted.
const minTokenLength = 3

// stopWords are dropped before vectorization: articles, prepositions,
// conjunctions, pronouns and auxiliary verbs.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true, "nor": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true, "from": true,
	"with": true, "by": true, "into": true, "onto": true, "about": true, "over": true,
	"under": true, "after": true, "before": true, "between": true, "through": true,
	"during": true, "without": true, "within": true, "as": true, "than": true, "then": true,
	"so": true, "if": true, "when": true, "while": true, "because": true, "since": true,
	"is": true, "are": true, "was": true, "were": true, "be": true, "been": true, "being": true,
	"have": true, "has": true, "had": true, "do": true, "does": true, "did": true,
	"will": true, "would": true, "could": true, "should": true, "can": true, "may": true,
	"this": true, "that": true, "these": true, "those": true, "there": true, "here": true,
	"i": true, "you": true, "he": true, "she": true, "it": true, "we": true, "they": true,
	"me": true, "him": true, "them": true, "us": true, "my": true, "your": true, "his": true,
	"her": true, "its": true, "our": true, "their": true, "what": true, "which": true,
	"who": true, "some": true, "any": true, "all": true, "also": true, "just": true,
}

// IsStopWord reports whether word is in the fixed stopword set.
func IsStopWord(word string) bool {
	return stopWords[word]
}

// Normalize lowercases text, turns every character outside [a-z ] into a
// space, collapses whitespace and trims. It never fails; empty in, empty out.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	cleaned := nonLetters.ReplaceAllString(strings.ToLower(text), " ")
	return strings.Join(strings.Fields(cleaned), " ")
}

// Tokens returns the whitespace tokens of the normalized text.
func Tokens(text string) []string {
	return strings.Fields(Normalize(text))
}

// TermVector maps a term to its weight in one document.
type TermVector map[string]float64

// Magnitude returns the euclidean norm of the vector.
func (v TermVector) Magnitude() float64 {
	var sum float64
	for _, w := range v {
		sum += w * w
	}
	return math.Sqrt(sum)
}

// TokenizeWeighted builds a raw term-count vector from text after stopword
// removal, short-token removal and suffix stripping.
func TokenizeWeighted(text string) TermVector {
	return defaultStemmer.Vector(text)
}
