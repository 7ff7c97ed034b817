package textproc

import "strings"

var defaultStemmer = NewSuffixStemmer()

// SuffixStemmer strips a handful of common English suffixes. It is a
// heuristic and makes no attempt at irregular forms.
type SuffixStemmer struct {
	suffixes []string
	minStem  int
}

func NewSuffixStemmer() *SuffixStemmer {
	return &SuffixStemmer{
		suffixes: []string{"ing", "ed", "ly"},
		minStem:  minTokenLength,
	}
}

// Stem removes at most one suffix, and only if at least minStem letters remain.
func (s *SuffixStemmer) Stem(word string) string {
	word = strings.ToLower(word)

	for _, suffix := range s.suffixes {
		if strings.HasSuffix(word, suffix) && len(word)-len(suffix) >= s.minStem {
			return word[:len(word)-len(suffix)]
		}
	}

	// plural "s", but leave "ss" endings (class, access) alone
	if strings.HasSuffix(word, "s") && !strings.HasSuffix(word, "ss") && len(word)-1 >= s.minStem {
		return word[:len(word)-1]
	}

	return word
}

// Terms normalizes text and returns the surviving stemmed tokens.
func (s *SuffixStemmer) Terms(text string) []string {
	var terms []string
	for _, tok := range Tokens(text) {
		if len(tok) < minTokenLength || IsStopWord(tok) {
			continue
		}
		terms = append(terms, s.Stem(tok))
	}
	return terms
}

// Vector counts the stemmed terms of text.
func (s *SuffixStemmer) Vector(text string) TermVector {
	vec := make(TermVector)
	for _, term := range s.Terms(text) {
		vec[term]++
	}
	return vec
}
