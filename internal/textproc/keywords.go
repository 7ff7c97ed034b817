package textproc

import (
	"sort"
	"strings"
	"unicode"

	"issue-analyzer/internal/models"

	"github.com/jdkato/prose/v2"
)

// KeywordResult represents a keyword with its frequency and importance
type KeywordResult struct {
	Word      string  `json:"word"`
	Frequency int     `json:"frequency"`
	Score     float64 `json:"score"`
	PosTag    string  `json:"pos_tag"`
}

// KeywordExtractor pulls the most telling words out of an issue using
// part-of-speech tags.
type KeywordExtractor struct {
	minLength int
}

// NewKeywordExtractor creates a new keyword extractor
func NewKeywordExtractor() *KeywordExtractor {
	return &KeywordExtractor{minLength: minTokenLength}
}

// Function-word tags that never make a keyword.
var skipTags = map[string]bool{
	"DT":   true, // determiner
	"IN":   true, // preposition
	"TO":   true, // to
	"CC":   true, // coordinating conjunction
	"PRP":  true, // personal pronoun
	"PRP$": true, // possessive pronoun
	"WP":   true, // wh-pronoun
	"WDT":  true, // wh-determiner
	"MD":   true, // modal
}

var tagScores = map[string]float64{
	"NN":   1.5,
	"NNS":  1.5,
	"NNP":  2.0,
	"NNPS": 2.0,
	"VB":   1.2,
	"VBD":  1.2,
	"VBG":  1.2,
	"VBN":  1.2,
	"VBP":  1.2,
	"VBZ":  1.2,
	"JJ":   1.3,
	"JJR":  1.3,
	"JJS":  1.3,
	"RB":   0.8,
	"RBR":  0.8,
	"RBS":  0.8,
}

// Extract returns keywords for an issue ordered by score, highest first.
// The title is counted twice. A limit of 0 or less returns everything.
func (ke *KeywordExtractor) Extract(issue models.Issue, limit int) ([]KeywordResult, error) {
	text := strings.TrimSpace(strings.Repeat(issue.Title+". ", 2) + issue.Description)
	if text == "" {
		return nil, nil
	}

	doc, err := prose.NewDocument(text, prose.WithExtraction(false))
	if err != nil {
		return nil, err
	}

	wordFreq := make(map[string]*KeywordResult)
	for _, tok := range doc.Tokens() {
		word := strings.ToLower(tok.Text)
		if ke.shouldSkipWord(word, tok.Tag) {
			continue
		}

		score := 1.0
		if s, ok := tagScores[tok.Tag]; ok {
			score = s
		}

		if existing, ok := wordFreq[word]; ok {
			existing.Frequency++
			existing.Score += score
		} else {
			wordFreq[word] = &KeywordResult{
				Word:      word,
				Frequency: 1,
				Score:     score,
				PosTag:    tok.Tag,
			}
		}
	}

	keywords := make([]KeywordResult, 0, len(wordFreq))
	for _, result := range wordFreq {
		result.Score *= float64(result.Frequency)
		keywords = append(keywords, *result)
	}

	sort.Slice(keywords, func(i, j int) bool {
		if keywords[i].Score != keywords[j].Score {
			return keywords[i].Score > keywords[j].Score
		}
		return keywords[i].Word < keywords[j].Word
	})

	if limit > 0 && len(keywords) > limit {
		keywords = keywords[:limit]
	}
	return keywords, nil
}

// ExtractWords is Extract reduced to the keyword strings.
func (ke *KeywordExtractor) ExtractWords(issue models.Issue, limit int) ([]string, error) {
	keywords, err := ke.Extract(issue, limit)
	if err != nil {
		return nil, err
	}

	words := make([]string, len(keywords))
	for i, kw := range keywords {
		words[i] = kw.Word
	}
	return words, nil
}

func (ke *KeywordExtractor) shouldSkipWord(word, posTag string) bool {
	if len(word) < ke.minLength || IsStopWord(word) {
		return true
	}
	if skipTags[posTag] {
		return true
	}
	for _, r := range word {
		if unicode.IsLetter(r) {
			return false
		}
	}
	// numbers, punctuation and symbols
	return true
}
