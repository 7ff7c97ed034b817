package duplicates

import (
	"math"

	"issue-analyzer/internal/textproc"
)

// Weighting selects how term vectors are built before comparison.
type Weighting string

const (
	// WeightingTermFrequency uses raw stemmed term counts.
	WeightingTermFrequency Weighting = "tf"
	// WeightingTFIDF rescales counts by inverse document frequency over the
	// issues of one detection run.
	WeightingTFIDF Weighting = "tfidf"
)

// IsValid checks if weighting is supported
func (w Weighting) IsValid() bool {
	return w == WeightingTermFrequency || w == WeightingTFIDF
}

// TFIDFWeigher computes inverse document frequencies for a corpus of term
// vectors and reweights vectors with them.
type TFIDFWeigher struct {
	totalDocs int
	docFreq   map[string]int
	idf       map[string]float64
}

// NewTFIDFWeigher builds the idf table from the raw count vectors of a corpus.
func NewTFIDFWeigher(docs []textproc.TermVector) *TFIDFWeigher {
	w := &TFIDFWeigher{
		totalDocs: len(docs),
		docFreq:   make(map[string]int),
		idf:       make(map[string]float64),
	}
	w.buildDocumentFrequency(docs)
	w.calculateIDF()
	return w
}

func (w *TFIDFWeigher) buildDocumentFrequency(docs []textproc.TermVector) {
	for _, doc := range docs {
		for term := range doc {
			w.docFreq[term]++
		}
	}
}

// calculateIDF uses smoothed idf, ln((1+N)/(1+df)) + 1, so every weight stays
// positive even for terms present in every issue.
func (w *TFIDFWeigher) calculateIDF() {
	n := float64(w.totalDocs)
	for term, df := range w.docFreq {
		w.idf[term] = math.Log((1+n)/(1+float64(df))) + 1
	}
}

// IDF returns the weight of term, or 0 if it never appeared in the corpus.
func (w *TFIDFWeigher) IDF(term string) float64 {
	return w.idf[term]
}

// Weigh returns a new vector with term frequency times idf.
func (w *TFIDFWeigher) Weigh(counts textproc.TermVector) textproc.TermVector {
	var total float64
	for _, c := range counts {
		total += c
	}

	weighted := make(textproc.TermVector, len(counts))
	if total == 0 {
		return weighted
	}
	for term, c := range counts {
		weighted[term] = (c / total) * w.idf[term]
	}
	return weighted
}
