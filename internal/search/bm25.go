package search

import "math"

// BM25-Okapi parameters, the standard Robertson/Zaragoza defaults.
const (
	bm25K1      = 1.5
	bm25B       = 0.75
	bm25Epsilon = 0.25
)

// bm25Okapi scores a tokenized query against a fixed tokenized corpus.
// Negative IDF values, which arise for terms present in more than half
// the documents, are floored to epsilon times the average IDF.
type bm25Okapi struct {
	corpusSize int
	avgDocLen  float64
	docFreqs   []map[string]int
	docLens    []int
	idf        map[string]float64
}

// newBM25Okapi builds the index over a non-empty corpus of token lists.
func newBM25Okapi(corpus [][]string) *bm25Okapi {
	b := &bm25Okapi{
		corpusSize: len(corpus),
		docFreqs:   make([]map[string]int, len(corpus)),
		docLens:    make([]int, len(corpus)),
		idf:        make(map[string]float64),
	}

	numDocsWithTerm := make(map[string]int)
	totalLen := 0
	for i, doc := range corpus {
		freqs := make(map[string]int, len(doc))
		for _, term := range doc {
			freqs[term]++
		}
		b.docFreqs[i] = freqs
		b.docLens[i] = len(doc)
		totalLen += len(doc)
		for term := range freqs {
			numDocsWithTerm[term]++
		}
	}
	b.avgDocLen = float64(totalLen) / float64(b.corpusSize)

	var idfSum float64
	var negative []string
	for term, n := range numDocsWithTerm {
		idf := math.Log(float64(b.corpusSize)-float64(n)+0.5) - math.Log(float64(n)+0.5)
		b.idf[term] = idf
		idfSum += idf
		if idf < 0 {
			negative = append(negative, term)
		}
	}
	averageIdf := idfSum / float64(len(numDocsWithTerm))
	floor := bm25Epsilon * averageIdf
	for _, term := range negative {
		b.idf[term] = floor
	}
	return b
}

// Scores returns the BM25 score of the query against every document, in
// corpus order.
func (b *bm25Okapi) Scores(query []string) []float64 {
	scores := make([]float64, b.corpusSize)
	for _, term := range query {
		idf, ok := b.idf[term]
		if !ok {
			continue
		}
		for i := range scores {
			freq := float64(b.docFreqs[i][term])
			if freq == 0 {
				continue
			}
			norm := 1 - bm25B + bm25B*float64(b.docLens[i])/b.avgDocLen
			scores[i] += idf * freq * (bm25K1 + 1) / (freq + bm25K1*norm)
		}
	}
	return scores
}
