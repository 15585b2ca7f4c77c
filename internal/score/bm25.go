// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package score

import (
	"math"

	"github.com/pdiddy/answer-engine/pkg/types"
)

// BM25 shape parameters, standard values.
const (
	bm25K1 = 1.2
	bm25B  = 0.75
)

// corpusStats holds the term statistics of one candidate set, which
// serves as the reference corpus for BM25 scoring. Entries are indexed
// by candidate position.
type corpusStats struct {
	docFreq   map[string]int   // term -> number of candidates containing it
	termFreqs []map[string]int // per-candidate term counts
	docLens   []int
	avgDocLen float64
}

// buildCorpusStats tokenizes every candidate once and accumulates
// document frequencies and lengths.
func buildCorpusStats(docs []types.Document) *corpusStats {
	stats := &corpusStats{
		docFreq:   make(map[string]int),
		termFreqs: make([]map[string]int, len(docs)),
		docLens:   make([]int, len(docs)),
	}

	totalLen := 0
	for i, doc := range docs {
		tokens := tokenize(docText(doc))
		counts := make(map[string]int, len(tokens))
		for _, tok := range tokens {
			counts[tok]++
		}
		for term := range counts {
			stats.docFreq[term]++
		}
		stats.termFreqs[i] = counts
		stats.docLens[i] = len(tokens)
		totalLen += len(tokens)
	}

	if len(docs) > 0 {
		stats.avgDocLen = float64(totalLen) / float64(len(docs))
	}
	return stats
}

// bm25 scores the candidate at position i against the query terms. The
// raw value is unbounded; callers min-max normalize it across the
// candidate set. An empty document scores zero.
func (s *corpusStats) bm25(queryTerms []string, i int) float64 {
	if i < 0 || i >= len(s.termFreqs) || s.docLens[i] == 0 || s.avgDocLen == 0 {
		return 0
	}

	counts := s.termFreqs[i]
	docLen := float64(s.docLens[i])
	n := float64(len(s.termFreqs))

	score := 0.0
	for _, term := range queryTerms {
		tf := float64(counts[term])
		if tf == 0 {
			continue
		}
		df := float64(s.docFreq[term])
		idf := math.Log(1 + (n-df+0.5)/(df+0.5))
		score += idf * tf * (bm25K1 + 1) / (tf + bm25K1*(1-bm25B+bm25B*docLen/s.avgDocLen))
	}
	return score
}
