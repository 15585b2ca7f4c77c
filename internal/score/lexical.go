// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package score

import (
	"strings"

	"github.com/pdiddy/answer-engine/pkg/types"
)

const (
	partialMatchCredit = 0.5
	phraseBonus        = 0.1
	minPartialLen      = 4
)

// lexicalScore measures token overlap between the question key terms
// and the document title+abstract. Exact token matches count fully,
// near-matches (one token containing the other) earn partial credit,
// and each adjacent pair of key terms appearing as an exact phrase
// adds a bonus. Empty inputs score zero.
func lexicalScore(keyTerms []string, doc types.Document) float64 {
	text := strings.ToLower(docText(doc))
	tokens := tokenize(text)
	if len(keyTerms) == 0 || len(tokens) == 0 {
		return 0
	}

	tokenSet := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		tokenSet[tok] = true
	}

	matched := 0.0
	for _, term := range keyTerms {
		term = strings.ToLower(term)
		if tokenSet[term] {
			matched++
			continue
		}
		if hasPartialMatch(term, tokenSet) {
			matched += partialMatchCredit
		}
	}

	score := matched / float64(len(keyTerms))

	for i := 0; i+1 < len(keyTerms); i++ {
		if strings.Contains(text, keyTerms[i]+" "+keyTerms[i+1]) {
			score += phraseBonus
		}
	}

	if score > 1 {
		return 1
	}
	return score
}

// hasPartialMatch reports whether any document token and the term
// contain one another, for substrings long enough to be meaningful
// (so "learn" credits "learning" but "is" does not credit "analysis").
func hasPartialMatch(term string, tokenSet map[string]bool) bool {
	if len(term) < minPartialLen {
		return false
	}
	for tok := range tokenSet {
		if len(tok) < minPartialLen {
			continue
		}
		if strings.Contains(tok, term) || strings.Contains(term, tok) {
			return true
		}
	}
	return false
}
