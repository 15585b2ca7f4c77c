// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"strings"

	"github.com/pdiddy/answer-engine/pkg/types"
)

// Confidence heuristic constants. These order results (more sources
// and longer substantiated answers score higher); they are tunable and
// carry no probabilistic meaning.
const (
	baseConfidence = 0.4
	minConfidence  = 0.2
	maxConfidence  = 0.95

	lengthBonus     = 0.1
	lengthThreshold = 200

	perSourceBonus    = 0.05
	sourceSaturation  = 3
	qualityBonus      = 0.1
	followUpThreshold = 0.3
)

// estimateConfidence composes the confidence heuristic for a generated
// answer: a fixed base, a bonus for substantive length, a bonus per
// contributing source saturating at sourceSaturation, and a bonus when
// the question's technical terms actually appear in the answer.
func estimateConfidence(answer string, q types.Question, srcs []types.Source) float64 {
	c := baseConfidence

	if len(answer) > lengthThreshold {
		c += lengthBonus
	}

	n := len(srcs)
	if n > sourceSaturation {
		n = sourceSaturation
	}
	c += float64(n) * perSourceBonus

	if termsAppear(q.KeyTerms, answer) {
		c += qualityBonus
	}

	if c < minConfidence {
		c = minConfidence
	}
	if c > maxConfidence {
		c = maxConfidence
	}
	return c
}

// termsAppear reports whether at least half of the question's key
// terms occur in the answer text.
func termsAppear(terms []string, answer string) bool {
	if len(terms) == 0 {
		return false
	}
	lower := strings.ToLower(answer)
	found := 0
	for _, term := range terms {
		if strings.Contains(lower, term) {
			found++
		}
	}
	return found*2 >= len(terms)
}
