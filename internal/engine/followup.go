// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"fmt"
	"strings"

	"github.com/pdiddy/answer-engine/pkg/types"
)

const maxFollowUps = 2

// followUps suggests related questions derived from the question's
// subject. Suppressed for low-confidence results, where suggesting
// deeper dives would overstate what the answer established.
func followUps(q types.Question, confidence float64) []string {
	if confidence < followUpThreshold {
		return nil
	}

	subject := followUpSubject(q)
	if subject == "" {
		return nil
	}

	candidates := []string{
		fmt.Sprintf("What are the main challenges or limitations in %s?", subject),
		fmt.Sprintf("What are recent advances or trends in %s?", subject),
		fmt.Sprintf("What are the practical applications of %s?", subject),
	}

	// Questions already asking about challenges or trends get the
	// remaining angles instead of an echo of themselves.
	var out []string
	for _, c := range candidates {
		if q.Type == types.QuestionChallenge && strings.Contains(c, "challenges") {
			continue
		}
		if q.Type == types.QuestionTrend && strings.Contains(c, "trends") {
			continue
		}
		out = append(out, c)
		if len(out) == maxFollowUps {
			break
		}
	}
	return out
}

// followUpSubject extracts the topic phrase the follow-ups ask about:
// the explicit topic filter when given, otherwise the question's key
// terms joined in order.
func followUpSubject(q types.Question) string {
	if q.Topic != "" {
		return q.Topic
	}
	return strings.Join(q.KeyTerms, " ")
}
