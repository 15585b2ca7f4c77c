// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synth

import (
	"fmt"
	"strings"

	"github.com/pdiddy/answer-engine/internal/assemble"
	"github.com/pdiddy/answer-engine/pkg/types"
)

const fallbackExcerptChars = 250

// FallbackAnswer builds a deterministic literature summary from the
// context documents when generation is blocked. The output depends
// only on the question and the documents, so repeated failures produce
// identical text.
func FallbackAnswer(q types.Question, included []types.ScoredDocument) string {
	if len(included) == 0 {
		return NoCandidatesAnswer(q)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Automated synthesis was not available for this question: %s\n\n", q.Raw)
	b.WriteString("The most relevant literature found:\n\n")

	for i, sd := range included {
		doc := sd.Document
		fmt.Fprintf(&b, "%d. %s", i+1, doc.Title)
		if len(doc.Authors) > 0 {
			fmt.Fprintf(&b, " (%s)", strings.Join(doc.Authors, ", "))
		}
		b.WriteString("\n")
		if doc.Abstract != "" {
			fmt.Fprintf(&b, "   %s\n", assemble.Excerpt(doc.Abstract, fallbackExcerptChars))
		}
		b.WriteString("\n")
	}

	b.WriteString("Consult the listed documents directly for a complete treatment of the question.")
	return b.String()
}

// NoCandidatesAnswer explains an empty retrieval result.
func NoCandidatesAnswer(q types.Question) string {
	return fmt.Sprintf(
		"No sufficiently relevant literature was found in the corpus for this question: %s\n\n"+
			"Try rephrasing the question with more specific technical terms, or expand the corpus with documents covering this topic.",
		q.Raw,
	)
}
