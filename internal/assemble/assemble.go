// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package assemble builds the bounded text context handed to the
// answer synthesizer: candidates in rank order, each contributing its
// title and a capped excerpt, until the document count or character
// budget runs out.
package assemble

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/answer-engine/pkg/types"
)

const (
	defaultMaxDocuments     = 10
	defaultMaxChars         = 8000
	defaultPerDocumentChars = 1000

	// abstractSnippetChars bounds the abstract portion of each entry
	// so titles and metadata always fit inside the per-document cap.
	abstractSnippetChars = 250
)

// Context is the assembled input for one synthesis call.
type Context struct {
	// Text is the formatted context block.
	Text string

	// Included lists the documents that made it into Text, in rank order.
	Included []types.ScoredDocument
}

// Assembler selects and formats context documents under budgets.
type Assembler struct {
	cfg types.ContextConfig
}

// New creates an Assembler.
func New(cfg types.ContextConfig) *Assembler {
	return &Assembler{cfg: cfg}
}

// Build greedily packs the highest-ranked documents into the context.
// The pool is re-sorted locally (score descending, ID ascending on
// ties) so the output is deterministic regardless of caller ordering.
// A non-empty pool always yields at least one document: if the best
// entry alone exceeds the budget it is truncated, not dropped.
func (a *Assembler) Build(pool []types.ScoredDocument) Context {
	if len(pool) == 0 {
		return Context{}
	}

	maxDocs := a.cfg.MaxDocuments
	if maxDocs <= 0 {
		maxDocs = defaultMaxDocuments
	}
	maxChars := a.cfg.MaxChars
	if maxChars <= 0 {
		maxChars = defaultMaxChars
	}
	perDoc := a.cfg.PerDocumentChars
	if perDoc <= 0 {
		perDoc = defaultPerDocumentChars
	}

	ranked := make([]types.ScoredDocument, len(pool))
	copy(ranked, pool)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Document.ID < ranked[j].Document.ID
	})

	var (
		b        strings.Builder
		included []types.ScoredDocument
	)

	for _, sd := range ranked {
		if len(included) >= maxDocs {
			break
		}

		entry := formatEntry(len(included)+1, sd)
		if len(entry) > perDoc {
			entry = truncate(entry, perDoc)
		}

		if b.Len()+len(entry) > maxChars {
			if len(included) > 0 {
				break
			}
			// First document exceeds the whole budget on its own:
			// shrink it rather than returning an empty context.
			entry = truncate(entry, maxChars)
		}

		b.WriteString(entry)
		included = append(included, sd)
	}

	return Context{Text: b.String(), Included: included}
}

// formatEntry renders one document block for the prompt.
func formatEntry(n int, sd types.ScoredDocument) string {
	doc := sd.Document

	var b strings.Builder
	fmt.Fprintf(&b, "[Document %d]\n", n)
	fmt.Fprintf(&b, "Title: %s\n", doc.Title)
	if len(doc.Authors) > 0 {
		fmt.Fprintf(&b, "Authors: %s\n", strings.Join(doc.Authors, ", "))
	}
	if !doc.Date.IsZero() {
		fmt.Fprintf(&b, "Year: %d\n", doc.Date.Year())
	}
	if doc.Venue != "" {
		fmt.Fprintf(&b, "Venue: %s\n", doc.Venue)
	}
	if doc.Citations > 0 {
		fmt.Fprintf(&b, "Citations: %d\n", doc.Citations)
	}
	if doc.Abstract != "" {
		fmt.Fprintf(&b, "Abstract: %s\n", Excerpt(doc.Abstract, abstractSnippetChars))
	}
	b.WriteString("\n")
	return b.String()
}

// Excerpt truncates text to at most n characters, appending an
// ellipsis when shortened.
func Excerpt(text string, n int) string {
	return truncate(text, n)
}

// truncate shortens s to at most max bytes without splitting a UTF-8
// rune, appending an ellipsis when room allows.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:runeBoundary(s, max)]
	}
	return s[:runeBoundary(s, max-3)] + "..."
}

// runeBoundary walks back from byte offset n to the start of the rune
// containing it.
func runeBoundary(s string, n int) int {
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return n
}
