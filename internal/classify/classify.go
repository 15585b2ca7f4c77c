// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify maps raw question text to a question type and
// extracts the key terms used for corpus retrieval.
package classify

import (
	"regexp"
	"strings"

	"github.com/pdiddy/answer-engine/pkg/types"
)

// stopWords are common English words removed during key-term extraction.
var stopWords = map[string]bool{
	"a": true, "about": true, "above": true, "after": true, "again": true,
	"an": true, "and": true, "are": true, "at": true, "be": true,
	"before": true, "below": true, "between": true, "by": true, "can": true,
	"do": true, "does": true, "down": true, "during": true, "for": true,
	"from": true, "further": true, "how": true, "in": true, "into": true,
	"is": true, "it": true, "its": true, "main": true, "of": true,
	"off": true, "on": true, "once": true, "or": true, "out": true,
	"over": true, "the": true, "then": true, "there": true, "these": true,
	"they": true, "this": true, "through": true, "to": true, "under": true,
	"up": true, "what": true, "when": true, "where": true, "which": true,
	"who": true, "why": true, "with": true,
}

// cuePatterns map lexical cues to question types. Cue matches take
// precedence over the leading interrogative, so "What are the main
// challenges in X?" classifies as challenge, not what.
var cuePatterns = []struct {
	qtype types.QuestionType
	cues  []string
}{
	{types.QuestionComparison, []string{"compare", "comparison", "versus", " vs ", " vs.", "difference between", "differ from"}},
	{types.QuestionTrend, []string{"trend", "recent", "emerging", "latest", "state of the art", "advances in"}},
	{types.QuestionChallenge, []string{"challenge", "limitation", "problem", "drawback", "obstacle", "difficult"}},
	{types.QuestionDefinition, []string{"what is ", "what does", "define ", "definition of", "meaning of"}},
	{types.QuestionList, []string{"list ", "examples of", "what are the types", "kinds of", "enumerate"}},
}

// interrogatives map a leading question word to a type when no cue matched.
var interrogatives = map[string]types.QuestionType{
	"what":  types.QuestionWhat,
	"which": types.QuestionWhat,
	"how":   types.QuestionHow,
	"why":   types.QuestionWhy,
	"when":  types.QuestionWhat,
	"where": types.QuestionWhat,
}

var tokenPattern = regexp.MustCompile(`[a-z0-9][a-z0-9-]*`)

// Classify determines the question type and key terms for raw question
// text. It never fails for non-empty input; unmatched patterns default
// to QuestionOther. Input validation happens at the engine boundary.
func Classify(raw string) types.Question {
	normalized := strings.ToLower(strings.TrimSpace(raw))

	return types.Question{
		Raw:        raw,
		Normalized: normalized,
		Type:       classifyType(normalized),
		KeyTerms:   KeyTerms(normalized),
	}
}

// classifyType applies cue patterns first, then the leading
// interrogative word, then defaults to other.
func classifyType(normalized string) types.QuestionType {
	for _, cp := range cuePatterns {
		for _, cue := range cp.cues {
			if strings.Contains(normalized, cue) {
				return cp.qtype
			}
		}
	}

	fields := strings.Fields(normalized)
	if len(fields) > 0 {
		lead := strings.Trim(fields[0], "?.,!")
		if t, ok := interrogatives[lead]; ok {
			return t
		}
	}

	return types.QuestionOther
}

// KeyTerms extracts search terms from normalized question text:
// stop-words removed, tokens shorter than two characters dropped,
// duplicates removed preserving first occurrence.
func KeyTerms(normalized string) []string {
	tokens := tokenPattern.FindAllString(strings.ToLower(normalized), -1)

	seen := make(map[string]bool, len(tokens))
	var terms []string
	for _, tok := range tokens {
		if len(tok) < 2 || stopWords[tok] || seen[tok] {
			continue
		}
		seen[tok] = true
		terms = append(terms, tok)
	}
	return terms
}
