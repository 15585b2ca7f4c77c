// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synth

import (
	"bytes"
	"text/template"

	"github.com/pdiddy/answer-engine/pkg/types"
)

// answerPromptTmpl is the prompt sent to the generation collaborator.
// The instruction block varies by question type.
var answerPromptTmpl = template.Must(template.New("answer").Parse(`You are a research expert who synthesizes information from academic literature to answer research questions. Provide well-structured answers grounded in the documents below.

Question: {{.Question}}

Based on the following documents, provide a comprehensive answer:

{{.Context}}

Instructions:
1. {{.TypeInstruction}}
2. Synthesize information from multiple documents when possible.
3. Cite documents using their [Document N] labels.
4. If documents conflict, say so.
5. Do not invent findings that the documents do not support.
`))

// typeInstructions selects the leading instruction per question type.
var typeInstructions = map[types.QuestionType]string{
	types.QuestionWhat:       "Explain the concept clearly, covering its core ideas and significance.",
	types.QuestionHow:        "Describe the mechanism or process step by step.",
	types.QuestionWhy:        "Explain the underlying causes and reasoning.",
	types.QuestionComparison: "Provide a structured side-by-side comparison covering strengths, weaknesses, and use cases of each alternative.",
	types.QuestionList:       "Enumerate the items as a structured list, with a one-sentence description of each.",
	types.QuestionDefinition: "Give a precise definition first, then elaborate with context from the documents.",
	types.QuestionTrend:      "Emphasize the most recent developments and the direction the field is moving.",
	types.QuestionChallenge:  "Identify the open problems and limitations, and note any proposed mitigations.",
	types.QuestionOther:      "Provide a detailed, well-structured answer.",
}

// BuildPrompt renders the generation prompt for a question and its
// assembled context.
func BuildPrompt(q types.Question, contextText string) string {
	instruction, ok := typeInstructions[q.Type]
	if !ok {
		instruction = typeInstructions[types.QuestionOther]
	}

	var buf bytes.Buffer
	// The template only fails on a type mismatch, which cannot happen
	// with a fixed struct.
	_ = answerPromptTmpl.Execute(&buf, struct {
		Question        string
		Context         string
		TypeInstruction string
	}{
		Question:        q.Raw,
		Context:         contextText,
		TypeInstruction: instruction,
	})
	return buf.String()
}
