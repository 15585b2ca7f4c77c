// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package score

import "math"

// semanticScore is the cosine similarity between question and document
// embeddings, clamped into [0,1]. Either vector being absent or the
// dimensions disagreeing scores zero; the combining step renormalizes
// weights so the document is not penalized.
func semanticScore(question, document []float64) float64 {
	if len(question) == 0 || len(document) == 0 || len(question) != len(document) {
		return 0
	}

	var dot, qNorm, dNorm float64
	for i := range question {
		dot += question[i] * document[i]
		qNorm += question[i] * question[i]
		dNorm += document[i] * document[i]
	}

	if qNorm == 0 || dNorm == 0 {
		return 0
	}

	cos := dot / (math.Sqrt(qNorm) * math.Sqrt(dNorm))
	if math.IsNaN(cos) || cos < 0 {
		return 0
	}
	if cos > 1 {
		return 1
	}
	return cos
}
