package retrieval

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_EstimateConfidence(t *testing.T) {
	var cases = []struct {
		scores     []float64
		confidence float64
	}{
		{scores: nil, confidence: 0},
		// One source: mean scaled down by the 1/3 corroboration factor.
		{scores: []float64{0.9}, confidence: 0.3},
		{scores: []float64{0.6, 0.6}, confidence: 0.4},
		// Three sources reach the full factor.
		{scores: []float64{0.6, 0.6, 0.6}, confidence: 0.6},
		// More than three sources plateau.
		{scores: []float64{0.6, 0.6, 0.6, 0.6, 0.6}, confidence: 0.6},
		// Boosted scores can push the product past the cap.
		{scores: []float64{1.3, 1.2, 1.4}, confidence: ConfidenceCap},
	}

	for i, c := range cases {
		t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
			results := make([]Result, 0, len(c.scores))
			for _, s := range c.scores {
				results = append(results, Result{Score: s})
			}

			confidence := EstimateConfidence(results)
			assert.InDelta(t, c.confidence, confidence, 1e-9)
			assert.GreaterOrEqual(t, confidence, 0.0)
			assert.LessOrEqual(t, confidence, ConfidenceCap)
		})
	}
}
