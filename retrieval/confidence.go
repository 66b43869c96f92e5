package retrieval

// ConfidenceCap models irreducible uncertainty: the estimator never claims
// full certainty.
const ConfidenceCap = 0.95

// EstimateConfidence derives a scalar confidence for an answer from its
// ranked result set: the mean relevance scaled by how many corroborating
// chunks were found, plateauing at three.
func EstimateConfidence(results []Result) float64 {
	if len(results) == 0 {
		return 0
	}

	var sum float64
	for _, r := range results {
		sum += r.Score
	}
	avg := sum / float64(len(results))

	sourceFactor := float64(len(results)) / 3
	if sourceFactor > 1 {
		sourceFactor = 1
	}

	confidence := avg * sourceFactor
	if confidence > ConfidenceCap {
		return ConfidenceCap
	}

	return confidence
}
