package scoring

import "github.com/coachkit/checkin-engine/internal/apperrors"

// questionScore is one visible, scorable question's normalized value and
// weight, tagged with its section category.
type questionScore struct {
	id       string
	category string
	value    float64
	weight   float64
}

// aggregate combines normalized sub-scores and per-question weights into an
// overall score on [0,100] and per-category sub-scores. Weights are arbitrary
// non-negative author values; dividing by the total weight performs the
// normalization at compute time.
func aggregate(scores []questionScore) (float64, map[string]float64, error) {
	var sum, totalWeight float64
	catSum := make(map[string]float64)
	catWeight := make(map[string]float64)

	for _, s := range scores {
		contribution := s.value * s.weight
		sum += contribution
		totalWeight += s.weight
		catSum[s.category] += contribution
		catWeight[s.category] += s.weight
	}

	if totalWeight == 0 {
		// A zero score would be indistinguishable from genuinely poor
		// compliance, so no score is produced at all.
		return 0, nil, apperrors.NewComputationError("no scorable questions were visible")
	}

	overall := 100 * sum / totalWeight

	perCategory := make(map[string]float64, len(catSum))
	for cat, w := range catWeight {
		if w == 0 {
			continue
		}
		perCategory[cat] = 100 * catSum[cat] / w
	}

	return overall, perCategory, nil
}
