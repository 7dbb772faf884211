package scoring

import "github.com/coachkit/checkin-engine/internal/apperrors"

// normalized is the outcome of normalizing one answered question: either a
// dimensionless sub-score in [0,1], or a skip excluding the question from
// aggregation entirely.
type normalized struct {
	value float64
	skip  bool
}

var skipped = normalized{skip: true}

// normalizeAnswer converts one submitted answer into a sub-score according to
// the question's declared type and polarity. It assumes the template passed
// save-time validation, so ranges and option scores are present and sane.
func normalizeAnswer(q *Question, value any) (normalized, error) {
	switch q.Type {
	case TypeText:
		// Free text carries no numeric weight regardless of configuration.
		return skipped, nil

	case TypeNumber, TypeScale:
		f, ok := toFloat(value)
		if !ok {
			return normalized{}, apperrors.NewValidationErrorf(
				"question %q expects a numeric answer", q.ID)
		}
		if q.Range == nil {
			return normalized{}, apperrors.NewConfigurationErrorf(
				"question %q has no range configured", q.ID)
		}
		v := clamp((f-q.Range.Min)/(q.Range.Max-q.Range.Min), 0, 1)
		return normalized{value: v}, nil

	case TypeBoolean:
		b, ok := value.(bool)
		if !ok {
			return normalized{}, apperrors.NewValidationErrorf(
				"question %q expects a boolean answer", q.ID)
		}
		if b == q.positive() {
			return normalized{value: 1}, nil
		}
		return normalized{value: 0}, nil

	case TypeSingleChoice:
		s, ok := value.(string)
		if !ok {
			return normalized{}, apperrors.NewValidationErrorf(
				"question %q expects a single option value", q.ID)
		}
		for _, opt := range q.Options {
			if opt.Value == s {
				return normalized{value: opt.Score}, nil
			}
		}
		return normalized{}, apperrors.NewValidationErrorf(
			"question %q has no option %q", q.ID, s)

	case TypeMultiChoice:
		selected, ok := toStringSlice(value)
		if !ok {
			return normalized{}, apperrors.NewValidationErrorf(
				"question %q expects a list of option values", q.ID)
		}
		// Selecting nothing is a meaningful compliance signal, not a skip.
		if len(selected) == 0 {
			return normalized{value: 0}, nil
		}
		sum := 0.0
		for _, s := range selected {
			score, found := optionScore(q.Options, s)
			if !found {
				return normalized{}, apperrors.NewValidationErrorf(
					"question %q has no option %q", q.ID, s)
			}
			sum += score
		}
		return normalized{value: sum / float64(len(selected))}, nil

	default:
		return normalized{}, apperrors.NewConfigurationErrorf(
			"question %q has unknown type %q", q.ID, q.Type)
	}
}

func optionScore(options []Option, value string) (float64, bool) {
	for _, opt := range options {
		if opt.Value == value {
			return opt.Score, true
		}
	}
	return 0, false
}
