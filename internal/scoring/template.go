package scoring

import (
	"fmt"

	"github.com/coachkit/checkin-engine/internal/apperrors"
)

// ValidateTemplate checks a template's configuration the way the authoring
// surface must before publishing: unique question IDs, sane weights, ranges
// on numeric questions, scored options on choice questions, resolvable and
// acyclic dependencies, and a complete band partition.
//
// It returns non-fatal warnings (currently: a weight configured on a text
// question, which is ignored at score time) alongside any ConfigurationError.
// All configuration problems are collected so a coach can fix a template in
// one pass rather than one error at a time.
func ValidateTemplate(t *Template) ([]string, error) {
	var warnings []string
	problems := make(map[string]string)

	questions := t.flatten()
	byID := make(map[string]*Question, len(questions))

	for _, q := range questions {
		if q.ID == "" {
			problems["question"] = "a question is missing an id"
			continue
		}
		if _, dup := byID[q.ID]; dup {
			problems[q.ID] = "duplicate question id"
			continue
		}
		byID[q.ID] = q.Question
	}

	for _, q := range questions {
		field := fmt.Sprintf("question.%s", q.ID)

		if q.EffectiveWeight() < 0 {
			problems[field+".weight"] = fmt.Sprintf("weight must not be negative, got %v", q.EffectiveWeight())
		}

		switch q.Type {
		case TypeText:
			if q.Weight != nil && *q.Weight != 1 {
				warnings = append(warnings, fmt.Sprintf(
					"question %q: weight on a text question is ignored; text answers are never scored", q.ID))
			}
		case TypeNumber, TypeScale:
			if q.Range == nil {
				problems[field+".range"] = "number and scale questions require a range"
			} else if q.Range.Max <= q.Range.Min {
				problems[field+".range"] = fmt.Sprintf("range [%v, %v] is empty", q.Range.Min, q.Range.Max)
			}
		case TypeBoolean:
			// Polarity is optional; positive defaults to true.
		case TypeSingleChoice, TypeMultiChoice:
			if len(q.Options) == 0 {
				problems[field+".options"] = "choice questions require at least one option"
			}
			seen := make(map[string]bool, len(q.Options))
			for _, opt := range q.Options {
				if seen[opt.Value] {
					problems[fmt.Sprintf("%s.options.%s", field, opt.Value)] = "duplicate option value"
				}
				seen[opt.Value] = true
				if opt.Score < 0 || opt.Score > 1 {
					problems[fmt.Sprintf("%s.options.%s.score", field, opt.Value)] = fmt.Sprintf(
						"score must be in [0,1], got %v", opt.Score)
				}
			}
		default:
			problems[field+".type"] = fmt.Sprintf("unknown question type %q", q.Type)
		}

		if q.DependsOn != nil {
			if q.DependsOn.QuestionID == q.ID {
				problems[field+".dependsOn"] = "question depends on itself"
			} else if _, ok := byID[q.DependsOn.QuestionID]; !ok {
				problems[field+".dependsOn"] = fmt.Sprintf(
					"depends on unknown question %q", q.DependsOn.QuestionID)
			}
		}
	}

	if len(problems) == 0 {
		if _, err := topoOrder(questions); err != nil {
			problems["dependencies"] = apperrors.ToError(err).ErrBuilder.Msg
		}
	}

	if err := ValidateBands(t.Bands); err != nil {
		problems["bands"] = apperrors.ToError(err).ErrBuilder.Msg
	}

	if len(problems) > 0 {
		return warnings, apperrors.NewConfigurationError("template configuration is invalid").
			WithFieldErrors(problems)
	}

	return warnings, nil
}
