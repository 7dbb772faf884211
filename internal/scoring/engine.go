package scoring

import (
	"github.com/coachkit/checkin-engine/internal/apperrors"
)

// Engine is the public entry point for scoring a check-in submission. It is
// a pure function of its inputs: it holds no mutable state between calls and
// is safe for concurrent use across any number of simultaneous submissions.
type Engine struct{}

// NewEngine creates a scoring engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Compute scores one submitted answer set against a template. It fails fast:
// any configuration, validation, or computation failure aborts the whole
// computation and no partial result is produced.
func (e *Engine) Compute(tpl *Template, answers []Answer) (*ScoreResult, error) {
	if _, err := ValidateTemplate(tpl); err != nil {
		return nil, err
	}

	questions := tpl.flatten()
	byID := make(map[string]*Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q.Question
	}

	answered, err := indexAnswers(byID, answers)
	if err != nil {
		return nil, err
	}

	visible, err := resolveVisibility(questions, answered)
	if err != nil {
		return nil, err
	}

	var scores []questionScore
	unanswered := []string{}

	for _, q := range questions {
		value, ok := answered[q.ID]
		if ok {
			// Every submitted answer is validated against its question,
			// hidden or not; only visible ones contribute to the score.
			n, err := normalizeAnswer(q.Question, value)
			if err != nil {
				return nil, err
			}
			if !visible[q.ID] || n.skip {
				continue
			}
			scores = append(scores, questionScore{
				id:       q.ID,
				category: q.category,
				value:    n.value,
				weight:   q.EffectiveWeight(),
			})
			continue
		}

		if visible[q.ID] && q.Required {
			unanswered = append(unanswered, q.ID)
			if q.Type != TypeText {
				// Non-response to a visible required question is
				// penalized, not skipped.
				scores = append(scores, questionScore{
					id:       q.ID,
					category: q.category,
					value:    0,
					weight:   q.EffectiveWeight(),
				})
			}
		}
	}

	overall, perCategory, err := aggregate(scores)
	if err != nil {
		return nil, err
	}

	return &ScoreResult{
		Overall:            overall,
		PerCategory:        perCategory,
		Band:               classify(overall, tpl.Bands),
		UnansweredRequired: unanswered,
	}, nil
}

// indexAnswers maps answers by question ID, rejecting submissions that
// reference unknown questions or answer the same question twice.
func indexAnswers(byID map[string]*Question, answers []Answer) (map[string]any, error) {
	answered := make(map[string]any, len(answers))
	for _, a := range answers {
		if _, ok := byID[a.QuestionID]; !ok {
			return nil, apperrors.NewValidationErrorf(
				"answer references unknown question %q", a.QuestionID)
		}
		if _, dup := answered[a.QuestionID]; dup {
			return nil, apperrors.NewValidationErrorf(
				"question %q was answered more than once", a.QuestionID)
		}
		answered[a.QuestionID] = a.Value
	}
	return answered, nil
}
