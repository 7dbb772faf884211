package scoring

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coachkit/checkin-engine/internal/apperrors"
)

func booleanTemplate() *Template {
	return &Template{
		Sections: []Section{{
			Category: "training",
			Questions: []Question{
				{ID: "trained", Type: TypeBoolean, Required: true},
			},
		}},
		Bands: []Band{
			{Name: "red", MinScore: 0, MaxScore: 50},
			{Name: "green", MinScore: 50, MaxScore: 100},
		},
	}
}

func TestComputePositiveBooleanScoresFull(t *testing.T) {
	engine := NewEngine()

	result, err := engine.Compute(booleanTemplate(), []Answer{{QuestionID: "trained", Value: true}})
	require.NoError(t, err)

	assert.Equal(t, float64(100), result.Overall)
	assert.Equal(t, "green", result.Band.Name)
	assert.Empty(t, result.UnansweredRequired)
	assert.Equal(t, map[string]float64{"training": 100}, result.PerCategory)
}

func TestComputeNegativeBooleanScoresZero(t *testing.T) {
	engine := NewEngine()

	result, err := engine.Compute(booleanTemplate(), []Answer{{QuestionID: "trained", Value: false}})
	require.NoError(t, err)

	assert.Equal(t, float64(0), result.Overall)
	assert.Equal(t, "red", result.Band.Name)
}

func TestComputeHiddenRequiredQuestionIsNeitherScoredNorReported(t *testing.T) {
	template := &Template{
		Sections: []Section{{
			Category: "training",
			Questions: []Question{
				{ID: "a", Type: TypeSingleChoice, Required: true, Options: []Option{
					{Value: "yes", Score: 1}, {Value: "no", Score: 0},
				}},
				{ID: "b", Type: TypeNumber, Required: true, Range: &Range{Min: 0, Max: 10},
					DependsOn: &Dependency{QuestionID: "a", Equals: "yes"}},
			},
		}},
		Bands: []Band{{Name: "only", MinScore: 0, MaxScore: 100}},
	}

	result, err := NewEngine().Compute(template, []Answer{{QuestionID: "a", Value: "no"}})
	require.NoError(t, err)

	// b's dependency is unmet: it is excluded from scoring and from the
	// required-question report even though it is required and unanswered.
	assert.Empty(t, result.UnansweredRequired)
	assert.Equal(t, float64(0), result.Overall)
}

func TestComputeTextOnlyTemplateIsAComputationError(t *testing.T) {
	template := &Template{
		Sections: []Section{{
			Category: "reflection",
			Questions: []Question{
				{ID: "wins", Type: TypeText},
				{ID: "struggles", Type: TypeText},
			},
		}},
		Bands: []Band{{Name: "only", MinScore: 0, MaxScore: 100}},
	}

	_, err := NewEngine().Compute(template, []Answer{
		{QuestionID: "wins", Value: "hit all my sessions"},
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsComputation(err))
}

func TestComputeMultiChoiceWeightedContribution(t *testing.T) {
	weight2 := 2.0
	template := &Template{
		Sections: []Section{{
			Category: "habits",
			Questions: []Question{
				{ID: "habits", Type: TypeMultiChoice, Weight: &weight2, Options: []Option{
					{Value: "x", Score: 0.2},
					{Value: "y", Score: 0.8},
				}},
			},
		}},
		Bands: []Band{{Name: "only", MinScore: 0, MaxScore: 100}},
	}

	result, err := NewEngine().Compute(template, []Answer{
		{QuestionID: "habits", Value: []string{"x", "y"}},
	})
	require.NoError(t, err)

	// normalized = (0.2+0.8)/2 = 0.5; with weight 2 the contribution is 1.0
	// against a total weight of 2, so the overall is 50.
	assert.InDelta(t, 50, result.Overall, 1e-9)
}

func TestComputeUnansweredRequiredIsPenalizedAndReported(t *testing.T) {
	template := &Template{
		Sections: []Section{{
			Category: "training",
			Questions: []Question{
				{ID: "trained", Type: TypeBoolean, Required: true},
				{ID: "energy", Type: TypeScale, Required: true, Range: &Range{Min: 0, Max: 10}},
			},
		}},
		Bands: []Band{
			{Name: "red", MinScore: 0, MaxScore: 50},
			{Name: "green", MinScore: 50, MaxScore: 100},
		},
	}

	result, err := NewEngine().Compute(template, []Answer{{QuestionID: "trained", Value: true}})
	require.NoError(t, err)

	assert.Equal(t, []string{"energy"}, result.UnansweredRequired)
	// trained contributes 1, energy penalized at 0: overall 50, next band.
	assert.InDelta(t, 50, result.Overall, 1e-9)
	assert.Equal(t, "green", result.Band.Name)
}

func TestComputeUnansweredOptionalIsSkipped(t *testing.T) {
	template := &Template{
		Sections: []Section{{
			Category: "training",
			Questions: []Question{
				{ID: "trained", Type: TypeBoolean, Required: true},
				{ID: "energy", Type: TypeScale, Range: &Range{Min: 0, Max: 10}},
			},
		}},
		Bands: []Band{{Name: "only", MinScore: 0, MaxScore: 100}},
	}

	result, err := NewEngine().Compute(template, []Answer{{QuestionID: "trained", Value: true}})
	require.NoError(t, err)

	assert.Empty(t, result.UnansweredRequired)
	assert.Equal(t, float64(100), result.Overall)
}

func TestComputeValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		answers []Answer
	}{
		{
			name:    "unknown question",
			answers: []Answer{{QuestionID: "ghost", Value: true}},
		},
		{
			name: "duplicate answer",
			answers: []Answer{
				{QuestionID: "trained", Value: true},
				{QuestionID: "trained", Value: false},
			},
		},
		{
			name:    "wrong value type",
			answers: []Answer{{QuestionID: "trained", Value: "yes"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEngine().Compute(booleanTemplate(), tt.answers)
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
		})
	}
}

func TestComputeValidatesAnswersToHiddenQuestions(t *testing.T) {
	template := &Template{
		Sections: []Section{{
			Category: "habits",
			Questions: []Question{
				{ID: "gate", Type: TypeBoolean},
				{ID: "choice", Type: TypeSingleChoice, Options: []Option{{Value: "a", Score: 1}},
					DependsOn: &Dependency{QuestionID: "gate", Equals: true}},
				{ID: "amount", Type: TypeNumber, Range: &Range{Min: 0, Max: 10},
					DependsOn: &Dependency{QuestionID: "gate", Equals: true}},
			},
		}},
		Bands: []Band{{Name: "only", MinScore: 0, MaxScore: 100}},
	}
	engine := NewEngine()

	// An unknown option on a question its dependency hides still rejects the
	// whole submission.
	result, err := engine.Compute(template, []Answer{
		{QuestionID: "gate", Value: false},
		{QuestionID: "choice", Value: "nonexistent-option"},
	})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, apperrors.IsValidation(err))

	// Same for a wrong-typed value.
	_, err = engine.Compute(template, []Answer{
		{QuestionID: "gate", Value: false},
		{QuestionID: "amount", Value: "plenty"},
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	// A well-formed answer to a hidden question is accepted but not scored.
	result, err = engine.Compute(template, []Answer{
		{QuestionID: "gate", Value: false},
		{QuestionID: "choice", Value: "a"},
	})
	require.NoError(t, err)
	assert.Equal(t, float64(0), result.Overall)
}

func TestComputeRejectsInvalidTemplateBeforeScoring(t *testing.T) {
	template := booleanTemplate()
	template.Bands = []Band{{Name: "partial", MinScore: 0, MaxScore: 60}}

	_, err := NewEngine().Compute(template, []Answer{{QuestionID: "trained", Value: true}})
	require.Error(t, err)
	assert.True(t, apperrors.IsConfiguration(err))
}

func TestComputeCycleNeverProducesAResult(t *testing.T) {
	template := &Template{
		Sections: []Section{{
			Category: "training",
			Questions: []Question{
				{ID: "a", Type: TypeBoolean, DependsOn: &Dependency{QuestionID: "b", Equals: true}},
				{ID: "b", Type: TypeBoolean, DependsOn: &Dependency{QuestionID: "a", Equals: true}},
			},
		}},
		Bands: []Band{{Name: "only", MinScore: 0, MaxScore: 100}},
	}

	result, err := NewEngine().Compute(template, nil)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, apperrors.IsConfiguration(err))
}

func TestComputeIsDeterministic(t *testing.T) {
	template := &Template{
		Sections: []Section{
			{Category: "training", Questions: []Question{
				{ID: "trained", Type: TypeBoolean, Required: true},
				{ID: "sessions", Type: TypeNumber, Range: &Range{Min: 0, Max: 7},
					DependsOn: &Dependency{QuestionID: "trained", Equals: true}},
			}},
			{Category: "nutrition", Questions: []Question{
				{ID: "meals", Type: TypeSingleChoice, Options: []Option{
					{Value: "all", Score: 1}, {Value: "most", Score: 0.7}, {Value: "few", Score: 0.2},
				}},
			}},
		},
		Bands: threeBands(),
	}
	answers := []Answer{
		{QuestionID: "trained", Value: true},
		{QuestionID: "sessions", Value: float64(5)},
		{QuestionID: "meals", Value: "most"},
	}

	engine := NewEngine()
	first, err := engine.Compute(template, answers)
	require.NoError(t, err)
	second, err := engine.Compute(template, answers)
	require.NoError(t, err)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, firstJSON, secondJSON)
}

func TestComputeMonotonicity(t *testing.T) {
	template := &Template{
		Sections: []Section{{
			Category: "training",
			Questions: []Question{
				{ID: "sessions", Type: TypeNumber, Range: &Range{Min: 0, Max: 10}},
				{ID: "energy", Type: TypeScale, Range: &Range{Min: 0, Max: 10}},
			},
		}},
		Bands: []Band{{Name: "only", MinScore: 0, MaxScore: 100}},
	}

	engine := NewEngine()
	previous := -1.0
	for v := 0; v <= 10; v++ {
		result, err := engine.Compute(template, []Answer{
			{QuestionID: "sessions", Value: float64(v)},
			{QuestionID: "energy", Value: float64(4)},
		})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, result.Overall, previous,
			"raising a single answer from %v must never lower the overall", v-1)
		previous = result.Overall
	}
}

func TestComputeConcurrentUse(t *testing.T) {
	engine := NewEngine()
	template := booleanTemplate()

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 100; j++ {
				result, err := engine.Compute(template, []Answer{{QuestionID: "trained", Value: true}})
				if assert.NoError(t, err) {
					assert.Equal(t, float64(100), result.Overall)
				}
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
