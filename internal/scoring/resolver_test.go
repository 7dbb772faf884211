package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coachkit/checkin-engine/internal/apperrors"
)

func questionsOf(t *Template) []flatQuestion {
	return t.flatten()
}

func TestTopoOrderDetectsCycles(t *testing.T) {
	tests := []struct {
		name      string
		template  *Template
		wantCycle bool
	}{
		{
			name: "no dependencies",
			template: &Template{Sections: []Section{{Category: "habits", Questions: []Question{
				{ID: "a", Type: TypeBoolean},
				{ID: "b", Type: TypeBoolean},
			}}}},
		},
		{
			name: "chain of dependencies",
			template: &Template{Sections: []Section{{Category: "habits", Questions: []Question{
				{ID: "a", Type: TypeBoolean},
				{ID: "b", Type: TypeBoolean, DependsOn: &Dependency{QuestionID: "a", Equals: true}},
				{ID: "c", Type: TypeBoolean, DependsOn: &Dependency{QuestionID: "b", Equals: true}},
			}}}},
		},
		{
			name: "two-question cycle",
			template: &Template{Sections: []Section{{Category: "habits", Questions: []Question{
				{ID: "a", Type: TypeBoolean, DependsOn: &Dependency{QuestionID: "b", Equals: true}},
				{ID: "b", Type: TypeBoolean, DependsOn: &Dependency{QuestionID: "a", Equals: true}},
			}}}},
			wantCycle: true,
		},
		{
			name: "cycle behind a valid prefix",
			template: &Template{Sections: []Section{{Category: "habits", Questions: []Question{
				{ID: "a", Type: TypeBoolean},
				{ID: "b", Type: TypeBoolean, DependsOn: &Dependency{QuestionID: "d", Equals: true}},
				{ID: "c", Type: TypeBoolean, DependsOn: &Dependency{QuestionID: "b", Equals: true}},
				{ID: "d", Type: TypeBoolean, DependsOn: &Dependency{QuestionID: "c", Equals: true}},
			}}}},
			wantCycle: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order, err := topoOrder(questionsOf(tt.template))
			if tt.wantCycle {
				assert.Error(t, err)
				assert.True(t, apperrors.IsConfiguration(err))
			} else {
				require.NoError(t, err)
				assert.Len(t, order, len(questionsOf(tt.template)))

				// Every dependency must appear before its dependent.
				pos := make(map[string]int, len(order))
				for i, q := range order {
					pos[q.ID] = i
				}
				for _, q := range order {
					if q.DependsOn != nil {
						assert.Less(t, pos[q.DependsOn.QuestionID], pos[q.ID])
					}
				}
			}
		})
	}
}

func TestResolveVisibility(t *testing.T) {
	template := &Template{Sections: []Section{{Category: "habits", Questions: []Question{
		{ID: "trained", Type: TypeBoolean},
		{ID: "sessions", Type: TypeNumber, Range: &Range{Min: 0, Max: 7},
			DependsOn: &Dependency{QuestionID: "trained", Equals: true}},
		{ID: "intensity", Type: TypeScale, Range: &Range{Min: 1, Max: 10},
			DependsOn: &Dependency{QuestionID: "sessions", Equals: 3}},
	}}}}

	tests := []struct {
		name    string
		answers map[string]any
		visible map[string]bool
	}{
		{
			name:    "root is always visible, dependents hidden without answers",
			answers: map[string]any{},
			visible: map[string]bool{"trained": true, "sessions": false, "intensity": false},
		},
		{
			name:    "unmet dependency hides dependents",
			answers: map[string]any{"trained": false},
			visible: map[string]bool{"trained": true, "sessions": false, "intensity": false},
		},
		{
			name:    "met dependency reveals the next level only",
			answers: map[string]any{"trained": true},
			visible: map[string]bool{"trained": true, "sessions": true, "intensity": false},
		},
		{
			name:    "chain fully revealed",
			answers: map[string]any{"trained": true, "sessions": float64(3)},
			visible: map[string]bool{"trained": true, "sessions": true, "intensity": true},
		},
		{
			name: "invisible dependency hides descendants even when their answer matches",
			answers: map[string]any{
				"trained":  false,
				"sessions": float64(3),
			},
			visible: map[string]bool{"trained": true, "sessions": false, "intensity": false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			visible, err := resolveVisibility(questionsOf(template), tt.answers)
			require.NoError(t, err)
			assert.Equal(t, tt.visible, visible)
		})
	}
}

func TestResolveVisibilityMultiChoiceContains(t *testing.T) {
	template := &Template{Sections: []Section{{Category: "habits", Questions: []Question{
		{ID: "supplements", Type: TypeMultiChoice, Options: []Option{
			{Value: "creatine", Score: 1}, {Value: "whey", Score: 1},
		}},
		{ID: "creatine-dose", Type: TypeNumber, Range: &Range{Min: 0, Max: 10},
			DependsOn: &Dependency{QuestionID: "supplements", Equals: "creatine"}},
	}}}}

	tests := []struct {
		name    string
		answer  any
		visible bool
	}{
		{name: "selection containing the value matches", answer: []string{"whey", "creatine"}, visible: true},
		{name: "json-decoded selection matches", answer: []any{"creatine"}, visible: true},
		{name: "selection without the value does not match", answer: []string{"whey"}, visible: false},
		{name: "empty selection does not match", answer: []string{}, visible: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			visible, err := resolveVisibility(questionsOf(template), map[string]any{"supplements": tt.answer})
			require.NoError(t, err)
			assert.Equal(t, tt.visible, visible["creatine-dose"])
		})
	}
}

func TestDependencyEqualsAcrossNumericTypes(t *testing.T) {
	// A dependency authored as an int must match the float64 a JSON decode
	// produces for the submitted answer.
	assert.True(t, valueEquals(float64(3), 3))
	assert.True(t, valueEquals(3, float64(3)))
	assert.False(t, valueEquals(float64(3), 4))
	assert.True(t, valueEquals("yes", "yes"))
	assert.False(t, valueEquals("yes", true))
}
