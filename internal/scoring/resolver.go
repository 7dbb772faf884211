package scoring

import (
	"sort"
	"strings"

	"github.com/coachkit/checkin-engine/internal/apperrors"
)

// topoOrder sorts questions so that every dependency precedes its dependents.
// A cycle in the dependency graph makes the template unusable: the error is a
// ConfigurationError naming the questions involved, and nothing is evaluated.
func topoOrder(questions []flatQuestion) ([]flatQuestion, error) {
	index := make(map[string]int, len(questions))
	for i, q := range questions {
		index[q.ID] = i
	}

	// dependents[a] lists questions whose visibility hangs off question a.
	dependents := make(map[string][]int)
	indegree := make([]int, len(questions))
	for i, q := range questions {
		if q.DependsOn == nil {
			continue
		}
		dependents[q.DependsOn.QuestionID] = append(dependents[q.DependsOn.QuestionID], i)
		indegree[i]++
	}

	// Kahn's algorithm, seeded in template order for determinism.
	queue := make([]int, 0, len(questions))
	for i := range questions {
		if indegree[i] == 0 {
			queue = append(queue, i)
		}
	}

	order := make([]flatQuestion, 0, len(questions))
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		order = append(order, questions[i])
		for _, dep := range dependents[questions[i].ID] {
			indegree[dep]--
			if indegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	if len(order) != len(questions) {
		var cycle []string
		for i, q := range questions {
			if indegree[i] > 0 {
				cycle = append(cycle, q.ID)
			}
		}
		sort.Strings(cycle)
		return nil, apperrors.NewConfigurationErrorf(
			"dependency cycle involving questions: %s", strings.Join(cycle, ", "))
	}

	return order, nil
}

// resolveVisibility computes the set of questions that apply to the given
// answer set. A question with no dependency is always visible; a dependent
// question is visible only when its dependency is itself visible, was
// answered, and the answer matches the expected value. Evaluation runs in
// topological order so a visible-but-unmet dependency hides all of its
// descendants transitively.
func resolveVisibility(questions []flatQuestion, answers map[string]any) (map[string]bool, error) {
	order, err := topoOrder(questions)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]flatQuestion, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	visible := make(map[string]bool, len(questions))
	for _, q := range order {
		if q.DependsOn == nil {
			visible[q.ID] = true
			continue
		}

		dep := q.DependsOn
		if !visible[dep.QuestionID] {
			visible[q.ID] = false
			continue
		}

		value, answered := answers[dep.QuestionID]
		if !answered {
			visible[q.ID] = false
			continue
		}

		visible[q.ID] = dependencyMet(byID[dep.QuestionID].Question, value, dep.Equals)
	}

	return visible, nil
}

// dependencyMet reports whether the submitted answer for the dependency
// question satisfies the expected value. For multiChoice dependencies the
// check is "contains"; everything else is exact value equality.
func dependencyMet(depQuestion *Question, value, expected any) bool {
	if depQuestion != nil && depQuestion.Type == TypeMultiChoice {
		selected, ok := toStringSlice(value)
		if !ok {
			return false
		}
		for _, s := range selected {
			if valueEquals(s, expected) {
				return true
			}
		}
		return false
	}
	return valueEquals(value, expected)
}
