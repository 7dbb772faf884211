package scoring

// QuestionType identifies how a question's answer is captured and normalized.
type QuestionType string

const (
	TypeText         QuestionType = "text"
	TypeNumber       QuestionType = "number"
	TypeBoolean      QuestionType = "boolean"
	TypeScale        QuestionType = "scale"
	TypeSingleChoice QuestionType = "singleChoice"
	TypeMultiChoice  QuestionType = "multiChoice"
)

// Option is one selectable choice with its declared score contribution.
// Every option carries its own score; nothing is inferred from the label.
type Option struct {
	Value string  `json:"value"`
	Score float64 `json:"score"`
}

// Range bounds a number or scale question. Answers are mapped linearly
// from [Min, Max] onto [0, 1] and clamped outside it.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Polarity declares which boolean value counts as the desirable answer.
type Polarity struct {
	PositiveValue bool `json:"positiveValue"`
}

// Dependency hides a question until another question in the same template
// was answered with the expected value.
type Dependency struct {
	QuestionID string `json:"questionId"`
	Equals     any    `json:"equals"`
}

// Question is a single prompt inside a template section.
type Question struct {
	ID        string       `json:"id"`
	Type      QuestionType `json:"type"`
	Prompt    string       `json:"prompt,omitempty"`
	Required  bool         `json:"required"`
	Weight    *float64     `json:"weight,omitempty"`
	Range     *Range       `json:"range,omitempty"`
	Options   []Option     `json:"options,omitempty"`
	Polarity  *Polarity    `json:"polarity,omitempty"`
	DependsOn *Dependency  `json:"dependsOn,omitempty"`
}

// EffectiveWeight returns the author-assigned weight, defaulting to 1
// when none was set.
func (q *Question) EffectiveWeight() float64 {
	if q.Weight == nil {
		return 1
	}
	return *q.Weight
}

// positive returns the boolean value that scores 1.0, defaulting to true.
func (q *Question) positive() bool {
	if q.Polarity == nil {
		return true
	}
	return q.Polarity.PositiveValue
}

// Section is an ordered group of questions sharing a category label.
// Per-category sub-scores are keyed by Category.
type Section struct {
	Title     string     `json:"title,omitempty"`
	Category  string     `json:"category"`
	Questions []Question `json:"questions"`
}

// Band is a named score range with coach-authored feedback. Ranges are
// half-open [MinScore, MaxScore) except the top band, which includes 100.
type Band struct {
	Name     string  `json:"name"`
	Label    string  `json:"label,omitempty"`
	Color    string  `json:"color,omitempty"`
	MinScore float64 `json:"minScore"`
	MaxScore float64 `json:"maxScore"`
	Feedback string  `json:"feedback,omitempty"`
}

// Template is a coach-authored check-in form: ordered sections of questions
// plus the band partition used to classify the overall score.
type Template struct {
	ID       string    `json:"id,omitempty"`
	Name     string    `json:"name,omitempty"`
	Version  int       `json:"version,omitempty"`
	Sections []Section `json:"sections"`
	Bands    []Band    `json:"bands"`
}

// flatQuestion pairs a question with the category of its section.
type flatQuestion struct {
	*Question
	category string
}

// flatten returns all questions in template order with their categories.
func (t *Template) flatten() []flatQuestion {
	var out []flatQuestion
	for si := range t.Sections {
		sec := &t.Sections[si]
		for qi := range sec.Questions {
			out = append(out, flatQuestion{Question: &sec.Questions[qi], category: sec.Category})
		}
	}
	return out
}

// Answer is one submitted value for one question. Answers are immutable
// once submitted; a check-in carries at most one answer per question.
type Answer struct {
	QuestionID string `json:"questionId"`
	Value      any    `json:"value"`
}

// ScoreResult is the derived outcome of scoring one submission. It is never
// a source of truth: it must be recomputable byte-for-byte from the template
// version and the answers.
type ScoreResult struct {
	Overall            float64            `json:"overall"`
	PerCategory        map[string]float64 `json:"perCategory"`
	Band               Band               `json:"band"`
	UnansweredRequired []string           `json:"unansweredRequired"`
}
