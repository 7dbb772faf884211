// Package types holds the HTTP request and response shapes of the scoring
// API. The engine's own types live in internal/scoring; these are the thin
// wrappers the wire adds around them.
package types

import (
	"github.com/coachkit/checkin-engine/internal/presets"
	"github.com/coachkit/checkin-engine/internal/scoring"
)

// ScoreRequest scores an inline template against a submitted answer set.
type ScoreRequest struct {
	Template *scoring.Template `json:"template" binding:"required"`
	Answers  []scoring.Answer  `json:"answers"`
}

// SubmissionRequest scores a submission against a stored template.
type SubmissionRequest struct {
	Answers   []scoring.Answer `json:"answers"`
	ClientRef string           `json:"clientRef,omitempty"`
}

// TemplateResponse is returned when a template is validated and saved.
type TemplateResponse struct {
	ID       string   `json:"id"`
	Version  int      `json:"version"`
	Warnings []string `json:"warnings,omitempty"`
}

// BandUpdateRequest switches a template to a named preset or, when Preset is
// "custom", submits (or restores) the custom band configuration. Bands are
// only read when submitting a new custom set.
type BandUpdateRequest struct {
	Preset string         `json:"preset" binding:"required"`
	Bands  []scoring.Band `json:"bands,omitempty"`
}

// BandStateResponse reports the template's band configuration after a change.
type BandStateResponse struct {
	TemplateID  string         `json:"templateId"`
	Active      string         `json:"active"`
	ActiveBands []scoring.Band `json:"activeBands"`
}

// PresetsResponse lists the available band presets.
type PresetsResponse struct {
	Version int              `json:"version"`
	Presets []presets.Preset `json:"presets"`
}
