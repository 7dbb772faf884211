// Package authoring manages the band-configuration state of a template being
// edited: which preset (or custom set) is active, and the most recently
// edited custom bands. Keeping the custom snapshot explicit means switching
// to a preset never silently discards authored work.
package authoring

import (
	"time"

	"github.com/coachkit/checkin-engine/internal/apperrors"
	"github.com/coachkit/checkin-engine/internal/presets"
	"github.com/coachkit/checkin-engine/internal/scoring"
)

// SelectionCustom is the active-selection value for a coach-authored band set.
const SelectionCustom = "custom"

// BandState is the persisted band configuration of one template. Editing is
// single-user per template, so last-write-wins semantics are sufficient.
type BandState struct {
	TemplateID  string         `json:"template_id"`
	Active      string         `json:"active"` // preset name or SelectionCustom
	CustomBands []scoring.Band `json:"custom_bands,omitempty"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Store persists band state. Implemented by the sqlite store.
type Store interface {
	GetBandState(templateID string) (*BandState, error)
	SaveBandState(state *BandState) error
	UpdateTemplateBands(templateID string, bands []scoring.Band) error
}

// Service applies band-configuration changes for the template editor.
type Service struct {
	store Store
}

// NewService creates a band-configuration service over the given store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// SelectPreset makes the named preset the template's active band set. The
// last custom snapshot is retained untouched.
func (s *Service) SelectPreset(templateID, name string) (*BandState, error) {
	preset, err := presets.Lookup(name)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	state, err := s.loadOrInit(templateID)
	if err != nil {
		return nil, err
	}

	state.Active = preset.Name
	state.UpdatedAt = time.Now().UTC()
	if err := s.apply(state, preset.Bands); err != nil {
		return nil, err
	}
	return state, nil
}

// SelectCustom restores the most recently edited custom band set as the
// template's active bands.
func (s *Service) SelectCustom(templateID string) (*BandState, error) {
	state, err := s.loadOrInit(templateID)
	if err != nil {
		return nil, err
	}
	if len(state.CustomBands) == 0 {
		return nil, apperrors.NewValidationError("no custom band configuration has been saved for this template")
	}

	state.Active = SelectionCustom
	state.UpdatedAt = time.Now().UTC()
	if err := s.apply(state, state.CustomBands); err != nil {
		return nil, err
	}
	return state, nil
}

// UpdateCustom validates and stores a new custom band set, makes it active,
// and records it as the snapshot restored by SelectCustom.
func (s *Service) UpdateCustom(templateID string, bands []scoring.Band) (*BandState, error) {
	if err := scoring.ValidateBands(bands); err != nil {
		return nil, err
	}

	state, err := s.loadOrInit(templateID)
	if err != nil {
		return nil, err
	}

	state.Active = SelectionCustom
	state.CustomBands = bands
	state.UpdatedAt = time.Now().UTC()
	if err := s.apply(state, bands); err != nil {
		return nil, err
	}
	return state, nil
}

// ActiveBands resolves the band set currently in effect for a template.
func (s *Service) ActiveBands(templateID string) ([]scoring.Band, error) {
	state, err := s.store.GetBandState(templateID)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load band state", err)
	}
	if state == nil {
		return nil, nil
	}
	if state.Active == SelectionCustom {
		return state.CustomBands, nil
	}
	preset, err := presets.Lookup(state.Active)
	if err != nil {
		return nil, apperrors.NewInternalError("band state references a removed preset", err)
	}
	return preset.Bands, nil
}

func (s *Service) loadOrInit(templateID string) (*BandState, error) {
	state, err := s.store.GetBandState(templateID)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load band state", err)
	}
	if state == nil {
		state = &BandState{TemplateID: templateID}
	}
	return state, nil
}

// apply persists the state and replaces the template's active bands.
func (s *Service) apply(state *BandState, bands []scoring.Band) error {
	if err := s.store.SaveBandState(state); err != nil {
		return apperrors.NewInternalError("failed to save band state", err)
	}
	if err := s.store.UpdateTemplateBands(state.TemplateID, bands); err != nil {
		return apperrors.NewInternalError("failed to update template bands", err)
	}
	return nil
}
