package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/coachkit/checkin-engine/internal/authoring"
	"github.com/coachkit/checkin-engine/internal/scoring"
)

// ErrNotFound is returned when a template or band state does not exist.
var ErrNotFound = errors.New("not found")

// SaveTemplate persists a template, assigning an ID on first save and
// bumping the version on every save. The stored body is the JSON shape the
// engine consumes; nothing engine-specific leaks into the schema.
func (s *Store) SaveTemplate(tpl *scoring.Template) (*scoring.Template, error) {
	now := time.Now().UTC()

	if tpl.ID == "" {
		tpl.ID = uuid.New().String()
		tpl.Version = 1
	} else {
		version, err := s.currentVersion(tpl.ID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		tpl.Version = version + 1
	}

	body, err := json.Marshal(tpl)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal template: %w", err)
	}

	stmt, err := s.stmt("upsert_template")
	if err != nil {
		return nil, err
	}
	if _, err := stmt.Exec(tpl.ID, tpl.Name, tpl.Version, string(body), now, now); err != nil {
		return nil, fmt.Errorf("failed to save template: %w", err)
	}

	return tpl, nil
}

// GetTemplate loads a template by ID.
func (s *Store) GetTemplate(id string) (*scoring.Template, error) {
	stmt, err := s.stmt("get_template")
	if err != nil {
		return nil, err
	}

	var body string
	var version int
	if err := stmt.QueryRow(id).Scan(&body, &version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load template: %w", err)
	}

	var tpl scoring.Template
	if err := json.Unmarshal([]byte(body), &tpl); err != nil {
		return nil, fmt.Errorf("failed to unmarshal template: %w", err)
	}
	tpl.ID = id
	tpl.Version = version
	return &tpl, nil
}

// UpdateTemplateBands replaces a stored template's active bands, bumping its
// version so previously computed results remain attributable.
func (s *Store) UpdateTemplateBands(templateID string, bands []scoring.Band) error {
	tpl, err := s.GetTemplate(templateID)
	if err != nil {
		return err
	}
	tpl.Bands = bands
	_, err = s.SaveTemplate(tpl)
	return err
}

// GetBandState loads the band authoring state for a template, or nil when
// none has been saved yet.
func (s *Store) GetBandState(templateID string) (*authoring.BandState, error) {
	stmt, err := s.stmt("get_band_state")
	if err != nil {
		return nil, err
	}

	var active string
	var customBands sql.NullString
	var updatedAt time.Time
	if err := stmt.QueryRow(templateID).Scan(&active, &customBands, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load band state: %w", err)
	}

	state := &authoring.BandState{
		TemplateID: templateID,
		Active:     active,
		UpdatedAt:  updatedAt,
	}
	if customBands.Valid && customBands.String != "" {
		if err := json.Unmarshal([]byte(customBands.String), &state.CustomBands); err != nil {
			return nil, fmt.Errorf("failed to unmarshal custom bands: %w", err)
		}
	}
	return state, nil
}

// SaveBandState persists band authoring state with last-write-wins semantics.
func (s *Store) SaveBandState(state *authoring.BandState) error {
	var customBands any
	if len(state.CustomBands) > 0 {
		body, err := json.Marshal(state.CustomBands)
		if err != nil {
			return fmt.Errorf("failed to marshal custom bands: %w", err)
		}
		customBands = string(body)
	}

	stmt, err := s.stmt("upsert_band_state")
	if err != nil {
		return err
	}
	if _, err := stmt.Exec(state.TemplateID, state.Active, customBands, state.UpdatedAt); err != nil {
		return fmt.Errorf("failed to save band state: %w", err)
	}
	return nil
}

func (s *Store) currentVersion(id string) (int, error) {
	stmt, err := s.stmt("get_template_version")
	if err != nil {
		return 0, err
	}
	var version int
	if err := stmt.QueryRow(id).Scan(&version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("failed to load template version: %w", err)
	}
	return version, nil
}
