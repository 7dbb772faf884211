package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/coachkit/checkin-engine/internal/scoring"
)

// ScoreRecord is one computed check-in result as kept in the score log.
// Records are reporting reads only: reporting consumers treat them as opaque
// computed values and never recompute them independently.
type ScoreRecord struct {
	ID                 string             `json:"id"`
	TemplateID         string             `json:"template_id"`
	TemplateVersion    int                `json:"template_version"`
	ClientRef          string             `json:"client_ref,omitempty"`
	Overall            float64            `json:"overall"`
	BandName           string             `json:"band_name"`
	PerCategory        map[string]float64 `json:"per_category"`
	UnansweredRequired []string           `json:"unanswered_required"`
	CreatedAt          time.Time          `json:"created_at"`
}

// InsertScore appends a computed result to the score log.
func (s *Store) InsertScore(templateID string, templateVersion int, clientRef string, result *scoring.ScoreResult) (*ScoreRecord, error) {
	perCategory, err := json.Marshal(result.PerCategory)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal per-category scores: %w", err)
	}
	unanswered, err := json.Marshal(result.UnansweredRequired)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal unanswered list: %w", err)
	}

	record := &ScoreRecord{
		ID:                 uuid.New().String(),
		TemplateID:         templateID,
		TemplateVersion:    templateVersion,
		ClientRef:          clientRef,
		Overall:            result.Overall,
		BandName:           result.Band.Name,
		PerCategory:        result.PerCategory,
		UnansweredRequired: result.UnansweredRequired,
		CreatedAt:          time.Now().UTC(),
	}

	stmt, err := s.stmt("insert_score")
	if err != nil {
		return nil, err
	}
	if _, err := stmt.Exec(
		record.ID, record.TemplateID, record.TemplateVersion, record.ClientRef,
		record.Overall, record.BandName, string(perCategory), string(unanswered),
		record.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to insert score: %w", err)
	}

	return record, nil
}

// ListScores returns the most recent computed results for a template.
func (s *Store) ListScores(templateID string, limit int) ([]ScoreRecord, error) {
	stmt, err := s.stmt("list_scores")
	if err != nil {
		return nil, err
	}

	rows, err := stmt.Query(templateID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list scores: %w", err)
	}
	defer rows.Close()

	records := []ScoreRecord{}
	for rows.Next() {
		var r ScoreRecord
		var perCategory, unanswered string
		if err := rows.Scan(
			&r.ID, &r.TemplateID, &r.TemplateVersion, &r.ClientRef,
			&r.Overall, &r.BandName, &perCategory, &unanswered, &r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan score row: %w", err)
		}
		if err := json.Unmarshal([]byte(perCategory), &r.PerCategory); err != nil {
			return nil, fmt.Errorf("failed to unmarshal per-category scores: %w", err)
		}
		if err := json.Unmarshal([]byte(unanswered), &r.UnansweredRequired); err != nil {
			return nil, fmt.Errorf("failed to unmarshal unanswered list: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
