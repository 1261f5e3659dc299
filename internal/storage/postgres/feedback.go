package postgres

import (
	"database/sql"
	"errors"
	"time"

	"github.com/julianstephens/nexus/internal/models"
)

var ErrPatternNotFound = errors.New("no learned pattern found")

func (s *Store) AddCompletion(record models.CompletionRecord) error {
	_, err := s.db.Exec(`
		INSERT INTO completions (id, task_id, date, planned_start, planned_end,
			actual_start, actual_end, energy, focus, difficulty, satisfaction,
			percent_complete, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT(id) DO NOTHING`,
		record.ID, record.TaskID, record.Date, record.PlannedStart, record.PlannedEnd,
		record.ActualStart, record.ActualEnd, record.Energy, record.Focus, record.Difficulty,
		record.Satisfaction, record.PercentComplete, record.CreatedAt.Format(time.RFC3339))
	return err
}

const completionColumns = `id, task_id, date, planned_start, planned_end,
	actual_start, actual_end, energy, focus, difficulty, satisfaction, percent_complete, created_at`

func (s *Store) GetCompletionsForTask(taskID string, limit int) ([]models.CompletionRecord, error) {
	return s.queryCompletions(`SELECT `+completionColumns+` FROM completions
		WHERE task_id = $1 ORDER BY created_at DESC LIMIT $2`, taskID, limit)
}

func (s *Store) GetAllCompletions() ([]models.CompletionRecord, error) {
	return s.queryCompletions(`SELECT ` + completionColumns + ` FROM completions ORDER BY created_at`)
}

func (s *Store) queryCompletions(query string, args ...interface{}) ([]models.CompletionRecord, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.CompletionRecord
	for rows.Next() {
		var r models.CompletionRecord
		var createdAt string
		if err := rows.Scan(&r.ID, &r.TaskID, &r.Date, &r.PlannedStart, &r.PlannedEnd,
			&r.ActualStart, &r.ActualEnd, &r.Energy, &r.Focus, &r.Difficulty,
			&r.Satisfaction, &r.PercentComplete, &createdAt); err != nil {
			return nil, err
		}
		if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
			r.CreatedAt = ts
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *Store) SavePattern(pattern models.LearnedPattern) error {
	_, err := s.db.Exec(`
		INSERT INTO patterns (pattern_type, name, payload, confidence, sample_size, active, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT(pattern_type, name) DO UPDATE SET
			payload = excluded.payload, confidence = excluded.confidence,
			sample_size = excluded.sample_size, active = excluded.active,
			updated_at = excluded.updated_at`,
		pattern.Type, pattern.Name, string(pattern.Payload), pattern.Confidence,
		pattern.SampleSize, pattern.Active, pattern.UpdatedAt.Format(time.RFC3339))
	return err
}

func (s *Store) GetPattern(patternType, name string) (models.LearnedPattern, error) {
	row := s.db.QueryRow(`
		SELECT pattern_type, name, payload, confidence, sample_size, active, updated_at
		FROM patterns WHERE pattern_type = $1 AND name = $2`, patternType, name)

	var p models.LearnedPattern
	var payload, updatedAt string
	err := row.Scan(&p.Type, &p.Name, &payload, &p.Confidence, &p.SampleSize, &p.Active, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.LearnedPattern{}, ErrPatternNotFound
		}
		return models.LearnedPattern{}, err
	}
	p.Payload = []byte(payload)
	if ts, err := time.Parse(time.RFC3339, updatedAt); err == nil {
		p.UpdatedAt = ts
	}
	return p, nil
}
