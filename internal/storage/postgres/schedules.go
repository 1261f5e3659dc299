package postgres

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/julianstephens/nexus/internal/models"
)

var ErrScheduleNotFound = errors.New("no schedule found for date")

// SaveSchedule persists the schedule as a new revision for its date.
func (s *Store) SaveSchedule(schedule models.DailySchedule) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var revision int
	if err := tx.QueryRow(`SELECT COALESCE(MAX(revision), 0) + 1 FROM schedules WHERE date = $1`,
		schedule.Date).Scan(&revision); err != nil {
		return err
	}
	schedule.Revision = revision

	payload, err := json.Marshal(schedule)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT INTO schedules (date, revision, payload, created_at) VALUES ($1, $2, $3, $4)`,
		schedule.Date, revision, string(payload), time.Now().Format(time.RFC3339)); err != nil {
		return err
	}
	return tx.Commit()
}

// GetSchedule returns the latest revision for the date.
func (s *Store) GetSchedule(date string) (models.DailySchedule, error) {
	row := s.db.QueryRow(`
		SELECT payload FROM schedules WHERE date = $1
		ORDER BY revision DESC LIMIT 1`, date)
	return scanSchedule(row)
}

func (s *Store) GetScheduleRevision(date string, revision int) (models.DailySchedule, error) {
	row := s.db.QueryRow(`SELECT payload FROM schedules WHERE date = $1 AND revision = $2`, date, revision)
	return scanSchedule(row)
}

func scanSchedule(row *sql.Row) (models.DailySchedule, error) {
	var payload string
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.DailySchedule{}, ErrScheduleNotFound
		}
		return models.DailySchedule{}, err
	}
	var schedule models.DailySchedule
	if err := json.Unmarshal([]byte(payload), &schedule); err != nil {
		return models.DailySchedule{}, err
	}
	return schedule, nil
}
