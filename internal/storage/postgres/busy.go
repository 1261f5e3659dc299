package postgres

import (
	"time"

	"github.com/julianstephens/nexus/internal/models"
)

func (s *Store) AddBusyInterval(interval models.BusyInterval) error {
	_, err := s.db.Exec(`
		INSERT INTO busy_intervals (id, date, start_time, end_time, kind, title, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT(id) DO UPDATE SET
			date = excluded.date, start_time = excluded.start_time,
			end_time = excluded.end_time, kind = excluded.kind, title = excluded.title`,
		interval.ID, interval.Date, interval.Start, interval.End,
		string(interval.Kind), interval.Title, time.Now().Format(time.RFC3339))
	return err
}

func (s *Store) GetBusyIntervals(date string) ([]models.BusyInterval, error) {
	rows, err := s.db.Query(`
		SELECT id, date, start_time, end_time, kind, title
		FROM busy_intervals WHERE date = $1 ORDER BY start_time, id`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var intervals []models.BusyInterval
	for rows.Next() {
		var b models.BusyInterval
		if err := rows.Scan(&b.ID, &b.Date, &b.Start, &b.End, (*string)(&b.Kind), &b.Title); err != nil {
			return nil, err
		}
		intervals = append(intervals, b)
	}
	return intervals, rows.Err()
}

func (s *Store) DeleteBusyInterval(id string) error {
	_, err := s.db.Exec(`DELETE FROM busy_intervals WHERE id = $1`, id)
	return err
}
