package postgres

import (
	"database/sql"
	"time"

	"github.com/julianstephens/nexus/internal/models"
)

func (s *Store) AddGoal(goal models.Goal) error {
	return s.UpdateGoal(goal)
}

func (s *Store) UpdateGoal(goal models.Goal) error {
	var deletedAt interface{}
	if goal.DeletedAt != nil {
		deletedAt = goal.DeletedAt.Format(time.RFC3339)
	}
	_, err := s.db.Exec(`
		INSERT INTO goals (id, title, category, priority, deadline, parent_id, target_share, created_at, deleted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title, category = excluded.category, priority = excluded.priority,
			deadline = excluded.deadline, parent_id = excluded.parent_id,
			target_share = excluded.target_share, deleted_at = excluded.deleted_at`,
		goal.ID, goal.Title, goal.Category, goal.Priority, goal.Deadline, goal.ParentID,
		goal.TargetShare, goal.CreatedAt.Format(time.RFC3339), deletedAt)
	return err
}

func scanGoal(row interface{ Scan(...interface{}) error }) (models.Goal, error) {
	var g models.Goal
	var createdAt string
	var category, deadline, parentID, deletedAt sql.NullString

	err := row.Scan(&g.ID, &g.Title, &category, &g.Priority, &deadline, &parentID, &g.TargetShare, &createdAt, &deletedAt)
	if err != nil {
		return models.Goal{}, err
	}

	g.Category = category.String
	g.Deadline = deadline.String
	g.ParentID = parentID.String
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		g.CreatedAt = t
	}
	if deletedAt.Valid {
		if t, err := time.Parse(time.RFC3339, deletedAt.String); err == nil {
			g.DeletedAt = &t
		}
	}
	return g, nil
}

const goalColumns = `id, title, category, priority, deadline, parent_id, target_share, created_at, deleted_at`

func (s *Store) GetGoal(id string) (models.Goal, error) {
	row := s.db.QueryRow(`SELECT `+goalColumns+` FROM goals WHERE id = $1 AND deleted_at IS NULL`, id)
	return scanGoal(row)
}

func (s *Store) GetAllGoals() ([]models.Goal, error) {
	rows, err := s.db.Query(`SELECT ` + goalColumns + ` FROM goals WHERE deleted_at IS NULL ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals []models.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// DeleteGoal soft-deletes the goal and cascades a soft-delete to its tasks.
func (s *Store) DeleteGoal(id string) error {
	now := time.Now().Format(time.RFC3339)
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(`UPDATE goals SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL`, now, id); err != nil {
		tx.Rollback()
		return err
	}
	if _, err := tx.Exec(`UPDATE tasks SET deleted_at = $1 WHERE goal_id = $2 AND deleted_at IS NULL`, now, id); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
