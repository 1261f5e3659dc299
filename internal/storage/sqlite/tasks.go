package sqlite

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/julianstephens/nexus/internal/models"
)

const taskColumns = `id, goal_id, name, category, complexity, estimated_min, energy,
	min_block_min, max_block_min, hard_due, soft_due, depends_on, splittable, context,
	recurrence_type, recurrence_interval, recurrence_weekdays, status, created_at, deleted_at`

func (s *Store) AddTask(task models.Task) error {
	return s.UpdateTask(task)
}

func (s *Store) UpdateTask(task models.Task) error {
	var weekdays string
	if len(task.Recurrence.WeekdayMask) > 0 {
		raw, err := json.Marshal(task.Recurrence.WeekdayMask)
		if err != nil {
			return err
		}
		weekdays = string(raw)
	}
	var deletedAt interface{}
	if task.DeletedAt != nil {
		deletedAt = task.DeletedAt.Format(time.RFC3339)
	}

	_, err := s.db.Exec(`
		INSERT INTO tasks (id, goal_id, name, category, complexity, estimated_min, energy,
			min_block_min, max_block_min, hard_due, soft_due, depends_on, splittable, context,
			recurrence_type, recurrence_interval, recurrence_weekdays, status, created_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			goal_id = excluded.goal_id, name = excluded.name, category = excluded.category,
			complexity = excluded.complexity, estimated_min = excluded.estimated_min,
			energy = excluded.energy, min_block_min = excluded.min_block_min,
			max_block_min = excluded.max_block_min, hard_due = excluded.hard_due,
			soft_due = excluded.soft_due, depends_on = excluded.depends_on,
			splittable = excluded.splittable, context = excluded.context,
			recurrence_type = excluded.recurrence_type, recurrence_interval = excluded.recurrence_interval,
			recurrence_weekdays = excluded.recurrence_weekdays, status = excluded.status,
			deleted_at = excluded.deleted_at`,
		task.ID, task.GoalID, task.Name, task.Category, task.Complexity, task.EstimatedMin,
		string(task.Energy), task.MinBlockMin, task.MaxBlockMin, task.HardDue, task.SoftDue,
		task.DependsOn, task.Splittable, string(task.Context), string(task.Recurrence.Type),
		task.Recurrence.IntervalDays, weekdays, string(task.Status),
		task.CreatedAt.Format(time.RFC3339), deletedAt)
	return err
}

func scanTask(row interface{ Scan(...interface{}) error }) (models.Task, error) {
	var t models.Task
	var goalID, category, energy, hardDue, softDue, dependsOn, context sql.NullString
	var recType, recWeekdays, deletedAt sql.NullString
	var createdAt string

	err := row.Scan(&t.ID, &goalID, &t.Name, &category, &t.Complexity, &t.EstimatedMin, &energy,
		&t.MinBlockMin, &t.MaxBlockMin, &hardDue, &softDue, &dependsOn, &t.Splittable, &context,
		&recType, &t.Recurrence.IntervalDays, &recWeekdays, (*string)(&t.Status), &createdAt, &deletedAt)
	if err != nil {
		return models.Task{}, err
	}

	t.GoalID = goalID.String
	t.Category = category.String
	t.Energy = models.EnergyLevel(energy.String)
	t.HardDue = hardDue.String
	t.SoftDue = softDue.String
	t.DependsOn = dependsOn.String
	t.Context = models.ContextTag(context.String)
	t.Recurrence.Type = models.RecurrenceType(recType.String)

	if recWeekdays.Valid && recWeekdays.String != "" {
		var weekdays []time.Weekday
		if err := json.Unmarshal([]byte(recWeekdays.String), &weekdays); err == nil {
			t.Recurrence.WeekdayMask = weekdays
		}
	}
	if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
		t.CreatedAt = ts
	}
	if deletedAt.Valid {
		if ts, err := time.Parse(time.RFC3339, deletedAt.String); err == nil {
			t.DeletedAt = &ts
		}
	}
	return t, nil
}

func (s *Store) GetTask(id string) (models.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE id = ? AND deleted_at IS NULL`, id)
	return scanTask(row)
}

func (s *Store) GetAllTasks() ([]models.Task, error) {
	return s.queryTasks(`SELECT ` + taskColumns + ` FROM tasks WHERE deleted_at IS NULL ORDER BY created_at`)
}

func (s *Store) GetTasksForGoal(goalID string) ([]models.Task, error) {
	return s.queryTasks(`SELECT `+taskColumns+` FROM tasks WHERE goal_id = ? AND deleted_at IS NULL ORDER BY created_at`, goalID)
}

func (s *Store) queryTasks(query string, args ...interface{}) ([]models.Task, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *Store) DeleteTask(id string) error {
	_, err := s.db.Exec(`UPDATE tasks SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		time.Now().Format(time.RFC3339), id)
	return err
}

func (s *Store) RestoreTask(id string) error {
	_, err := s.db.Exec(`UPDATE tasks SET deleted_at = NULL WHERE id = ?`, id)
	return err
}
