package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/taskhubapp/taskhub-server/internal/domain"
	"github.com/taskhubapp/taskhub-server/internal/errors"
	"github.com/taskhubapp/taskhub-server/internal/scope"
)

// taskColumns is the ordered list of columns selected in task queries.
// Must match the scan order in scanTask.
const taskColumns = `tasks.id, tasks.user_id, tasks.status, tasks.title,
	tasks.description, tasks.visibility, tasks.created_at, tasks.updated_at`

// scanTask scans a sql.Row (or sql.Rows via its Scan method) into a domain.Task.
// Tags are not loaded here; use loadTaskTags.
func scanTask(scanner interface{ Scan(dest ...any) error }) (*domain.Task, error) {
	var t domain.Task

	var (
		status      string
		description sql.NullString
		visibility  string
		createdAt   string
		updatedAt   string
	)

	err := scanner.Scan(
		&t.ID,
		&t.UserID,
		&status,
		&t.Title,
		&description,
		&visibility,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Status = domain.TaskStatus(status)
	t.Visibility = domain.TaskVisibility(visibility)
	if description.Valid {
		t.Description = description.String
	}

	t.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	t.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &t, nil
}

// GetTask retrieves a task by ID through the caller's visibility scope.
// A task outside the scope and a task that does not exist are both
// errors.ErrNotFound; callers cannot distinguish the two.
func (s *Store) GetTask(ctx context.Context, caller *domain.User, id string) (*domain.Task, error) {
	sc := scope.Tasks(caller)
	args := append([]any{id}, sc.Args...)

	row := s.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE tasks.id = ? AND `+sc.SQL, args...)

	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := s.loadTaskTags(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// ListTasks returns the tasks visible to the caller, narrowed by the filter,
// in creation order.
func (s *Store) ListTasks(ctx context.Context, caller *domain.User, filter scope.TaskFilter) ([]*domain.Task, error) {
	where := scope.And(append([]scope.Clause{scope.Tasks(caller)}, filter.Clauses()...)...)

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE `+where.SQL+` ORDER BY tasks.created_at ASC`,
		where.Args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []*domain.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, t := range tasks {
		if err := s.loadTaskTags(ctx, t); err != nil {
			return nil, err
		}
	}

	return tasks, nil
}

// CreateTask inserts a new task and, when tagNames is non-empty, establishes
// the initial tag associations. Row insert and association writes commit
// atomically; a reader never observes the task with a partial tag set.
func (s *Store) CreateTask(ctx context.Context, task *domain.Task, tagNames []string) error {
	if err := task.Validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO tasks (id, user_id, status, title, description, visibility, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID,
		task.UserID,
		string(task.Status),
		task.Title,
		nullString(task.Description),
		string(task.Visibility),
		formatTime(task.CreatedAt),
		formatTime(task.UpdatedAt),
	)
	if err != nil {
		return err
	}

	if len(tagNames) > 0 {
		if _, err := s.syncTaskTags(ctx, tx, task.ID, tagNames); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return s.loadTaskTags(ctx, task)
}

// UpdateTask persists the task's scalar attributes and, when tagNames is
// non-nil, replaces the tag association with exactly that set (an empty
// list detaches everything; nil leaves tags untouched). If the sync changed
// the association, updated_at is refreshed even when no scalar column
// changed, so observers see the task as modified.
func (s *Store) UpdateTask(ctx context.Context, task *domain.Task, tagNames *[]string) error {
	if err := task.Validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE tasks SET
			status = ?,
			title = ?,
			description = ?,
			visibility = ?,
			updated_at = ?
		WHERE id = ?`,
		string(task.Status),
		task.Title,
		nullString(task.Description),
		string(task.Visibility),
		formatTime(task.UpdatedAt),
		task.ID,
	)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.ErrNotFound
	}

	if tagNames != nil {
		changed, err := s.syncTaskTags(ctx, tx, task.ID, *tagNames)
		if err != nil {
			return err
		}
		if changed {
			task.Touch()
			if _, err := tx.ExecContext(ctx,
				`UPDATE tasks SET updated_at = ? WHERE id = ?`,
				formatTime(task.UpdatedAt), task.ID); err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return s.loadTaskTags(ctx, task)
}

// DeleteTask removes a task by ID. Association rows go away via cascade.
// Returns errors.ErrOperationFailed if the delete affected no rows.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.OperationFailed("Failed to delete the task.")
	}
	return nil
}

// loadTaskTags populates task.Tags with the associated tags, ordered by name.
func (s *Store) loadTaskTags(ctx context.Context, task *domain.Task) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+tagColumns+` FROM tags
		JOIN tag_task ON tag_task.tag_id = tags.id
		WHERE tag_task.task_id = ?
		ORDER BY tags.name ASC`, task.ID)
	if err != nil {
		return fmt.Errorf("query task tags: %w", err)
	}
	defer rows.Close()

	tags := []*domain.Tag{}
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return err
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	task.Tags = tags
	return nil
}
