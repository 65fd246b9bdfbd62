package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/taskhubapp/taskhub-server/internal/domain"
	"github.com/taskhubapp/taskhub-server/internal/errors"
	"github.com/taskhubapp/taskhub-server/internal/id"
)

const tagColumns = `tags.id, tags.name, tags.description, tags.created_at, tags.updated_at`

func scanTag(scanner interface{ Scan(dest ...any) error }) (*domain.Tag, error) {
	var t domain.Tag

	var (
		description sql.NullString
		createdAt   string
		updatedAt   string
	)

	err := scanner.Scan(&t.ID, &t.Name, &description, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

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

// CreateTag inserts a new tag. A duplicate name returns errors.ErrAlreadyExists.
func (s *Store) CreateTag(ctx context.Context, tag *domain.Tag) error {
	if err := tag.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tags (id, name, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		tag.ID,
		tag.Name,
		nullString(tag.Description),
		formatTime(tag.CreatedAt),
		formatTime(tag.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (s *Store) GetTag(ctx context.Context, tagID string) (*domain.Tag, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE tags.id = ?`, tagID)

	tag, err := scanTag(row)
	if err == sql.ErrNoRows {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return tag, nil
}

// GetTagByName looks a tag up by its exact name. Names are matched
// literally; no normalization is applied.
func (s *Store) GetTagByName(ctx context.Context, name string) (*domain.Tag, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE tags.name = ?`, name)

	tag, err := scanTag(row)
	if err == sql.ErrNoRows {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return tag, nil
}

// ListTags returns every tag in creation order. Tags are a shared,
// unscoped vocabulary; every caller sees the same list.
func (s *Store) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+tagColumns+` FROM tags ORDER BY tags.created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []*domain.Tag{}
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tags, nil
}

// UpdateTag persists the tag's attributes. Renaming onto an existing
// name returns errors.ErrAlreadyExists.
func (s *Store) UpdateTag(ctx context.Context, tag *domain.Tag) error {
	if err := tag.Validate(); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE tags SET
			name = ?,
			description = ?,
			updated_at = ?
		WHERE id = ?`,
		tag.Name,
		nullString(tag.Description),
		formatTime(tag.UpdatedAt),
		tag.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.ErrAlreadyExists
		}
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.ErrNotFound
	}
	return nil
}

// DeleteTag removes a tag by ID. Association rows go away via cascade,
// detaching the tag from every task that carried it.
// Returns errors.ErrOperationFailed if the delete affected no rows.
func (s *Store) DeleteTag(ctx context.Context, tagID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, tagID)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.OperationFailed("Failed to delete the tag.")
	}
	return nil
}

// TagUsedByOthers reports whether the tag is attached to at least one task
// owned by a user other than userID.
func (s *Store) TagUsedByOthers(ctx context.Context, tagID, userID string) (bool, error) {
	var used bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM tag_task
			JOIN tasks ON tasks.id = tag_task.task_id
			WHERE tag_task.tag_id = ? AND tasks.user_id != ?
		)`, tagID, userID).Scan(&used)
	if err != nil {
		return false, fmt.Errorf("check tag usage: %w", err)
	}
	return used, nil
}

// findOrCreateTag resolves a tag name to its ID inside the transaction,
// creating the tag if it does not exist yet. A concurrent insert between
// the lookup and the create surfaces as a unique violation; in that case
// the lookup is retried once and must succeed.
func (s *Store) findOrCreateTag(ctx context.Context, tx *sql.Tx, name string) (string, error) {
	if err := domain.ValidateTagName(name); err != nil {
		return "", err
	}

	var tagID string
	err := tx.QueryRowContext(ctx,
		`SELECT id FROM tags WHERE name = ?`, name).Scan(&tagID)
	if err == nil {
		return tagID, nil
	}
	if err != sql.ErrNoRows {
		return "", err
	}

	tagID, err = id.Generate("tag")
	if err != nil {
		return "", err
	}

	now := formatTime(time.Now())
	_, err = tx.ExecContext(ctx, `
		INSERT INTO tags (id, name, description, created_at, updated_at)
		VALUES (?, ?, NULL, ?, ?)`,
		tagID, name, now, now)
	if err == nil {
		return tagID, nil
	}
	if !isUniqueViolation(err) {
		return "", err
	}

	err = tx.QueryRowContext(ctx,
		`SELECT id FROM tags WHERE name = ?`, name).Scan(&tagID)
	if err != nil {
		return "", fmt.Errorf("tag %q vanished after unique violation: %w", name, err)
	}
	return tagID, nil
}

// syncTaskTags makes the task's tag associations exactly match names,
// creating missing tags on the fly. Only the delta is written: tags already
// attached keep their association timestamps, missing ones are attached,
// and tags not in names are detached. Duplicate names collapse to one
// association. The returned bool reports whether anything changed.
func (s *Store) syncTaskTags(ctx context.Context, tx *sql.Tx, taskID string, names []string) (bool, error) {
	desired := make(map[string]bool, len(names))
	for _, name := range names {
		tagID, err := s.findOrCreateTag(ctx, tx, name)
		if err != nil {
			return false, err
		}
		desired[tagID] = true
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT tag_id FROM tag_task WHERE task_id = ?`, taskID)
	if err != nil {
		return false, err
	}
	current := make(map[string]bool)
	for rows.Next() {
		var tagID string
		if err := rows.Scan(&tagID); err != nil {
			rows.Close()
			return false, err
		}
		current[tagID] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return false, err
	}

	changed := false
	now := formatTime(time.Now())

	for tagID := range desired {
		if current[tagID] {
			continue
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO tag_task (tag_id, task_id, created_at, updated_at)
			VALUES (?, ?, ?, ?)`,
			tagID, taskID, now, now)
		if err != nil {
			return false, err
		}
		changed = true
	}

	for tagID := range current {
		if desired[tagID] {
			continue
		}
		_, err := tx.ExecContext(ctx,
			`DELETE FROM tag_task WHERE tag_id = ? AND task_id = ?`, tagID, taskID)
		if err != nil {
			return false, err
		}
		changed = true
	}

	return changed, nil
}
