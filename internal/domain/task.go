package domain

import (
	"time"
	"unicode/utf8"

	"github.com/taskhubapp/taskhub-server/internal/errors"
)

// Attribute length limits, counted in runes.
const (
	TaskTitleMaxLen       = 255
	TaskDescriptionMaxLen = 4160
)

// TaskStatus represents the workflow state of a task.
type TaskStatus string

const (
	// TaskStatusToDo indicates the task has not been started.
	TaskStatusToDo TaskStatus = "to-do"
	// TaskStatusInProgress indicates the task is being worked on.
	TaskStatusInProgress TaskStatus = "in-progress"
	// TaskStatusDone indicates the task is complete.
	TaskStatusDone TaskStatus = "done"
	// TaskStatusCanceled indicates the task was abandoned.
	TaskStatusCanceled TaskStatus = "canceled"
)

// IsValid returns true if the status is one of the known values.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusToDo, TaskStatusInProgress, TaskStatusDone, TaskStatusCanceled:
		return true
	}
	return false
}

// TaskVisibility controls who can see a task.
type TaskVisibility string

const (
	// VisibilityPublic makes the task visible to everyone, including anonymous callers.
	VisibilityPublic TaskVisibility = "public"
	// VisibilityPrivate restricts the task to its owner.
	VisibilityPrivate TaskVisibility = "private"
)

// IsValid returns true if the visibility is one of the known values.
func (v TaskVisibility) IsValid() bool {
	return v == VisibilityPublic || v == VisibilityPrivate
}

// Task represents a unit of work owned by exactly one user.
// UserID never changes after creation; ownership does not transfer.
type Task struct {
	ID          string         `json:"id"`
	UserID      string         `json:"user_id"`
	Status      TaskStatus     `json:"status"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Visibility  TaskVisibility `json:"visibility"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`

	// Tags holds the task's associated tags when loaded by the store.
	// Not a column; populated by queries that join the association table.
	Tags []*Tag `json:"tags,omitempty"`
}

// Touch updates the UpdatedAt timestamp.
func (t *Task) Touch() {
	t.UpdatedAt = time.Now().UTC()
}

// Validate checks the task's attributes against the entity constraints.
// The store runs this before every insert and update, so rows written
// outside the request validators (seeding, tag sync) obey the same rules.
func (t *Task) Validate() error {
	if t.UserID == "" {
		return errors.Validation("task owner is required")
	}
	if !t.Status.IsValid() {
		return errors.Validationf("invalid task status %q", t.Status)
	}
	if !t.Visibility.IsValid() {
		return errors.Validationf("invalid task visibility %q", t.Visibility)
	}
	if n := utf8.RuneCountInString(t.Title); n == 0 || n > TaskTitleMaxLen {
		return errors.Validationf("task title must be between 1 and %d characters", TaskTitleMaxLen)
	}
	if utf8.RuneCountInString(t.Description) > TaskDescriptionMaxLen {
		return errors.Validationf("task description must be at most %d characters", TaskDescriptionMaxLen)
	}
	return nil
}

// TagNames returns the names of the task's loaded tags.
func (t *Task) TagNames() []string {
	names := make([]string, len(t.Tags))
	for i, tag := range t.Tags {
		names[i] = tag.Name
	}
	return names
}
