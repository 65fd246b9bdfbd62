package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taskhubapp/taskhub-server/internal/errors"
)

func validTask() *Task {
	return &Task{
		ID:         "task-1",
		UserID:     "user-1",
		Status:     TaskStatusToDo,
		Title:      "Valid",
		Visibility: VisibilityPublic,
	}
}

func TestTaskStatusIsValid(t *testing.T) {
	for _, s := range []TaskStatus{TaskStatusToDo, TaskStatusInProgress, TaskStatusDone, TaskStatusCanceled} {
		assert.True(t, s.IsValid(), string(s))
	}
	assert.False(t, TaskStatus("blocked").IsValid())
	assert.False(t, TaskStatus("").IsValid())
}

func TestTaskVisibilityIsValid(t *testing.T) {
	assert.True(t, VisibilityPublic.IsValid())
	assert.True(t, VisibilityPrivate.IsValid())
	assert.False(t, TaskVisibility("friends").IsValid())
	assert.False(t, TaskVisibility("").IsValid())
}

func TestTaskValidate(t *testing.T) {
	t.Run("valid task passes", func(t *testing.T) {
		task := validTask()
		task.Title = strings.Repeat("t", 255)
		task.Description = strings.Repeat("d", 4160)
		assert.NoError(t, task.Validate())
	})

	tests := []struct {
		name   string
		mutate func(*Task)
	}{
		{"missing owner", func(task *Task) { task.UserID = "" }},
		{"unknown status", func(task *Task) { task.Status = "blocked" }},
		{"unknown visibility", func(task *Task) { task.Visibility = "friends" }},
		{"empty title", func(task *Task) { task.Title = "" }},
		{"title too long", func(task *Task) { task.Title = strings.Repeat("t", 256) }},
		{"description too long", func(task *Task) { task.Description = strings.Repeat("d", 4161) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := validTask()
			tt.mutate(task)
			err := task.Validate()
			assert.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrValidation))
		})
	}
}

func TestTaskValidate_CountsRunes(t *testing.T) {
	task := validTask()
	task.Title = strings.Repeat("é", 255)
	assert.NoError(t, task.Validate())
}
