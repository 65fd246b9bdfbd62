package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhubapp/taskhub-server/internal/domain"
	"github.com/taskhubapp/taskhub-server/internal/errors"
	"github.com/taskhubapp/taskhub-server/internal/id"
	"github.com/taskhubapp/taskhub-server/internal/scope"
)

func TestGetTask_VisibilityScope(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	owner := newTestUser(t, store, "Alice", "alice@example.com")
	other := newTestUser(t, store, "Bob", "bob@example.com")

	public := newTestTask(t, store, owner, "Public task", domain.VisibilityPublic)
	private := newTestTask(t, store, owner, "Private task", domain.VisibilityPrivate)

	// Anonymous callers see public tasks only.
	got, err := store.GetTask(ctx, nil, public.ID)
	require.NoError(t, err)
	assert.Equal(t, public.ID, got.ID)

	_, err = store.GetTask(ctx, nil, private.ID)
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	// The owner sees their own private task.
	got, err = store.GetTask(ctx, owner, private.ID)
	require.NoError(t, err)
	assert.Equal(t, private.ID, got.ID)

	// Another user's private task is indistinguishable from a missing one.
	_, err = store.GetTask(ctx, other, private.ID)
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	_, err = store.GetTask(ctx, other, "task-missing")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestListTasks_VisibilityScope(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	alice := newTestUser(t, store, "Alice", "alice@example.com")
	bob := newTestUser(t, store, "Bob", "bob@example.com")

	alicePublic := newTestTask(t, store, alice, "Alice public", domain.VisibilityPublic)
	alicePrivate := newTestTask(t, store, alice, "Alice private", domain.VisibilityPrivate)
	newTestTask(t, store, bob, "Bob private", domain.VisibilityPrivate)

	tasks, err := store.ListTasks(ctx, nil, scope.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, alicePublic.ID, tasks[0].ID)

	tasks, err = store.ListTasks(ctx, alice, scope.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, alicePublic.ID, tasks[0].ID)
	assert.Equal(t, alicePrivate.ID, tasks[1].ID)
}

func TestListTasks_Search(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	alice := newTestUser(t, store, "Alice", "alice@example.com")

	newTestTask(t, store, alice, "Buy groceries", domain.VisibilityPublic)
	now := time.Now()
	report := &domain.Task{
		ID:          id.MustGenerate("task"),
		UserID:      alice.ID,
		Status:      domain.TaskStatusToDo,
		Title:       "Quarterly report",
		Description: "Summarize grocery spend",
		Visibility:  domain.VisibilityPublic,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, store.CreateTask(ctx, report, nil))
	newTestTask(t, store, alice, "Walk the dog", domain.VisibilityPublic)

	// A word matches against title and description alike.
	tasks, err := store.ListTasks(ctx, alice, scope.TaskFilter{Search: "grocer"})
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	// Multiple words widen the match; any word suffices.
	tasks, err = store.ListTasks(ctx, alice, scope.TaskFilter{Search: "dog report"})
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	tasks, err = store.ListTasks(ctx, alice, scope.TaskFilter{Search: "nothing-matches-this"})
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestListTasks_TagFilter(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	alice := newTestUser(t, store, "Alice", "alice@example.com")

	tagged := newTestTask(t, store, alice, "Errands", domain.VisibilityPublic, "home", "urgent")
	newTestTask(t, store, alice, "Untagged", domain.VisibilityPublic)

	tasks, err := store.ListTasks(ctx, alice, scope.TaskFilter{Tag: "urgent"})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, tagged.ID, tasks[0].ID)

	// Names match literally; a near-miss is a miss.
	tasks, err = store.ListTasks(ctx, alice, scope.TaskFilter{Tag: "Urgent"})
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestListTasks_StatusFilter(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	alice := newTestUser(t, store, "Alice", "alice@example.com")

	todo := newTestTask(t, store, alice, "Pending", domain.VisibilityPublic)

	done := newTestTask(t, store, alice, "Finished", domain.VisibilityPublic)
	done.Status = domain.TaskStatusDone
	require.NoError(t, store.UpdateTask(ctx, done, nil))

	tasks, err := store.ListTasks(ctx, alice, scope.TaskFilter{Status: "to-do"})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, todo.ID, tasks[0].ID)

	// An unrecognized status value simply matches nothing.
	tasks, err = store.ListTasks(ctx, alice, scope.TaskFilter{Status: "blocked"})
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestCreateTask_WithTags(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	alice := newTestUser(t, store, "Alice", "alice@example.com")

	task := newTestTask(t, store, alice, "Errands", domain.VisibilityPublic, "home", "urgent")
	require.Len(t, task.Tags, 2)
	assert.Equal(t, "home", task.Tags[0].Name)
	assert.Equal(t, "urgent", task.Tags[1].Name)

	got, err := store.GetTask(ctx, alice, task.ID)
	require.NoError(t, err)
	require.Len(t, got.Tags, 2)
	assert.Equal(t, []string{"home", "urgent"}, got.TagNames())
}

func TestCreateTask_EntityValidation(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	alice := newTestUser(t, store, "Alice", "alice@example.com")

	base := func() *domain.Task {
		now := time.Now()
		return &domain.Task{
			ID:         id.MustGenerate("task"),
			UserID:     alice.ID,
			Status:     domain.TaskStatusToDo,
			Title:      "Valid",
			Visibility: domain.VisibilityPublic,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
	}

	tests := []struct {
		name   string
		mutate func(*domain.Task)
	}{
		{"unknown status", func(task *domain.Task) { task.Status = "blocked" }},
		{"unknown visibility", func(task *domain.Task) { task.Visibility = "friends" }},
		{"missing owner", func(task *domain.Task) { task.UserID = "" }},
		{"empty title", func(task *domain.Task) { task.Title = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := base()
			tt.mutate(task)
			err := store.CreateTask(ctx, task, nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrValidation))
		})
	}
}

func TestUpdateTask(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	alice := newTestUser(t, store, "Alice", "alice@example.com")

	task := newTestTask(t, store, alice, "Draft", domain.VisibilityPrivate)

	task.Title = "Final"
	task.Status = domain.TaskStatusInProgress
	task.Visibility = domain.VisibilityPublic
	task.Description = "Ready for review"
	task.Touch()
	require.NoError(t, store.UpdateTask(ctx, task, nil))

	got, err := store.GetTask(ctx, alice, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Final", got.Title)
	assert.Equal(t, domain.TaskStatusInProgress, got.Status)
	assert.Equal(t, domain.VisibilityPublic, got.Visibility)
	assert.Equal(t, "Ready for review", got.Description)
}

func TestUpdateTask_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	now := time.Now()
	ghost := &domain.Task{
		ID:         "task-missing",
		UserID:     "user-missing",
		Status:     domain.TaskStatusToDo,
		Title:      "Ghost",
		Visibility: domain.VisibilityPublic,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err := store.UpdateTask(context.Background(), ghost, nil)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestUpdateTask_TagSemantics(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	alice := newTestUser(t, store, "Alice", "alice@example.com")

	task := newTestTask(t, store, alice, "Errands", domain.VisibilityPublic, "home")

	// nil leaves the association alone.
	require.NoError(t, store.UpdateTask(ctx, task, nil))
	got, err := store.GetTask(ctx, alice, task.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"home"}, got.TagNames())

	// A non-nil list replaces the association wholesale.
	names := []string{"work", "urgent"}
	require.NoError(t, store.UpdateTask(ctx, task, &names))
	got, err = store.GetTask(ctx, alice, task.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"urgent", "work"}, got.TagNames())

	// An empty list detaches everything.
	empty := []string{}
	require.NoError(t, store.UpdateTask(ctx, task, &empty))
	got, err = store.GetTask(ctx, alice, task.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Tags)
}

func TestUpdateTask_TagChangeBumpsUpdatedAt(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	alice := newTestUser(t, store, "Alice", "alice@example.com")

	task := newTestTask(t, store, alice, "Errands", domain.VisibilityPublic, "home")
	before := task.UpdatedAt

	time.Sleep(5 * time.Millisecond)

	// Same scalar attributes, new tag set.
	names := []string{"home", "work"}
	require.NoError(t, store.UpdateTask(ctx, task, &names))

	got, err := store.GetTask(ctx, alice, task.ID)
	require.NoError(t, err)
	assert.True(t, got.UpdatedAt.After(before), "tag change should refresh updated_at")

	// Re-syncing an identical set is a no-op and keeps the timestamp.
	time.Sleep(5 * time.Millisecond)
	got.UpdatedAt = before
	require.NoError(t, store.UpdateTask(ctx, got, &names))

	final, err := store.GetTask(ctx, alice, task.ID)
	require.NoError(t, err)
	assert.WithinDuration(t, before, final.UpdatedAt, time.Microsecond)
}

func TestDeleteTask(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	alice := newTestUser(t, store, "Alice", "alice@example.com")

	task := newTestTask(t, store, alice, "Doomed", domain.VisibilityPublic, "home")

	require.NoError(t, store.DeleteTask(ctx, task.ID))

	_, err := store.GetTask(ctx, alice, task.ID)
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	// The tag survives the task; only the association is gone.
	_, err = store.GetTagByName(ctx, "home")
	require.NoError(t, err)

	var n int
	err = store.db.QueryRow(
		`SELECT COUNT(*) FROM tag_task WHERE task_id = ?`, task.ID).Scan(&n)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDeleteTask_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	err := store.DeleteTask(context.Background(), "task-missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrOperationFailed))
}
