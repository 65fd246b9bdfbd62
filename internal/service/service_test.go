package service

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/taskhubapp/taskhub-server/internal/auth"
	"github.com/taskhubapp/taskhub-server/internal/domain"
	"github.com/taskhubapp/taskhub-server/internal/ratelimit"
	"github.com/taskhubapp/taskhub-server/internal/store/sqlite"
	"github.com/taskhubapp/taskhub-server/internal/validation"
)

type testServices struct {
	store *sqlite.Store
	auth  *AuthService
	tasks *TaskService
	tags  *TagService
	users *UserService
}

// setupServices creates the full service stack on temporary storage.
func setupServices(t *testing.T) (*testServices, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "taskhub-service-test-*")
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := sqlite.Open(filepath.Join(tmpDir, "test.db"), logger)
	require.NoError(t, err)

	authKey, err := auth.LoadOrGenerateKey(tmpDir)
	require.NoError(t, err)

	tokenService, err := auth.NewTokenService(authKey, 15*time.Minute)
	require.NoError(t, err)

	validator := validation.New()
	limiter := ratelimit.New(10.0/60.0, 10)

	svc := &testServices{
		store: store,
		auth:  NewAuthService(store, tokenService, validator, limiter, logger),
		tasks: NewTaskService(store, validator, logger),
		tags:  NewTagService(store, validator, logger),
		users: NewUserService(store, logger),
	}

	cleanup := func() {
		store.Close()
		os.RemoveAll(tmpDir)
	}

	return svc, cleanup
}

// registerUser creates an account through the auth service and returns the user.
func registerUser(t *testing.T, svc *testServices, name, email string) *domain.User {
	t.Helper()

	resp, err := svc.auth.Register(context.Background(), RegisterRequest{
		Name:     name,
		Email:    email,
		Password: "password123",
	})
	require.NoError(t, err)
	return resp.User
}

func createTask(t *testing.T, svc *testServices, owner *domain.User, title, visibility string, tags ...string) *domain.Task {
	t.Helper()

	task, err := svc.tasks.Create(context.Background(), owner, CreateTaskRequest{
		Status:     "to-do",
		Title:      title,
		Visibility: visibility,
		Tags:       tags,
	})
	require.NoError(t, err)
	return task
}
