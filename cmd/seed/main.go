// Package main provides a tool to seed the database with demo data.
//
// It creates a pair of demo users with a mix of public and private
// tasks, including tags shared across both users, to exercise the
// visibility scoping and shared-tag rules by hand.
//
// Usage:
//
//	DB_PATH=~/taskhub/taskhub.db go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/taskhubapp/taskhub-server/internal/auth"
	"github.com/taskhubapp/taskhub-server/internal/domain"
	"github.com/taskhubapp/taskhub-server/internal/errors"
	"github.com/taskhubapp/taskhub-server/internal/id"
	"github.com/taskhubapp/taskhub-server/internal/store/sqlite"
)

const demoPassword = "password123"

func main() {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/taskhub/taskhub.db")
	}

	fmt.Printf("Opening database at: %s\n", dbPath)

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	s, err := sqlite.Open(dbPath, logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	alice := ensureUser(ctx, s, "Alice Doe", "alice@example.com")
	bob := ensureUser(ctx, s, "Bob Roe", "bob@example.com")

	seedTask(ctx, s, alice, "Write launch announcement", "Draft the blog post for the v1 launch.",
		domain.VisibilityPublic, domain.TaskStatusInProgress, "writing", "launch")
	seedTask(ctx, s, alice, "Review budget spreadsheet", "Private numbers, keep off the public feed.",
		domain.VisibilityPrivate, domain.TaskStatusToDo, "finance")
	seedTask(ctx, s, alice, "Tidy the backlog", "",
		domain.VisibilityPublic, domain.TaskStatusDone, "chores")

	seedTask(ctx, s, bob, "Prepare launch checklist", "Everything that must be green before we ship.",
		domain.VisibilityPublic, domain.TaskStatusToDo, "launch", "chores")
	seedTask(ctx, s, bob, "Draft performance review", "",
		domain.VisibilityPrivate, domain.TaskStatusToDo)

	fmt.Println("\nDone. Demo accounts:")
	fmt.Printf("  %s / %s\n", alice.Email, demoPassword)
	fmt.Printf("  %s / %s\n", bob.Email, demoPassword)
}

// ensureUser returns the existing user with the given email, creating
// one when the database does not have it yet.
func ensureUser(ctx context.Context, s *sqlite.Store, name, email string) *domain.User {
	if existing, err := s.GetUserByEmail(ctx, email); err == nil {
		fmt.Printf("User %s already exists, reusing\n", email)
		return existing
	} else if !errors.Is(err, errors.ErrNotFound) {
		log.Fatalf("Failed to look up user %s: %v", email, err)
	}

	hash, err := auth.HashPassword(demoPassword)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           id.MustGenerate("user"),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.CreateUser(ctx, user); err != nil {
		log.Fatalf("Failed to create user %s: %v", email, err)
	}
	fmt.Printf("Created user %s (%s)\n", name, user.ID)
	return user
}

func seedTask(ctx context.Context, s *sqlite.Store, owner *domain.User, title, description string,
	visibility domain.TaskVisibility, status domain.TaskStatus, tags ...string) {
	now := time.Now().UTC()
	task := &domain.Task{
		ID:          id.MustGenerate("task"),
		UserID:      owner.ID,
		Status:      status,
		Title:       title,
		Description: description,
		Visibility:  visibility,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.CreateTask(ctx, task, tags); err != nil {
		log.Fatalf("Failed to create task %q: %v", title, err)
	}
	fmt.Printf("Created %s task %q for %s (tags: %d)\n", visibility, title, owner.Name, len(task.Tags))
}
