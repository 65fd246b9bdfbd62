package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/taskhubapp/taskhub-server/internal/domain"
	"github.com/taskhubapp/taskhub-server/internal/id"
	"github.com/taskhubapp/taskhub-server/internal/policy"
	"github.com/taskhubapp/taskhub-server/internal/scope"
	"github.com/taskhubapp/taskhub-server/internal/store/sqlite"
	"github.com/taskhubapp/taskhub-server/internal/validation"
)

// TaskService orchestrates task operations: visibility scoping via the
// store, ownership checks via the policy package.
type TaskService struct {
	store     *sqlite.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewTaskService creates a new task service.
func NewTaskService(store *sqlite.Store, validator *validation.Validator, logger *slog.Logger) *TaskService {
	return &TaskService{
		store:     store,
		validator: validator,
		logger:    logger,
	}
}

// ListTasksRequest narrows a task listing. All fields are optional.
type ListTasksRequest struct {
	Search string `json:"search"`
	Tag    string `json:"tag"`
	Status string `json:"status"`
}

// CreateTaskRequest contains the attributes of a new task.
type CreateTaskRequest struct {
	Status      string   `json:"status" validate:"required,oneof=to-do in-progress done canceled"`
	Title       string   `json:"title" validate:"required,max=255"`
	Description string   `json:"description" validate:"max=4160"`
	Visibility  string   `json:"visibility" validate:"required,oneof=public private"`
	Tags        []string `json:"tags" validate:"omitempty,dive,required,max=25"`
}

// UpdateTaskRequest carries partial task updates. Nil fields are left
// unchanged; a non-nil empty Tags slice detaches every tag.
type UpdateTaskRequest struct {
	Status      *string   `json:"status" validate:"omitempty,oneof=to-do in-progress done canceled"`
	Title       *string   `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string   `json:"description" validate:"omitempty,max=4160"`
	Visibility  *string   `json:"visibility" validate:"omitempty,oneof=public private"`
	Tags        *[]string `json:"tags" validate:"omitempty,dive,required,max=25"`
}

// List returns the tasks visible to the caller, narrowed by the request.
func (s *TaskService) List(ctx context.Context, caller *domain.User, req ListTasksRequest) ([]*domain.Task, error) {
	filter := scope.TaskFilter{
		Search: req.Search,
		Tag:    req.Tag,
		Status: req.Status,
	}
	return s.store.ListTasks(ctx, caller, filter)
}

// Get returns a single task if the caller's scope admits it.
func (s *TaskService) Get(ctx context.Context, caller *domain.User, taskID string) (*domain.Task, error) {
	return s.store.GetTask(ctx, caller, taskID)
}

// Create makes a new task owned by the caller.
func (s *TaskService) Create(ctx context.Context, caller *domain.User, req CreateTaskRequest) (*domain.Task, error) {
	if err := policy.CanCreateTask(caller); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	taskID, err := id.Generate("task")
	if err != nil {
		return nil, fmt.Errorf("generate task ID: %w", err)
	}

	now := time.Now()
	task := &domain.Task{
		ID:          taskID,
		UserID:      caller.ID,
		Status:      domain.TaskStatus(req.Status),
		Title:       req.Title,
		Description: req.Description,
		Visibility:  domain.TaskVisibility(req.Visibility),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.CreateTask(ctx, task, req.Tags); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	s.logger.Info("task created", "task_id", taskID, "user_id", caller.ID)

	return task, nil
}

// Update applies the request to an existing task. Only the owner may
// update a task; the target is resolved through the caller's scope, so
// an invisible task reads as missing rather than forbidden.
func (s *TaskService) Update(ctx context.Context, caller *domain.User, taskID string, req UpdateTaskRequest) (*domain.Task, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	task, err := s.store.GetTask(ctx, caller, taskID)
	if err != nil {
		return nil, err
	}

	if err := policy.CanUpdateTask(caller, task); err != nil {
		return nil, err
	}

	if req.Status != nil {
		task.Status = domain.TaskStatus(*req.Status)
	}
	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Visibility != nil {
		task.Visibility = domain.TaskVisibility(*req.Visibility)
	}
	task.Touch()

	if err := s.store.UpdateTask(ctx, task, req.Tags); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}

	s.logger.Info("task updated", "task_id", taskID, "user_id", caller.ID)

	return task, nil
}

// Delete removes a task. Only the owner may delete it.
func (s *TaskService) Delete(ctx context.Context, caller *domain.User, taskID string) error {
	task, err := s.store.GetTask(ctx, caller, taskID)
	if err != nil {
		return err
	}

	if err := policy.CanDeleteTask(caller, task); err != nil {
		return err
	}

	if err := s.store.DeleteTask(ctx, task.ID); err != nil {
		return err
	}

	s.logger.Info("task deleted", "task_id", taskID, "user_id", caller.ID)

	return nil
}
