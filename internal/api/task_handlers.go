package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/taskhubapp/taskhub-server/internal/domain"
	"github.com/taskhubapp/taskhub-server/internal/service"
)

func (s *Server) registerTaskRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listTasks",
		Method:      http.MethodGet,
		Path:        "/api/v1/tasks",
		Summary:     "List tasks",
		Description: "Returns tasks visible to the caller, optionally filtered by search, tag, or status",
		Tags:        []string{"Tasks"},
	}, s.handleListTasks)

	huma.Register(s.api, huma.Operation{
		OperationID: "createTask",
		Method:      http.MethodPost,
		Path:        "/api/v1/tasks",
		Summary:     "Create task",
		Description: "Creates a new task owned by the caller",
		Tags:        []string{"Tasks"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateTask)

	huma.Register(s.api, huma.Operation{
		OperationID: "getTask",
		Method:      http.MethodGet,
		Path:        "/api/v1/tasks/{id}",
		Summary:     "Get task",
		Description: "Returns a task by ID if the caller's scope admits it",
		Tags:        []string{"Tasks"},
	}, s.handleGetTask)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateTask",
		Method:      http.MethodPatch,
		Path:        "/api/v1/tasks/{id}",
		Summary:     "Update task",
		Description: "Updates a task owned by the caller",
		Tags:        []string{"Tasks"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateTask)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteTask",
		Method:      http.MethodDelete,
		Path:        "/api/v1/tasks/{id}",
		Summary:     "Delete task",
		Description: "Deletes a task owned by the caller",
		Tags:        []string{"Tasks"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteTask)
}

// === DTOs ===

// TaskResponse contains task data in API responses.
type TaskResponse struct {
	ID          string        `json:"id" doc:"Task ID"`
	UserID      string        `json:"user_id" doc:"Owner's user ID"`
	Status      string        `json:"status" doc:"Workflow status"`
	Title       string        `json:"title" doc:"Title"`
	Description string        `json:"description,omitempty" doc:"Description"`
	Visibility  string        `json:"visibility" doc:"public or private"`
	Tags        []TagResponse `json:"tags" doc:"Associated tags"`
	CreatedAt   time.Time     `json:"created_at" doc:"Creation time"`
	UpdatedAt   time.Time     `json:"updated_at" doc:"Last update time"`
}

// ListTasksInput contains parameters for listing tasks.
type ListTasksInput struct {
	Authorization string `header:"Authorization"`
	Search        string `query:"search" doc:"Match any word against title and description"`
	Tag           string `query:"tag" doc:"Exact tag name"`
	Status        string `query:"status" doc:"Exact status value"`
}

// ListTasksResponse contains a list of tasks.
type ListTasksResponse struct {
	Tasks []TaskResponse `json:"tasks" doc:"List of tasks"`
}

// ListTasksOutput wraps the list tasks response for Huma.
type ListTasksOutput struct {
	Body ListTasksResponse
}

// CreateTaskRequest is the request body for creating a task.
type CreateTaskRequest struct {
	Status      string   `json:"status" validate:"required,oneof=to-do in-progress done canceled" doc:"Workflow status"`
	Title       string   `json:"title" validate:"required,max=255" doc:"Title"`
	Description string   `json:"description,omitempty" validate:"max=4160" doc:"Description"`
	Visibility  string   `json:"visibility" validate:"required,oneof=public private" doc:"public or private"`
	Tags        []string `json:"tags,omitempty" doc:"Tag names to attach"`
}

// CreateTaskInput wraps the create task request for Huma.
type CreateTaskInput struct {
	Authorization string `header:"Authorization"`
	Body          CreateTaskRequest
}

// TaskOutput wraps the task response for Huma.
type TaskOutput struct {
	Body TaskResponse
}

// GetTaskInput contains parameters for getting a task.
type GetTaskInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Task ID"`
}

// UpdateTaskRequest is the request body for updating a task.
// Omitted fields are left unchanged; an explicit empty tags list detaches
// every tag.
type UpdateTaskRequest struct {
	Status      *string   `json:"status,omitempty" validate:"omitempty,oneof=to-do in-progress done canceled" doc:"Workflow status"`
	Title       *string   `json:"title,omitempty" validate:"omitempty,max=255" doc:"Title"`
	Description *string   `json:"description,omitempty" validate:"omitempty,max=4160" doc:"Description"`
	Visibility  *string   `json:"visibility,omitempty" validate:"omitempty,oneof=public private" doc:"public or private"`
	Tags        *[]string `json:"tags,omitempty" doc:"Replacement tag names"`
}

// UpdateTaskInput wraps the update task request for Huma.
type UpdateTaskInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Task ID"`
	Body          UpdateTaskRequest
}

// DeleteTaskInput contains parameters for deleting a task.
type DeleteTaskInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Task ID"`
}

// DeleteTaskOutput is the empty response for a successful delete.
type DeleteTaskOutput struct {
	Status int
}

func mapTask(t *domain.Task) TaskResponse {
	tags := make([]TagResponse, len(t.Tags))
	for i, tag := range t.Tags {
		tags[i] = mapTag(tag)
	}
	return TaskResponse{
		ID:          t.ID,
		UserID:      t.UserID,
		Status:      string(t.Status),
		Title:       t.Title,
		Description: t.Description,
		Visibility:  string(t.Visibility),
		Tags:        tags,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// === Handlers ===

func (s *Server) handleListTasks(ctx context.Context, input *ListTasksInput) (*ListTasksOutput, error) {
	caller, err := s.optionalAuthenticate(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	tasks, err := s.services.Task.List(ctx, caller, service.ListTasksRequest{
		Search: input.Search,
		Tag:    input.Tag,
		Status: input.Status,
	})
	if err != nil {
		return nil, err
	}

	resp := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		resp[i] = mapTask(t)
	}

	return &ListTasksOutput{Body: ListTasksResponse{Tasks: resp}}, nil
}

func (s *Server) handleGetTask(ctx context.Context, input *GetTaskInput) (*TaskOutput, error) {
	caller, err := s.optionalAuthenticate(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	task, err := s.services.Task.Get(ctx, caller, input.ID)
	if err != nil {
		return nil, err
	}

	return &TaskOutput{Body: mapTask(task)}, nil
}

func (s *Server) handleCreateTask(ctx context.Context, input *CreateTaskInput) (*TaskOutput, error) {
	caller, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	task, err := s.services.Task.Create(ctx, caller, service.CreateTaskRequest{
		Status:      input.Body.Status,
		Title:       input.Body.Title,
		Description: input.Body.Description,
		Visibility:  input.Body.Visibility,
		Tags:        input.Body.Tags,
	})
	if err != nil {
		return nil, err
	}

	return &TaskOutput{Body: mapTask(task)}, nil
}

func (s *Server) handleUpdateTask(ctx context.Context, input *UpdateTaskInput) (*TaskOutput, error) {
	caller, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	task, err := s.services.Task.Update(ctx, caller, input.ID, service.UpdateTaskRequest{
		Status:      input.Body.Status,
		Title:       input.Body.Title,
		Description: input.Body.Description,
		Visibility:  input.Body.Visibility,
		Tags:        input.Body.Tags,
	})
	if err != nil {
		return nil, err
	}

	return &TaskOutput{Body: mapTask(task)}, nil
}

func (s *Server) handleDeleteTask(ctx context.Context, input *DeleteTaskInput) (*DeleteTaskOutput, error) {
	caller, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Task.Delete(ctx, caller, input.ID); err != nil {
		return nil, err
	}

	return &DeleteTaskOutput{Status: http.StatusNoContent}, nil
}
