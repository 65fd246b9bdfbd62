package api

import (
	"github.com/taskhubapp/taskhub-server/internal/service"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Auth *service.AuthService
	Task *service.TaskService
	Tag  *service.TagService
	User *service.UserService
}
