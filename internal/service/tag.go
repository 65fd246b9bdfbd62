package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/taskhubapp/taskhub-server/internal/domain"
	domainerrors "github.com/taskhubapp/taskhub-server/internal/errors"
	"github.com/taskhubapp/taskhub-server/internal/id"
	"github.com/taskhubapp/taskhub-server/internal/policy"
	"github.com/taskhubapp/taskhub-server/internal/store/sqlite"
	"github.com/taskhubapp/taskhub-server/internal/validation"
)

// TagService orchestrates tag operations. Tags are a shared vocabulary
// with no owner; mutation rights depend on who is using a tag, which the
// policy package decides against the store.
type TagService struct {
	store     *sqlite.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewTagService creates a new tag service.
func NewTagService(store *sqlite.Store, validator *validation.Validator, logger *slog.Logger) *TagService {
	return &TagService{
		store:     store,
		validator: validator,
		logger:    logger,
	}
}

// CreateTagRequest contains the attributes of a new tag.
type CreateTagRequest struct {
	Name        string `json:"name" validate:"required,max=25"`
	Description string `json:"description" validate:"max=100"`
}

// UpdateTagRequest carries partial tag updates. Nil fields are left
// unchanged.
type UpdateTagRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=25"`
	Description *string `json:"description" validate:"omitempty,max=100"`
}

// List returns every tag.
func (s *TagService) List(ctx context.Context) ([]*domain.Tag, error) {
	return s.store.ListTags(ctx)
}

// Get returns a tag by ID.
func (s *TagService) Get(ctx context.Context, tagID string) (*domain.Tag, error) {
	return s.store.GetTag(ctx, tagID)
}

// Create makes a new tag with an explicit description. Names are unique;
// a duplicate is reported as a validation failure against the name field.
func (s *TagService) Create(ctx context.Context, caller *domain.User, req CreateTagRequest) (*domain.Tag, error) {
	if err := policy.CanCreateTag(caller); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	tagID, err := id.Generate("tag")
	if err != nil {
		return nil, fmt.Errorf("generate tag ID: %w", err)
	}

	now := time.Now()
	tag := &domain.Tag{
		ID:          tagID,
		Name:        req.Name,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.CreateTag(ctx, tag); err != nil {
		if domainerrors.Is(err, domainerrors.ErrAlreadyExists) {
			return nil, domainerrors.ValidationWithDetails("validation failed",
				map[string]string{"name": "has already been taken"})
		}
		return nil, fmt.Errorf("create tag: %w", err)
	}

	s.logger.Info("tag created", "tag_id", tagID, "name", tag.Name, "user_id", caller.ID)

	return tag, nil
}

// Update applies the request to an existing tag. A tag in use by other
// users' tasks is frozen, except that a request changing nothing is
// allowed through.
func (s *TagService) Update(ctx context.Context, caller *domain.User, tagID string, req UpdateTagRequest) (*domain.Tag, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	tag, err := s.store.GetTag(ctx, tagID)
	if err != nil {
		return nil, err
	}

	change := policy.TagChange{Name: req.Name, Description: req.Description}
	if err := policy.CanUpdateTag(ctx, s.store, caller, tag, change); err != nil {
		return nil, err
	}

	if req.Name != nil {
		tag.Name = *req.Name
	}
	if req.Description != nil {
		tag.Description = *req.Description
	}
	tag.Touch()

	if err := s.store.UpdateTag(ctx, tag); err != nil {
		if domainerrors.Is(err, domainerrors.ErrAlreadyExists) {
			return nil, domainerrors.ValidationWithDetails("validation failed",
				map[string]string{"name": "has already been taken"})
		}
		return nil, fmt.Errorf("update tag: %w", err)
	}

	s.logger.Info("tag updated", "tag_id", tagID, "user_id", caller.ID)

	return tag, nil
}

// Delete removes a tag, detaching it from every task that carried it.
// A tag in use by other users' tasks cannot be deleted.
func (s *TagService) Delete(ctx context.Context, caller *domain.User, tagID string) error {
	tag, err := s.store.GetTag(ctx, tagID)
	if err != nil {
		return err
	}

	if err := policy.CanDeleteTag(ctx, s.store, caller, tag); err != nil {
		return err
	}

	if err := s.store.DeleteTag(ctx, tag.ID); err != nil {
		return err
	}

	s.logger.Info("tag deleted", "tag_id", tagID, "user_id", caller.ID)

	return nil
}
