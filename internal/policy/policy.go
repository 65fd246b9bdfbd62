// Package policy decides, per action and entity type, whether a caller may
// perform a mutation. Policies are stateless predicates over the caller
// identity and the current stored entity; they run before any write and
// return a Forbidden error carrying a human-readable reason when denied.
//
// Reads are never policied here: the scope package already filters what a
// caller can reach, and an out-of-scope entity behaves as not found rather
// than forbidden, so existence is not leaked.
package policy

import (
	"context"

	"github.com/taskhubapp/taskhub-server/internal/domain"
	"github.com/taskhubapp/taskhub-server/internal/errors"
)

// TagUsage reports tag association facts the tag policies need.
// Implemented by the sqlite store.
type TagUsage interface {
	// TagUsedByOthers reports whether the tag is currently associated with
	// at least one task owned by a user other than userID.
	TagUsedByOthers(ctx context.Context, tagID, userID string) (bool, error)
}

// CanCreateTask allows any authenticated caller to create tasks.
func CanCreateTask(caller *domain.User) error {
	if caller == nil {
		return errors.Forbidden("Log in to be able to create tasks.")
	}
	return nil
}

// CanUpdateTask allows only the task's owner to update it.
func CanUpdateTask(caller *domain.User, task *domain.Task) error {
	if caller == nil {
		return errors.Forbidden("Log in to be able to update tasks.")
	}
	if !caller.Owns(task) {
		return errors.Forbidden("You can only update your own tasks.")
	}
	return nil
}

// CanDeleteTask allows only the task's owner to delete it.
func CanDeleteTask(caller *domain.User, task *domain.Task) error {
	if caller == nil {
		return errors.Forbidden("Log in to be able to delete tasks.")
	}
	if !caller.Owns(task) {
		return errors.Forbidden("You can only delete your own tasks.")
	}
	return nil
}

// CanCreateTag allows any authenticated caller to create tags.
func CanCreateTag(caller *domain.User) error {
	if caller == nil {
		return errors.Forbidden("Log in to be able to create tags.")
	}
	return nil
}

// TagChange describes the proposed update to a tag.
// Nil fields are left untouched and never count as a change.
type TagChange struct {
	Name        *string
	Description *string
}

// differs reports whether applying the change would actually alter the tag.
func (c TagChange) differs(tag *domain.Tag) bool {
	if c.Name != nil && *c.Name != tag.Name {
		return true
	}
	if c.Description != nil && *c.Description != tag.Description {
		return true
	}
	return false
}

// CanUpdateTag enforces shared-tag protection on tag updates.
//
// The shared-tag check only runs when the proposed change is a real change;
// a no-op update alters nothing shared and is allowed for any authenticated
// caller. The check is evaluated against the tag's association rows as they
// exist right now; there is no re-check later in the request.
func CanUpdateTag(ctx context.Context, usage TagUsage, caller *domain.User, tag *domain.Tag, change TagChange) error {
	if caller == nil {
		return errors.Forbidden("Log in to be able to update tags.")
	}

	if !change.differs(tag) {
		return nil
	}

	shared, err := usage.TagUsedByOthers(ctx, tag.ID, caller.ID)
	if err != nil {
		return err
	}
	if shared {
		return errors.Forbidden("You can only update tags that are not used by other users' tasks.")
	}
	return nil
}

// CanDeleteTag enforces shared-tag protection on tag deletion.
func CanDeleteTag(ctx context.Context, usage TagUsage, caller *domain.User, tag *domain.Tag) error {
	if caller == nil {
		return errors.Forbidden("Log in to be able to delete tags.")
	}

	shared, err := usage.TagUsedByOthers(ctx, tag.ID, caller.ID)
	if err != nil {
		return err
	}
	if shared {
		return errors.Forbidden("You can only delete tags that are not used by other users' tasks.")
	}
	return nil
}
