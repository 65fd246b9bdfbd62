package domain

import (
	"time"
	"unicode/utf8"

	"github.com/taskhubapp/taskhub-server/internal/errors"
)

// Attribute length limits, counted in runes.
const (
	TagNameMaxLen        = 25
	TagDescriptionMaxLen = 100
)

// ValidateTagName checks a tag name against the entity constraints.
// Also applied to names that create tags implicitly through task sync.
func ValidateTagName(name string) error {
	if n := utf8.RuneCountInString(name); n == 0 || n > TagNameMaxLen {
		return errors.Validationf("tag name must be between 1 and %d characters", TagNameMaxLen)
	}
	return nil
}

// Tag represents a label shared across all users' tasks.
// Name is unique and matched literally; no case folding or trimming.
// Tags are created explicitly through the API or implicitly when a task
// references a name that does not exist yet.
type Tag struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Touch updates the UpdatedAt timestamp.
func (t *Tag) Touch() {
	t.UpdatedAt = time.Now().UTC()
}

// Validate checks the tag's attributes against the entity constraints.
func (t *Tag) Validate() error {
	if err := ValidateTagName(t.Name); err != nil {
		return err
	}
	if utf8.RuneCountInString(t.Description) > TagDescriptionMaxLen {
		return errors.Validationf("tag description must be at most %d characters", TagDescriptionMaxLen)
	}
	return nil
}
