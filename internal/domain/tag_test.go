package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taskhubapp/taskhub-server/internal/errors"
)

func TestValidateTagName(t *testing.T) {
	assert.NoError(t, ValidateTagName("a"))
	assert.NoError(t, ValidateTagName(strings.Repeat("n", 25)))

	for _, name := range []string{"", strings.Repeat("n", 26)} {
		err := ValidateTagName(name)
		assert.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrValidation))
	}

	// Limits count runes, not bytes.
	assert.NoError(t, ValidateTagName(strings.Repeat("é", 25)))
}

func TestTagValidate(t *testing.T) {
	tag := &Tag{ID: "tag-1", Name: "chores", Description: strings.Repeat("d", 100)}
	assert.NoError(t, tag.Validate())

	tag.Description = strings.Repeat("d", 101)
	err := tag.Validate()
	assert.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrValidation))
}
