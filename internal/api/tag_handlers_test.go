package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagAttributeLimitsOverHTTP(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token := ts.registerTestUser(t, "Alice", "alice@example.com")

	resp := ts.api.Post("/api/v1/tags",
		map[string]any{"name": strings.Repeat("n", 26)},
		"Authorization: Bearer "+token)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	resp = ts.api.Post("/api/v1/tags",
		map[string]any{"name": "short", "description": strings.Repeat("d", 101)},
		"Authorization: Bearer "+token)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	resp = ts.api.Post("/api/v1/tags",
		map[string]any{"name": strings.Repeat("n", 25), "description": strings.Repeat("d", 100)},
		"Authorization: Bearer "+token)
	assert.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
}

func TestTagCRUDOverHTTP(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token := ts.registerTestUser(t, "Alice", "alice@example.com")

	// Create.
	resp := ts.api.Post("/api/v1/tags",
		map[string]any{"name": "urgent", "description": "Needs attention"},
		"Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var tag TagResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &tag))
	assert.Equal(t, "urgent", tag.Name)

	// Duplicate name fails validation.
	resp = ts.api.Post("/api/v1/tags",
		map[string]any{"name": "urgent"},
		"Authorization: Bearer "+token)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	// Show and list are public.
	resp = ts.api.Get("/api/v1/tags/" + tag.ID)
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/tags")
	assert.Equal(t, http.StatusOK, resp.Code)

	var list ListTagsResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &list))
	assert.Len(t, list.Tags, 1)

	// Update.
	resp = ts.api.Patch("/api/v1/tags/"+tag.ID,
		map[string]any{"name": "asap"},
		"Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &tag))
	assert.Equal(t, "asap", tag.Name)

	// Delete.
	resp = ts.api.Delete("/api/v1/tags/"+tag.ID, "Authorization: Bearer "+token)
	assert.Equal(t, http.StatusNoContent, resp.Code)

	resp = ts.api.Get("/api/v1/tags/" + tag.ID)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestTagMutationsRequireAuth(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	resp := ts.api.Post("/api/v1/tags", map[string]any{"name": "urgent"})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestSharedTagProtectionOverHTTP(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	aliceToken := ts.registerTestUser(t, "Alice", "alice@example.com")
	bobToken := ts.registerTestUser(t, "Bob", "bob@example.com")

	// Both users attach the same tag to their own tasks.
	ts.createTestTask(t, aliceToken, map[string]any{
		"status": "to-do", "title": "Alice chore", "visibility": "public",
		"tags": []string{"shared"},
	})
	ts.createTestTask(t, bobToken, map[string]any{
		"status": "to-do", "title": "Bob chore", "visibility": "public",
		"tags": []string{"shared"},
	})

	var list ListTagsResponse
	resp := ts.api.Get("/api/v1/tags")
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &list))
	require.Len(t, list.Tags, 1)
	tagID := list.Tags[0].ID

	// Renaming or deleting the shared tag is forbidden for both users.
	resp = ts.api.Patch("/api/v1/tags/"+tagID,
		map[string]any{"name": "mine"},
		"Authorization: Bearer "+aliceToken)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = ts.api.Delete("/api/v1/tags/"+tagID, "Authorization: Bearer "+bobToken)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	// A no-op update still passes.
	resp = ts.api.Patch("/api/v1/tags/"+tagID,
		map[string]any{"name": "shared"},
		"Authorization: Bearer "+aliceToken)
	assert.Equal(t, http.StatusOK, resp.Code)
}
