package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (ts *testServer) createTestTask(t *testing.T, token string, body map[string]any) TaskResponse {
	t.Helper()

	resp := ts.api.Post("/api/v1/tasks", body, "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code, "create task failed: %s", resp.Body.String())

	var task TaskResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &task))
	return task
}

func (ts *testServer) listTasks(t *testing.T, query string, headers ...any) ListTasksResponse {
	t.Helper()

	resp := ts.api.Get("/api/v1/tasks"+query, headers...)
	require.Equal(t, http.StatusOK, resp.Code)

	var body ListTasksResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	return body
}

func TestCreateTask_RequiresAuth(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	resp := ts.api.Post("/api/v1/tasks", map[string]any{
		"status":     "to-do",
		"title":      "Orphan",
		"visibility": "public",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestCreateTask_InvalidStatus(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token := ts.registerTestUser(t, "Alice", "alice@example.com")

	resp := ts.api.Post("/api/v1/tasks", map[string]any{
		"status":     "blocked",
		"title":      "Bad status",
		"visibility": "public",
	}, "Authorization: Bearer "+token)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}

func TestTaskVisibilityOverHTTP(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	aliceToken := ts.registerTestUser(t, "Alice", "alice@example.com")
	bobToken := ts.registerTestUser(t, "Bob", "bob@example.com")

	public := ts.createTestTask(t, aliceToken, map[string]any{
		"status": "to-do", "title": "Public chore", "visibility": "public",
	})
	private := ts.createTestTask(t, aliceToken, map[string]any{
		"status": "to-do", "title": "Private chore", "visibility": "private",
	})

	// Anonymous list sees only the public task.
	body := ts.listTasks(t, "")
	require.Len(t, body.Tasks, 1)
	assert.Equal(t, public.ID, body.Tasks[0].ID)

	// The owner sees both.
	body = ts.listTasks(t, "", "Authorization: Bearer "+aliceToken)
	assert.Len(t, body.Tasks, 2)

	// Bob cannot fetch the private task; it reads as missing.
	resp := ts.api.Get("/api/v1/tasks/"+private.ID, "Authorization: Bearer "+bobToken)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	// Anonymous show of the public task works.
	resp = ts.api.Get("/api/v1/tasks/" + public.ID)
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestTaskFiltersOverHTTP(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token := ts.registerTestUser(t, "Alice", "alice@example.com")

	ts.createTestTask(t, token, map[string]any{
		"status": "to-do", "title": "Buy groceries", "visibility": "public",
		"tags": []string{"errands"},
	})
	ts.createTestTask(t, token, map[string]any{
		"status": "done", "title": "Write report", "visibility": "public",
		"tags": []string{"work"},
	})

	body := ts.listTasks(t, "?tag=work")
	require.Len(t, body.Tasks, 1)
	assert.Equal(t, "Write report", body.Tasks[0].Title)

	body = ts.listTasks(t, "?status=done")
	require.Len(t, body.Tasks, 1)

	body = ts.listTasks(t, "?search=groceries")
	require.Len(t, body.Tasks, 1)
	assert.Equal(t, "Buy groceries", body.Tasks[0].Title)
}

func TestUpdateTaskOverHTTP(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	aliceToken := ts.registerTestUser(t, "Alice", "alice@example.com")
	bobToken := ts.registerTestUser(t, "Bob", "bob@example.com")

	task := ts.createTestTask(t, aliceToken, map[string]any{
		"status": "to-do", "title": "Draft", "visibility": "public",
		"tags": []string{"a", "b"},
	})

	// Non-owner gets 403 on a visible task.
	resp := ts.api.Patch("/api/v1/tasks/"+task.ID,
		map[string]any{"title": "Hijacked"},
		"Authorization: Bearer "+bobToken)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	// Owner replaces the tag set.
	resp = ts.api.Patch("/api/v1/tasks/"+task.ID,
		map[string]any{"status": "done", "tags": []string{"b", "c"}},
		"Authorization: Bearer "+aliceToken)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var updated TaskResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &updated))
	assert.Equal(t, "done", updated.Status)
	require.Len(t, updated.Tags, 2)
	assert.Equal(t, "b", updated.Tags[0].Name)
	assert.Equal(t, "c", updated.Tags[1].Name)
}

func TestDeleteTaskOverHTTP(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token := ts.registerTestUser(t, "Alice", "alice@example.com")

	task := ts.createTestTask(t, token, map[string]any{
		"status": "to-do", "title": "Doomed", "visibility": "public",
	})

	resp := ts.api.Delete("/api/v1/tasks/"+task.ID, "Authorization: Bearer "+token)
	assert.Equal(t, http.StatusNoContent, resp.Code)

	resp = ts.api.Get("/api/v1/tasks/" + task.ID)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
