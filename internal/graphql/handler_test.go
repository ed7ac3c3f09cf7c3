package graphql

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tracker/internal/config"
	"tracker/internal/handlers"
	"tracker/internal/repository"
	"tracker/internal/services"
	"tracker/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gqlResponse struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []struct {
		Message    string         `json:"message"`
		Extensions map[string]any `json:"extensions"`
	} `json:"errors"`
}

func (r gqlResponse) code() string {
	if len(r.Errors) == 0 {
		return ""
	}
	code, _ := r.Errors[0].Extensions["code"].(string)
	return code
}

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := repository.InitDB("sqlite://:memory:")
	require.NoError(t, err)
	require.NoError(t, repository.AutoMigrate(db))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := services.New(db, logger)
	registry := session.NewRegistry(session.NewMemoryStore(), time.Hour, logger)

	gh, err := NewHandler(svc, registry, logger)
	require.NoError(t, err)

	cfg := config.Config{SessionSecret: "test-secret-12345678901234567890123456789012"}
	return handlers.NewHandler(cfg, logger, registry, svc).SetupRouter(nil, gh.Mount)
}

func exec(t *testing.T, r *gin.Engine, token, query string, vars map[string]any) gqlResponse {
	t.Helper()
	body, err := json.Marshal(Request{Query: query, Variables: vars})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp gqlResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func field[T any](t *testing.T, resp gqlResponse, name string) T {
	t.Helper()
	require.Empty(t, resp.Errors)
	var v T
	require.NoError(t, json.Unmarshal(resp.Data[name], &v))
	return v
}

func login(t *testing.T, r *gin.Engine) string {
	t.Helper()
	vars := map[string]any{"u": "alice", "p": "pw123"}
	resp := exec(t, r, "", `mutation($u: String!, $p: String!) { register(username: $u, password: $p) { id username } }`, vars)
	require.Empty(t, resp.Errors)

	resp = exec(t, r, "", `mutation($u: String!, $p: String!) { login(username: $u, password: $p) { token expires_at user { username } } }`, vars)
	s := field[struct {
		Token string `json:"token"`
		User  struct {
			Username string `json:"username"`
		} `json:"user"`
	}](t, resp, "login")
	require.NotEmpty(t, s.Token)
	assert.Equal(t, "alice", s.User.Username)
	return s.Token
}

func TestAuthFlow(t *testing.T) {
	r := setupRouter(t)
	token := login(t, r)

	resp := exec(t, r, "", `mutation { register(username: "alice", password: "x") { id } }`, nil)
	assert.Equal(t, "USER_EXISTS", resp.code())

	wrong := exec(t, r, "", `mutation { login(username: "alice", password: "bad") { token } }`, nil)
	unknown := exec(t, r, "", `mutation { login(username: "nobody", password: "bad") { token } }`, nil)
	assert.Equal(t, "INVALID_CREDENTIALS", wrong.code())
	assert.Equal(t, wrong.Errors[0].Message, unknown.Errors[0].Message)

	me := field[struct {
		Username string `json:"username"`
	}](t, exec(t, r, token, `{ me { username } }`, nil), "me")
	assert.Equal(t, "alice", me.Username)

	resp = exec(t, r, token, `mutation { logout }`, nil)
	assert.Empty(t, resp.Errors)

	resp = exec(t, r, token, `{ me { username } }`, nil)
	assert.Equal(t, "UNAUTHENTICATED", resp.code())

	resp = exec(t, r, "", `mutation { logout }`, nil)
	assert.Empty(t, resp.Errors)
}

func TestIssueScenario(t *testing.T) {
	r := setupRouter(t)
	token := login(t, r)

	type issue struct {
		ID        string `json:"id"`
		Title     string `json:"title"`
		Status    string `json:"status"`
		Priority  string `json:"priority"`
		UpdatedAt string `json:"updated_at"`
		Labels    []struct {
			Color string `json:"color"`
		} `json:"labels"`
	}

	label := field[struct {
		ID    string `json:"id"`
		Color string `json:"color"`
	}](t, exec(t, r, token, `mutation { createLabel(input: {name: "bug", color: "f00"}) { id color } }`, nil), "createLabel")
	assert.Equal(t, "#FF0000", label.Color)

	created := field[issue](t, exec(t, r, token,
		`mutation($in: CreateIssueInput!) { createIssue(input: $in) { id title status priority updated_at labels { color } } }`,
		map[string]any{"in": map[string]any{
			"title": "Bug", "status": "open", "priority": "high", "creator": "alice", "labels": []string{label.ID},
		}}), "createIssue")
	assert.Len(t, created.ID, 36)
	require.Len(t, created.Labels, 1)

	fetched := field[issue](t, exec(t, r, token, `query($id: ID!) { issue(id: $id) { id title status priority updated_at labels { color } } }`,
		map[string]any{"id": created.ID}), "issue")
	assert.Equal(t, created, fetched)

	updated := field[issue](t, exec(t, r, token, `mutation($id: ID!) { updateIssue(id: $id, input: {status: "closed"}) { id title status priority } }`,
		map[string]any{"id": created.ID}), "updateIssue")
	assert.Equal(t, "closed", updated.Status)
	assert.Equal(t, "high", updated.Priority)

	resp := exec(t, r, token, `mutation($id: ID!) { updateIssue(id: $id, input: {}) { id } }`, map[string]any{"id": created.ID})
	assert.Equal(t, "NO_UPDATE_FIELDS", resp.code())

	resp = exec(t, r, token, `mutation { createIssue(input: {title: "x", creator: "alice", priority: "urgent"}) { id } }`, nil)
	assert.Equal(t, "INVALID_INPUT", resp.code())

	list := field[struct {
		Items      []issue `json:"items"`
		Pagination struct {
			PerPage int `json:"per_page"`
			Total   int `json:"total"`
		} `json:"pagination"`
	}](t, exec(t, r, token, `{ issues(per_page: 500, page: -1) { items { id } pagination { per_page total } } }`, nil), "issues")
	assert.Len(t, list.Items, 1)
	assert.Equal(t, 100, list.Pagination.PerPage)
	assert.Equal(t, 1, list.Pagination.Total)

	deleted := field[bool](t, exec(t, r, token, `mutation($id: ID!) { deleteIssue(id: $id) }`, map[string]any{"id": created.ID}), "deleteIssue")
	assert.True(t, deleted)

	resp = exec(t, r, token, `query($id: ID!) { issue(id: $id) { id } }`, map[string]any{"id": created.ID})
	assert.Equal(t, "NOT_FOUND", resp.code())
}

func TestCommentsAndMilestones(t *testing.T) {
	r := setupRouter(t)
	token := login(t, r)

	resp := exec(t, r, token, `mutation { createComment(input: {issue_id: "nope", content: "hi", author: "alice"}) { id } }`, nil)
	assert.Equal(t, "NOT_FOUND", resp.code())

	issueID := field[struct {
		ID string `json:"id"`
	}](t, exec(t, r, token, `mutation { createIssue(input: {title: "t", creator: "alice"}) { id } }`, nil), "createIssue").ID

	exec(t, r, token, `mutation($id: ID!) { createComment(input: {issue_id: $id, content: "first", author: "alice"}) { id } }`, map[string]any{"id": issueID})
	comments := field[struct {
		Items []struct {
			Content string `json:"content"`
		} `json:"items"`
	}](t, exec(t, r, token, `query($id: ID!) { comments(issue_id: $id) { items { content } } }`, map[string]any{"id": issueID}), "comments")
	require.Len(t, comments.Items, 1)
	assert.Equal(t, "first", comments.Items[0].Content)

	milestone := field[struct {
		ID      string `json:"id"`
		DueDate string `json:"due_date"`
		Status  string `json:"status"`
	}](t, exec(t, r, token, `mutation { createMilestone(input: {title: "v1", due_date: "2026-12-31"}) { id due_date status } }`, nil), "createMilestone")
	assert.Equal(t, "2026-12-31", milestone.DueDate)
	assert.Equal(t, "open", milestone.Status)

	resp = exec(t, r, token, `{ milestones(status: "closed") { items { id } pagination { total } } }`, nil)
	assert.Empty(t, resp.Errors)
	assert.JSONEq(t, `{"items":[],"pagination":{"total":0}}`, string(resp.Data["milestones"]))
}

func TestUnauthenticatedQuery(t *testing.T) {
	r := setupRouter(t)
	resp := exec(t, r, "", `{ labels { items { id } } }`, nil)
	assert.Equal(t, "UNAUTHENTICATED", resp.code())
}

func TestBadRequest(t *testing.T) {
	r := setupRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_INPUT")
}

func TestCodeFor(t *testing.T) {
	assert.Equal(t, "UNAUTHENTICATED", CodeFor(services.KindUnauthorized))
	assert.Equal(t, "INTERNAL", CodeFor(services.KindDBError))
	assert.Equal(t, "INTERNAL", CodeFor(services.KindHashError))
	assert.Equal(t, "INVALID_COLOR", CodeFor(services.KindInvalidColor))
}
