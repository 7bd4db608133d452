package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/TodoGo/internal/auth"
	"github.com/utafrali/TodoGo/internal/domain"
	"github.com/utafrali/TodoGo/internal/service"
	apperrors "github.com/utafrali/TodoGo/pkg/errors"
	"github.com/utafrali/TodoGo/pkg/health"
)

// ============================================================================
// In-memory fakes
// ============================================================================

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, u *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

type fakeBlacklistRepo struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func newFakeBlacklistRepo() *fakeBlacklistRepo {
	return &fakeBlacklistRepo{revoked: make(map[string]time.Time)}
}

func (f *fakeBlacklistRepo) IsRevoked(_ context.Context, token string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.revoked[token]
	return ok, nil
}

func (f *fakeBlacklistRepo) Revoke(_ context.Context, token, _ string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.revoked[token]; ok {
		return apperrors.Wrap(apperrors.ErrConflict, "token already blacklisted")
	}
	f.revoked[token] = expiresAt
	return nil
}

func (f *fakeBlacklistRepo) PruneExpired(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for tok, exp := range f.revoked {
		if exp.Before(now) {
			delete(f.revoked, tok)
			n++
		}
	}
	return n, nil
}

type fakeListRepo struct {
	mu    sync.Mutex
	lists map[string]*domain.TodoList
}

func newFakeListRepo() *fakeListRepo {
	return &fakeListRepo{lists: make(map[string]*domain.TodoList)}
}

func (f *fakeListRepo) Create(_ context.Context, l *domain.TodoList) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists[l.ID] = l
	return nil
}

func (f *fakeListRepo) GetByID(_ context.Context, id string) (*domain.TodoList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if l, ok := f.lists[id]; ok {
		return l, nil
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeListRepo) List(_ context.Context) ([]domain.TodoList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.TodoList, 0, len(f.lists))
	for _, l := range f.lists {
		out = append(out, *l)
	}
	return out, nil
}

func (f *fakeListRepo) Update(_ context.Context, l *domain.TodoList) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.lists[l.ID]; !ok {
		return apperrors.ErrNotFound
	}
	f.lists[l.ID] = l
	return nil
}

func (f *fakeListRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.lists[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(f.lists, id)
	return nil
}

type fakeTaskRepo struct {
	mu    sync.Mutex
	tasks map[string]*domain.Task
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[string]*domain.Task)}
}

func (f *fakeTaskRepo) Create(_ context.Context, t *domain.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks[t.ID] = t
	return nil
}

func (f *fakeTaskRepo) GetByID(_ context.Context, id string) (*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.tasks[id]; ok {
		return t, nil
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeTaskRepo) ListByListID(_ context.Context, listID string) ([]domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.Task{}
	for _, t := range f.tasks {
		if t.ListID == listID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeTaskRepo) Update(_ context.Context, t *domain.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tasks[t.ID]; !ok {
		return apperrors.ErrNotFound
	}
	f.tasks[t.ID] = t
	return nil
}

func (f *fakeTaskRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tasks[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(f.tasks, id)
	return nil
}

type noopPublisher struct{}

func (noopPublisher) PublishUserRegistered(context.Context, *domain.User) error { return nil }
func (noopPublisher) PublishUserLoggedOut(context.Context, string) error        { return nil }

// ============================================================================
// Fixture
// ============================================================================

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	tokens := auth.NewTokenManager("test-secret-key-for-testing-only", time.Hour)
	hasher := auth.NewPasswordHasher(4)

	authService := service.NewAuthService(newFakeUserRepo(), newFakeBlacklistRepo(), tokens, hasher, noopPublisher{}, logger)
	todoService := service.NewTodoService(newFakeListRepo(), newFakeTaskRepo(), logger)

	return NewRouter(authService, todoService, health.NewHandler(), logger, CORSConfig{Environment: "development"})
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func signup(t *testing.T, router http.Handler, username string) string {
	t.Helper()

	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "longenough1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.Token)
	return resp.Data.Token
}

// ============================================================================
// Auth flow
// ============================================================================

func TestSignupLoginLogoutFlow(t *testing.T) {
	router := newTestRouter(t)

	token := signup(t, router, "alice")

	// Token works for protected routes.
	rec := doJSON(t, router, http.MethodGet, "/api/v1/users/profile", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Login issues a fresh token.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "alice",
		"password": "longenough1",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	var loginResp struct {
		Data AuthResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &loginResp))
	freshToken := loginResp.Data.Token
	require.NotEmpty(t, freshToken)

	// Logout blacklists the presented token.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/auth/logout", token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// The revoked token no longer resolves.
	rec = doJSON(t, router, http.MethodGet, "/api/v1/users/profile", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
	assert.Contains(t, rec.Body.String(), "token has been revoked")

	// Revoking one token does not touch the other session.
	rec = doJSON(t, router, http.MethodGet, "/api/v1/users/profile", freshToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogin_WrongPasswordAndUnknownUserLookAlike(t *testing.T) {
	router := newTestRouter(t)
	signup(t, router, "alice")

	wrongPw := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "alice",
		"password": "wrongpassword",
	})
	unknown := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "ghost",
		"password": "wrongpassword",
	})

	assert.Equal(t, http.StatusUnauthorized, wrongPw.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)

	// Identical error payloads keep username probing unproductive.
	type errBody struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	var a, b errBody
	require.NoError(t, json.Unmarshal(wrongPw.Body.Bytes(), &a))
	require.NoError(t, json.Unmarshal(unknown.Body.Bytes(), &b))
	assert.Equal(t, a.Error, b.Error)
	assert.Equal(t, "invalid username or password", a.Error.Message)
}

func TestSignup_DuplicateUsernameConflict(t *testing.T) {
	router := newTestRouter(t)
	signup(t, router, "alice")

	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"username": "alice",
		"email":    "other@example.com",
		"password": "longenough1",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "username already exists")
}

func TestSignup_ValidationError(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"username": "ab",
		"email":    "not-an-email",
		"password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_ERROR")
}

func TestLogout_Idempotent(t *testing.T) {
	router := newTestRouter(t)
	token := signup(t, router, "alice")

	first := doJSON(t, router, http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusNoContent, first.Code)

	// A second logout fails only at the auth middleware: the token is now
	// revoked, which is indistinguishable from any other revoked-token use.
	second := doJSON(t, router, http.MethodPost, "/api/v1/auth/logout", token, nil)
	assert.Equal(t, http.StatusUnauthorized, second.Code)
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	router := newTestRouter(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/users/profile"},
		{http.MethodGet, "/api/v1/lists/"},
		{http.MethodPost, "/api/v1/auth/logout"},
	}
	for _, p := range paths {
		rec := doJSON(t, router, p.method, p.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", p.method, p.path)
		assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
	}
}

func TestAuth_MalformedHeader(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/profile", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// ============================================================================
// Lists and tasks
// ============================================================================

func TestListAndTaskCRUD(t *testing.T) {
	router := newTestRouter(t)
	token := signup(t, router, "alice")

	// Create a list.
	rec := doJSON(t, router, http.MethodPost, "/api/v1/lists/", token, map[string]string{
		"title": "Groceries",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var listResp struct {
		Data domain.TodoList `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listResp))
	listID := listResp.Data.ID

	// Create a task under it.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/lists/"+listID+"/tasks", token, map[string]any{
		"title":      "Buy milk",
		"priority":   "high",
		"categories": []string{"errand"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var taskResp struct {
		Data domain.Task `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &taskResp))
	assert.Equal(t, listID, taskResp.Data.ListID)

	// Patch it complete.
	rec = doJSON(t, router, http.MethodPatch, "/api/v1/tasks/"+taskResp.Data.ID, token, map[string]any{
		"completed": true,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// Empty patch is rejected.
	rec = doJSON(t, router, http.MethodPatch, "/api/v1/tasks/"+taskResp.Data.ID, token, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Delete the list.
	rec = doJSON(t, router, http.MethodDelete, "/api/v1/lists/"+listID, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestList_InvalidUUID(t *testing.T) {
	router := newTestRouter(t)
	token := signup(t, router, "alice")

	rec := doJSON(t, router, http.MethodGet, "/api/v1/lists/not-a-uuid", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_UUID")
}

func TestTask_ListMustExist(t *testing.T) {
	router := newTestRouter(t)
	token := signup(t, router, "alice")

	rec := doJSON(t, router, http.MethodPost, "/api/v1/lists/11111111-2222-4333-8444-555555555555/tasks", token, map[string]string{
		"title": "Buy milk",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestContentType_Enforced(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString("username=alice"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
