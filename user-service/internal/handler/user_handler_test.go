package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/opaquechat/chat/shared/apperrors"
	"github.com/opaquechat/chat/shared/cqrs"
	"github.com/opaquechat/chat/shared/models"
)

// ---- mock implementations ----

type mockUserCommander struct {
	createFn func(cqrs.CreateUserCommand) (*models.User, error)
	calls    int
}

func (m *mockUserCommander) CreateUser(_ context.Context, cmd cqrs.CreateUserCommand) (*models.User, error) {
	m.calls++
	if m.createFn != nil {
		return m.createFn(cmd)
	}
	return nil, fmt.Errorf("not configured")
}

type mockUserQuerier struct {
	getFn       func(cqrs.GetUserQuery) (*models.User, error)
	getByNameFn func(cqrs.GetUserByUsernameQuery) (*models.User, error)
	listFn      func(cqrs.ListUsersQuery) ([]models.User, error)
	statsFn     func(cqrs.GetUserStatsQuery) (*models.UserStatsView, error)
}

func (m *mockUserQuerier) GetUser(_ context.Context, q cqrs.GetUserQuery) (*models.User, error) {
	if m.getFn != nil {
		return m.getFn(q)
	}
	return nil, fmt.Errorf("not configured")
}

func (m *mockUserQuerier) GetUserByUsername(_ context.Context, q cqrs.GetUserByUsernameQuery) (*models.User, error) {
	if m.getByNameFn != nil {
		return m.getByNameFn(q)
	}
	return nil, fmt.Errorf("not configured")
}

func (m *mockUserQuerier) ListUsers(_ context.Context, q cqrs.ListUsersQuery) ([]models.User, error) {
	if m.listFn != nil {
		return m.listFn(q)
	}
	return nil, fmt.Errorf("not configured")
}

func (m *mockUserQuerier) GetUserStats(_ context.Context, q cqrs.GetUserStatsQuery) (*models.UserStatsView, error) {
	if m.statsFn != nil {
		return m.statsFn(q)
	}
	return nil, fmt.Errorf("not configured")
}

// ---- helpers ----

func newUserTestRouter(cmds UserCommander, qrys UserQuerier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewUserHandler(cmds, qrys).Register(r)
	return r
}

func userDoRequest(router *gin.Engine, method, url string, body interface{}) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, url, nil)
	if body != nil {
		b, _ := json.Marshal(body)
		req, _ = http.NewRequest(method, url, strings.NewReader(string(b)))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// ---- test data ----

const uTestUserID = "5b0f1c3e-8a8e-4a53-9d3c-2c1f6a0b7e11"

var uTestUser = &models.User{
	ID: uTestUserID, Username: "alice",
	SecretKey: "c2VjcmV0", PublicKey: "cHVibGlj",
	CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
}

func uValidCreateBody() map[string]interface{} {
	return map[string]interface{}{
		"username": "alice", "secretKey": "c2VjcmV0", "publicKey": "cHVibGlj",
	}
}

// ---- tests ----

func TestCreateUser(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		createFn       func(cqrs.CreateUserCommand) (*models.User, error)
		expectedStatus int
		expectedCalls  int
	}{
		{
			name:           "success - creates new user",
			body:           uValidCreateBody(),
			createFn:       func(cmd cqrs.CreateUserCommand) (*models.User, error) { return uTestUser, nil },
			expectedStatus: http.StatusCreated,
			expectedCalls:  1,
		},
		{
			name:           "bad request - username already taken",
			body:           uValidCreateBody(),
			createFn:       func(cmd cqrs.CreateUserCommand) (*models.User, error) { return nil, apperrors.ErrUsernameTaken },
			expectedStatus: http.StatusBadRequest,
			expectedCalls:  1,
		},
		{
			name:           "bad request - missing required fields",
			body:           map[string]interface{}{"username": "alice"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad request - malformed json",
			body:           "not an object",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "server error - store unavailable",
			body:           uValidCreateBody(),
			createFn:       func(cmd cqrs.CreateUserCommand) (*models.User, error) { return nil, fmt.Errorf("connection refused") },
			expectedStatus: http.StatusInternalServerError,
			expectedCalls:  1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmds := &mockUserCommander{createFn: tt.createFn}
			router := newUserTestRouter(cmds, &mockUserQuerier{})
			w := userDoRequest(router, http.MethodPost, "/users", tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected status %d, got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
			if cmds.calls != tt.expectedCalls {
				t.Errorf("[%s] expected %d command calls, got %d", tt.name, tt.expectedCalls, cmds.calls)
			}
		})
	}
}

func TestCreateUser_ResponseBody(t *testing.T) {
	cmds := &mockUserCommander{createFn: func(cmd cqrs.CreateUserCommand) (*models.User, error) {
		return &models.User{
			ID: uTestUserID, Username: cmd.Username,
			SecretKey: cmd.SecretKey, PublicKey: cmd.PublicKey,
			CreatedAt: uTestUser.CreatedAt,
		}, nil
	}}
	router := newUserTestRouter(cmds, &mockUserQuerier{})
	w := userDoRequest(router, http.MethodPost, "/users", uValidCreateBody())

	var got map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	for key, want := range uValidCreateBody() {
		if got[key] != want {
			t.Errorf("expected %s=%v, got %v", key, want, got[key])
		}
	}
	if got["id"] != uTestUserID {
		t.Errorf("expected id %s, got %v", uTestUserID, got["id"])
	}
	if _, ok := got["createdAt"]; !ok {
		t.Errorf("expected createdAt in response")
	}
}

func TestCreateUser_ConflictBody(t *testing.T) {
	cmds := &mockUserCommander{createFn: func(cmd cqrs.CreateUserCommand) (*models.User, error) {
		return nil, apperrors.ErrUsernameTaken
	}}
	router := newUserTestRouter(cmds, &mockUserQuerier{})
	w := userDoRequest(router, http.MethodPost, "/users", uValidCreateBody())

	var got map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got["code"] != string(apperrors.CodeAlreadyExists) {
		t.Errorf("expected code %s, got %q", apperrors.CodeAlreadyExists, got["code"])
	}
	if got["message"] != "username already exists" {
		t.Errorf("unexpected message %q", got["message"])
	}
}

func TestGetUser(t *testing.T) {
	tests := []struct {
		name           string
		urlUserID      string
		getFn          func(cqrs.GetUserQuery) (*models.User, error)
		expectedStatus int
	}{
		{
			name:           "success - user exists",
			urlUserID:      uTestUserID,
			getFn:          func(q cqrs.GetUserQuery) (*models.User, error) { return uTestUser, nil },
			expectedStatus: http.StatusOK,
		},
		{
			name:           "not found - user never created",
			urlUserID:      "8d4c0f8e-1c6b-4e0e-b7f2-9a1d0c3e5f22",
			getFn:          func(q cqrs.GetUserQuery) (*models.User, error) { return nil, apperrors.ErrUserNotFound },
			expectedStatus: http.StatusNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotID string
			getFn := func(q cqrs.GetUserQuery) (*models.User, error) {
				gotID = q.UserID
				return tt.getFn(q)
			}
			router := newUserTestRouter(&mockUserCommander{}, &mockUserQuerier{getFn: getFn})
			w := userDoRequest(router, http.MethodGet, "/users/"+tt.urlUserID, nil)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected status %d, got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
			if gotID != tt.urlUserID {
				t.Errorf("[%s] expected query for %s, got %s", tt.name, tt.urlUserID, gotID)
			}
		})
	}
}

func TestGetUserByUsername(t *testing.T) {
	tests := []struct {
		name           string
		username       string
		getByNameFn    func(cqrs.GetUserByUsernameQuery) (*models.User, error)
		expectedStatus int
	}{
		{
			name:     "success - username exists",
			username: "alice",
			getByNameFn: func(q cqrs.GetUserByUsernameQuery) (*models.User, error) {
				if q.Username != "alice" {
					return nil, apperrors.ErrUserNotFound
				}
				return uTestUser, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "not found - unknown username",
			username:       "nobody",
			getByNameFn:    func(q cqrs.GetUserByUsernameQuery) (*models.User, error) { return nil, apperrors.ErrUserNotFound },
			expectedStatus: http.StatusNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newUserTestRouter(&mockUserCommander{}, &mockUserQuerier{getByNameFn: tt.getByNameFn})
			w := userDoRequest(router, http.MethodGet, "/users/username/"+tt.username, nil)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected status %d, got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestListUsers(t *testing.T) {
	tests := []struct {
		name           string
		listFn         func(cqrs.ListUsersQuery) ([]models.User, error)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "success - no users yet",
			listFn:         func(q cqrs.ListUsersQuery) ([]models.User, error) { return nil, nil },
			expectedStatus: http.StatusOK,
			expectedBody:   "[]",
		},
		{
			name:           "server error - store unavailable",
			listFn:         func(q cqrs.ListUsersQuery) ([]models.User, error) { return nil, fmt.Errorf("timeout") },
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"message":"Failed to list users"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newUserTestRouter(&mockUserCommander{}, &mockUserQuerier{listFn: tt.listFn})
			w := userDoRequest(router, http.MethodGet, "/users", nil)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected status %d, got %d", tt.name, tt.expectedStatus, w.Code)
			}
			if w.Body.String() != tt.expectedBody {
				t.Errorf("[%s] expected body %s, got %s", tt.name, tt.expectedBody, w.Body.String())
			}
		})
	}
}

func TestListUsers_ReturnsEveryUser(t *testing.T) {
	users := []models.User{*uTestUser, {ID: "8d4c0f8e-1c6b-4e0e-b7f2-9a1d0c3e5f22", Username: "bob"}}
	router := newUserTestRouter(&mockUserCommander{}, &mockUserQuerier{
		listFn: func(q cqrs.ListUsersQuery) ([]models.User, error) { return users, nil },
	})
	w := userDoRequest(router, http.MethodGet, "/users", nil)

	var got []models.User
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(got) != 2 || got[0].Username != "alice" || got[1].Username != "bob" {
		t.Errorf("unexpected users: %+v", got)
	}
}

func TestGetUserStats(t *testing.T) {
	tests := []struct {
		name           string
		statsFn        func(cqrs.GetUserStatsQuery) (*models.UserStatsView, error)
		expectedStatus int
	}{
		{
			name: "success - counter returned",
			statsFn: func(q cqrs.GetUserStatsQuery) (*models.UserStatsView, error) {
				return &models.UserStatsView{UserID: q.UserID, MessageCount: 3}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "not found - user does not exist",
			statsFn:        func(q cqrs.GetUserStatsQuery) (*models.UserStatsView, error) { return nil, apperrors.ErrUserNotFound },
			expectedStatus: http.StatusNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newUserTestRouter(&mockUserCommander{}, &mockUserQuerier{statsFn: tt.statsFn})
			w := userDoRequest(router, http.MethodGet, "/users/"+uTestUserID+"/stats", nil)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected status %d, got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}
