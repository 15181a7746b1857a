package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"threaded_comments/internal/domain/user/model"
	"threaded_comments/internal/domain/user/service"
	"threaded_comments/internal/pkg/middleware"
	"threaded_comments/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, input service.RegisterInput) (*service.AuthResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AuthResult), args.Error(1)
}

func (m *MockUserService) Login(ctx context.Context, email, password string) (*service.AuthResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AuthResult), args.Error(1)
}

func (m *MockUserService) GetUser(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

type MockInvitationService struct {
	mock.Mock
}

func (m *MockInvitationService) Invite(ctx context.Context, inviterID, email string) (*service.InvitationResult, error) {
	args := m.Called(ctx, inviterID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.InvitationResult), args.Error(1)
}

func (m *MockInvitationService) Validate(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}

func setupRouter(us *MockUserService, is *MockInvitationService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewUserHandler(us, is)

	// 模拟认证中间件
	asUser := func(c *gin.Context) {
		c.Set(middleware.ContextUserID, "u1")
		c.Next()
	}
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	r.GET("/auth/me", asUser, h.Me)
	r.POST("/auth/invitations", asUser, h.Invite)
	r.GET("/auth/invitation/:token", h.CheckInvitation)
	return r
}

func doJSON(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestRegisterHandler(t *testing.T) {
	t.Run("Created", func(t *testing.T) {
		us := new(MockUserService)
		r := setupRouter(us, new(MockInvitationService))
		user := &model.User{Username: "alice", Email: "alice@example.com", PasswordHash: "hash"}
		user.ID = "u1"

		us.On("Register", mock.Anything, service.RegisterInput{
			Username: "alice", Email: "alice@example.com", Password: "secret123", InvitationToken: "tok",
		}).Return(&service.AuthResult{Token: "jwt", User: user}, nil)

		w := doJSON(r, http.MethodPost, "/auth/register", map[string]string{
			"username": "alice", "email": "alice@example.com", "password": "secret123", "invitationToken": "tok",
		})

		assert.Equal(t, http.StatusCreated, w.Code)
		data := decode(t, w)["data"].(map[string]interface{})
		assert.Equal(t, "jwt", data["token"])
		assert.NotContains(t, w.Body.String(), "hash", "password hash is never serialized")
	})

	t.Run("Conflict", func(t *testing.T) {
		us := new(MockUserService)
		r := setupRouter(us, new(MockInvitationService))
		us.On("Register", mock.Anything, mock.Anything).Return(nil, service.ErrUserExists)

		w := doJSON(r, http.MethodPost, "/auth/register", map[string]string{
			"username": "alice", "email": "alice@example.com", "password": "secret123",
		})

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, float64(response.ErrUserExists), decode(t, w)["code"])
	})

	t.Run("Bad email", func(t *testing.T) {
		us := new(MockUserService)
		r := setupRouter(us, new(MockInvitationService))

		w := doJSON(r, http.MethodPost, "/auth/register", map[string]string{
			"username": "alice", "email": "nope", "password": "secret123",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		us.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
	})
}

func TestLoginHandler(t *testing.T) {
	us := new(MockUserService)
	r := setupRouter(us, new(MockInvitationService))
	us.On("Login", mock.Anything, "alice@example.com", "wrong").Return(nil, service.ErrInvalidCredentials)

	w := doJSON(r, http.MethodPost, "/auth/login", map[string]string{"email": "alice@example.com", "password": "wrong"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid credentials", decode(t, w)["message"])
}

func TestMeHandler(t *testing.T) {
	us := new(MockUserService)
	r := setupRouter(us, new(MockInvitationService))
	user := &model.User{Username: "alice"}
	user.ID = "u1"
	us.On("GetUser", mock.Anything, "u1").Return(user, nil)

	w := doJSON(r, http.MethodGet, "/auth/me", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "alice", data["username"])
}

func TestInvitationHandlers(t *testing.T) {
	is := new(MockInvitationService)
	r := setupRouter(new(MockUserService), is)

	is.On("Validate", mock.Anything, "good").Return("bob@example.com", nil)
	is.On("Validate", mock.Anything, "bad").Return("", service.ErrInvitationInvalid)
	is.On("Invite", mock.Anything, "u1", "bob@example.com").Return(&service.InvitationResult{EmailQueued: true}, nil)

	w := doJSON(r, http.MethodGet, "/auth/invitation/good", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "bob@example.com", decode(t, w)["data"].(map[string]interface{})["email"])

	w = doJSON(r, http.MethodGet, "/auth/invitation/bad", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, http.MethodPost, "/auth/invitations", map[string]string{"email": "bob@example.com"})
	assert.Equal(t, http.StatusCreated, w.Code)
	is.AssertExpectations(t)
}
