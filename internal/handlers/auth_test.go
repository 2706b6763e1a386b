package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/metro-fleet/internal/auth"
	"github.com/ukydev/metro-fleet/internal/db"
	"github.com/ukydev/metro-fleet/internal/middleware"
	"github.com/ukydev/metro-fleet/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockUserCollection is a mock implementation of UserCollection
type MockUserCollection struct {
	mock.Mock
}

func (m *MockUserCollection) InsertUser(ctx context.Context, user models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserCollection) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserCollection) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserCollection) UpdateLastLogin(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func postJSON(t *testing.T, h http.HandlerFunc, path string, v any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(v)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder, data any) Response {
	t.Helper()
	var raw struct {
		Response
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	if data != nil && len(raw.Data) > 0 {
		require.NoError(t, json.Unmarshal(raw.Data, data))
	}
	return raw.Response
}

func TestAuthHandler_Login(t *testing.T) {
	authService := auth.NewService("test-secret", time.Hour)

	passwordHash, err := authService.HashPassword("Metro123")
	require.NoError(t, err)
	user := &models.User{
		ID:           primitive.NewObjectID().Hex(),
		Email:        "ops@kmrl.in",
		Name:         "Ops",
		PasswordHash: passwordHash,
		Role:         models.RoleOperator,
	}

	t.Run("successful login", func(t *testing.T) {
		mockUserCollection := new(MockUserCollection)
		handler := NewAuthHandler(authService, mockUserCollection)

		mockUserCollection.On("FindUserByEmail", mock.Anything, "ops@kmrl.in").Return(user, nil)
		mockUserCollection.On("UpdateLastLogin", mock.Anything, user.ID).Return(nil)

		w := postJSON(t, handler.Login, "/api/auth/login", models.LoginRequest{Email: "ops@kmrl.in", Password: "Metro123"})
		assert.Equal(t, http.StatusOK, w.Code)

		var resp models.LoginResponse
		envelope := decodeResponse(t, w, &resp)
		assert.True(t, envelope.Success)
		assert.Equal(t, "Login successful", envelope.Message)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, user.Email, resp.User.Email)
		assert.NotContains(t, w.Body.String(), "password")

		claims, err := authService.ValidateToken(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID)
		mockUserCollection.AssertExpectations(t)
	})

	t.Run("unknown user", func(t *testing.T) {
		mockUserCollection := new(MockUserCollection)
		handler := NewAuthHandler(authService, mockUserCollection)
		mockUserCollection.On("FindUserByEmail", mock.Anything, "nobody@kmrl.in").Return(nil, db.ErrNotFound)

		w := postJSON(t, handler.Login, "/api/auth/login", models.LoginRequest{Email: "nobody@kmrl.in", Password: "Metro123"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("wrong password", func(t *testing.T) {
		mockUserCollection := new(MockUserCollection)
		handler := NewAuthHandler(authService, mockUserCollection)
		mockUserCollection.On("FindUserByEmail", mock.Anything, "ops@kmrl.in").Return(user, nil)

		w := postJSON(t, handler.Login, "/api/auth/login", models.LoginRequest{Email: "ops@kmrl.in", Password: "Wrong123"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		mockUserCollection.AssertNotCalled(t, "UpdateLastLogin", mock.Anything, mock.Anything)
	})

	t.Run("store failure", func(t *testing.T) {
		mockUserCollection := new(MockUserCollection)
		handler := NewAuthHandler(authService, mockUserCollection)
		mockUserCollection.On("FindUserByEmail", mock.Anything, "ops@kmrl.in").Return(nil, errors.New("connection reset"))

		w := postJSON(t, handler.Login, "/api/auth/login", models.LoginRequest{Email: "ops@kmrl.in", Password: "Metro123"})
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "connection reset")
	})

	t.Run("missing fields", func(t *testing.T) {
		handler := NewAuthHandler(authService, new(MockUserCollection))
		w := postJSON(t, handler.Login, "/api/auth/login", models.LoginRequest{Email: "ops@kmrl.in"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		handler := NewAuthHandler(authService, new(MockUserCollection))
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString("{"))
		w := httptest.NewRecorder()
		handler.Login(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthHandler_Register(t *testing.T) {
	authService := auth.NewService("test-secret", time.Hour)

	t.Run("successful registration", func(t *testing.T) {
		mockUserCollection := new(MockUserCollection)
		handler := NewAuthHandler(authService, mockUserCollection)
		mockUserCollection.On("InsertUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
			return u.Email == "new.user@kmrl.in" && u.Role == models.RoleOperator && u.PasswordHash != "Metro123"
		})).Return(nil)

		w := postJSON(t, handler.Register, "/api/auth/register", models.RegisterRequest{
			Email:    "New.User@kmrl.in",
			Name:     "New User",
			Password: "Metro123",
		})
		assert.Equal(t, http.StatusCreated, w.Code)

		var resp models.LoginResponse
		envelope := decodeResponse(t, w, &resp)
		assert.Equal(t, "Registration successful", envelope.Message)
		assert.NotEmpty(t, resp.Token)
		mockUserCollection.AssertExpectations(t)
	})

	t.Run("already registered", func(t *testing.T) {
		mockUserCollection := new(MockUserCollection)
		handler := NewAuthHandler(authService, mockUserCollection)
		mockUserCollection.On("InsertUser", mock.Anything, mock.Anything).Return(db.ErrAlreadyExists)

		w := postJSON(t, handler.Register, "/api/auth/register", models.RegisterRequest{
			Email: "ops@kmrl.in", Name: "Ops", Password: "Metro123",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("weak password", func(t *testing.T) {
		mockUserCollection := new(MockUserCollection)
		handler := NewAuthHandler(authService, mockUserCollection)

		w := postJSON(t, handler.Register, "/api/auth/register", models.RegisterRequest{
			Email: "ops@kmrl.in", Name: "Ops", Password: "metro123",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "uppercase")
		mockUserCollection.AssertNotCalled(t, "InsertUser", mock.Anything, mock.Anything)
	})

	t.Run("invalid email", func(t *testing.T) {
		handler := NewAuthHandler(authService, new(MockUserCollection))
		w := postJSON(t, handler.Register, "/api/auth/register", models.RegisterRequest{
			Email: "ops", Name: "Ops", Password: "Metro123",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthHandler_Check(t *testing.T) {
	authService := auth.NewService("test-secret", time.Hour)
	mockUserCollection := new(MockUserCollection)
	handler := NewAuthHandler(authService, mockUserCollection)

	mockUserCollection.On("FindUserByEmail", mock.Anything, "ops@kmrl.in").Return(&models.User{ID: "u1"}, nil)
	mockUserCollection.On("FindUserByEmail", mock.Anything, "new@kmrl.in").Return(nil, db.ErrNotFound)

	var data map[string]bool
	w := postJSON(t, handler.Check, "/api/user/check", map[string]string{"email": "ops@kmrl.in"})
	assert.Equal(t, http.StatusOK, w.Code)
	envelope := decodeResponse(t, w, &data)
	assert.True(t, data["isRegistered"])
	assert.Equal(t, "User exists", envelope.Message)

	data = nil
	w = postJSON(t, handler.Check, "/api/user/check", map[string]string{"email": "new@kmrl.in"})
	envelope = decodeResponse(t, w, &data)
	assert.False(t, data["isRegistered"])
	assert.Equal(t, "New user", envelope.Message)

	w = postJSON(t, handler.Check, "/api/user/check", map[string]string{"email": "nope"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_GetProfile(t *testing.T) {
	authService := auth.NewService("test-secret", time.Hour)
	mockUserCollection := new(MockUserCollection)
	handler := NewAuthHandler(authService, mockUserCollection)

	user := &models.User{ID: "u1", Email: "ops@kmrl.in", Name: "Ops", Role: models.RoleOperator}
	mockUserCollection.On("FindUserByID", mock.Anything, "u1").Return(user, nil)

	t.Run("with claims", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		ctx := context.WithValue(req.Context(), middleware.UserContextKey, &models.Claims{UserID: "u1", Role: models.RoleOperator})
		w := httptest.NewRecorder()
		handler.GetProfile(w, req.WithContext(ctx))

		assert.Equal(t, http.StatusOK, w.Code)
		var got models.User
		decodeResponse(t, w, &got)
		assert.Equal(t, "Ops", got.Name)
	})

	t.Run("without claims", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.GetProfile(w, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
