package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/metro-fleet/internal/auth"
	"github.com/ukydev/metro-fleet/internal/db"
	"github.com/ukydev/metro-fleet/internal/middleware"
	"github.com/ukydev/metro-fleet/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	authService    *auth.Service
	userCollection db.UserCollection
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService *auth.Service, userCollection db.UserCollection) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		userCollection: userCollection,
	}
}

// Login handles user login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var loginReq models.LoginRequest
	if !decodeJSON(w, r, &loginReq, false) {
		return
	}
	loginReq.Email = strings.TrimSpace(loginReq.Email)
	if loginReq.Email == "" || loginReq.Password == "" {
		respondError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := h.userCollection.FindUserByEmail(r.Context(), loginReq.Email)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			respondErr(w, auth.ErrInvalidCredentials)
			return
		}
		respondErr(w, err)
		return
	}
	if !h.authService.CheckPassword(loginReq.Password, user.PasswordHash) {
		respondErr(w, auth.ErrInvalidCredentials)
		return
	}

	token, err := h.authService.GenerateToken(user)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	if err := h.userCollection.UpdateLastLogin(r.Context(), user.ID); err != nil {
		log.WithError(err).WithField("user_id", user.ID).Warn("Failed to update last login")
	} else {
		now := time.Now().UTC()
		user.LastLogin = &now
	}

	respond(w, http.StatusOK, models.LoginResponse{Token: token, User: *user}, "Login successful")
}

// Register handles user registration
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var registerReq models.RegisterRequest
	if !decodeJSON(w, r, &registerReq, false) {
		return
	}
	registerReq.Email = strings.TrimSpace(registerReq.Email)

	if err := h.authService.ValidateName(registerReq.Name); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.authService.ValidateEmail(registerReq.Email); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.authService.ValidatePassword(registerReq.Password); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	passwordHash, err := h.authService.HashPassword(registerReq.Password)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	user := models.User{
		ID:           primitive.NewObjectID().Hex(),
		Email:        strings.ToLower(registerReq.Email),
		Name:         strings.TrimSpace(registerReq.Name),
		PasswordHash: passwordHash,
		Role:         models.RoleOperator,
		CreatedAt:    time.Now().UTC(),
	}
	if err := h.userCollection.InsertUser(r.Context(), user); err != nil {
		if errors.Is(err, db.ErrAlreadyExists) {
			respondError(w, http.StatusConflict, auth.ErrUserExists.Error())
			return
		}
		respondErr(w, err)
		return
	}

	token, err := h.authService.GenerateToken(&user)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	log.WithFields(log.Fields{"user_id": user.ID, "email": user.Email}).Info("User registered")
	respond(w, http.StatusCreated, models.LoginResponse{Token: token, User: user}, "Registration successful")
}

// Check reports whether an email is already registered.
func (h *AuthHandler) Check(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decodeJSON(w, r, &req, false) {
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := h.authService.ValidateEmail(req.Email); err != nil {
		respondError(w, http.StatusBadRequest, "Valid email address required")
		return
	}

	registered := true
	if _, err := h.userCollection.FindUserByEmail(r.Context(), req.Email); err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			respondErr(w, err)
			return
		}
		registered = false
	}
	message := "New user"
	if registered {
		message = "User exists"
	}
	respond(w, http.StatusOK, map[string]bool{"isRegistered": registered}, message)
}

// GetProfile returns the current user's profile
func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	user, err := h.userCollection.FindUserByID(r.Context(), claims.UserID)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, user, "")
}
