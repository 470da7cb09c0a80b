package handler

import (
	"net/http"
	"strings"

	"todotrack/internal/auth"
	"todotrack/internal/model"
	"todotrack/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type UserHandler struct {
	repo           repository.UserRepositoryInterface
	logs           ActivityLogger
	jwtSecret      string
	jwtExpiryHours int
}

func NewUserHandler(repo repository.UserRepositoryInterface, logs ActivityLogger, jwtSecret string, jwtExpiryHours int) *UserHandler {
	return &UserHandler{
		repo:           repo,
		logs:           logs,
		jwtSecret:      jwtSecret,
		jwtExpiryHours: jwtExpiryHours,
	}
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6"`
}

type UserInfo struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	CreatedAt string `json:"created_at"`
}

type AuthResponse struct {
	User  UserInfo `json:"user"`
	Token string   `json:"token"`
}

func toUserInfo(user *model.User) UserInfo {
	return UserInfo{
		ID:        user.ID.String(),
		Username:  user.Username,
		CreatedAt: user.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

// Register creates an account and signs the user in
// @Summary      Register a new user
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Credentials"
// @Success      201 {object} AuthResponse
// @Failure      409 {object} map[string]any
// @Router       /api/auth/register [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid input", "validation")
		return
	}

	req.Username = strings.TrimSpace(req.Username)

	existing, err := h.repo.FindByUsername(c.Request.Context(), req.Username)
	if err != nil {
		handleRepoError(c, h.logs, uuid.Nil, "register", err)
		return
	}
	if existing != nil {
		respondError(c, http.StatusConflict, "User with this username already exists", "conflict")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Internal server error", "internal")
		return
	}

	user := &model.User{
		ID:           uuid.New(),
		Username:     req.Username,
		PasswordHash: string(hash),
	}

	// The unique index backstops the existence check above under
	// concurrent registration.
	if err := h.repo.Create(c.Request.Context(), user); err != nil {
		handleRepoError(c, h.logs, uuid.Nil, "register", err)
		return
	}

	token, err := auth.GenerateToken(user.ID.String(), h.jwtSecret, h.jwtExpiryHours)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Internal server error", "internal")
		return
	}

	h.logs.Record(c.Request.Context(), user.ID, model.ActionUserRegister, model.LogDetails{
		"username": user.Username,
	})

	respondData(c, http.StatusCreated, AuthResponse{User: toUserInfo(user), Token: token})
}

// Login validates credentials and issues a token
// @Summary      Log in
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Credentials"
// @Success      200 {object} AuthResponse
// @Failure      401 {object} map[string]any
// @Router       /api/auth/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid input", "validation")
		return
	}

	user, err := h.repo.FindByUsername(c.Request.Context(), req.Username)
	if err != nil {
		handleRepoError(c, h.logs, uuid.Nil, "login", err)
		return
	}
	if user == nil {
		respondError(c, http.StatusUnauthorized, "Invalid credentials", "auth")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		respondError(c, http.StatusUnauthorized, "Invalid credentials", "auth")
		return
	}

	token, err := auth.GenerateToken(user.ID.String(), h.jwtSecret, h.jwtExpiryHours)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Internal server error", "internal")
		return
	}

	h.logs.Record(c.Request.Context(), user.ID, model.ActionUserLogin, model.LogDetails{
		"username": user.Username,
	})

	respondData(c, http.StatusOK, AuthResponse{User: toUserInfo(user), Token: token})
}

// Me returns the authenticated user's profile
// @Summary      Current user
// @Tags         Auth
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} UserInfo
// @Router       /api/auth/user [get]
func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	user, err := h.repo.GetByID(c.Request.Context(), userID)
	if err != nil {
		handleRepoError(c, h.logs, userID, "get_user_info", err)
		return
	}
	if user == nil {
		respondError(c, http.StatusNotFound, "User not found", "not_found")
		return
	}

	respondData(c, http.StatusOK, toUserInfo(user))
}

// UpdateProfile changes the username
// @Summary      Update profile
// @Tags         Auth
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body UpdateProfileRequest true "New profile fields"
// @Success      200 {object} UserInfo
// @Failure      409 {object} map[string]any
// @Router       /api/auth/profile [put]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid input", "validation")
		return
	}

	user, err := h.repo.UpdateUsername(c.Request.Context(), userID, strings.TrimSpace(req.Username))
	if err != nil {
		handleRepoError(c, h.logs, userID, "update_profile", err)
		return
	}

	h.logs.Record(c.Request.Context(), userID, model.ActionUserUpdateProfile, model.LogDetails{
		"username": user.Username,
	})

	respondData(c, http.StatusOK, toUserInfo(user))
}

// ChangePassword verifies the current password before setting a new one
// @Summary      Change password
// @Tags         Auth
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body ChangePasswordRequest true "Passwords"
// @Success      200 {object} map[string]any
// @Failure      401 {object} map[string]any
// @Router       /api/auth/password [put]
func (h *UserHandler) ChangePassword(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid input", "validation")
		return
	}

	user, err := h.repo.GetByID(c.Request.Context(), userID)
	if err != nil {
		handleRepoError(c, h.logs, userID, "change_password", err)
		return
	}
	if user == nil {
		respondError(c, http.StatusNotFound, "User not found", "not_found")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		h.logs.Record(c.Request.Context(), userID, model.ActionPasswordChangeFailed, nil)
		respondError(c, http.StatusUnauthorized, "Current password is incorrect", "auth")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Internal server error", "internal")
		return
	}

	if err := h.repo.UpdatePassword(c.Request.Context(), userID, string(hash)); err != nil {
		handleRepoError(c, h.logs, userID, "change_password", err)
		return
	}

	h.logs.Record(c.Request.Context(), userID, model.ActionPasswordChange, nil)

	respondDataMessage(c, http.StatusOK, nil, "Password changed")
}
