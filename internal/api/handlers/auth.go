package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/merke/chattr/internal/api/middleware"
	"github.com/merke/chattr/internal/crypto"
	"github.com/merke/chattr/internal/email"
	"github.com/merke/chattr/internal/logger"
	"github.com/merke/chattr/internal/models"
	"github.com/merke/chattr/internal/wire"
)

const (
	// otpTTL is how long a password-reset code remains valid.
	otpTTL = 10 * time.Minute
	// minPasswordLen is the minimum accepted password length.
	minPasswordLen = 6
)

type AuthHandler struct {
	db         *sql.DB
	queries    *models.Queries
	jwtManager *crypto.JWTManager
	mailer     *email.Mailer
}

func NewAuthHandler(db *sql.DB, jwtManager *crypto.JWTManager, mailer *email.Mailer) *AuthHandler {
	return &AuthHandler{
		db:         db,
		queries:    models.New(db),
		jwtManager: jwtManager,
		mailer:     mailer,
	}
}

type signupRequest struct {
	FullName string `json:"fullName" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Bio      string `json:"bio" binding:"required"`
}

// passwordSpecials is the character set a password must draw at least one
// character from.
const passwordSpecials = "!@#$%^&*()_+-=[]{};':\"\\|,.<>/?"

func validPassword(password string) bool {
	if len(password) < minPasswordLen {
		return false
	}
	return strings.ContainsAny(password, passwordSpecials)
}

// Signup registers a new account and returns a signed token.
// POST /api/users/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "All fields are required"})
		return
	}

	if !validPassword(req.Password) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Password must be at least 6 characters long and contain a special character",
		})
		return
	}

	if _, err := h.queries.GetUserByEmail(c.Request.Context(), req.Email); err == nil {
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "User already exists"})
		return
	} else if !errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "database error"})
		return
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to create account"})
		return
	}

	user, err := h.queries.CreateUser(c.Request.Context(), models.CreateUserParams{
		ID:           uuid.NewString(),
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: hash,
		Bio:          req.Bio,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to create account"})
		return
	}

	token, err := h.jwtManager.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"userData": wire.NewUserView(user),
		"token":    token,
		"message":  "Account created successfully",
	})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials and returns a signed token.
// POST /api/users/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "All fields are required"})
		return
	}

	user, err := h.queries.GetUserByEmail(c.Request.Context(), req.Email)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !crypto.CheckPassword(user.PasswordHash, req.Password)) {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid credentials"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "database error"})
		return
	}

	token, err := h.jwtManager.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"userData": wire.NewUserView(user),
		"token":    token,
		"message":  "Login successful",
	})
}

// Check returns the authenticated user's profile.
// GET /api/users/check
func (h *AuthHandler) Check(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	user, err := h.queries.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": wire.NewUserView(user)})
}

type resetRequestBody struct {
	Email string `json:"email" binding:"required"`
}

// RequestPasswordReset issues a one-time code to the account's email.
// POST /api/users/request-password-reset
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req resetRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Email is required"})
		return
	}

	if _, err := h.queries.GetUserByEmail(c.Request.Context(), req.Email); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Email not found"})
		return
	}

	// Best-effort pruning.
	_ = h.queries.DeleteExpiredPasswordOTPs(c.Request.Context())

	code, err := crypto.NewOTPCode()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to generate code"})
		return
	}

	if err := h.queries.CreatePasswordOTP(c.Request.Context(), models.CreatePasswordOTPParams{
		ID:        uuid.NewString(),
		Email:     req.Email,
		Code:      code,
		ExpiresAt: time.Now().Add(otpTTL),
	}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to store code"})
		return
	}

	if err := h.mailer.SendOTP(req.Email, code); err != nil {
		logger.Errorf("Failed to send reset code to %s: %v", req.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to send OTP email"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "OTP sent to your email"})
}

type resetPasswordBody struct {
	Email       string `json:"email" binding:"required"`
	OTP         string `json:"otp" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// ResetPassword consumes a one-time code and sets a new password.
// POST /api/users/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "All fields are required"})
		return
	}

	if !validPassword(req.NewPassword) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Password must be at least 6 characters long and contain a special character",
		})
		return
	}

	otp, err := h.queries.GetPasswordOTP(c.Request.Context(), models.GetPasswordOTPParams{
		Email: req.Email,
		Code:  req.OTP,
	})
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid or expired OTP"})
		return
	}

	if time.Now().After(otp.ExpiresAt) {
		_ = h.queries.DeletePasswordOTP(c.Request.Context(), otp.ID)
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "OTP has expired"})
		return
	}

	user, err := h.queries.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
		return
	}

	hash, err := crypto.HashPassword(req.NewPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to reset password"})
		return
	}

	if err := h.queries.UpdateUserPassword(c.Request.Context(), models.UpdateUserPasswordParams{
		PasswordHash: hash,
		ID:           user.ID,
	}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to reset password"})
		return
	}

	// Consume the code.
	_ = h.queries.DeletePasswordOTP(c.Request.Context(), otp.ID)

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password reset successfully"})
}
