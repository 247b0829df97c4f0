package controllers

import (
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/habitflow/habitflow/config"
	"github.com/habitflow/habitflow/middleware"
	"github.com/habitflow/habitflow/models"
	"github.com/habitflow/habitflow/remote"
	"github.com/habitflow/habitflow/utils"
)

// AuthController handles registration, login and session endpoints.
type AuthController struct {
	db       *gorm.DB
	svc      *remote.Service
	sessions *Sessions
}

// NewAuthController creates an AuthController.
func NewAuthController(db *gorm.DB, svc *remote.Service, sessions *Sessions) *AuthController {
	return &AuthController{db: db, svc: svc, sessions: sessions}
}

// Register creates an account from email and password and returns a JWT.
func (a *AuthController) Register(ctx *gin.Context) {
	type request struct {
		Email           string `json:"email" binding:"required"`
		Password        string `json:"password" binding:"required,min=6"`
		ConfirmPassword string `json:"confirm_password"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40002, "invalid email address")
		return
	}
	if len(req.Password) < 6 || len(req.Password) > 72 {
		utils.Error(ctx, http.StatusBadRequest, 40003, "password must be 6-72 characters")
		return
	}
	if req.ConfirmPassword != "" && req.ConfirmPassword != req.Password {
		utils.Error(ctx, http.StatusBadRequest, 40004, "passwords do not match")
		return
	}

	var existing models.User
	if err := a.db.Where("email = ?", email).First(&existing).Error; err == nil {
		utils.Error(ctx, http.StatusConflict, 40901, "email already registered")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50001, "failed to hash password")
		return
	}

	user := models.User{
		Email:        email,
		PasswordHash: hash,
		RegisterIP:   ctx.ClientIP(),
	}
	if err := a.db.Create(&user).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50002, "failed to create user")
		return
	}

	// Provision the profile now so defaults are visible on first login.
	if _, err := a.svc.GetOrCreateProfile(ctx.Request.Context(), user.ID, user.Email); err != nil {
		utils.Sugar.Warnf("profile provisioning failed user=%d err=%v", user.ID, err)
	}

	token, err := utils.GenerateToken(user.ID, user.Email, tokenTTL())
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50003, "failed to generate token")
		return
	}

	utils.Success(ctx, gin.H{
		"token": token,
		"user":  user,
	})
}

// Login verifies credentials and returns a fresh JWT.
func (a *AuthController) Login(ctx *gin.Context) {
	type request struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	var user models.User
	if err := a.db.Where("email = ?", email).First(&user).Error; err != nil {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "invalid email or password")
		return
	}
	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "invalid email or password")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Email, tokenTTL())
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50003, "failed to generate token")
		return
	}

	utils.Success(ctx, gin.H{
		"token": token,
		"user":  user,
	})
}

// Logout revokes the presented token and drops the user's session state.
func (a *AuthController) Logout(ctx *gin.Context) {
	authHeader := ctx.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		tokenString := strings.TrimSpace(parts[1])
		if claims, err := utils.ParseToken(tokenString); err == nil && claims.ExpiresAt != nil {
			utils.RevokeToken(tokenString, claims.ExpiresAt.Time)
		}
	}

	userID := ctx.GetUint(middleware.ContextUserIDKey)
	if userID != 0 {
		a.sessions.drop(userID)
	}

	utils.Success(ctx, gin.H{"logged_out": true})
}

// Me returns the authenticated user's account record.
func (a *AuthController) Me(ctx *gin.Context) {
	userID := ctx.GetUint(middleware.ContextUserIDKey)
	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40410, "user not found")
		return
	}
	utils.Success(ctx, user)
}

func tokenTTL() time.Duration {
	hours := config.Get().TokenTTLHours
	if hours <= 0 {
		hours = 72
	}
	return time.Duration(hours) * time.Hour
}
