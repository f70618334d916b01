package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Habib-0007/habsblog-api/media"
	"github.com/Habib-0007/habsblog-api/middleware"
	"github.com/Habib-0007/habsblog-api/services"
	"github.com/Habib-0007/habsblog-api/utils"
)

// AuthController exposes registration, session and profile endpoints.
type AuthController struct {
	auth *services.AuthService
}

// NewAuthController creates a new AuthController instance.
func NewAuthController(db *gorm.DB, store media.Store) *AuthController {
	return &AuthController{auth: services.NewAuthService(db, store)}
}

// Register creates an account and signs the first token pair.
func (a *AuthController) Register(ctx *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
		Avatar   string `json:"avatar"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	user, err := a.auth.Register(services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Avatar:   req.Avatar,
	})
	if err != nil {
		fail(ctx, err)
		return
	}

	pair, err := a.auth.IssueTokens(user)
	if err != nil {
		fail(ctx, err)
		return
	}

	utils.OK(ctx, http.StatusCreated, gin.H{
		"user":          user,
		"token":         pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

// Login verifies credentials and signs a token pair.
func (a *AuthController) Login(ctx *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	user, err := a.auth.Login(req.Email, req.Password)
	if err != nil {
		fail(ctx, err)
		return
	}

	pair, err := a.auth.IssueTokens(user)
	if err != nil {
		fail(ctx, err)
		return
	}

	utils.OK(ctx, http.StatusOK, gin.H{
		"user":          user,
		"token":         pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

// Refresh exchanges a refresh token for a new access token.
func (a *AuthController) Refresh(ctx *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	access, err := a.auth.Refresh(req.RefreshToken)
	if err != nil {
		fail(ctx, err)
		return
	}
	utils.OK(ctx, http.StatusOK, gin.H{"token": access})
}

// Logout revokes the presented access token and deletes the refresh token.
func (a *AuthController) Logout(ctx *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	_ = ctx.ShouldBindJSON(&req)

	actor := middleware.ActorFrom(ctx)
	if err := a.auth.Logout(actor, req.RefreshToken, ctx.GetString(middleware.ContextTokenKey)); err != nil {
		fail(ctx, err)
		return
	}
	utils.OK(ctx, http.StatusOK, gin.H{"message": "logged out"})
}

// Me returns the authenticated user's own record.
func (a *AuthController) Me(ctx *gin.Context) {
	actor := middleware.ActorFrom(ctx)
	user, err := a.auth.GetUser(actor.ID)
	if err != nil {
		fail(ctx, err)
		return
	}
	utils.OK(ctx, http.StatusOK, gin.H{"user": user})
}

// UpdateProfile applies a partial update to the caller's profile.
func (a *AuthController) UpdateProfile(ctx *gin.Context) {
	var req struct {
		Name   string `json:"name"`
		Email  string `json:"email"`
		Bio    string `json:"bio"`
		Avatar string `json:"avatar"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	actor := middleware.ActorFrom(ctx)
	user, err := a.auth.UpdateProfile(actor, services.UpdateProfileInput{
		Name:   req.Name,
		Email:  req.Email,
		Bio:    req.Bio,
		Avatar: req.Avatar,
	})
	if err != nil {
		fail(ctx, err)
		return
	}
	utils.OK(ctx, http.StatusOK, gin.H{"user": user})
}

// UpdatePassword verifies the current password and sets a new one.
func (a *AuthController) UpdatePassword(ctx *gin.Context) {
	var req struct {
		CurrentPassword string `json:"current_password" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	actor := middleware.ActorFrom(ctx)
	if err := a.auth.UpdatePassword(actor, req.CurrentPassword, req.NewPassword); err != nil {
		fail(ctx, err)
		return
	}
	utils.OK(ctx, http.StatusOK, gin.H{"message": "password updated"})
}

// ForgotPassword mails a reset link for the account.
func (a *AuthController) ForgotPassword(ctx *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	if err := a.auth.ForgotPassword(req.Email); err != nil {
		fail(ctx, err)
		return
	}
	utils.OK(ctx, http.StatusOK, gin.H{"message": "reset email sent"})
}

// ResetPassword consumes the token from the reset link.
func (a *AuthController) ResetPassword(ctx *gin.Context) {
	var req struct {
		Password string `json:"password" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	if err := a.auth.ResetPassword(ctx.Param("token"), req.Password); err != nil {
		fail(ctx, err)
		return
	}
	utils.OK(ctx, http.StatusOK, gin.H{"message": "password reset successful"})
}
