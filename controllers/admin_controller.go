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

// AdminController exposes the moderation and dashboard endpoints.
type AdminController struct {
	admin *services.AdminService
}

// NewAdminController creates a new AdminController instance.
func NewAdminController(db *gorm.DB, store media.Store) *AdminController {
	return &AdminController{admin: services.NewAdminService(db, store)}
}

// ListUsers returns one page of all accounts.
func (a *AdminController) ListUsers(ctx *gin.Context) {
	page, limit := parsePagination(ctx)
	result, err := a.admin.ListUsers(middleware.ActorFrom(ctx), page, limit)
	if err != nil {
		fail(ctx, err)
		return
	}
	utils.OK(ctx, http.StatusOK, result)
}

// ListPosts returns one page of every post regardless of status.
func (a *AdminController) ListPosts(ctx *gin.Context) {
	page, limit := parsePagination(ctx)
	result, err := a.admin.ListPosts(middleware.ActorFrom(ctx), page, limit)
	if err != nil {
		fail(ctx, err)
		return
	}
	utils.OK(ctx, http.StatusOK, result)
}

// ListComments returns one page of every comment on the platform.
func (a *AdminController) ListComments(ctx *gin.Context) {
	page, limit := parsePagination(ctx)
	result, err := a.admin.ListComments(middleware.ActorFrom(ctx), page, limit)
	if err != nil {
		fail(ctx, err)
		return
	}
	utils.OK(ctx, http.StatusOK, result)
}

// UpdateUserRole promotes or demotes an account.
func (a *AdminController) UpdateUserRole(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	user, err := a.admin.UpdateUserRole(middleware.ActorFrom(ctx), id, req.Role)
	if err != nil {
		fail(ctx, err)
		return
	}
	utils.OK(ctx, http.StatusOK, gin.H{"user": user})
}

// DeleteUser removes an account and everything it authored.
func (a *AdminController) DeleteUser(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	if err := a.admin.DeleteUser(middleware.ActorFrom(ctx), id); err != nil {
		fail(ctx, err)
		return
	}
	utils.OK(ctx, http.StatusOK, gin.H{"message": "user deleted"})
}

// Stats returns the dashboard rollup.
func (a *AdminController) Stats(ctx *gin.Context) {
	stats, err := a.admin.Dashboard(middleware.ActorFrom(ctx))
	if err != nil {
		fail(ctx, err)
		return
	}
	utils.OK(ctx, http.StatusOK, stats)
}
