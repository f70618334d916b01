package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Habib-0007/habsblog-api/media"
	"github.com/Habib-0007/habsblog-api/middleware"
	"github.com/Habib-0007/habsblog-api/services"
	"github.com/Habib-0007/habsblog-api/utils"
)

// CommentController exposes comment CRUD and like-toggle endpoints.
type CommentController struct {
	comments *services.CommentService
	posts    *services.PostService
}

// NewCommentController creates a new CommentController instance.
func NewCommentController(db *gorm.DB, store media.Store) *CommentController {
	return &CommentController{
		comments: services.NewCommentService(db, store),
		posts:    services.NewPostService(db, store),
	}
}

// Create persists a comment or reply.
func (c *CommentController) Create(ctx *gin.Context) {
	var req struct {
		PostID   uint     `json:"post_id" binding:"required"`
		ParentID *uint    `json:"parent_id"`
		Content  string   `json:"content" binding:"required"`
		Images   []string `json:"images"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	comment, err := c.comments.Create(middleware.ActorFrom(ctx), services.CreateCommentInput{
		PostID:   req.PostID,
		ParentID: req.ParentID,
		Content:  req.Content,
		Images:   req.Images,
	})
	if err != nil {
		fail(ctx, err)
		return
	}
	utils.OK(ctx, http.StatusCreated, gin.H{"comment": comment})
}

// ListForPost returns a page of a post's top-level comments or, with a
// parent_id query value, of a parent's direct replies. The post segment
// accepts a numeric id or a slug.
func (c *CommentController) ListForPost(ctx *gin.Context) {
	actor := middleware.ActorFrom(ctx)
	post, err := c.posts.Resolve(actor, ctx.Param("id"))
	if err != nil {
		fail(ctx, err)
		return
	}

	page, limit := parsePagination(ctx)
	filters := services.CommentFilters{PostID: post.ID, Page: page, Limit: limit}
	if parent := ctx.Query("parent_id"); parent != "" {
		id, err := strconv.ParseUint(parent, 10, 64)
		if err != nil || id == 0 {
			utils.Fail(ctx, http.StatusBadRequest, "invalid parent_id")
			return
		}
		parentID := uint(id)
		filters.ParentID = &parentID
	}

	result, err := c.comments.List(actor, filters)
	if err != nil {
		fail(ctx, err)
		return
	}
	utils.OK(ctx, http.StatusOK, result)
}

// Get fetches one comment with its direct replies.
func (c *CommentController) Get(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	comment, err := c.comments.Get(middleware.ActorFrom(ctx), id)
	if err != nil {
		fail(ctx, err)
		return
	}
	utils.OK(ctx, http.StatusOK, gin.H{"comment": comment})
}

// Update applies a partial update to a comment.
func (c *CommentController) Update(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	var req struct {
		Content string   `json:"content"`
		Images  []string `json:"images"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	comment, err := c.comments.Update(middleware.ActorFrom(ctx), id, services.UpdateCommentInput{
		Content: req.Content,
		Images:  req.Images,
	})
	if err != nil {
		fail(ctx, err)
		return
	}
	utils.OK(ctx, http.StatusOK, gin.H{"comment": comment})
}

// Delete removes a comment and its direct replies.
func (c *CommentController) Delete(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	if err := c.comments.Delete(middleware.ActorFrom(ctx), id); err != nil {
		fail(ctx, err)
		return
	}
	utils.OK(ctx, http.StatusOK, gin.H{"message": "comment deleted"})
}

// ToggleLike flips the caller's like on a comment.
func (c *CommentController) ToggleLike(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	liked, likeCount, err := c.comments.ToggleLike(middleware.ActorFrom(ctx), id)
	if err != nil {
		fail(ctx, err)
		return
	}
	utils.OK(ctx, http.StatusOK, gin.H{"liked": liked, "likeCount": likeCount})
}
