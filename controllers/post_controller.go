package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Habib-0007/habsblog-api/media"
	"github.com/Habib-0007/habsblog-api/middleware"
	"github.com/Habib-0007/habsblog-api/services"
	"github.com/Habib-0007/habsblog-api/utils"
)

// PostController exposes the post CRUD, like-toggle and markdown preview
// endpoints.
type PostController struct {
	posts *services.PostService
}

// NewPostController creates a new PostController instance.
func NewPostController(db *gorm.DB, store media.Store) *PostController {
	return &PostController{posts: services.NewPostService(db, store)}
}

type postRequest struct {
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Excerpt    string   `json:"excerpt"`
	CoverImage string   `json:"cover_image"`
	Tags       []string `json:"tags"`
	Status     string   `json:"status"`
}

// Create persists a new post owned by the caller.
func (p *PostController) Create(ctx *gin.Context) {
	var req postRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	post, err := p.posts.Create(middleware.ActorFrom(ctx), services.CreatePostInput{
		Title:      req.Title,
		Content:    req.Content,
		Excerpt:    req.Excerpt,
		CoverImage: req.CoverImage,
		Tags:       req.Tags,
		Status:     req.Status,
	})
	if err != nil {
		fail(ctx, err)
		return
	}
	utils.OK(ctx, http.StatusCreated, gin.H{"post": post})
}

// List returns a filtered, sorted page of posts. Anonymous published-only
// pages without a search term are served from and written to the cache;
// everything else always hits the store.
func (p *PostController) List(ctx *gin.Context) {
	actor := middleware.ActorFrom(ctx)
	page, limit := parsePagination(ctx)
	filters := services.PostFilters{
		Search: ctx.Query("search"),
		Tag:    ctx.Query("tag"),
		Status: ctx.Query("status"),
		SortBy: ctx.Query("sort"),
		Page:   page,
		Limit:  limit,
	}
	if author := ctx.Query("author"); author != "" {
		id, err := strconv.ParseUint(author, 10, 64)
		if err != nil {
			utils.Fail(ctx, http.StatusBadRequest, "invalid author")
			return
		}
		filters.Author = uint(id)
	}

	// Cache anonymous published lists without a search term to avoid cache
	// key explosion; likedByMe and drafts make other variants per-caller.
	cacheable := actor.Anonymous() && filters.Search == "" &&
		(filters.Status == "" || filters.Status == "published")
	cacheKey := fmt.Sprintf("%stag=%s:author=%d:sort=%s:page=%d:limit=%d",
		utils.CachePostListPrefix, filters.Tag, filters.Author, filters.SortBy, page, limit)
	if cacheable {
		if b, ok := utils.CacheGetBytes(cacheKey); ok {
			ctx.Data(http.StatusOK, "application/json; charset=utf-8", b)
			return
		}
	}

	result, err := p.posts.List(actor, filters)
	if err != nil {
		fail(ctx, err)
		return
	}

	if cacheable {
		wrapper := struct {
			Success bool        `json:"success"`
			Data    interface{} `json:"data"`
		}{Success: true, Data: result}
		utils.CacheSetJSON(cacheKey, wrapper, time.Hour)
	}
	utils.OK(ctx, http.StatusOK, result)
}

// ListDrafts returns the caller's own drafts.
func (p *PostController) ListDrafts(ctx *gin.Context) {
	page, limit := parsePagination(ctx)
	result, err := p.posts.ListDrafts(middleware.ActorFrom(ctx), page, limit)
	if err != nil {
		fail(ctx, err)
		return
	}
	utils.OK(ctx, http.StatusOK, result)
}

// Get fetches one post by numeric id or slug.
func (p *PostController) Get(ctx *gin.Context) {
	post, err := p.posts.Get(middleware.ActorFrom(ctx), ctx.Param("id"))
	if err != nil {
		fail(ctx, err)
		return
	}
	utils.OK(ctx, http.StatusOK, gin.H{"post": post})
}

// Update applies a partial update to a post.
func (p *PostController) Update(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	var req postRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	post, err := p.posts.Update(middleware.ActorFrom(ctx), id, services.UpdatePostInput{
		Title:      req.Title,
		Content:    req.Content,
		Excerpt:    req.Excerpt,
		CoverImage: req.CoverImage,
		Tags:       req.Tags,
		Status:     req.Status,
	})
	if err != nil {
		fail(ctx, err)
		return
	}
	utils.OK(ctx, http.StatusOK, gin.H{"post": post})
}

// Delete removes a post and its dependent records.
func (p *PostController) Delete(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	if err := p.posts.Delete(middleware.ActorFrom(ctx), id); err != nil {
		fail(ctx, err)
		return
	}
	utils.OK(ctx, http.StatusOK, gin.H{"message": "post deleted"})
}

// ToggleLike flips the caller's like on a post.
func (p *PostController) ToggleLike(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	liked, likeCount, err := p.posts.ToggleLike(middleware.ActorFrom(ctx), id)
	if err != nil {
		fail(ctx, err)
		return
	}
	utils.OK(ctx, http.StatusOK, gin.H{"liked": liked, "likeCount": likeCount})
}

// Preview renders markdown to sanitized HTML without persisting anything.
func (p *PostController) Preview(ctx *gin.Context) {
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}
	utils.OK(ctx, http.StatusOK, gin.H{"html": utils.RenderMarkdown(req.Content)})
}
