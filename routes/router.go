package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Habib-0007/habsblog-api/config"
	"github.com/Habib-0007/habsblog-api/controllers"
	"github.com/Habib-0007/habsblog-api/media"
	"github.com/Habib-0007/habsblog-api/middleware"
	"github.com/Habib-0007/habsblog-api/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB, store media.Store) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestLogger())

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	// Uploaded media is served straight off disk.
	r.Static("/uploads", cfg.UploadDir)

	r.GET("/health", func(ctx *gin.Context) {
		utils.OK(ctx, http.StatusOK, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(db, store)
	postController := controllers.NewPostController(db, store)
	commentController := controllers.NewCommentController(db, store)
	adminController := controllers.NewAdminController(db, store)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/refresh", authController.Refresh)
	authGroup.POST("/forgot-password", authController.ForgotPassword)
	authGroup.PUT("/reset-password/:token", authController.ResetPassword)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)
	authGroup.PUT("/profile", middleware.AuthRequired(), authController.UpdateProfile)
	authGroup.PUT("/password", middleware.AuthRequired(), authController.UpdatePassword)

	postsGroup := api.Group("/posts")
	postsGroup.GET("", middleware.AuthOptional(), postController.List)
	postsGroup.GET("/drafts", middleware.AuthRequired(), postController.ListDrafts)
	postsGroup.GET("/:id", middleware.AuthOptional(), postController.Get)
	postsGroup.GET("/:id/comments", middleware.AuthOptional(), commentController.ListForPost)
	postsGroup.POST("", middleware.AuthRequired(), postController.Create)
	postsGroup.POST("/preview", middleware.AuthRequired(), postController.Preview)
	postsGroup.PUT("/:id", middleware.AuthRequired(), postController.Update)
	postsGroup.DELETE("/:id", middleware.AuthRequired(), postController.Delete)
	postsGroup.POST("/:id/like", middleware.AuthRequired(), postController.ToggleLike)

	commentsGroup := api.Group("/comments")
	commentsGroup.GET("/:id", middleware.AuthOptional(), commentController.Get)
	commentsGroup.POST("", middleware.AuthRequired(), commentController.Create)
	commentsGroup.PUT("/:id", middleware.AuthRequired(), commentController.Update)
	commentsGroup.DELETE("/:id", middleware.AuthRequired(), commentController.Delete)
	commentsGroup.POST("/:id/like", middleware.AuthRequired(), commentController.ToggleLike)

	adminGroup := api.Group("/admin")
	adminGroup.Use(middleware.AuthRequired())
	adminGroup.GET("/users", adminController.ListUsers)
	adminGroup.GET("/posts", adminController.ListPosts)
	adminGroup.GET("/comments", adminController.ListComments)
	adminGroup.PUT("/users/:id/role", adminController.UpdateUserRole)
	adminGroup.DELETE("/users/:id", adminController.DeleteUser)
	adminGroup.GET("/stats", adminController.Stats)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Fail(ctx, http.StatusNotFound, "route not found")
	})

	return r
}
