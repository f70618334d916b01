package main

import (
	"time"

	"github.com/Habib-0007/habsblog-api/config"
	"github.com/Habib-0007/habsblog-api/media"
	"github.com/Habib-0007/habsblog-api/models"
	"github.com/Habib-0007/habsblog-api/routes"
	"github.com/Habib-0007/habsblog-api/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.Post{},
		&models.PostTag{},
		&models.PostLike{},
		&models.Comment{},
		&models.CommentLike{},
		&models.AuthToken{},
	)

	store, err := media.NewLocalStore(cfg.UploadDir, cfg.UploadBaseURL)
	if err != nil {
		utils.Sugar.Fatalf("media store init failed: %v", err)
	}

	r := routes.SetupRouter(db, store)

	// Sweep expired refresh and password-reset tokens in the background
	utils.StartTokenCleaner(db, 10*time.Minute)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
