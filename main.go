package main

import (
	"net/http"
	"os"
	"time"

	"bingo-groups-backend/config"
	"bingo-groups-backend/repository"
	"bingo-groups-backend/routes"
	"bingo-groups-backend/services"
	"bingo-groups-backend/utils/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Errorf("configuration: %v", err)
		os.Exit(1)
	}

	db, err := config.SetupDatabase(cfg.DatabaseURL)
	if err != nil {
		logger.Errorf("database: %v", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		logger.Errorf("upload dir: %v", err)
		os.Exit(1)
	}

	engine := services.NewEngine(repository.NewGormGroupStore(db))
	hub := services.NewHub()
	engine.SetOnChange(hub.BroadcastGroup)

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.SetupRoutes(r, db, cfg, engine, hub)

	r.Static("/uploads", cfg.UploadDir)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now()})
	})

	logger.Infof("bingo groups server starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Errorf("server stopped: %v", err)
		os.Exit(1)
	}
}
