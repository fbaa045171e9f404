package routes

import (
	"bingo-groups-backend/config"
	"bingo-groups-backend/controllers"
	"bingo-groups-backend/middleware"
	"bingo-groups-backend/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func SetupRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config, engine *services.Engine, hub *services.Hub) {
	auth := controllers.NewAuthHandler(db, cfg.JWTSecret, cfg.UploadDir)
	groups := controllers.NewGroupHandler(engine, cfg.UploadDir)
	games := controllers.NewGameHandler(engine)

	protect := middleware.Protect(db, cfg.JWTSecret)

	// ----------------------
	// Auth routes
	// ----------------------
	r.POST("/signup", auth.Signup)
	r.POST("/login", auth.Login)

	// ----------------------
	// Group routes
	// ----------------------
	api := r.Group("/api", protect)
	api.GET("/groups", groups.ListGroups)
	api.POST("/groups", groups.CreateGroup)
	api.GET("/groups/:id", groups.GetGroup)
	api.GET("/groups/:id/members", groups.GetMembers)
	api.POST("/groups/:id/join", groups.JoinGroup)
	api.POST("/groups/:id/leave", groups.LeaveGroup)
	api.POST("/groups/:id/set-prize", groups.SetPrize)

	// ----------------------
	// Game routes
	// ----------------------
	api.POST("/groups/:id/generate-cards", games.GenerateCards)
	api.POST("/groups/:id/cards", games.AddCards)
	api.DELETE("/groups/:id/cards", games.ClearCards)
	api.GET("/groups/:id/my-cards", games.MyCards)
	api.POST("/groups/:id/call-number", games.CallNumber)
	api.POST("/groups/:id/start-game", games.StartGame)
	api.POST("/groups/:id/set-mechanism", games.SetMechanism)
	api.POST("/groups/:id/set-timer", games.SetTimer)
	api.POST("/groups/:id/set-card-limit", games.SetCardLimit)
	api.POST("/groups/:id/check-card-limit", games.CheckCardLimit)
	api.POST("/groups/:id/restart-game", games.RestartGame)
	api.GET("/groups/:id/check-winner", games.CheckWinner)

	// ----------------------
	// WebSocket group watch
	// ----------------------
	r.GET("/ws/groups/:id", protect, services.WatchGroup(engine, hub))
}
