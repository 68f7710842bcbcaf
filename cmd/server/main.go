package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/mlegall/tabletop-sync/config"
	"github.com/mlegall/tabletop-sync/internal/dice"
	"github.com/mlegall/tabletop-sync/internal/handlers"
	"github.com/mlegall/tabletop-sync/internal/middleware"
	"github.com/mlegall/tabletop-sync/internal/redis"
	"github.com/mlegall/tabletop-sync/internal/relay"
	"github.com/mlegall/tabletop-sync/internal/store"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Open the sqlite database (users, characters, maps)
	db, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}

	// Connect to Redis (campaign metadata and presence)
	campaigns, err := redis.Connect(cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer campaigns.Close()

	log.Println("Redis connection established")

	// The relay hub owns room membership; redis tracks presence
	limits := dice.Limits{MaxCount: cfg.MaxDiceCount, MaxSides: cfg.MaxDiceSides}
	hub := relay.NewHub(limits, campaigns)

	// Setup Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	// Global CORS middleware (runs before routing)
	router.Use(handlers.OriginFilter(cfg.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	auth := middleware.JWTAuth(cfg.JWTSecret)
	gmOnly := middleware.RequireGameMaster()

	apiGroup := router.Group("/api")
	{
		// Accounts (public)
		apiGroup.POST("/auth/register", handlers.Register(db, cfg.JWTSecret))
		apiGroup.POST("/auth/login", handlers.Login(db, cfg.JWTSecret))

		// Campaign rooms
		apiGroup.POST("/campaigns", auth, handlers.CreateCampaign(campaigns))
		apiGroup.GET("/campaigns/:campaignId", handlers.GetCampaign(campaigns))
		apiGroup.DELETE("/campaigns/:campaignId", auth, handlers.DeleteCampaign(campaigns))

		// Character sheets
		apiGroup.GET("/characters", handlers.ListCharacters(db))
		apiGroup.POST("/characters", auth, handlers.CreateCharacter(db))
		apiGroup.PUT("/characters/:characterId", auth, handlers.UpdateCharacter(db))

		// Maps
		apiGroup.GET("/maps", handlers.ListMaps(db))
		apiGroup.GET("/maps/:mapId", handlers.GetMap(db))
		apiGroup.POST("/maps", auth, gmOnly, handlers.UploadMap(db, cfg.UploadDir, cfg.MaxUploadSize))
		apiGroup.PUT("/maps/:mapId/state", auth, gmOnly, handlers.SaveMapState(db))

		// Dice over REST
		apiGroup.POST("/roll", auth, handlers.RollDice(limits))
	}

	// Uploaded map images
	router.Static("/uploads", cfg.UploadDir)

	// WebSocket session endpoint
	wsGroup := router.Group("/ws")
	{
		wsGroup.GET("/session", handlers.HandleSession(hub, cfg.JWTSecret))
	}

	// Start server
	log.Printf("Starting tabletop sync server on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
