package main

import (
	"github.com/Morfeas98/GameCollectionApp/internal/config"
	"github.com/Morfeas98/GameCollectionApp/internal/database"
	"github.com/Morfeas98/GameCollectionApp/internal/handler"
	"github.com/Morfeas98/GameCollectionApp/internal/logging"
	"github.com/Morfeas98/GameCollectionApp/internal/metrics"
	"github.com/Morfeas98/GameCollectionApp/internal/store"

	"github.com/gin-gonic/gin"

	// Swagger imports
	_ "github.com/Morfeas98/GameCollectionApp/docs" // This is important for swag to find the generated docs
)

func init() {
	config.LoadConfig()
}

// @title           Game Collection API
// @version         1.0
// @description     Game catalog, personal collections and activity feed.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apiKey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.AppConfig
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	// Connect to the database
	db, err := database.Connect(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to connect to database")
	}

	s := store.New(db)
	h := handler.New(s, cfg.JWTSecret)

	router := gin.New()
	router.Use(gin.Recovery(), logging.GinMiddleware(), metrics.GinMiddleware())
	h.RegisterRoutes(router, s)

	addr := ":" + cfg.Port
	logging.Info().Str("addr", addr).Msg("Server is running")
	logging.Info().Msgf("Swagger UI is available at http://localhost%s/swagger/index.html", addr)
	if err := router.Run(addr); err != nil {
		logging.Fatal().Err(err).Msg("Server stopped")
	}
}
