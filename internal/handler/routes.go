package handler

import (
	"net/http"

	"github.com/Morfeas98/GameCollectionApp/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterRoutes mounts the API on router. Admin checks read roles through users.
func (h *Handler) RegisterRoutes(router *gin.Engine, users auth.UserLookup) {
	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	apiV1 := router.Group("/api/v1")
	{
		// Auth routes
		authRoutes := apiV1.Group("/auth")
		{
			authRoutes.POST("/register", h.RegisterUser)
			authRoutes.POST("/login", h.LoginUser)
		}

		// Public game routes
		gameRoutes := apiV1.Group("/games")
		gameRoutes.Use(auth.OptionalAuthMiddleware(h.jwtSecret))
		{
			gameRoutes.GET("", h.GetGames)
			gameRoutes.GET("/sort-options", h.GetSortOptions)
			gameRoutes.GET("/search", h.SearchGames)
			gameRoutes.GET("/top-rated", h.GetTopRated)
			gameRoutes.GET("/:id", h.GetGameByID)
			gameRoutes.GET("/:id/recommendations", h.GetRecommendations)
		}
		apiV1.GET("/games/:id/collections", auth.AuthMiddleware(h.jwtSecret), h.GetGameCollections)

		// Public tag lists
		for segment, kind := range tagRoutes {
			apiV1.GET("/"+segment, withTagKind(kind), h.GetTags)
		}

		// User routes (protected)
		userRoutes := apiV1.Group("/users/me")
		userRoutes.Use(auth.AuthMiddleware(h.jwtSecret))
		{
			userRoutes.GET("", h.GetMe)
			userRoutes.GET("/activity", h.GetMyActivity)
			userRoutes.GET("/stats", h.GetMyStats)
			userRoutes.GET("/games/:gameId", h.GetMyGame)
		}

		// Collection routes (protected)
		collectionRoutes := apiV1.Group("/collections")
		collectionRoutes.Use(auth.AuthMiddleware(h.jwtSecret))
		{
			collectionRoutes.POST("", h.CreateCollection)
			collectionRoutes.GET("", h.GetCollections)
			collectionRoutes.GET("/:id", h.GetCollectionByID)
			collectionRoutes.PUT("/:id", h.UpdateCollection)
			collectionRoutes.DELETE("/:id", h.DeleteCollection)
			collectionRoutes.GET("/:id/games", h.GetCollectionGames)
			collectionRoutes.POST("/:id/games", h.AddGameToCollection)
			collectionRoutes.GET("/:id/games/:gameId", h.GetCollectionGame)
			collectionRoutes.PUT("/:id/games/:gameId", h.UpdateCollectionGame)
			collectionRoutes.DELETE("/:id/games/:gameId", h.RemoveGameFromCollection)
		}

		// Admin routes (protected by auth and admin check)
		adminRoutes := apiV1.Group("/admin")
		adminRoutes.Use(auth.AuthMiddleware(h.jwtSecret), auth.AdminMiddleware(users))
		{
			adminGameRoutes := adminRoutes.Group("/games")
			{
				adminGameRoutes.GET("", h.GetAllGames)
				adminGameRoutes.POST("", h.CreateGame)
				adminGameRoutes.PUT("/:id", h.UpdateGame)
				adminGameRoutes.DELETE("/:id", h.DeleteGame)
			}

			for segment, kind := range tagRoutes {
				tags := adminRoutes.Group("/"+segment, withTagKind(kind))
				{
					tags.POST("", h.CreateTag)
					tags.GET("", h.GetTags)
					tags.DELETE("/:id", h.DeleteTag)
				}
			}
		}
	}
}
