package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yungbote/tandem-backend/internal/handlers"
)

type RouterConfig struct {
	MatchHandler      *handlers.MatchHandler
	AllocationHandler *handlers.AllocationHandler
	AllowOrigins      []string
	AllowCredentials  bool
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: cfg.AllowCredentials,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		api.GET("/users/:userID/matches", cfg.MatchHandler.ListForUser)
		api.POST("/matches/:id/accept", cfg.MatchHandler.Accept)
		api.POST("/matches/:id/decline", cfg.MatchHandler.Decline)
		api.POST("/matches/expire-sweep", cfg.AllocationHandler.ExpireSweep)

		api.POST("/allocate/run", cfg.AllocationHandler.RunPopulation)
		api.POST("/allocate/users/:userID", cfg.AllocationHandler.RunUser)
	}

	return router
}
