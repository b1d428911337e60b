package routes

import (
	"itinventory/internal/core/container"
	"itinventory/internal/metrics"
	"itinventory/internal/middleware"
	"itinventory/pkg/security"

	"github.com/gin-gonic/gin"
)

// NewRouter builds the engine with the global middleware and every route.
func NewRouter(c *container.Container) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.RecoveryMiddleware(c.Logger),
		middleware.RequestLogger(c.Logger, c.Metrics),
	)

	RegisterUtilityRoutes(router, c)
	RegisterPublicRoutes(router, c)
	RegisterProtectedRoutes(router, c)
	return router
}

func RegisterUtilityRoutes(router *gin.Engine, c *container.Container) {
	router.GET("/health", c.Health.Handler())
	router.GET("/metrics", metrics.Handler(c.Registry))
}

func RegisterPublicRoutes(router *gin.Engine, c *container.Container) {
	c.AuthHandler.RegisterRoutes(router)
}

func RegisterProtectedRoutes(router *gin.Engine, c *container.Container) {
	protectedRoutes := router.Group("")
	protectedRoutes.Use(security.JWTMiddleware(c.Tokens, c.Revocations))

	c.AuthHandler.RegisterProtectedRoutes(protectedRoutes)
	protectedRoutes.GET("/feed", c.Feed.Serve)

	inventory := protectedRoutes.Group("")
	inventory.Use(
		middleware.TimeoutMiddleware(c.Config.App.RequestTimeout),
		c.Sessions.Middleware(),
	)
	c.EquipmentHandler.RegisterRoutes(inventory)
	c.LifecycleHandler.RegisterRoutes(inventory.Group("/equipment"))
	c.BackupHandler.RegisterRoutes(inventory)
}
