package handlers

import (
	"windhager_gateway/internal/logger"
	"windhager_gateway/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires the HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", h.health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h.registerAuthRoutes(router)
	h.registerAPIRoutes(router)

	// Snapshot push stream on the same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.operatorAuth)
	{
		api.GET("/devices", h.getDevices)
		api.GET("/snapshot", h.getSnapshot)

		climate := api.Group("/climate")
		{
			climate.GET("", h.getClimateStates)
			climate.POST("/:id/mode", h.setClimateMode)
			climate.POST("/:id/temperature", h.setClimateTemperature)
			climate.POST("/:id/comfort-offset", h.setComfortOffset)
		}

		settings := api.Group("/settings")
		{
			settings.GET("/eco-duration", h.getEcoDuration)
			settings.PUT("/eco-duration", h.setEcoDuration)
		}

		api.GET("/commands", h.getCommands)
	}
}
