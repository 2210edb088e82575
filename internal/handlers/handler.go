package handlers

import (
	"lm500_emulator/internal/logger"
	"lm500_emulator/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires the HTTP layer to services and logging.
type Handler struct {
	services    *service.Service
	log         *logger.Logger
	authEnabled bool
}

// NewHandler constructs a new HTTP handler. When authEnabled is false the
// /api/v1 group is served without a bearer token.
func NewHandler(services *service.Service, log *logger.Logger, authEnabled bool) *Handler {
	return &Handler{services: services, log: log, authEnabled: authEnabled}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", h.health)

	h.registerAuthRoutes(router)
	h.registerAPIRoutes(router)

	// live state stream on the same port
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
	api := r.Group("/api/v1")
	if h.authEnabled {
		api.Use(h.operatorIdentity)
	}
	{
		h.registerDeviceRoutes(api)
		h.registerLogRoutes(api)
		h.registerSampleRoutes(api)
	}
}

func (h *Handler) registerDeviceRoutes(api *gin.RouterGroup) {
	device := api.Group("/device")
	{
		device.GET("/state", h.getState)
		device.POST("/channels/:channel/fill/start", h.startFill)
		device.POST("/channels/:channel/fill/stop", h.stopFill)
		device.GET("/params/:name", h.getParam)
		// Body example: {"value":"12.5"}
		device.PUT("/params/:name", h.setParam)
	}
}

func (h *Handler) registerLogRoutes(api *gin.RouterGroup) {
	logs := api.Group("/logs")
	{
		logs.GET("/", h.getLogs)
	}
}

func (h *Handler) registerSampleRoutes(api *gin.RouterGroup) {
	samples := api.Group("/samples")
	{
		samples.GET("/", h.getSamples)
	}
}
