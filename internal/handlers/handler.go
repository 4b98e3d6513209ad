package handlers

import (
	"net/http"

	"brewctl/internal/auth"
	"brewctl/internal/engine"
	"brewctl/internal/logger"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires the HTTP layer to the control core, account service,
// and logging.
type Handler struct {
	core *engine.Core
	auth *auth.Service
	log  *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(core *engine.Core, auth *auth.Service, log *logger.Logger) *Handler {
	return &Handler{core: core, auth: auth, log: log}
}

// route pairs an HTTP method and path with its handler, letting a
// group of endpoints be declared as data and mounted in one pass
// instead of one group.METHOD(path, fn) call per endpoint.
type route struct {
	method  string
	path    string
	handler gin.HandlerFunc
}

func mount(group *gin.RouterGroup, routes []route) {
	for _, rt := range routes {
		group.Handle(rt.method, rt.path, rt.handler)
	}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", h.health)

	// Minimal WebSocket connection (HTTP upgrade) — same port, behind
	// the same bearer auth so each session carries its userId.
	router.GET("/ws", h.userIdMiddleware, h.wsConnect)

	mount(router.Group("/auth"), []route{
		{http.MethodPost, "/sign-up", h.signUp},
		{http.MethodPost, "/sign-in", h.signIn},
	})

	// Versioned, bearer-auth-protected API endpoints.
	mount(router.Group("/api/v1", h.userIdMiddleware), []route{
		{http.MethodPost, "/command", h.dispatchCommand},
		{http.MethodGet, "/logs", h.getLogs},
	})

	return router
}
