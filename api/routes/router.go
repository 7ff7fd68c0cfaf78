package routes

import (
	"socialgraph/api/handlers"
	"socialgraph/api/middleware"

	"github.com/gin-gonic/gin"
)

const serviceName = "social-graph"

// NewRouter собирает gin.Engine со всеми группами эндпоинтов
func NewRouter(h *handlers.Handlers, auth gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger())
	router.Use(gin.Recovery())
	router.Use(middleware.PrometheusMiddleware(serviceName))

	ServiceApi(router)
	PublicApi(router, h, auth)
	InternalApi(router, h)
	return router
}
