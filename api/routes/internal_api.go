package routes

import (
	"socialgraph/api/handlers"

	"github.com/gin-gonic/gin"
)

// InternalApi - эндпоинты для соседних сервисов, без пользовательской авторизации.
// Наружу не публикуется.
func InternalApi(router *gin.Engine, h *handlers.Handlers) *gin.RouterGroup {
	internalEndpoints := router.Group("/internal/v1/")
	{
		internalEndpoints.POST("profiles", h.RegisterProfile)
	}
	return internalEndpoints
}
