package routes

import (
	"socialgraph/api/handlers"

	"github.com/gin-gonic/gin"
)

func PublicApi(router *gin.Engine, h *handlers.Handlers, auth gin.HandlerFunc) *gin.RouterGroup {
	publicEndpoints := router.Group("/api/v1/", auth)
	{
		// Друзья
		publicEndpoints.GET("friends", h.GetFriends)
		publicEndpoints.GET("friends/:id", h.GetStatus)
		publicEndpoints.DELETE("friends/:id", h.Unfriend)

		// Заявки
		publicEndpoints.GET("requests", h.ListRequests)
		publicEndpoints.POST("requests", h.SendRequest)
		publicEndpoints.GET("requests/:id", h.GetRequestStatus)
		publicEndpoints.POST("requests/:id", h.RespondRequest)

		// Переписка
		publicEndpoints.GET("friends/:id/messages", h.ListMessages)
		publicEndpoints.POST("friends/:id/messages", h.PostMessage)

		publicEndpoints.GET("profiles/:id", h.GetProfile)
	}
	return publicEndpoints
}
