package handlers

import (
	"net/http"
	"time"

	"socialgraph/api/middleware"

	"github.com/gin-gonic/gin"
)

// GetFriends - профиль вызывающего и его друзья
func (h *Handlers) GetFriends(c *gin.Context) {
	var err error
	defer track("list_friends", time.Now(), &err)

	resp, err := h.friends.GetFriends(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetStatus - статус отношений с профилем :id
func (h *Handlers) GetStatus(c *gin.Context) {
	other, ok := profileIDParam(c)
	if !ok {
		return
	}
	var err error
	defer track("get_status", time.Now(), &err)

	resp, err := h.friends.GetStatus(c.Request.Context(), middleware.CurrentUserID(c), other)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Unfriend - удаление из друзей
func (h *Handlers) Unfriend(c *gin.Context) {
	other, ok := profileIDParam(c)
	if !ok {
		return
	}
	var err error
	defer track("remove_friend", time.Now(), &err)

	msg, err := h.friends.RemoveFriend(c.Request.Context(), middleware.CurrentUserID(c), other)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}
