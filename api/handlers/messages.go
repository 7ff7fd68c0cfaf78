package handlers

import (
	"net/http"
	"time"

	"socialgraph/api/middleware"

	"github.com/gin-gonic/gin"
)

type PostMessageBody struct {
	Text string `json:"text" binding:"required"`
}

// PostMessage - сообщение другу :id
func (h *Handlers) PostMessage(c *gin.Context) {
	friend, ok := profileIDParam(c)
	if !ok {
		return
	}
	var body PostMessageBody
	if !bindJSON(c, &body) {
		return
	}
	var err error
	defer track("post_message", time.Now(), &err)

	msg, err := h.messages.PostMessage(c.Request.Context(), middleware.CurrentUserID(c), friend, body.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

// ListMessages - история переписки с другом :id
func (h *Handlers) ListMessages(c *gin.Context) {
	friend, ok := profileIDParam(c)
	if !ok {
		return
	}
	var err error
	defer track("list_messages", time.Now(), &err)

	messages, err := h.messages.ListMessages(c.Request.Context(), middleware.CurrentUserID(c), friend)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}
