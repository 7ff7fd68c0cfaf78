package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type RegisterProfileBody struct {
	Username string `json:"username" binding:"required"`
	Phone    string `json:"phone"`
}

// RegisterProfile вызывается сервисом аккаунтов после регистрации пользователя
func (h *Handlers) RegisterProfile(c *gin.Context) {
	var body RegisterProfileBody
	if !bindJSON(c, &body) {
		return
	}

	profile, err := h.profiles.Register(c.Request.Context(), body.Username, body.Phone)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, profile.Summary())
}

func (h *Handlers) GetProfile(c *gin.Context) {
	id, ok := profileIDParam(c)
	if !ok {
		return
	}

	profile, err := h.profiles.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile.Summary())
}
