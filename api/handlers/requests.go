package handlers

import (
	"net/http"
	"time"

	"socialgraph/api/middleware"

	"github.com/gin-gonic/gin"
)

type SendRequestBody struct {
	ToUser string `json:"to_user" binding:"required"`
}

type RespondRequestBody struct {
	Choice string `json:"choice" binding:"required"`
}

// ListRequests - входящие и исходящие заявки
func (h *Handlers) ListRequests(c *gin.Context) {
	var err error
	defer track("list_requests", time.Now(), &err)

	resp, err := h.friends.ListRequests(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SendRequest - заявка в друзья по username; встречная заявка принимается сразу
func (h *Handlers) SendRequest(c *gin.Context) {
	var body SendRequestBody
	if !bindJSON(c, &body) {
		return
	}
	var err error
	defer track("send_request", time.Now(), &err)

	result, err := h.friends.SendRequest(c.Request.Context(), middleware.CurrentUserID(c), body.ToUser)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *Handlers) GetRequestStatus(c *gin.Context) {
	other, ok := profileIDParam(c)
	if !ok {
		return
	}
	var err error
	defer track("request_status", time.Now(), &err)

	msg, err := h.friends.RequestStatus(c.Request.Context(), middleware.CurrentUserID(c), other)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// RespondRequest - ответ на заявку от :id, choice = accept | not_accept
func (h *Handlers) RespondRequest(c *gin.Context) {
	other, ok := profileIDParam(c)
	if !ok {
		return
	}
	var body RespondRequestBody
	if !bindJSON(c, &body) {
		return
	}
	var err error
	defer track("respond_request", time.Now(), &err)

	msg, err := h.friends.RespondRequest(c.Request.Context(), middleware.CurrentUserID(c), other, body.Choice)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}
