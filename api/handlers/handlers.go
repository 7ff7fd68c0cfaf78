package handlers

import (
	"net/http"
	"strconv"
	"time"

	"socialgraph/api/middleware"
	"socialgraph/apperrors"
	"socialgraph/logger"
	"socialgraph/services"

	"github.com/gin-gonic/gin"
)

const serviceName = "social-graph"

// Handlers содержит обработчики HTTP API графа друзей
type Handlers struct {
	friends  *services.FriendService
	messages *services.MessageService
	profiles *services.ProfileService
}

func NewHandlers(friends *services.FriendService, messages *services.MessageService, profiles *services.ProfileService) *Handlers {
	return &Handlers{
		friends:  friends,
		messages: messages,
		profiles: profiles,
	}
}

// statusFor - HTTP-код для типа ошибки
func statusFor(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindInvalidTarget, apperrors.KindNoSuchRequest, apperrors.KindNotFriends, apperrors.KindInvalidInput:
		return http.StatusBadRequest
	case apperrors.KindAlreadyFriends, apperrors.KindDuplicateRequest, apperrors.KindUsernameTaken:
		return http.StatusConflict
	case apperrors.KindUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	kind := apperrors.KindOf(err)
	if kind == apperrors.KindInternal {
		logger.Error("Request failed", "path", c.FullPath(), "request_id", c.GetString("request_id"), "error", err)
	}
	_ = c.Error(err)
	c.JSON(statusFor(kind), gin.H{
		"error": apperrors.MessageOf(err),
		"code":  kind,
	})
}

// profileIDParam читает :id из пути
func profileIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, apperrors.New(apperrors.KindInvalidInput, "invalid profile id"))
		return 0, false
	}
	return id, true
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, apperrors.Wrap(err, apperrors.KindInvalidInput, "invalid request body"))
		return false
	}
	return true
}

// track пишет метрики операции; вызывается через defer
func track(operation string, start time.Time, err *error) {
	middleware.RecordFriendOperation(operation, serviceName, time.Since(start), *err)
}

// Health - проверка живости
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
