package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"socialgraph/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const userIDKey = "user_id"

// Claims - токен выдает сервис аккаунтов, мы только проверяем подпись
type Claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// GenerateToken нужен для тестов и локальной отладки
func GenerateToken(userID int64, secret string, ttl time.Duration) (string, error) {
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken проверяет подпись HS256 и срок действия
func ParseToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.UserID <= 0 {
		return nil, fmt.Errorf("token has no user_id")
	}
	return claims, nil
}

// AuthMiddleware кладет id вызывающего в контекст gin.
// Варианты:
// 1. Authorization: Bearer <JWT>
// 2. X-User-ID, только если trustUserHeader (внутренние развертывания и тесты)
func AuthMiddleware(secret string, trustUserHeader bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if trustUserHeader {
			if header := c.GetHeader("X-User-ID"); header != "" {
				userID, err := strconv.ParseInt(header, 10, 64)
				if err != nil || userID <= 0 {
					abortUnauthenticated(c, "invalid X-User-ID header")
					return
				}
				c.Set(userIDKey, userID)
				c.Next()
				return
			}
		}

		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") || secret == "" {
			abortUnauthenticated(c, "authentication required")
			return
		}

		claims, err := ParseToken(strings.TrimPrefix(authHeader, "Bearer "), secret)
		if err != nil {
			abortUnauthenticated(c, "invalid token")
			return
		}
		c.Set(userIDKey, claims.UserID)
		c.Next()
	}
}

// CurrentUserID - id, положенный AuthMiddleware; 0, если его нет
func CurrentUserID(c *gin.Context) int64 {
	if v, ok := c.Get(userIDKey); ok {
		if id, ok := v.(int64); ok {
			return id
		}
	}
	return 0
}

func abortUnauthenticated(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": message,
		"code":  apperrors.KindUnauthenticated,
	})
}
