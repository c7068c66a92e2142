package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"notes-api/internal/domain"
	"notes-api/internal/service"
)

const currentUserKey = "current_user"

// SessionVerifier valida un token de sesion y devuelve sus claims.
type SessionVerifier interface {
	Verify(token string) (service.Claims, error)
}

// UserLookup resuelve el usuario dueño de una sesion.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (domain.User, error)
}

// AuthMiddleware exige un bearer token valido y adjunta el usuario al contexto.
func AuthMiddleware(logger *zap.Logger, tokens SessionVerifier, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			respondFail(c, http.StatusUnauthorized, service.ErrUnauthorized.Message)
			c.Abort()
			return
		}

		claims, err := tokens.Verify(token)
		if err != nil {
			respondFail(c, http.StatusUnauthorized, service.ErrUnauthorized.Message)
			c.Abort()
			return
		}

		user, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, service.ErrUserNotFound) {
				respondFail(c, http.StatusNotFound, service.ErrUserNotFound.Message)
			} else {
				logger.Error("auth user lookup failed", zap.Error(err))
				respondFail(c, http.StatusInternalServerError, "Server error in auth middleware")
			}
			c.Abort()
			return
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}

// GetCurrentUser obtiene el usuario autenticado desde el contexto.
func GetCurrentUser(c *gin.Context) (domain.User, bool) {
	val, ok := c.Get(currentUserKey)
	if !ok {
		return domain.User{}, false
	}
	user, ok := val.(domain.User)
	return user, ok
}

func bearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
