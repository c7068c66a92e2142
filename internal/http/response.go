package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"notes-api/internal/service"
)

const msgInvalidBody = "Invalid request body"

// respondOK escribe {success:true, message} mas los campos extra.
func respondOK(c *gin.Context, status int, message string, extra gin.H) {
	body := gin.H{"success": true, "message": message}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(status, body)
}

func respondFail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// respondError traduce un error de servicio a status y mensaje publico.
// Los errores internos se loguean; el cliente nunca ve su detalle.
func respondError(c *gin.Context, logger *zap.Logger, op string, err error) {
	kind := service.KindOf(err)
	if kind == service.KindInternal {
		logger.Error(op+" failed", zap.Error(err))
	}
	respondFail(c, statusForKind(kind), service.PublicMessage(err))
}

func statusForKind(kind service.Kind) int {
	switch kind {
	case service.KindValidation, service.KindConflict, service.KindInvalidOrExpired:
		return http.StatusBadRequest
	case service.KindUnauthorized:
		return http.StatusUnauthorized
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
