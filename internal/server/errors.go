package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/voyatra/voyatra/internal/authorization"
	controlcenterdomain "github.com/voyatra/voyatra/internal/controlcenter/domain"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrTooManyRequest = errors.New("too_many_requests")
)

// ErrorHandlingMiddleware converts errors attached to the gin context
// into a consistent payload.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		status, payload := classifyError(err)
		c.JSON(status, errorResponse{Error: payload})
	}
}

func classifyError(err error) (int, errorPayload) {
	switch {
	case errors.Is(err, ErrUnauthorized), errors.Is(err, authorization.ErrInvalidActor):
		return http.StatusUnauthorized, errorPayload{Type: "unauthorized", Message: "authentication required"}
	case errors.Is(err, authorization.ErrForbidden):
		return http.StatusForbidden, errorPayload{Type: "forbidden", Message: "admin role required"}
	case errors.Is(err, ErrTooManyRequest):
		return http.StatusTooManyRequests, errorPayload{Type: "too_many_requests", Message: "slow down"}
	case errors.Is(err, controlcenterdomain.ErrAggregationFailed):
		return http.StatusInternalServerError, errorPayload{Type: "aggregation_failed", Message: "snapshot aggregation failed, retry"}
	default:
		return http.StatusInternalServerError, errorPayload{Type: "internal_error", Message: "internal error"}
	}
}
