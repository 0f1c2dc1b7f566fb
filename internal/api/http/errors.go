package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/AgentOS/launcher/internal/domain/apphandler"
)

// statusFor maps controller errors onto HTTP status codes
func statusFor(err error) int {
	switch apphandler.KindOf(err) {
	case apphandler.KindInvalidInput:
		return http.StatusBadRequest
	case apphandler.KindNotFound:
		return http.StatusNotFound
	case apphandler.KindAlreadyTerminated:
		return http.StatusServiceUnavailable
	case apphandler.KindInternal:
		return http.StatusInternalServerError
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, apphandler.ErrCancelled), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func kindName(err error) string {
	if k := apphandler.KindOf(err); k != 0 {
		return k.String()
	}
	return "internal"
}

func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(statusFor(err), gin.H{
		"error": err.Error(),
		"kind":  kindName(err),
	})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error": err.Error(),
		"kind":  apphandler.KindInvalidInput.String(),
	})
}
