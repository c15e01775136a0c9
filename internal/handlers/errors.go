package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"reseller_hub/internal/auth"
	"reseller_hub/internal/gateway"
	"reseller_hub/internal/logger"
	"reseller_hub/internal/report"
	"reseller_hub/internal/services"
	"reseller_hub/internal/settlement"
)

// respondError maps service errors onto HTTP responses. Nothing is retried.
func respondError(c *gin.Context, err error) {
	log := logger.WithComponent("http")

	var (
		validation *services.ValidationError
		conflict   *services.ConflictError
		remote     *gateway.RemoteError
	)

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Error(), "field": validation.Field})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{"error": conflict.Message})
	case errors.Is(err, gateway.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Duplicate identifier"})
	case errors.Is(err, settlement.ErrToggleInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, settlement.ErrStaleState):
		c.JSON(http.StatusConflict, gin.H{"error": "Payment state changed, reload and try again"})
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, auth.ErrNoSession):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "login_required"})
	case errors.Is(err, services.ErrInvalidPassphrase):
		c.JSON(http.StatusForbidden, gin.H{"error": "Incorrect passphrase"})
	case errors.Is(err, report.ErrNoData):
		c.JSON(http.StatusNotFound, gin.H{"error": "No data to export"})
	case errors.Is(err, settlement.ErrOrderNotFound), errors.Is(err, gateway.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, gateway.ErrUnknownRelation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &remote):
		log.Error().Err(err).Str("path", c.FullPath()).Msg("remote data failure")
		c.JSON(http.StatusBadGateway, gin.H{"error": remote.Err.Error()})
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
