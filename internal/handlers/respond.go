package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/taskhive-dev/taskhive/internal/apperr"
	"github.com/taskhive-dev/taskhive/internal/store"
)

var (
	st     *store.Store
	logger zerolog.Logger
)

// Init wires the handler package to its store. Called once from main
// before the router starts serving.
func Init(s *store.Store, lg zerolog.Logger) {
	st = s
	logger = lg
}

// respondError maps the store's error taxonomy onto HTTP statuses.
// Deny reasons are surfaced so the client can explain the refusal.
func respondError(ctx *gin.Context, err error) {
	var (
		deny       *apperr.DenyError
		validation *apperr.ValidationError
	)

	switch {
	case errors.Is(err, apperr.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, apperr.ErrConflict):
		ctx.JSON(http.StatusConflict, gin.H{"error": "Conflicting record already exists"})
	case errors.As(err, &deny):
		ctx.JSON(http.StatusForbidden, gin.H{"error": deny.Error(), "reason": string(deny.Reason)})
	case errors.As(err, &validation):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": validation.Error(), "field": validation.Field})
	default:
		logger.Error().Err(err).Str("path", ctx.Request.URL.Path).Msg("request failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// paramID parses a numeric path parameter, responding 400 itself when
// the value is malformed.
func paramID(ctx *gin.Context, name string) (uint, bool) {
	raw := ctx.Param(name)

	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}

	return uint(id), true
}
