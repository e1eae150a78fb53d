package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"munidenuncia/internal/metrics"
	"munidenuncia/internal/repository"
	"munidenuncia/internal/utils"
	"munidenuncia/internal/validation"
)

// writeErr maps adapter and validation failures onto status codes.
func writeErr(w http.ResponseWriter, log zerolog.Logger, err error) {
	var verr *validation.Error
	var pw *repository.PartialWriteError
	switch {
	case errors.As(err, &verr):
		utils.JSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  "validation failed",
			"fields": verr.Fields,
		})
	// before the sentinels: the cause it wraps may itself be ErrNotFound
	case errors.As(err, &pw):
		metrics.AdapterErrorsTotal.WithLabelValues("partial_write").Inc()
		log.Error().Err(err).Str("stage", pw.Stage).Str("photo", pw.PhotoURL).Str("report", pw.ReportID).Msg("partial write")
		utils.Error(w, http.StatusBadGateway, "the report could not be saved completely")
	case errors.Is(err, repository.ErrAuth):
		metrics.AdapterErrorsTotal.WithLabelValues("auth").Inc()
		utils.Error(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		metrics.AdapterErrorsTotal.WithLabelValues("not_found").Inc()
		utils.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, repository.ErrTransient):
		metrics.AdapterErrorsTotal.WithLabelValues("transient").Inc()
		log.Warn().Err(err).Msg("backend unavailable")
		utils.Error(w, http.StatusServiceUnavailable, "service temporarily unavailable")
	case errors.Is(err, context.Canceled):
		// client went away
	default:
		metrics.AdapterErrorsTotal.WithLabelValues("internal").Inc()
		log.Error().Err(err).Msg("request failed")
		utils.Error(w, http.StatusInternalServerError, "internal error")
	}
}
