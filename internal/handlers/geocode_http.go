package handlers

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"munidenuncia/internal/utils"
)

type GeocodeHTTP struct {
	geo Geocoder
	log zerolog.Logger
}

func NewGeocodeHTTP(geo Geocoder, log zerolog.Logger) *GeocodeHTTP {
	return &GeocodeHTTP{geo: geo, log: log}
}

// GET /api/geocode/reverse?lat=&lng= → { address }
func (h *GeocodeHTTP) Reverse() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qv := r.URL.Query()
		lat, okLat := utils.QueryFloat(qv, "lat")
		lng, okLng := utils.QueryFloat(qv, "lng")
		if !okLat || !okLng || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
			utils.Error(w, http.StatusBadRequest, "lat and lng are required")
			return
		}
		addr, err := h.geo.Reverse(r.Context(), lat, lng)
		if err != nil {
			h.log.Warn().Err(err).Msg("reverse geocoding failed")
			utils.Error(w, http.StatusBadGateway, "geocoding unavailable")
			return
		}
		utils.JSON(w, http.StatusOK, map[string]string{"address": addr})
	}
}

// GET /api/geocode/search?q= → [Location]
func (h *GeocodeHTTP) Search() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := strings.TrimSpace(r.URL.Query().Get("q"))
		if q == "" {
			utils.Error(w, http.StatusBadRequest, "q is required")
			return
		}
		locs, err := h.geo.Search(r.Context(), q)
		if err != nil {
			h.log.Warn().Err(err).Msg("address search failed")
			utils.Error(w, http.StatusBadGateway, "geocoding unavailable")
			return
		}
		utils.JSON(w, http.StatusOK, locs)
	}
}
