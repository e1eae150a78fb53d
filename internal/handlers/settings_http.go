package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"munidenuncia/internal/state"
	"munidenuncia/internal/utils"
)

type SettingsHTTP struct {
	theme *state.ThemeStore
	log   zerolog.Logger
}

func NewSettingsHTTP(theme *state.ThemeStore, log zerolog.Logger) *SettingsHTTP {
	return &SettingsHTTP{theme: theme, log: log}
}

type themeBody struct {
	Theme state.Theme `json:"theme"`
}

func (h *SettingsHTTP) GetTheme() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		utils.JSON(w, http.StatusOK, themeBody{Theme: h.theme.Get()})
	}
}

func (h *SettingsHTTP) PutTheme() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in themeBody
		if err := utils.Decode(r, &in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}
		if err := h.theme.Set(r.Context(), in.Theme); err != nil {
			if errors.Is(err, state.ErrUnknownTheme) {
				utils.JSON(w, http.StatusUnprocessableEntity, map[string]any{
					"error":  "validation failed",
					"fields": map[string]string{"theme": err.Error()},
				})
				return
			}
			writeErr(w, h.log, err)
			return
		}
		utils.JSON(w, http.StatusOK, themeBody{Theme: in.Theme})
	}
}
