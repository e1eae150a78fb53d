package handlers

import (
	"net/http"

	"munidenuncia/internal/utils"
)

func Health(adapter string, realtime bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		utils.JSON(w, http.StatusOK, map[string]any{
			"status":   "ok",
			"adapter":  adapter,
			"realtime": realtime,
		})
	}
}
