package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"munidenuncia/internal/metrics"
	"munidenuncia/internal/models"
	"munidenuncia/internal/repository"
	"munidenuncia/internal/utils"
	"munidenuncia/internal/validation"
)

// OpsHTTP lets municipal agents work a report. Mounted only when the
// adapter implements repository.Operator.
type OpsHTTP struct {
	op  repository.Operator
	log zerolog.Logger
}

func NewOpsHTTP(op repository.Operator, log zerolog.Logger) *OpsHTTP {
	return &OpsHTTP{op: op, log: log}
}

// PATCH /api/ops/reports/{id}/status  { status }
func (h *OpsHTTP) UpdateStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Status models.Status `json:"status"`
		}
		if err := utils.Decode(r, &in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}
		if !in.Status.Valid() {
			writeErr(w, h.log, &validation.Error{Fields: map[string]string{"status": "Unknown status"}})
			return
		}
		id := chi.URLParam(r, "id")
		rep, err := h.op.UpdateStatus(r.Context(), id, in.Status)
		if err != nil {
			writeErr(w, h.log, err)
			return
		}
		uid, _ := currentUser(r)
		h.log.Info().Str("report", id).Str("agent", uid).Str("status", string(in.Status)).Msg("status changed")
		utils.JSON(w, http.StatusOK, rep)
	}
}

// POST /api/ops/reports/{id}/replies  { text }
func (h *OpsHTTP) Reply() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Text string `json:"text"`
		}
		if err := utils.Decode(r, &in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}
		id := chi.URLParam(r, "id")
		if err := validation.Message(models.SendMessageInput{ReportID: id, Text: in.Text}).Err(); err != nil {
			writeErr(w, h.log, err)
			return
		}
		m, err := h.op.Reply(r.Context(), id, in.Text)
		if err != nil {
			writeErr(w, h.log, err)
			return
		}
		metrics.MessagesSentTotal.WithLabelValues(string(models.SenderCity)).Inc()
		utils.JSON(w, http.StatusCreated, m)
	}
}
