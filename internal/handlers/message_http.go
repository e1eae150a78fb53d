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

type MessagesHTTP struct {
	data repository.DataAdapter
	log  zerolog.Logger
}

func NewMessagesHTTP(data repository.DataAdapter, log zerolog.Logger) *MessagesHTTP {
	return &MessagesHTTP{data: data, log: log}
}

// GET /api/reports/{id}/messages
func (h *MessagesHTTP) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if _, err := visibleReport(r, h.data, id); err != nil {
			writeErr(w, h.log, err)
			return
		}
		msgs, err := h.data.GetMessages(r.Context(), id)
		if err != nil {
			writeErr(w, h.log, err)
			return
		}
		utils.JSON(w, http.StatusOK, msgs)
	}
}

type sendRequest struct {
	Text     string `json:"text"`
	ClientID string `json:"clientId,omitempty"`
}

type sendResponse struct {
	Message  *models.Message `json:"message"`
	ClientID string          `json:"clientId,omitempty"`
}

// POST /api/reports/{id}/messages
// The clientId, when given, is echoed back so the caller can replace its
// pending entry.
func (h *MessagesHTTP) Send() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var body sendRequest
		if err := utils.Decode(r, &body); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}
		in := models.SendMessageInput{ReportID: id, Text: body.Text}
		if err := validation.Message(in).Err(); err != nil {
			writeErr(w, h.log, err)
			return
		}
		if _, err := visibleReport(r, h.data, id); err != nil {
			writeErr(w, h.log, err)
			return
		}

		uid, _ := currentUser(r)
		m, err := h.data.SendMessage(r.Context(), in, uid)
		if err != nil {
			writeErr(w, h.log, err)
			return
		}
		metrics.MessagesSentTotal.WithLabelValues(string(models.SenderUser)).Inc()
		utils.JSON(w, http.StatusCreated, sendResponse{Message: m, ClientID: body.ClientID})
	}
}
