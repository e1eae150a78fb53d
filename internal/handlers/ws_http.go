package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"munidenuncia/internal/chat"
	"munidenuncia/internal/metrics"
	"munidenuncia/internal/models"
	"munidenuncia/internal/repository"
	"munidenuncia/internal/validation"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxFrameSize   = 4096
	sendBufferSize = 32
)

// Client → server frame.
type wsIn struct {
	Type     string `json:"type"` // "send"
	ClientID string `json:"clientId"`
	Text     string `json:"text"`
}

// Server → client frame.
type wsOut struct {
	Type     string            `json:"type"` // history | message | ack | error
	Messages []chat.Entry      `json:"messages,omitempty"`
	Message  *models.Message   `json:"message,omitempty"`
	ClientID string            `json:"clientId,omitempty"`
	Error    string            `json:"error,omitempty"`
	Fields   map[string]string `json:"fields,omitempty"`
}

// ThreadWS streams one report's thread: the history first, then messages
// pushed by the adapter when it supports realtime. Sends go through the
// same socket and are acknowledged with the client's correlation id.
type ThreadWS struct {
	data     repository.DataAdapter
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

func NewThreadWS(data repository.DataAdapter, origin string, log zerolog.Logger) *ThreadWS {
	return &ThreadWS{
		data: data,
		log:  log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				o := r.Header.Get("Origin")
				return o == "" || o == origin
			},
		},
	}
}

type wsClient struct {
	conn *websocket.Conn
	send chan wsOut
	done chan struct{}
	once sync.Once
}

func (c *wsClient) push(m wsOut) {
	select {
	case c.send <- m:
	case <-c.done:
	}
}

func (c *wsClient) stop() { c.once.Do(func() { close(c.done) }) }

// GET /api/reports/{id}/messages/ws
func (h *ThreadWS) Serve() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if _, err := visibleReport(r, h.data, id); err != nil {
			writeErr(w, h.log, err)
			return
		}
		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.log.Warn().Err(err).Msg("websocket upgrade failed")
			return
		}
		metrics.WebsocketClients.Inc()
		defer metrics.WebsocketClients.Dec()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		c := &wsClient{conn: conn, send: make(chan wsOut, sendBufferSize), done: make(chan struct{})}
		thread := chat.NewThread(id)
		log := h.log.With().Str("report", id).Logger()

		writerDone := make(chan struct{})
		go func() {
			defer close(writerDone)
			c.writePump()
		}()
		defer func() {
			c.stop()
			<-writerDone
		}()

		// subscribe before loading history so nothing falls in between
		if sub, ok := repository.Subscriber(h.data); ok {
			unsubscribe, err := sub.SubscribeToMessages(ctx, id, func(m models.Message) {
				if len(thread.Merge(m)) > 0 {
					c.push(wsOut{Type: "message", Message: &m})
				}
			})
			if err != nil {
				log.Warn().Err(err).Msg("live updates unavailable")
			} else {
				defer unsubscribe()
			}
		}

		msgs, err := h.data.GetMessages(ctx, id)
		if err != nil {
			log.Error().Err(err).Msg("history load failed")
			c.push(wsOut{Type: "error", Error: "history unavailable"})
			return
		}
		thread.Merge(msgs...)
		c.push(wsOut{Type: "history", Messages: thread.Entries()})

		uid, _ := currentUser(r)
		c.readPump(log, func(in wsIn) { h.handle(ctx, c, thread, uid, id, in) })
	}
}

func (h *ThreadWS) handle(ctx context.Context, c *wsClient, thread *chat.Thread, uid, reportID string, in wsIn) {
	if in.Type != "send" || in.ClientID == "" {
		c.push(wsOut{Type: "error", ClientID: in.ClientID, Error: "expected {type:send, clientId, text}"})
		return
	}
	msg := models.SendMessageInput{ReportID: reportID, Text: in.Text}
	if res := validation.Message(msg); !res.Valid {
		c.push(wsOut{Type: "error", ClientID: in.ClientID, Error: "validation failed", Fields: res.Errors})
		return
	}

	thread.AddPending(in.ClientID, in.Text, time.Now().UTC())
	m, err := h.data.SendMessage(ctx, msg, uid)
	if err != nil {
		thread.Fail(in.ClientID)
		h.log.Warn().Err(err).Str("report", reportID).Msg("websocket send failed")
		c.push(wsOut{Type: "error", ClientID: in.ClientID, Error: "message not sent"})
		return
	}
	thread.Confirm(in.ClientID, *m)
	metrics.MessagesSentTotal.WithLabelValues(string(models.SenderUser)).Inc()
	c.push(wsOut{Type: "ack", ClientID: in.ClientID, Message: m})
}

func (c *wsClient) readPump(log zerolog.Logger, onFrame func(wsIn)) {
	c.conn.SetReadLimit(maxFrameSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		var in wsIn
		if err := c.conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Msg("websocket closed")
			}
			return
		}
		onFrame(in)
	}
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
		c.stop() // unblocks push once nothing drains send
	}()
	for {
		select {
		case m := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(m); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			c.flush()
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// flush writes frames queued before stop, such as a final error.
func (c *wsClient) flush() {
	for {
		select {
		case m := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(m); err != nil {
				return
			}
		default:
			return
		}
	}
}
