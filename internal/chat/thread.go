// Package chat reconciles a report's message thread as seen by one client:
// confirmed server messages plus sends that are still in flight.
package chat

import (
	"sort"
	"sync"
	"time"

	"munidenuncia/internal/models"
)

// TempPrefix marks ids of messages the server has not confirmed yet.
const TempPrefix = "temp-"

type Entry struct {
	models.Message
	Pending  bool   `json:"pending,omitempty"`
	ClientID string `json:"clientId,omitempty"`
}

// Thread is safe for concurrent use. Pending entries are keyed by the
// client correlation id, confirmed ones by message id.
type Thread struct {
	reportID string

	mu        sync.Mutex
	confirmed []models.Message
	seen      map[string]struct{}
	pending   []Entry
}

func NewThread(reportID string) *Thread {
	return &Thread{reportID: reportID, seen: map[string]struct{}{}}
}

// AddPending records a user message that has been sent but not confirmed.
func (t *Thread) AddPending(clientID, text string, at time.Time) Entry {
	e := Entry{
		Message: models.Message{
			ID:        TempPrefix + clientID,
			ReportID:  t.reportID,
			Sender:    models.SenderUser,
			Text:      text,
			CreatedAt: at,
		},
		Pending:  true,
		ClientID: clientID,
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.dropPending(clientID)
	t.pending = append(t.pending, e)
	return e
}

// Confirm swaps the pending entry for the stored message. It reports
// whether m was new to the thread.
func (t *Thread) Confirm(clientID string, m models.Message) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.dropPending(clientID)
	return t.add(m)
}

// Fail discards a pending entry whose send was rejected.
func (t *Thread) Fail(clientID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dropPending(clientID)
}

// Merge adds server messages not seen before and returns them.
func (t *Thread) Merge(msgs ...models.Message) []models.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	var added []models.Message
	for _, m := range msgs {
		if t.add(m) {
			added = append(added, m)
		}
	}
	return added
}

// Entries lists confirmed messages oldest first, then pending ones in send order.
func (t *Thread) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Entry, 0, len(t.confirmed)+len(t.pending))
	for _, m := range t.confirmed {
		out = append(out, Entry{Message: m})
	}
	return append(out, t.pending...)
}

// caller holds mu
func (t *Thread) add(m models.Message) bool {
	if _, ok := t.seen[m.ID]; ok {
		return false
	}
	t.seen[m.ID] = struct{}{}
	i := sort.Search(len(t.confirmed), func(i int) bool { return t.confirmed[i].CreatedAt.After(m.CreatedAt) })
	t.confirmed = append(t.confirmed, models.Message{})
	copy(t.confirmed[i+1:], t.confirmed[i:])
	t.confirmed[i] = m
	return true
}

// caller holds mu
func (t *Thread) dropPending(clientID string) bool {
	for i, e := range t.pending {
		if e.ClientID == clientID {
			t.pending = append(t.pending[:i], t.pending[i+1:]...)
			return true
		}
	}
	return false
}
