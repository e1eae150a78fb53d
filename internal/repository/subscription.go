package repository

import (
	"sync"
	"sync/atomic"

	"munidenuncia/internal/models"
)

// Subscription guards delivery of pushed messages to one callback.
// Once Unsubscribe has been called no further callback begins, and the
// release func runs exactly once.
type Subscription struct {
	fn      func(models.Message)
	release func()

	mu         sync.Mutex // held while a callback runs
	closed     atomic.Bool
	inCallback atomic.Bool
	once       sync.Once
}

func NewSubscription(fn func(models.Message), release func()) *Subscription {
	return &Subscription{fn: fn, release: release}
}

// Deliver hands m to the callback. It reports false once the subscription is closed.
func (s *Subscription) Deliver(m models.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed.Load() {
		return false
	}
	s.inCallback.Store(true)
	defer s.inCallback.Store(false)
	s.fn(m)
	return true
}

func (s *Subscription) Closed() bool { return s.closed.Load() }

// Unsubscribe may be called from inside the callback.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.closed.Store(true)
		if !s.inCallback.Load() {
			// wait out a delivery that passed the closed check
			s.mu.Lock()
			s.mu.Unlock() //nolint:staticcheck
		}
		if s.release != nil {
			s.release()
		}
	})
}
