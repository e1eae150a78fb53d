package state

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"munidenuncia/internal/session"
)

type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

const themeKey = "theme"

var ErrUnknownTheme = errors.New("theme must be light, dark or system")

func (t Theme) Valid() bool { return t == ThemeLight || t == ThemeDark || t == ThemeSystem }

// ThemeStore persists the UI theme preference.
type ThemeStore struct {
	store session.Store
	log   zerolog.Logger

	mu    sync.RWMutex
	theme Theme
	obs   observers[Theme]
}

// NewThemeStore loads the persisted preference, defaulting to system.
func NewThemeStore(ctx context.Context, store session.Store, log zerolog.Logger) *ThemeStore {
	s := &ThemeStore{store: store, log: log, theme: ThemeSystem}
	var t Theme
	ok, err := session.GetJSON(ctx, store, themeKey, &t)
	switch {
	case err != nil:
		log.Warn().Err(err).Msg("theme preference unreadable, using system")
	case ok && t.Valid():
		s.theme = t
	}
	return s
}

func (s *ThemeStore) Get() Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme
}

func (s *ThemeStore) Set(ctx context.Context, t Theme) error {
	if !t.Valid() {
		return ErrUnknownTheme
	}
	if err := session.SetJSON(ctx, s.store, themeKey, t); err != nil {
		return err
	}
	s.mu.Lock()
	s.theme = t
	s.mu.Unlock()
	s.obs.notify(t)
	return nil
}

// Toggle flips between light and dark; system goes to dark.
func (s *ThemeStore) Toggle(ctx context.Context) (Theme, error) {
	next := ThemeDark
	if s.Get() == ThemeDark {
		next = ThemeLight
	}
	return next, s.Set(ctx, next)
}

func (s *ThemeStore) Subscribe(fn func(Theme)) func() { return s.obs.add(fn) }
