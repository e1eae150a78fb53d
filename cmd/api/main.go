package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"munidenuncia/internal/config"
	"munidenuncia/internal/geocode"
	"munidenuncia/internal/router"
	"munidenuncia/internal/selector"
	"munidenuncia/internal/state"
	"munidenuncia/pkg/logger"
)

func main() {
	// config + logger
	cfg := config.Load()
	l := logger.New(cfg.Env)

	// data adapter, fixed for the life of the process
	ctx := context.Background()
	backend, err := selector.Open(ctx, cfg, l)
	if err != nil {
		l.Fatal().Err(err).Str("adapter", cfg.DataAdapter).Msg("data adapter init failed")
	}
	defer backend.Close()
	l.Info().Str("adapter", backend.Kind).Bool("realtime", backend.Realtime).Msg("data adapter ready")

	// stores
	auth := state.NewAuthStore(backend.Adapter, l)
	auth.Subscribe(func(s state.AuthState) {
		ev := l.Debug().Bool("authenticated", s.IsAuthenticated).Bool("loading", s.IsLoading)
		if s.User != nil {
			ev = ev.Str("user_id", s.User.ID)
		}
		ev.Msg("auth state")
	})
	auth.Initialize(ctx)
	theme := state.NewThemeStore(ctx, backend.Sessions, l)

	deps := router.Deps{Backend: backend, Auth: auth, Theme: theme}
	if cfg.GeocoderEnabled {
		deps.Geo = geocode.New(cfg.GeocoderURL)
	}

	// http
	r := router.New(l, cfg, deps)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       30 * time.Second, // photo uploads
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		l.Info().Str("addr", srv.Addr).Msg("api listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Fatal().Err(err).Msg("server error")
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(sctx)
	l.Info().Msg("shutdown complete")
}
