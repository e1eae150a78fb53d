package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"munidenuncia/internal/config"
	"munidenuncia/internal/handlers"
	"munidenuncia/internal/metrics"
	"munidenuncia/internal/middleware"
	"munidenuncia/internal/models"
	"munidenuncia/internal/repository"
	"munidenuncia/internal/selector"
	"munidenuncia/internal/state"
)

// Deps are the process-wide components the HTTP surface is built on.
type Deps struct {
	Backend *selector.Backend
	Auth    *state.AuthStore
	Theme   *state.ThemeStore
	Geo     handlers.Geocoder // nil disables geocoding
}

func New(log zerolog.Logger, cfg config.Config, d Deps) http.Handler {
	metrics.Register()

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Recoverer(log))
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.Origin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	r.Use(httprate.LimitByIP(200, time.Minute))
	r.Use(middleware.WithAuth(log, cfg.SessionSecret))

	data := d.Backend.Adapter

	// Health + metrics
	r.Get("/healthz", handlers.Health(d.Backend.Kind, d.Backend.Realtime))
	r.Handle("/metrics", promhttp.Handler())

	ph := handlers.NewPhotosHTTP(data, d.Backend.Blobs, log)
	r.Get("/blobs/{id}", ph.Blob())

	ah := handlers.NewAuthHTTP(d.Auth, cfg.SessionSecret, log)
	r.Route("/api/auth", func(r chi.Router) {
		// tighter limit on credential guessing
		r.With(httprate.LimitByIP(10, time.Minute)).Post("/login", ah.Login())
		r.With(middleware.RequireAuth).Post("/logout", ah.Logout())
		r.With(middleware.RequireAuth).Get("/me", ah.Me())
		r.With(middleware.RequireAuth).Get("/session", ah.Session())
	})

	sh := handlers.NewSettingsHTTP(d.Theme, log)
	r.Route("/api/settings", func(r chi.Router) {
		r.Get("/theme", sh.GetTheme())
		r.Put("/theme", sh.PutTheme())
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		rh := handlers.NewReportsHTTP(data, d.Geo, log)
		mh := handlers.NewMessagesHTTP(data, log)
		ws := handlers.NewThreadWS(data, cfg.Origin, log)

		r.Route("/api/reports", func(r chi.Router) {
			r.Get("/", rh.List())
			r.Post("/", rh.Create())
			r.Get("/summary", rh.Summary())
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", rh.Get())
				r.Get("/messages", mh.List())
				r.Post("/messages", mh.Send())
				r.Get("/messages/ws", ws.Serve())
			})
		})

		r.Post("/api/photos", ph.Upload())

		if d.Geo != nil {
			gh := handlers.NewGeocodeHTTP(d.Geo, log)
			r.Get("/api/geocode/reverse", gh.Reverse())
			r.Get("/api/geocode/search", gh.Search())
		}

		if op, ok := data.(repository.Operator); ok {
			oh := handlers.NewOpsHTTP(op, log)
			r.Route("/api/ops/reports/{id}", func(r chi.Router) {
				r.Use(middleware.RequireRoles(models.RoleAgent))
				r.Patch("/status", oh.UpdateStatus())
				r.Post("/replies", oh.Reply())
			})
		}
	})

	return r
}
