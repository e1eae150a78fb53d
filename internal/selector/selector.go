// Package selector picks the data adapter once at startup.
package selector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"munidenuncia/internal/config"
	"munidenuncia/internal/database"
	"munidenuncia/internal/models"
	"munidenuncia/internal/repository"
	"munidenuncia/internal/repository/mock"
	"munidenuncia/internal/repository/postgres"
	"munidenuncia/internal/repository/remote"
	"munidenuncia/internal/service"
	"munidenuncia/internal/session"
	"munidenuncia/internal/storage"
)

const (
	KindMock   = "mock"
	KindRemote = "remote"
)

// BlobSource serves photos kept by the mock adapter.
type BlobSource interface {
	Blob(id string) (models.Photo, bool)
}

// Backend is the adapter chosen for this process.
type Backend struct {
	Adapter  repository.DataAdapter
	Kind     string
	Realtime bool
	Sessions session.Store
	Blobs    BlobSource // nil for remote

	closers []func()
}

// Close releases connections in reverse order of acquisition.
func (b *Backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
	b.closers = nil
}

// Open reads DATA_ADAPTER ("mock", "remote" or its alias "supabase") and
// builds the adapter. The choice is fixed for the lifetime of the process.
func Open(ctx context.Context, cfg config.Config, log zerolog.Logger) (*Backend, error) {
	sessions, closeSessions, err := OpenSessions(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("session store: %w", err)
	}
	b := &Backend{Sessions: sessions}
	if closeSessions != nil {
		b.closers = append(b.closers, closeSessions)
	}

	switch cfg.DataAdapter {
	case "", KindMock:
		err = openMock(b, cfg, log)
	case KindRemote, "supabase":
		err = openRemote(ctx, b, cfg, log)
	default:
		err = fmt.Errorf("unknown DATA_ADAPTER %q", cfg.DataAdapter)
	}
	if err != nil {
		b.Close()
		return nil, err
	}

	if !b.Realtime {
		b.Adapter = repository.WithoutRealtime(b.Adapter)
	}
	log.Info().Str("adapter", b.Kind).Bool("realtime", b.Realtime).Str("sessions", cfg.SessionStore).Msg("data adapter selected")
	return b, nil
}

func openMock(b *Backend, cfg config.Config, log zerolog.Logger) error {
	store := mock.NewStore()
	if cfg.MockSeed {
		store.Seed("1", time.Now())
	}
	a := mock.New(store, b.Sessions, log.With().Str("adapter", KindMock).Logger(), mock.Options{Latency: cfg.MockLatency})
	if cfg.Realtime {
		log.Warn().Msg("REALTIME ignored: the mock adapter cannot push messages")
	}
	b.Adapter, b.Kind, b.Blobs = a, KindMock, a
	return nil
}

func openRemote(ctx context.Context, b *Backend, cfg config.Config, log zerolog.Logger) error {
	if cfg.RemoteURL == "" || cfg.RemoteAPIKey == "" {
		return errors.New("remote adapter needs REMOTE_URL and REMOTE_API_KEY")
	}
	pool, err := database.Open(ctx, cfg.RemoteURL)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	b.closers = append(b.closers, pool.Close)

	users := postgres.NewUserRepo(pool)
	auth := service.NewAuthService(users, cfg.RemoteAPIKey)
	if cfg.RemoteMigrate {
		if err := migrate(ctx, pool, auth); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		log.Info().Msg("schema applied")
	}

	objects, err := storage.NewGCS(ctx, storage.Options{
		Bucket:          cfg.StorageBucket,
		Prefix:          cfg.StoragePrefix,
		PublicURL:       cfg.StoragePublicURL,
		CredentialsJSON: cfg.GCSCredentialsJSON,
	})
	if err != nil {
		return fmt.Errorf("object store: %w", err)
	}
	b.closers = append(b.closers, func() { _ = objects.Close() })

	deps := remote.Deps{
		Auth:     auth,
		Reports:  postgres.NewReportRepo(pool),
		Messages: postgres.NewMessageRepo(pool),
		Objects:  objects,
		Sessions: b.Sessions,
	}
	if cfg.Realtime {
		deps.Feed = remote.NewFeed(pool)
	}
	b.Adapter = remote.New(deps, log.With().Str("adapter", KindRemote).Logger())
	b.Kind, b.Realtime = KindRemote, cfg.Realtime
	return nil
}

// migrate applies the schema and makes sure the demo accounts exist.
func migrate(ctx context.Context, pool *pgxpool.Pool, auth *service.AuthService) error {
	if err := database.Migrate(ctx, pool); err != nil {
		return err
	}
	for _, acc := range []struct{ email, name, role string }{
		{"usuario@ejemplo.cl", "María González Morales", models.RoleCitizen},
		{"agente@municipalidad.cl", "Carlos Mendoza", models.RoleAgent},
	} {
		if _, err := auth.Register(ctx, acc.email, acc.name, "password123", acc.role); err != nil {
			return err
		}
	}
	return nil
}

// OpenSessions builds the durable key-value store named by SESSION_STORE.
func OpenSessions(ctx context.Context, cfg config.Config) (session.Store, func(), error) {
	switch cfg.SessionStore {
	case "memory":
		return session.NewMemoryStore(), nil, nil
	case "", "file":
		s, err := session.NewFileStore(cfg.SessionDir)
		return s, nil, err
	case "redis":
		s, err := session.NewRedisStore(cfg.RedisURL, "munidenuncia:")
		if err != nil {
			return nil, nil, err
		}
		if err := s.Ping(ctx); err != nil {
			_ = s.Close()
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown SESSION_STORE %q", cfg.SessionStore)
}
