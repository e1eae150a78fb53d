package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Env           string
	Port          string
	Origin        string // CORS
	SessionSecret string

	// backend selection
	DataAdapter string // mock | remote
	Realtime    bool

	// remote adapter
	RemoteURL     string // Postgres DSN of the hosted backend
	RemoteAPIKey  string
	RemoteMigrate bool

	// photo storage (remote adapter)
	StorageBucket      string
	StoragePrefix      string
	StoragePublicURL   string
	GCSCredentialsJSON string

	// durable session store
	SessionStore string // file | redis | memory
	SessionDir   string
	RedisURL     string

	// mock adapter
	MockLatency bool
	MockSeed    bool

	GeocoderURL     string
	GeocoderEnabled bool
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envBool(k string, def bool) bool {
	v, err := strconv.ParseBool(os.Getenv(k))
	if err != nil {
		return def
	}
	return v
}

// Load reads the environment, after merging an optional .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Env:           env("APP_ENV", "dev"),
		Port:          env("API_PORT", "8080"),
		Origin:        env("CORS_ORIGIN", "http://localhost:3000"),
		SessionSecret: env("SESSION_SECRET", "dev-secret"),

		DataAdapter: strings.ToLower(env("DATA_ADAPTER", "mock")),
		Realtime:    envBool("REALTIME", false),

		RemoteURL:     env("REMOTE_URL", ""),
		RemoteAPIKey:  env("REMOTE_API_KEY", ""),
		RemoteMigrate: envBool("REMOTE_MIGRATE", false),

		StorageBucket:      env("STORAGE_BUCKET", "report-photos"),
		StoragePrefix:      env("STORAGE_PREFIX", "photos/"),
		StoragePublicURL:   env("STORAGE_PUBLIC_URL", "https://storage.googleapis.com"),
		GCSCredentialsJSON: env("GCS_CREDENTIALS_JSON", ""),

		SessionStore: strings.ToLower(env("SESSION_STORE", "file")),
		SessionDir:   env("SESSION_DIR", ".session"),
		RedisURL:     env("REDIS_URL", "redis://localhost:6379/0"),

		MockLatency: envBool("MOCK_LATENCY", true),
		MockSeed:    envBool("MOCK_SEED", false),

		GeocoderURL:     env("GEOCODER_URL", "https://nominatim.openstreetmap.org"),
		GeocoderEnabled: envBool("GEOCODER_ENABLED", true),
	}
}
