package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/YouWantToPinch/hearth-api/internal/auth"
	"github.com/YouWantToPinch/hearth-api/internal/database"
	"github.com/YouWantToPinch/hearth-api/internal/report"
	"github.com/YouWantToPinch/hearth-api/internal/session"
)

const devSecret = "hearth-dev-secret-do-not-use-in-production"

// Config is everything the server reads from the environment.
type Config struct {
	Platform    string
	Port        string
	LogLevel    slog.Level
	CORSOrigins []string
	Token       auth.TokenConfig
	Hash        auth.HasherConfig
	DB          database.Config
}

type APIConfig struct {
	store       database.Store
	sessions    *session.Issuer
	tokens      *auth.Codec
	reports     *report.Aggregator
	platform    string
	corsOrigins []string
	logger      *slog.Logger
	config      Config
}

// LoadConfig reads envPath (when given and present) and then the process
// environment. Every invalid setting is reported in the returned error.
func LoadConfig(envPath string) (Config, error) {
	if len(envPath) != 0 {
		_ = godotenv.Load(envPath)
	}

	var errs []error
	envInt := func(name string, def int) int {
		raw := os.Getenv(name)
		if raw == "" {
			return def
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %q is not a number", name, raw))
			return def
		}
		return v
	}
	envMinutes := func(name string, def int) time.Duration {
		return time.Duration(envInt(name, def)) * time.Minute
	}

	c := Config{
		Platform:    os.Getenv("PLATFORM"),
		Port:        envOrDefault("PORT", "8080"),
		LogLevel:    parseLogLevel(os.Getenv("SLOG_LEVEL")),
		CORSOrigins: splitList(envOrDefault("CORS_ALLOWED_ORIGINS", "*")),
		Token: auth.TokenConfig{
			Secret:     os.Getenv("JWT_SECRET"),
			Algorithm:  envOrDefault("JWT_ALGORITHM", "HS256"),
			AccessTTL:  envMinutes("JWT_ACCESS_TOKEN_EXPIRE", 1440),
			RefreshTTL: envMinutes("JWT_REFRESH_TOKEN_EXPIRE", 10080),
		},
		Hash: auth.HasherConfig{
			Algorithm:       envOrDefault("PASSWORD_HASH", auth.HashArgon2id),
			BcryptCost:      envInt("BCRYPT_COST", 10),
			Argon2MemoryKiB: uint32(envInt("ARGON2_MEMORY_KIB", 64*1024)),
			Argon2Iter:      uint32(envInt("ARGON2_ITERATIONS", 3)),
		},
		DB: database.Config{
			Backend:    envOrDefault("DATA_BACKEND", database.BackendPostgres),
			Driver:     envOrDefault("DB_DRIVER", database.DriverPQ),
			URL:        os.Getenv("DB_URL"),
			SQLitePath: envOrDefault("SQLITE_DB_PATH", "./data/hearth.db"),
		},
	}
	if c.DB.URL == "" {
		c.DB.URL = GenerateDBConnectionString()
	}
	if c.Token.Secret == "" && c.Platform == "dev" {
		c.Token.Secret = devSecret
	}

	if err := c.Validate(); err != nil {
		errs = append(errs, err)
	}
	return c, errors.Join(errs...)
}

// Validate checks every setting and joins all problems into one error.
func (c Config) Validate() error {
	var errs []error

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Errorf("invalid port %q: must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.Token.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required outside of the dev platform"))
	}
	if !strings.HasPrefix(c.Token.Algorithm, "HS") {
		errs = append(errs, fmt.Errorf("invalid JWT_ALGORITHM %q: must be HS256, HS384 or HS512", c.Token.Algorithm))
	}
	if c.Token.AccessTTL <= 0 {
		errs = append(errs, errors.New("JWT_ACCESS_TOKEN_EXPIRE must be positive"))
	}
	if c.Token.RefreshTTL <= 0 {
		errs = append(errs, errors.New("JWT_REFRESH_TOKEN_EXPIRE must be positive"))
	}

	switch c.Hash.Algorithm {
	case auth.HashArgon2id, auth.HashBcrypt:
	default:
		errs = append(errs, fmt.Errorf("invalid PASSWORD_HASH %q: must be argon2id or bcrypt", c.Hash.Algorithm))
	}

	switch c.DB.Backend {
	case database.BackendPostgres:
		if c.DB.Driver != database.DriverPQ && c.DB.Driver != database.DriverPGX {
			errs = append(errs, fmt.Errorf("invalid DB_DRIVER %q: must be postgres or pgx", c.DB.Driver))
		}
		if c.DB.URL == "" {
			errs = append(errs, errors.New("a database URL is required for the postgres backend"))
		}
	case database.BackendSQLite:
		if c.DB.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_DB_PATH cannot be empty when using the sqlite backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid DATA_BACKEND %q: must be postgres or sqlite", c.DB.Backend))
	}

	return errors.Join(errs...)
}

// Init builds the logger and the token and password services. A store must
// still be attached with ConnectToDB or UseStore.
func (cfg *APIConfig) Init(c Config) error {
	cfg.config = c
	cfg.platform = c.Platform
	cfg.corsOrigins = c.CORSOrigins
	cfg.NewLogger(c.LogLevel)

	tokens, err := auth.NewCodec(c.Token)
	if err != nil {
		return err
	}
	cfg.tokens = tokens
	return nil
}

func (cfg *APIConfig) NewLogger(level slog.Level) {
	cfg.logger = slog.New(slog.NewJSONHandler(os.Stdout,
		&slog.HandlerOptions{Level: level}))
	slog.SetDefault(cfg.logger)
}

// ConnectToDB opens the configured backend, migrates it and attaches it.
func (cfg *APIConfig) ConnectToDB(ctx context.Context) error {
	store, err := database.Open(ctx, cfg.config.DB)
	if err != nil {
		return err
	}
	slog.Info("connected to database",
		slog.String("backend", cfg.config.DB.Backend),
		slog.String("driver", cfg.config.DB.Driver))
	return cfg.UseStore(store)
}

func (cfg *APIConfig) UseStore(store database.Store) error {
	hasher, err := auth.NewHasher(cfg.config.Hash)
	if err != nil {
		return err
	}
	sessions, err := session.NewIssuer(store, cfg.tokens, hasher)
	if err != nil {
		return err
	}
	cfg.store = store
	cfg.sessions = sessions
	cfg.reports = report.NewAggregator(store)
	return nil
}

func (cfg *APIConfig) Close() error {
	if cfg.store == nil {
		return nil
	}
	return cfg.store.Close()
}

func (cfg *APIConfig) Port() string { return cfg.config.Port }

func GenerateDBConnectionString() string {
	dbUser := envOrDefault("DB_USER", "postgres")
	dbPassword := envOrDefault("DB_PASSWORD", "postgres")
	dbHost := envOrDefault("DB_HOST", "localhost")
	dbPort := envOrDefault("DB_PORT", "5432")
	dbName := envOrDefault("DB_NAME", "hearth")

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		dbUser,
		dbPassword,
		dbHost,
		dbPort,
		dbName,
	)
}

func envOrDefault(envVar string, defaultVal string) string {
	envVal := os.Getenv(envVar)
	if len(envVal) == 0 {
		envVal = defaultVal
	}
	return envVal
}

func parseLogLevel(s string) slog.Level {
	switch s {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
