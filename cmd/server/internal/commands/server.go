package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"filippo.io/csrf"
	"github.com/rs/cors"
	"github.com/tmaekawa/nippo/internal/auth"
	"github.com/tmaekawa/nippo/internal/logger"
	"github.com/tmaekawa/nippo/internal/server"
	"github.com/tmaekawa/nippo/internal/store"
	memorystore "github.com/tmaekawa/nippo/internal/store/memory"
	postgresstore "github.com/tmaekawa/nippo/internal/store/postgres"
	"github.com/tmaekawa/nippo/internal/website"
)

type ServerCmd struct {
	// Server configuration
	Listen string `help:"HTTP server listen address" default:"0.0.0.0:8080" env:"NIPPO_LISTEN"`
	Cert   string `help:"path to TLS cert file" default:"" env:"NIPPO_TLS_CERT"`
	Key    string `help:"path to TLS key file" default:"" env:"NIPPO_TLS_KEY"`

	// Token configuration
	TokenSecret string        `help:"secret key for HMAC signing of session tokens" env:"NIPPO_TOKEN_SECRET" required:""`
	TokenTTL    time.Duration `help:"session token TTL" default:"168h" env:"NIPPO_TOKEN_TTL"`

	// CORS configuration
	CORSOrigins []string `help:"allowed CORS origins for API requests" default:"http://localhost:8080" env:"NIPPO_CORS_ORIGINS"`

	// Store configuration
	StoreType     string             `help:"store type (memory or postgres)" default:"memory" env:"NIPPO_STORE_TYPE" enum:"memory,postgres"`
	PostgresStore PostgresStoreFlags `embed:"" prefix:"postgres-"`
}

type PostgresStoreFlags struct {
	// Connection Configuration
	ConnString string `help:"PostgreSQL connection string" env:"POSTGRES_CONNECTION_STRING"`

	// Connection Pool Configuration
	MaxConns        int32 `help:"maximum number of connections in pool" default:"20"`
	MinConns        int32 `help:"minimum number of connections in pool" default:"5"`
	MaxConnLifetime int32 `help:"maximum connection lifetime in seconds" default:"3600"`
	MaxConnIdleTime int32 `help:"maximum connection idle time in seconds" default:"1800"`

	// Migration Configuration
	AutoMigrate bool `help:"run database migrations on startup" default:"false" env:"NIPPO_POSTGRES_AUTO_MIGRATE"`
}

func (c *ServerCmd) Validate() error {
	if c.TokenSecret == "" {
		return errors.New("token signing secret is required (--token-secret or NIPPO_TOKEN_SECRET)")
	}
	if len(c.TokenSecret) < auth.MinSecretLength {
		return errors.New("token signing secret must be at least 32 bytes (256 bits) for HMAC-SHA256")
	}
	if c.StoreType == "postgres" && c.PostgresStore.ConnString == "" {
		return errors.New("PostgreSQL connection string is required (--postgres-conn-string or POSTGRES_CONNECTION_STRING)")
	}
	return nil
}

func (c *ServerCmd) Run(globals *Globals) error {
	log := logger.Setup(globals.Debug)
	ctx := context.Background()

	log.Info().Str("version", globals.Version).Bool("debug", globals.Debug).Msg("Starting server")

	issuer, err := auth.NewTokenIssuer(c.TokenSecret, c.TokenTTL)
	if err != nil {
		return err
	}

	// Create stores based on store type
	var (
		users   store.UserStore
		reports store.ReportStore
	)

	switch c.StoreType {
	case "postgres":
		poolCfg := &postgresstore.PoolConfig{
			ConnString:      c.PostgresStore.ConnString,
			MaxConns:        c.PostgresStore.MaxConns,
			MinConns:        c.PostgresStore.MinConns,
			MaxConnLifetime: c.PostgresStore.MaxConnLifetime,
			MaxConnIdleTime: c.PostgresStore.MaxConnIdleTime,
		}
		pool, err := postgresstore.NewPool(ctx, poolCfg)
		if err != nil {
			return fmt.Errorf("failed to create connection pool: %w", err)
		}
		defer pool.Close()

		if c.PostgresStore.AutoMigrate {
			if err := postgresstore.RunMigrations(ctx, pool); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
			log.Info().Msg("Database migrations completed")
		}

		users = postgresstore.NewUserStore(pool)
		reports = postgresstore.NewReportStore(pool)
		log.Info().Msg("Using PostgreSQL stores with shared connection pool")

	default:
		users = memorystore.NewUserStore()
		reports = memorystore.NewReportStore()
		log.Info().Msg("Using in-memory stores")
	}

	mux := http.NewServeMux()

	// JSON API: /auth/* and /api/*
	server.New(users, reports, issuer).Routes(mux)

	// Server-rendered pages
	site, err := website.New(users, reports, issuer)
	if err != nil {
		return fmt.Errorf("failed to initialize website: %w", err)
	}
	site.Routes(mux)

	// CSRF protection for HTML pages (not applied to API routes)
	protection := csrf.New()

	// API routes get CORS, HTML routes get CSRF
	split := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isAPIRoute(r.URL.Path) {
			withCORS(c.CORSOrigins, mux).ServeHTTP(w, r)
		} else {
			protection.Handler(mux).ServeHTTP(w, r)
		}
	})

	handler := logger.Requests(log)(split)

	if c.Cert != "" || c.Key != "" {
		if _, err := os.Stat(c.Cert); err != nil {
			return fmt.Errorf("TLS certificate not found at %s: %w", c.Cert, err)
		}
		if _, err := os.Stat(c.Key); err != nil {
			return fmt.Errorf("TLS key not found at %s: %w", c.Key, err)
		}

		log.Info().Str("addr", c.Listen).Msg("Starting HTTPS server")
		return configureHTTPServer(c.Listen, handler).ListenAndServeTLS(c.Cert, c.Key)
	}

	log.Info().Str("addr", c.Listen).Msg("Starting HTTP server")
	return configureHTTPServer(c.Listen, handler).ListenAndServe()
}

// isAPIRoute returns true if the path is an API route that needs CORS instead of CSRF
func isAPIRoute(path string) bool {
	return strings.HasPrefix(path, "/auth/") ||
		strings.HasPrefix(path, "/api/") ||
		path == "/health"
}

// withCORS adds CORS support to the API routes.
func withCORS(allowedOrigins []string, h http.Handler) http.Handler {
	middleware := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})
	return middleware.Handler(h)
}
