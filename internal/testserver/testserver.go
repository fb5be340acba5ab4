// Package testserver runs the reference backend on an httptest server backed
// by a private in-memory database.
package testserver

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/angelmondragon/shopadmin/api/routes"
	"github.com/angelmondragon/shopadmin/internal/backend"
	"github.com/angelmondragon/shopadmin/internal/catalog"
	"github.com/angelmondragon/shopadmin/internal/resources"
	"github.com/angelmondragon/shopadmin/internal/testdb"
	"github.com/angelmondragon/shopadmin/pkg/config"
	"github.com/angelmondragon/shopadmin/pkg/logger"
	"github.com/angelmondragon/shopadmin/pkg/transport"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

const (
	AdminEmail    = "admin@shop.local"
	AdminPassword = "admin-secret"
)

type Server struct {
	URL      string
	BaseURL  string
	Config   *config.ServerConfig
	DB       *gorm.DB
	Services *backend.Services
	Registry *prometheus.Registry
}

// Config returns a server configuration with cheap password hashing and no
// login throttling.
func Config(uploadDir string) *config.ServerConfig {
	return &config.ServerConfig{
		Config: config.Config{App: config.AppConfig{Env: "test"}},
		JWT:    config.JWTConfig{Secret: "test-secret", Issuer: "shopadmin", ExpirationMinutes: 30},
		Password: config.PasswordConfig{
			ArgonMemoryKB: 64, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32,
		},
		MockAPI: config.MockAPIConfig{
			BasePath:        "/api",
			AllowedOrigins:  []string{"http://localhost:3000"},
			LoginRateWindow: time.Minute,
			ResetCodeTTL:    15 * time.Minute,
			UploadDir:       uploadDir,
		},
	}
}

// Start serves a fresh backend with the seeded admin account. mutate, when
// non-nil, adjusts the configuration first.
func Start(t testing.TB, mutate func(*config.ServerConfig)) *Server {
	t.Helper()
	cfg := Config(t.TempDir())
	if mutate != nil {
		mutate(cfg)
	}

	gdb := testdb.Gorm(t)
	svcs, err := backend.New(backend.Params{
		DB:       gdb,
		JWT:      cfg.JWT,
		Password: cfg.Password,
		Images:   catalog.DiskImages{Dir: cfg.MockAPI.UploadDir, URLPrefix: routes.UploadsPrefix},
		Logger:   logger.Nop(),
	})
	if err != nil {
		t.Fatalf("build services: %v", err)
	}
	if _, err := svcs.Account.EnsureAdmin(context.Background(), AdminEmail, AdminPassword); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	registry := prometheus.NewRegistry()
	srv := httptest.NewServer(routes.NewRouter(cfg, logger.Nop(), svcs, routes.Options{Registry: registry}))
	t.Cleanup(srv.Close)

	return &Server{
		URL:      srv.URL,
		BaseURL:  srv.URL + cfg.MockAPI.BasePath,
		Config:   cfg,
		DB:       gdb,
		Services: svcs,
		Registry: registry,
	}
}

// APIs builds the typed client APIs against the server using tokens.
func (s *Server) APIs(t testing.TB, tokens transport.TokenSource) *resources.APIs {
	t.Helper()
	client, err := transport.NewClient(s.BaseURL, tokens)
	if err != nil {
		t.Fatalf("transport client: %v", err)
	}
	return resources.NewAPIs(client)
}
