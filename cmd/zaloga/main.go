package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"os"

	"github.com/erazemk/zaloga/internal/api"
	"github.com/erazemk/zaloga/internal/artifact"
	"github.com/erazemk/zaloga/internal/catalog"
	"github.com/erazemk/zaloga/internal/config"
	"github.com/erazemk/zaloga/internal/identity"
	"github.com/erazemk/zaloga/internal/model"
	"github.com/erazemk/zaloga/internal/store"
	"github.com/erazemk/zaloga/pkg/logger"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	// Auto-generate JWT secret if not provided.
	if cfg.JWTSecret == "" {
		secret, err := generateSecret(32)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to generate JWT secret")
		}
		cfg.JWTSecret = secret
		log.Warn().Msg("JWT secret auto-generated (tokens will be invalidated on restart)")
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatal().Err(err).Msg("failed to create data directory")
	}

	artifacts := artifact.NewManager(cfg.ImageDir(), cfg.PDFDir(), log)
	if err := artifacts.EnsureDirs(); err != nil {
		log.Fatal().Err(err).Msg("failed to create artifact directories")
	}

	users := store.New[model.User](cfg.UsersFile(), log)
	items := store.New[model.Item](cfg.InventoryFile(), log)

	identitySvc := identity.NewService(users, log)
	catalogSvc := catalog.NewService(items, artifacts, log)

	// A fresh deployment gets a default admin account to log into.
	if err := identitySvc.EnsureDefaultAdmin(); err != nil {
		log.Fatal().Err(err).Msg("failed to bootstrap admin account")
	}

	router := api.NewRouter(api.Deps{
		Identity:  identitySvc,
		Catalog:   catalogSvc,
		Artifacts: artifacts,
		JWTSecret: cfg.JWTSecret,
		MaxUpload: cfg.MaxUploadBytes,
	})
	handler := api.LoggingMiddleware(log)(router)

	log.Info().Str("addr", cfg.Addr).Msg("server listening")
	if err := http.ListenAndServe(cfg.Addr, handler); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}

// generateSecret creates a random hex secret of the given byte length.
func generateSecret(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
