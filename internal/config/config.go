// Package config loads service configuration from the environment.
package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/sethvargo/go-envconfig"
)

// Config holds the runtime configuration.
type Config struct {
	Addr           string `env:"ADDR,            default=:8080"`
	DataDir        string `env:"DATA_DIR,        default=."`
	JWTSecret      string `env:"JWT_SECRET"`
	LogLevel       string `env:"LOG_LEVEL,       default=info"`
	LogPretty      bool   `env:"LOG_PRETTY,      default=false"`
	MaxUploadBytes int64  `env:"MAX_UPLOAD_BYTES, default=5242880"`
}

// Load reads configuration from environment variables.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	return &cfg, nil
}

// UsersFile returns the path of the users store.
func (c *Config) UsersFile() string {
	return filepath.Join(c.DataDir, "users.json")
}

// InventoryFile returns the path of the inventory store.
func (c *Config) InventoryFile() string {
	return filepath.Join(c.DataDir, "db.json")
}

// ImageDir returns the directory holding uploaded item images.
func (c *Config) ImageDir() string {
	return filepath.Join(c.DataDir, "static", "images")
}

// PDFDir returns the directory holding generated item summaries.
func (c *Config) PDFDir() string {
	return filepath.Join(c.DataDir, "static", "pdfs")
}
