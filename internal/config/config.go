package config

import (
	"fmt"

	base "github.com/Skotchmaster/shopcore/pkg/config"
)

// Load reads the base config and enforces the settings the shop cannot start without.
func Load() (base.Config, error) {
	cfg, err := base.Load()
	if err != nil {
		return base.Config{}, fmt.Errorf("load config: %w", err)
	}

	base.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	base.MustNonEmpty(cfg.JWTSecret, "JWT_SECRET")
	base.MustNonNegative(cfg.LowStockThreshold, "LOW_STOCK_THRESHOLD")
	return cfg, nil
}
