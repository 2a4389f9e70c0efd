package config

import (
	"fmt"
	"strings"

	"edutoken-backend/internal/application/registry"
	"edutoken-backend/internal/domain"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env                 string
	Port                string
	LogLevel            string
	DatabaseURL         string // postgres DSN, or "sqlite:<path>" for local runs
	RedisURL            string
	FrontendURLEndsWith string
	DevPassword         string
	AllowCrossSiteDev   bool
	HealthAdminKey      string
	TreasuryAdminKey    string
	PlatformFeeBP       int64
	Limits              registry.Limits
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	defaults := registry.DefaultLimits()
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DATABASE_URL", "sqlite:edutoken.db")
	v.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	v.SetDefault("PLATFORM_FEE_BP", 0)
	v.SetDefault("ISA_MIN_FUNDING", defaults.MinFunding)
	v.SetDefault("ISA_MAX_FUNDING", defaults.MaxFunding)
	v.SetDefault("ISA_MIN_SHARE_BP", defaults.MinShareBP)
	v.SetDefault("ISA_MAX_SHARE_BP", defaults.MaxShareBP)
	v.SetDefault("ISA_MAX_TERM_MONTHS", defaults.MaxTermMonths)
	v.SetDefault("ISA_MAX_MIN_INCOME", defaults.MaxMinIncome)
	v.SetDefault("ISA_MIN_CAP_MULTIPLE_BP", defaults.MinCapMultipleBP)

	env := v.GetString("NODE_ENV")
	if env == "" {
		env = v.GetString("APP_ENV")
	}
	if env == "" {
		env = "development"
	}

	cfg := &Config{
		Env:                 env,
		Port:                v.GetString("PORT"),
		LogLevel:            v.GetString("LOG_LEVEL"),
		DatabaseURL:         v.GetString("DATABASE_URL"),
		RedisURL:            v.GetString("REDIS_URL"),
		FrontendURLEndsWith: v.GetString("FRONTEND_URL_ENDS_WITH"),
		DevPassword:         v.GetString("DEV_PASSWORD"),
		AllowCrossSiteDev:   strings.EqualFold(v.GetString("ALLOW_CROSS_SITE_DEV"), "true"),
		HealthAdminKey:      v.GetString("HEALTH_ADMIN_KEY"),
		TreasuryAdminKey:    v.GetString("TREASURY_ADMIN_KEY"),
		PlatformFeeBP:       v.GetInt64("PLATFORM_FEE_BP"),
		Limits: registry.Limits{
			MinFunding:       v.GetInt64("ISA_MIN_FUNDING"),
			MaxFunding:       v.GetInt64("ISA_MAX_FUNDING"),
			MinShareBP:       v.GetInt64("ISA_MIN_SHARE_BP"),
			MaxShareBP:       v.GetInt64("ISA_MAX_SHARE_BP"),
			MaxTermMonths:    v.GetInt64("ISA_MAX_TERM_MONTHS"),
			MaxMinIncome:     v.GetInt64("ISA_MAX_MIN_INCOME"),
			MinCapMultipleBP: v.GetInt64("ISA_MIN_CAP_MULTIPLE_BP"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects a fee or ISA limits the ledger cannot honour.
func (c *Config) Validate() error {
	if c.PlatformFeeBP < 0 || c.PlatformFeeBP > domain.BasisPoints {
		return fmt.Errorf("PLATFORM_FEE_BP must be within 0..%d, got %d", domain.BasisPoints, c.PlatformFeeBP)
	}
	if err := c.Limits.Check(); err != nil {
		return fmt.Errorf("ISA limits: %w", err)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
