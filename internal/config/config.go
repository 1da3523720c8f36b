package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName     string
	AppEnv      string
	AppPort     string
	DatabaseURL string
	RedisURL    string
	NATSURL     string
	JWTSecret   string

	WhatsAppGatewayURL string
	WhatsAppAPIToken   string

	ContentCacheTTL time.Duration
	SweepWorkers    int

	Engine EngineConfig
}

// EngineConfig gathers every tunable threshold of the progression engine so
// the analyzer, scorer and alert manager never carry inline literals.
type EngineConfig struct {
	// Grade bands, applied as ">= threshold" checks from best to worst.
	GradeExcellent  float64
	GradeVeryGood   float64
	GradeGood       float64
	GradeAcceptable float64

	// Performance analysis.
	AnalysisWindowDays int
	TrendDelta         float64
	TrendMinSessions   int
	AlertCooldown      time.Duration
	AlertExpiry        time.Duration

	// Readiness rubric maximum weights. They sum to 100.
	WeightCompletion  float64
	WeightPerformance float64
	WeightConsistency float64
	WeightMastery     float64
	WeightTenure      float64

	// Daily content geometry.
	VersesPerPage float64
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// DefaultEngineConfig returns the production thresholds.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		GradeExcellent:     90,
		GradeVeryGood:      80,
		GradeGood:          70,
		GradeAcceptable:    60,
		AnalysisWindowDays: 14,
		TrendDelta:         5,
		TrendMinSessions:   4,
		AlertCooldown:      7 * 24 * time.Hour,
		AlertExpiry:        30 * 24 * time.Hour,
		WeightCompletion:   25,
		WeightPerformance:  25,
		WeightConsistency:  20,
		WeightMastery:      20,
		WeightTenure:       10,
		VersesPerPage:      10,
	}
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("TAHFIZ")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Tahfiz API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("content.cache_ttl", "24h")
	v.SetDefault("sweep.workers", 4)
	v.SetDefault("engine.analysis_window_days", 14)
	v.SetDefault("engine.alert_cooldown_days", 7)
	v.SetDefault("engine.alert_expiry_days", 30)

	ttlString := v.GetString("content.cache_ttl")
	if ttlString == "" {
		ttlString = "24h"
	}

	ttl, err := time.ParseDuration(ttlString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid content cache ttl: %w", err)
	}

	engine := DefaultEngineConfig()
	if days := v.GetInt("engine.analysis_window_days"); days > 0 {
		engine.AnalysisWindowDays = days
	}
	if days := v.GetInt("engine.alert_cooldown_days"); days > 0 {
		engine.AlertCooldown = time.Duration(days) * 24 * time.Hour
	}
	if days := v.GetInt("engine.alert_expiry_days"); days > 0 {
		engine.AlertExpiry = time.Duration(days) * 24 * time.Hour
	}

	cfg := Config{
		AppName:            v.GetString("app.name"),
		AppEnv:             v.GetString("app.env"),
		AppPort:            v.GetString("app.port"),
		DatabaseURL:        v.GetString("database.url"),
		RedisURL:           v.GetString("redis.url"),
		NATSURL:            v.GetString("nats.url"),
		JWTSecret:          v.GetString("jwt.secret"),
		WhatsAppGatewayURL: v.GetString("whatsapp.gateway_url"),
		WhatsAppAPIToken:   v.GetString("whatsapp.api_token"),
		ContentCacheTTL:    ttl,
		SweepWorkers:       v.GetInt("sweep.workers"),
		Engine:             engine,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.SweepWorkers <= 0 {
		cfg.SweepWorkers = 4
	}

	return cfg, nil
}
