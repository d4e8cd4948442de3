package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config armazena as configurações da aplicação
type Config struct {
	Port     string
	GinMode  string
	LogLevel string
	LogJSON  bool

	// OutputDir is the transient storage area for generated documents and
	// decoded uploads. It is injected into the document store, never read
	// from a package-level variable.
	OutputDir     string
	LineItemSlots int
	DocumentTTL   time.Duration
	SweepInterval time.Duration
	MaxUploadMB   int64

	RateLimitRPS   float64
	RateLimitBurst int
}

// ErrInvalidConfig indica um valor de configuração inválido
var ErrInvalidConfig = errors.New("configuração inválida")

// Supported form capacities.
var allowedSlots = map[int]bool{4: true, 10: true}

// Load carrega as configurações do ambiente
func Load() (*Config, error) {
	// Tenta carregar .env de múltiplos locais
	_ = godotenv.Load()
	_ = godotenv.Load("../.env")

	cfg := &Config{
		Port:      os.Getenv("PORT"),
		GinMode:   os.Getenv("GIN_MODE"),
		LogLevel:  os.Getenv("LOG_LEVEL"),
		OutputDir: os.Getenv("OUTPUT_DIR"),
	}

	var err error
	if cfg.LogJSON, err = boolEnv("LOG_JSON", false); err != nil {
		return nil, err
	}
	if cfg.LineItemSlots, err = intEnv("LINE_ITEM_SLOTS", 10); err != nil {
		return nil, err
	}
	if cfg.DocumentTTL, err = durationEnv("DOCUMENT_TTL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.SweepInterval, err = durationEnv("SWEEP_INTERVAL", 10*time.Minute); err != nil {
		return nil, err
	}
	maxUpload, err := intEnv("MAX_UPLOAD_MB", 10)
	if err != nil {
		return nil, err
	}
	cfg.MaxUploadMB = int64(maxUpload)
	if cfg.RateLimitRPS, err = floatEnv("RATE_LIMIT_RPS", 5); err != nil {
		return nil, err
	}
	if cfg.RateLimitBurst, err = intEnv("RATE_LIMIT_BURST", 10); err != nil {
		return nil, err
	}

	// Defaults
	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	if cfg.GinMode == "" {
		cfg.GinMode = "debug"
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if cfg.OutputDir == "" {
		cfg.OutputDir = "pdfs"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the values that have no sensible fallback.
func (c *Config) Validate() error {
	if !allowedSlots[c.LineItemSlots] {
		return fmt.Errorf("%w: LINE_ITEM_SLOTS deve ser 4 ou 10, recebido %d", ErrInvalidConfig, c.LineItemSlots)
	}
	if c.DocumentTTL <= 0 {
		return fmt.Errorf("%w: DOCUMENT_TTL deve ser positivo", ErrInvalidConfig)
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("%w: SWEEP_INTERVAL deve ser positivo", ErrInvalidConfig)
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("%w: MAX_UPLOAD_MB deve ser positivo", ErrInvalidConfig)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("%w: RATE_LIMIT_RPS e RATE_LIMIT_BURST devem ser positivos", ErrInvalidConfig)
	}
	return nil
}

// MaxUploadBytes returns the request body limit for form submissions.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB * 1024 * 1024
}

func intEnv(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidConfig, key, v)
	}
	return n, nil
}

func floatEnv(key string, def float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidConfig, key, v)
	}
	return f, nil
}

func boolEnv(key string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: %s=%q", ErrInvalidConfig, key, v)
	}
	return b, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidConfig, key, v)
	}
	return d, nil
}
