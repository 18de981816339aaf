package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            string
	DBPath          string
	StaticDir       string
	GeoIPPath       string
	LogLevel        string
	LogFormat       string
	LogFile         string
	TLSCert         string
	TLSKey          string
	RateLimitRPS    float64
	RateLimitBurst  int
	LimiterCache    int
	FilterBots      bool
	MaxUploadBytes  int64
	ShutdownTimeout time.Duration
	CORSOrigins     []string
}

// Load reads configuration from the environment. Values in envFiles (default
// .env) fill in variables that are not already set; a missing file is ignored.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := &Config{
		Port:            envOrDefault("ADS_PORT", "29999"),
		DBPath:          envOrDefault("ADS_DB_PATH", "./ads.db"),
		StaticDir:       envOrDefault("ADS_STATIC_DIR", "./static"),
		GeoIPPath:       os.Getenv("ADS_GEOIP_PATH"),
		LogLevel:        envOrDefault("ADS_LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("ADS_LOG_FORMAT", "json"),
		LogFile:         os.Getenv("ADS_LOG_FILE"),
		TLSCert:         os.Getenv("ADS_TLS_CERT"),
		TLSKey:          os.Getenv("ADS_TLS_KEY"),
		RateLimitRPS:    parseFloat("ADS_RATE_LIMIT_RPS", 20),
		RateLimitBurst:  parseInt("ADS_RATE_LIMIT_BURST", 40),
		LimiterCache:    parseInt("ADS_LIMITER_CACHE_SIZE", 10000),
		FilterBots:      parseBool("ADS_FILTER_BOTS", false),
		MaxUploadBytes:  int64(parseInt("ADS_MAX_UPLOAD_MB", 10)) << 20,
		ShutdownTimeout: parseDuration("ADS_SHUTDOWN_TIMEOUT", 10*time.Second),
		CORSOrigins:     splitList(envOrDefault("ADS_CORS_ORIGINS", "*")),
	}

	if cfg.RateLimitRPS <= 0 {
		return nil, fmt.Errorf("ADS_RATE_LIMIT_RPS must be positive")
	}
	if cfg.RateLimitBurst <= 0 {
		return nil, fmt.Errorf("ADS_RATE_LIMIT_BURST must be positive")
	}
	if cfg.LimiterCache <= 0 {
		return nil, fmt.Errorf("ADS_LIMITER_CACHE_SIZE must be positive")
	}
	if cfg.MaxUploadBytes <= 0 {
		return nil, fmt.Errorf("ADS_MAX_UPLOAD_MB must be positive")
	}
	if cfg.ShutdownTimeout <= 0 {
		return nil, fmt.Errorf("ADS_SHUTDOWN_TIMEOUT must be positive")
	}
	if (cfg.TLSCert == "") != (cfg.TLSKey == "") {
		return nil, fmt.Errorf("ADS_TLS_CERT and ADS_TLS_KEY must be set together")
	}
	switch cfg.LogFormat {
	case "json", "console":
	default:
		return nil, fmt.Errorf("ADS_LOG_FORMAT must be json or console")
	}

	return cfg, nil
}

func (c *Config) TLSEnabled() bool {
	return c.TLSCert != "" && c.TLSKey != ""
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func parseFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func parseBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func parseDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
