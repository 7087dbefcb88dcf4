package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Env                    string
	Port                   string
	AllowedOrigin          string
	BackendURL             string
	BackendToken           string
	BackendTimeoutSeconds  int
	RedisAddr              string
	RedisPassword          string
	RedisDB                int
	ProductCacheTTLSeconds int
	DefaultMargin          float64
	MetricsEnabled         bool
}

// Load reads the environment, after filling it from envFiles (default
// ".env") when they exist. Variables already set are not overridden.
func Load(envFiles ...string) Config {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			_ = godotenv.Load(file)
		}
	}

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	backendTimeout, err := strconv.Atoi(getEnv("BACKEND_TIMEOUT_SECONDS", "10"))
	if err != nil || backendTimeout < 1 {
		backendTimeout = 10
	}
	cacheTTL, err := strconv.Atoi(getEnv("PRODUCT_CACHE_TTL_SECONDS", "30"))
	if err != nil || cacheTTL < 1 {
		cacheTTL = 30
	}
	margin, err := strconv.ParseFloat(strings.TrimSpace(getEnv("DEFAULT_MARGIN", "0.18")), 64)
	if err != nil {
		margin = 0.18
	}
	metricsEnabled, err := strconv.ParseBool(getEnv("METRICS_ENABLED", "true"))
	if err != nil {
		metricsEnabled = true
	}

	return Config{
		Env:                    getEnv("APP_ENV", "production"),
		Port:                   getEnv("PORT", "8080"),
		AllowedOrigin:          getEnv("ALLOWED_ORIGIN", "http://127.0.0.1:3000"),
		BackendURL:             strings.TrimSpace(os.Getenv("BACKEND_URL")),
		BackendToken:           strings.TrimSpace(os.Getenv("BACKEND_TOKEN")),
		BackendTimeoutSeconds:  backendTimeout,
		RedisAddr:              os.Getenv("REDIS_ADDR"),
		RedisPassword:          os.Getenv("REDIS_PASSWORD"),
		RedisDB:                redisDB,
		ProductCacheTTLSeconds: cacheTTL,
		DefaultMargin:          margin,
		MetricsEnabled:         metricsEnabled,
	}
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key string, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}
