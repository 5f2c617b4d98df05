package config

import (
	"context"
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env  string
	Port int

	DBURL string

	// SessionSecret signs the session cookie and the flash cookie.
	SessionSecret string

	WeatherBaseURL string
	WeatherAPIKey  string
	// WeatherCacheTTL of zero disables the snapshot cache entirely, so
	// every page view hits the upstream provider.
	WeatherCacheTTL time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	TracingEnabled bool
	OTLPEndpoint   string
}

func Load() Config {
	// .env is a dev convenience, real deployments set the environment.
	_ = godotenv.Load()

	return Config{
		Env:  getEnv("APP_ENV", "dev"),
		Port: getEnvInt("PORT", 8080),

		DBURL: buildDBURL(),

		SessionSecret: getEnv("SESSION_SECRET", ""),

		WeatherBaseURL:  getEnv("WEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5/weather"),
		WeatherAPIKey:   getEnv("WEATHER_API_KEY", ""),
		WeatherCacheTTL: time.Duration(getEnvInt("WEATHER_CACHE_TTL_SECONDS", 0)) * time.Second,

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		TracingEnabled: getEnvBool("TRACING_ENABLED", false),
		OTLPEndpoint:   getEnv("OTLP_ENDPOINT", "localhost:4317"),
	}
}

// Validate rejects configurations that cannot run outside dev: secrets
// must come from the environment, never from source.
func (c Config) Validate() error {
	if c.Env == "dev" {
		return nil
	}

	if c.SessionSecret == "" {
		return errors.New("SESSION_SECRET is required")
	}

	if c.WeatherAPIKey == "" {
		return errors.New("WEATHER_API_KEY is required")
	}

	return nil
}

func buildDBURL() string {
	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "weatherhub")
	pass := getEnv("DB_PASSWORD", "weatherhub")
	name := getEnv("DB_NAME", "weatherhub")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)

		if err != nil {
			return fallback
		}

		return b
	}
	return fallback
}
