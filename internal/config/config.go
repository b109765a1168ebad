package config

import (
	"errors"
	"io/fs"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the configuration settings for the address search service.
//
// Fields:
// - Env: The current environment (e.g., local, development, production).
// - Port: The port for the monitoring server.
// - Kakao: Kakao Local API access and retry policy.
// - Geocoder: Batch geocoder settings.
// - Database: Configuration settings for the PostgreSQL database.
type Config struct {
	Env      string         // Env is the current environment: local, development, production.
	Port     int            // Port is the monitoring server port.
	Kakao    KakaoConfig    // Kakao holds the provider configuration.
	Geocoder GeocoderConfig // Geocoder holds the batch geocoder configuration.
	Database PostgresConfig // Database holds the postgres database configuration.
}

// KakaoConfig holds the Kakao Local API settings and the retry policy used for every lookup.
type KakaoConfig struct {
	APIKey      string        // REST API key sent as "KakaoAK <key>".
	BaseURL     string        // Address search endpoint.
	Timeout     time.Duration // Per-request HTTP timeout.
	MaxAttempts int           // Total attempts per lookup.
	Backoff     time.Duration // Fixed delay between attempts.
}

// GeocoderConfig holds the batch geocoder settings.
type GeocoderConfig struct {
	Workers       int           // The number of concurrent workers.
	Interval      time.Duration // The duration between polls.
	AddressPrefix string        // Prepended to every task address.
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string // Host is the database server address.
	Port     string // Port is the database server port.
	User     string // User is the database user.
	Password string // Password is the database user's password.
	Name     string // Name is the name of the database.
}

var defaults = map[string]string{
	"APP_ENV":                 "production",
	"APP_HEALTH_PORT":         "8080",
	"KAKAO_BASE_URL":          "https://dapi.kakao.com/v2/local/search/address.json",
	"KAKAO_TIMEOUT":           "10s",
	"KAKAO_MAX_ATTEMPTS":      "2",
	"KAKAO_BACKOFF":           "2s",
	"GEOCODER_WORKERS":        "10",
	"GEOCODER_INTERVAL":       "10m",
	"GEOCODER_ADDRESS_PREFIX": "",
	"DB_PORT":                 "5432",
}

// MustLoad reads the configuration from the environment, using the given .env files
// (".env" when none is given) as a fallback for variables that are not set.
// It panics when a value is malformed or the API key is missing.
func MustLoad(envFiles ...string) *Config {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}

	v := viper.New()
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	for _, file := range envFiles {
		values, err := godotenv.Read(file)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			panic("failed to read env file " + file)
		}
		for key, value := range values {
			v.SetDefault(key, value)
		}
	}

	healthPort, err := strconv.Atoi(v.GetString("APP_HEALTH_PORT"))
	if err != nil {
		panic("failed to parse port for monitoring server from configuration")
	}

	timeout, err := time.ParseDuration(v.GetString("KAKAO_TIMEOUT"))
	if err != nil || timeout <= 0 {
		panic("failed to parse kakao timeout from configuration")
	}

	maxAttempts, err := strconv.Atoi(v.GetString("KAKAO_MAX_ATTEMPTS"))
	if err != nil || maxAttempts < 1 {
		panic("failed to parse max attempts from configuration, must be a positive integer")
	}

	backoff, err := time.ParseDuration(v.GetString("KAKAO_BACKOFF"))
	if err != nil || backoff < 0 {
		panic("failed to parse backoff from configuration")
	}

	workers, err := strconv.Atoi(v.GetString("GEOCODER_WORKERS"))
	if err != nil {
		panic("failed to parse workers from configuration, must be an integer types")
	}

	interval, err := time.ParseDuration(v.GetString("GEOCODER_INTERVAL"))
	if err != nil || interval <= 0 {
		panic("failed to parse interval from configuration")
	}

	apiKey := v.GetString("KAKAO_REST_API_KEY")
	if apiKey == "" {
		panic("KAKAO_REST_API_KEY is required")
	}

	return &Config{
		Env:  v.GetString("APP_ENV"),
		Port: healthPort,
		Kakao: KakaoConfig{
			APIKey:      apiKey,
			BaseURL:     v.GetString("KAKAO_BASE_URL"),
			Timeout:     timeout,
			MaxAttempts: maxAttempts,
			Backoff:     backoff,
		},
		Geocoder: GeocoderConfig{
			Workers:       workers,
			Interval:      interval,
			AddressPrefix: v.GetString("GEOCODER_ADDRESS_PREFIX"),
		},
		Database: PostgresConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USERNAME"),
			Password: v.GetString("DB_PASSWORD"),
			Name:     v.GetString("DB_NAME"),
		},
	}
}
