package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ProjectID string
	Region    string
	LogLevel  string
	Port      string

	StorageBucket        string
	KMSKeyName           string
	FirebaseAPIKey       string
	FirebaseAPIKeySecret string

	CacheTTL        time.Duration
	CacheMaxEntries int
	CacheDBPath     string

	AMQPURL      string
	AMQPExchange string

	Timezone        string
	DefaultPageSize int
	MaxPageSize     int
}

// New loads an optional .env file and reads the environment.
func New() *Config {
	_ = godotenv.Load()

	return &Config{
		ProjectID: os.Getenv("PROJECTID"),
		Region:    os.Getenv("REGION"),
		LogLevel:  getEnv("LOGLEVEL", "info"),
		Port:      getEnv("PORT", "8080"),

		StorageBucket:        os.Getenv("STORAGEBUCKET"),
		KMSKeyName:           os.Getenv("KMSKEYNAME"),
		FirebaseAPIKey:       os.Getenv("FIREBASEAPIKEY"),
		FirebaseAPIKeySecret: os.Getenv("FIREBASEAPIKEYSECRET"),

		CacheTTL:        getEnvDuration("CACHETTL", 60*time.Second),
		CacheMaxEntries: getEnvInt("CACHEMAXENTRIES", 1000),
		CacheDBPath:     os.Getenv("CACHEDBPATH"),

		AMQPURL:      os.Getenv("AMQPURL"),
		AMQPExchange: getEnv("AMQPEXCHANGE", "wallet.cache"),

		Timezone:        getEnv("TIMEZONE", "America/Sao_Paulo"),
		DefaultPageSize: getEnvInt("DEFAULTPAGESIZE", 10),
		MaxPageSize:     getEnvInt("MAXPAGESIZE", 100),
	}
}

// Validate reports every configuration problem in a single error.
func (c *Config) Validate() error {
	var problems []string

	if c.ProjectID == "" {
		problems = append(problems, "PROJECTID is required")
	}

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.CacheTTL <= 0 {
		problems = append(problems, fmt.Sprintf("invalid cache ttl %v: must be positive", c.CacheTTL))
	}
	if c.CacheMaxEntries < 1 {
		problems = append(problems, fmt.Sprintf("invalid cache size %d: must be at least 1", c.CacheMaxEntries))
	}

	if c.DefaultPageSize < 1 {
		problems = append(problems, fmt.Sprintf("invalid default page size %d: must be at least 1", c.DefaultPageSize))
	}
	if c.MaxPageSize < c.DefaultPageSize {
		problems = append(problems, fmt.Sprintf("invalid max page size %d: must be at least the default page size", c.MaxPageSize))
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		problems = append(problems, fmt.Sprintf("invalid timezone '%s': %v", c.Timezone, err))
	}

	if c.AMQPURL != "" {
		if u, err := url.Parse(c.AMQPURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL: %v", err))
		} else if u.Scheme != "amqp" && u.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", u.Scheme))
		}
		if c.AMQPExchange == "" {
			problems = append(problems, "AMQPEXCHANGE cannot be empty when AMQPURL is set")
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

// Location returns the configured timezone, UTC when it cannot be loaded.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
