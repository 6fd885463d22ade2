// Package config provides application configuration management.
package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"sigs.k8s.io/yaml"
)

// Config holds all publisher configuration.
type Config struct {
	// Redis connection
	RedisAddr        string
	RedisUsername    string
	RedisPassword    string
	RedisDB          int
	RedisTLSEnabled  bool
	RedisTLSInsecure bool

	// Publish target
	Channel        string
	PublishTimeout time.Duration

	// Sequence allocation
	CounterFile string

	// Optional secondary writes
	PersistEnabled bool
	PersistTTL     time.Duration
	ArchiveStream  string
	ArchiveDB      string

	// Metrics push
	PushgatewayURL string

	// Diagnostics
	Debug bool
}

// fileConfig mirrors the optional YAML config file. Every field is a pointer
// so absent keys can be told apart from zero values; environment variables
// always win over the file.
type fileConfig struct {
	RedisAddr        *string `json:"redisAddr,omitempty"`
	RedisUsername    *string `json:"redisUsername,omitempty"`
	RedisPassword    *string `json:"redisPassword,omitempty"`
	RedisDB          *int    `json:"redisDb,omitempty"`
	RedisTLSEnabled  *bool   `json:"redisTlsEnabled,omitempty"`
	RedisTLSInsecure *bool   `json:"redisTlsInsecureSkipVerify,omitempty"`
	Channel          *string `json:"channel,omitempty"`
	CounterFile      *string `json:"counterFile,omitempty"`
	PersistEnabled   *bool   `json:"persist,omitempty"`
	PersistTTL       *string `json:"persistTtl,omitempty"`
	ArchiveStream    *string `json:"archiveStream,omitempty"`
	ArchiveDB        *string `json:"archiveDb,omitempty"`
	PushgatewayURL   *string `json:"pushgatewayUrl,omitempty"`
	Debug            *bool   `json:"debug,omitempty"`
}

// Load builds configuration from environment variables layered over the
// optional YAML file named by HOOK_CONFIG_FILE.
func Load() *Config {
	cfg := &Config{
		Channel:        "hooks:events",
		PublishTimeout: 5 * time.Second,
		CounterFile:    filepath.Join(os.TempDir(), "claude_hooks_counters"),
		PersistTTL:     24 * time.Hour,
		ArchiveStream:  "hooks:stream",
	}

	if path := os.Getenv("HOOK_CONFIG_FILE"); path != "" {
		applyFile(cfg, path)
	}

	cfg.RedisAddr = getEnv("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisUsername = getEnv("REDIS_USERNAME", cfg.RedisUsername)
	if v, ok := os.LookupEnv("REDIS_PASSWORD"); ok {
		cfg.RedisPassword = v
	}
	cfg.RedisDB = getEnvInt("REDIS_DB", cfg.RedisDB)
	cfg.RedisTLSEnabled = getEnvBool("REDIS_TLS_ENABLED", cfg.RedisTLSEnabled)
	cfg.RedisTLSInsecure = getEnvBool("REDIS_TLS_INSECURE_SKIP_VERIFY", cfg.RedisTLSInsecure)
	cfg.Channel = getEnv("HOOK_CHANNEL", cfg.Channel)
	cfg.PublishTimeout = getEnvDuration("HOOK_PUBLISH_TIMEOUT", cfg.PublishTimeout)
	cfg.CounterFile = getEnv("HOOK_COUNTER_FILE", cfg.CounterFile)
	cfg.PersistEnabled = getEnvBool("HOOK_PERSIST", cfg.PersistEnabled)
	cfg.PersistTTL = getEnvDuration("HOOK_PERSIST_TTL", cfg.PersistTTL)
	cfg.ArchiveStream = getEnv("HOOK_ARCHIVE_STREAM", cfg.ArchiveStream)
	cfg.ArchiveDB = getEnv("HOOK_ARCHIVE_DB", cfg.ArchiveDB)
	cfg.PushgatewayURL = getEnv("HOOK_PUSHGATEWAY_URL", cfg.PushgatewayURL)
	cfg.Debug = getEnvBool("HOOK_DEBUG", cfg.Debug)

	return cfg
}

func applyFile(cfg *Config, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("config: cannot read %s: %v", path, err)
		return
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		log.Printf("config: cannot parse %s: %v", path, err)
		return
	}
	setString(&cfg.RedisAddr, fc.RedisAddr)
	setString(&cfg.RedisUsername, fc.RedisUsername)
	setString(&cfg.RedisPassword, fc.RedisPassword)
	if fc.RedisDB != nil {
		cfg.RedisDB = *fc.RedisDB
	}
	setBool(&cfg.RedisTLSEnabled, fc.RedisTLSEnabled)
	setBool(&cfg.RedisTLSInsecure, fc.RedisTLSInsecure)
	setString(&cfg.Channel, fc.Channel)
	setString(&cfg.CounterFile, fc.CounterFile)
	setBool(&cfg.PersistEnabled, fc.PersistEnabled)
	if fc.PersistTTL != nil {
		if d, err := time.ParseDuration(*fc.PersistTTL); err == nil {
			cfg.PersistTTL = d
		} else {
			log.Printf("config: invalid persistTtl %q: %v", *fc.PersistTTL, err)
		}
	}
	setString(&cfg.ArchiveStream, fc.ArchiveStream)
	setString(&cfg.ArchiveDB, fc.ArchiveDB)
	setString(&cfg.PushgatewayURL, fc.PushgatewayURL)
	setBool(&cfg.Debug, fc.Debug)
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Invalid duration for %s: %s, using default %s", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
		log.Printf("Invalid int for %s: %s, using default %d", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch strings.ToLower(value) {
		case "1", "true", "yes", "y":
			return true
		case "0", "false", "no", "n":
			return false
		default:
			log.Printf("Invalid bool for %s: %s, using default %t", key, value, defaultValue)
		}
	}
	return defaultValue
}
