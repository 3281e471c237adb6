// Package config loads server settings from the environment.
//
// Values come, in order of precedence, from command-line flags bound with
// BindFlags, TAXAVA_-prefixed environment variables, an optional .env file,
// and the defaults below.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "TAXAVA"

// Store backends.
const (
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

// Keys, without the prefix.
const (
	KeyStore         = "STORE"
	KeyDBPath        = "DB_PATH"
	KeyRedisAddr     = "REDIS_ADDR"
	KeyRedisPassword = "REDIS_PASSWORD"
	KeyRedisDB       = "REDIS_DB"
	KeyRedisPrefix   = "REDIS_PREFIX"
	KeySeedDir       = "SEED_DIR"
	KeyAddr          = "ADDR"
	KeyJWTSecret     = "JWT_SECRET"
	KeyTokenTTL      = "TOKEN_TTL"
	KeyLogLevel      = "LOG_LEVEL"
	KeyLogFormat     = "LOG_FORMAT"
	KeyCASRetries    = "CAS_RETRIES"
	KeyRateLimit     = "RATE_LIMIT"
	KeyRateBurst     = "RATE_BURST"
)

// DevJWTSecret is the default signing secret. Set JWT_SECRET in production.
const DevJWTSecret = "taxava-dev-secret"

// Config holds all server settings.
type Config struct {
	// Store selects the overlay backend: sqlite or redis.
	Store string
	// DBPath is the sqlite file holding the overlay.
	DBPath string
	Redis  RedisConfig
	// SeedDir overrides the bundled seed fixtures when set.
	SeedDir string

	Addr      string
	JWTSecret string
	TokenTTL  time.Duration

	LogLevel  string
	LogFormat string

	// CASRetries bounds the compare-and-swap attempts of one overlay write.
	CASRetries int

	RateLimit float64
	RateBurst int
}

// RedisConfig configures the redis overlay backend.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyStore, StoreSQLite)
	v.SetDefault(KeyDBPath, "./data/taxava.db")
	v.SetDefault(KeyRedisAddr, "localhost:6379")
	v.SetDefault(KeyRedisPassword, "")
	v.SetDefault(KeyRedisDB, 0)
	v.SetDefault(KeyRedisPrefix, "taxava:")
	v.SetDefault(KeySeedDir, "")
	v.SetDefault(KeyAddr, ":8080")
	v.SetDefault(KeyJWTSecret, DevJWTSecret)
	v.SetDefault(KeyTokenTTL, 24*time.Hour)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyCASRetries, 5)
	v.SetDefault(KeyRateLimit, 20.0)
	v.SetDefault(KeyRateBurst, 40)
}

// Loader reads configuration. Create one with NewLoader.
type Loader struct {
	v *viper.Viper
}

// NewLoader loads the given .env files (default ".env") into the process
// environment, skipping missing ones, and prepares env lookups.
func NewLoader(envFiles ...string) (*Loader, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return &Loader{v: v}, nil
}

// BindFlags lets flags override the key of the same name, e.g. --db-path
// overrides DB_PATH. Flags without a matching key are ignored.
func (l *Loader) BindFlags(flags *pflag.FlagSet) error {
	var err error
	flags.VisitAll(func(f *pflag.Flag) {
		key := strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
		if !isKnown(key) {
			return
		}
		if bindErr := l.v.BindPFlag(key, f); bindErr != nil && err == nil {
			err = fmt.Errorf("failed to bind flag %s: %w", f.Name, bindErr)
		}
	})
	return err
}

func isKnown(key string) bool {
	switch key {
	case KeyStore, KeyDBPath, KeyRedisAddr, KeyRedisPassword, KeyRedisDB, KeyRedisPrefix,
		KeySeedDir, KeyAddr, KeyJWTSecret, KeyTokenTTL, KeyLogLevel, KeyLogFormat,
		KeyCASRetries, KeyRateLimit, KeyRateBurst:
		return true
	}
	return false
}

// Load returns the validated configuration.
func (l *Loader) Load() (*Config, error) {
	v := l.v
	cfg := &Config{
		Store:  strings.ToLower(v.GetString(KeyStore)),
		DBPath: v.GetString(KeyDBPath),
		Redis: RedisConfig{
			Addr:     v.GetString(KeyRedisAddr),
			Password: v.GetString(KeyRedisPassword),
			DB:       v.GetInt(KeyRedisDB),
			Prefix:   v.GetString(KeyRedisPrefix),
		},
		SeedDir:    v.GetString(KeySeedDir),
		Addr:       v.GetString(KeyAddr),
		JWTSecret:  v.GetString(KeyJWTSecret),
		TokenTTL:   v.GetDuration(KeyTokenTTL),
		LogLevel:   v.GetString(KeyLogLevel),
		LogFormat:  strings.ToLower(v.GetString(KeyLogFormat)),
		CASRetries: v.GetInt(KeyCASRetries),
		RateLimit:  v.GetFloat64(KeyRateLimit),
		RateBurst:  v.GetInt(KeyRateBurst),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail late.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreSQLite:
		if c.DBPath == "" {
			return fmt.Errorf("%s is required for the sqlite store", KeyDBPath)
		}
	case StoreRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("%s is required for the redis store", KeyRedisAddr)
		}
	default:
		return fmt.Errorf("unknown %s %q: must be %s or %s", KeyStore, c.Store, StoreSQLite, StoreRedis)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("%s must not be empty", KeyJWTSecret)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("%s must be positive", KeyTokenTTL)
	}
	if c.CASRetries < 1 {
		return fmt.Errorf("%s must be at least 1", KeyCASRetries)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown %s %q: must be text or json", KeyLogFormat, c.LogFormat)
	}
	return nil
}
