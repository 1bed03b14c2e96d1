package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// MinJWTSecretLength is the shortest accepted token signing secret.
const MinJWTSecretLength = 32

var ErrMissingSecret = errors.New("auth.jwtsecret is required")

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr            string
		ShutdownTimeout time.Duration
		CORSOrigin      string
	}
	Auth struct {
		JWTSecret         string
		TokenTTL          time.Duration
		BcryptCost        int
		MinPasswordLength int
	}
	Ratings struct {
		UniquePerUser bool
	}
	Database struct {
		Driver       string
		DSN          string
		QueryTimeout time.Duration
		AutoMigrate  bool
	}
	Cache struct {
		Backend       string
		TTL           time.Duration
		RedisAddr     string
		RedisPassword string
		RedisDB       int
	}
	Storage struct {
		Enabled      bool
		Bucket       string
		KeyPrefix    string
		Region       string
		Endpoint     string
		PresignTTL   time.Duration
		MaxPhotoSize int64
		PurgeWorkers int
	}
	AWS struct {
		Profile string
	}
	Log struct {
		Level  string
		Format string
	}
}

// Load reads configuration from environment variables and optional config files.
func Load() (Config, error) {
	loadDotEnv(".env")
	return load(viper.New())
}

func load(v *viper.Viper) (Config, error) {
	v.SetEnvPrefix("WHISKR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	v.SetConfigName("config")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// every key needs a default so AutomaticEnv values reach Unmarshal
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", "0.0.0.0:8080")
	v.SetDefault("server.shutdowntimeout", 10*time.Second)
	v.SetDefault("server.corsorigin", "*")

	v.SetDefault("auth.jwtsecret", "")
	v.SetDefault("auth.tokenttl", 24*time.Hour)
	v.SetDefault("auth.bcryptcost", 10)
	v.SetDefault("auth.minpasswordlength", 8)

	v.SetDefault("ratings.uniqueperuser", true)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "data/whiskr.db")
	v.SetDefault("database.querytimeout", 5*time.Second)
	v.SetDefault("database.automigrate", true)

	v.SetDefault("cache.backend", "none")
	v.SetDefault("cache.ttl", 5*time.Minute)
	v.SetDefault("cache.redisaddr", "127.0.0.1:6379")
	v.SetDefault("cache.redispassword", "")
	v.SetDefault("cache.redisdb", 0)

	v.SetDefault("storage.enabled", false)
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.keyprefix", "recipes")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.presignttl", 15*time.Minute)
	v.SetDefault("storage.maxphotosize", int64(5<<20))
	v.SetDefault("storage.purgeworkers", 2)

	v.SetDefault("aws.profile", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	secret := strings.TrimSpace(c.Auth.JWTSecret)
	if secret == "" {
		return ErrMissingSecret
	}
	if len(secret) < MinJWTSecretLength {
		return fmt.Errorf("auth.jwtsecret must be at least %d bytes", MinJWTSecretLength)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.tokenttl must be positive")
	}
	if c.Auth.MinPasswordLength < 1 {
		return fmt.Errorf("auth.minpasswordlength must be at least 1")
	}
	if c.Database.QueryTimeout <= 0 {
		return fmt.Errorf("database.querytimeout must be positive")
	}
	switch c.Cache.Backend {
	case "", "none", "memory", "redis":
	default:
		return fmt.Errorf("unknown cache.backend %q", c.Cache.Backend)
	}
	if c.Storage.Enabled && c.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket is required when storage is enabled")
	}
	return nil
}

func loadDotEnv(path string) {
	file, err := os.Open(path)
	if err != nil {
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(strings.TrimPrefix(key, "export "))
		value = strings.Trim(strings.TrimSpace(value), `"'`)
		if key == "" {
			continue
		}

		if _, exists := os.LookupEnv(key); !exists {
			_ = os.Setenv(key, value)
		}
	}
}
