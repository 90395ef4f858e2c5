package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

const (
	StorageMemory = "memory"
	StorageMongo  = "mongo"
	StorageRedis  = "redis"

	MediaLocal = "local"
	MediaMinio = "minio"
	MediaS3    = "s3"

	DeleteCascade = "cascade"
	DeleteOrphan  = "orphan"
)

type Config struct {
	Server struct {
		Address         string        `yaml:"address"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		MaxUploadBytes  int64         `yaml:"max_upload_bytes"`
	} `yaml:"server"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`

	Auth struct {
		JWTSecret  string        `yaml:"jwt_secret"`
		TokenTTL   time.Duration `yaml:"token_ttl"`
		BcryptCost int           `yaml:"bcrypt_cost"`
	} `yaml:"auth"`

	Storage struct {
		Driver string `yaml:"driver"`

		Mongo struct {
			URI      string        `yaml:"uri"`
			Database string        `yaml:"database"`
			Timeout  time.Duration `yaml:"timeout"`
		} `yaml:"mongo"`

		Redis struct {
			Address  string `yaml:"address"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			PoolSize int    `yaml:"pool_size"`
		} `yaml:"redis"`

		// Attempts for optimistic read-modify-write cycles before giving up.
		UpdateAttempts int `yaml:"update_attempts"`
	} `yaml:"storage"`

	Media struct {
		Driver string `yaml:"driver"`

		Local struct {
			Dir     string `yaml:"dir"`
			BaseURL string `yaml:"base_url"`
		} `yaml:"local"`

		Minio struct {
			Endpoint  string `yaml:"endpoint"`
			AccessKey string `yaml:"access_key"`
			SecretKey string `yaml:"secret_key"`
			UseSSL    bool   `yaml:"use_ssl"`
			Bucket    string `yaml:"bucket"`
			Region    string `yaml:"region"`
			BaseURL   string `yaml:"base_url"`
		} `yaml:"minio"`

		S3 struct {
			Region    string `yaml:"region"`
			Bucket    string `yaml:"bucket"`
			Endpoint  string `yaml:"endpoint"`
			AccessKey string `yaml:"access_key"`
			SecretKey string `yaml:"secret_key"`
			BaseURL   string `yaml:"base_url"`
		} `yaml:"s3"`

		Retry struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			InitialDelay time.Duration `yaml:"initial_delay"`
			MaxDelay     time.Duration `yaml:"max_delay"`
		} `yaml:"retry"`

		CircuitBreaker struct {
			FailureThreshold int           `yaml:"failure_threshold"`
			SuccessThreshold int           `yaml:"success_threshold"`
			Timeout          time.Duration `yaml:"timeout"`
		} `yaml:"circuit_breaker"`
	} `yaml:"media"`

	Videos struct {
		DeletePolicy string `yaml:"delete_policy"`
	} `yaml:"videos"`

	Monitoring struct {
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
	} `yaml:"monitoring"`

	Tracing struct {
		Enabled     bool    `yaml:"enabled"`
		JaegerURL   string  `yaml:"jaeger_url"`
		Environment string  `yaml:"environment"`
		SampleRate  float64 `yaml:"sample_rate"`
	} `yaml:"tracing"`

	RateLimiting struct {
		Enabled           bool    `yaml:"enabled"`
		RequestsPerSecond float64 `yaml:"requests_per_second"`
		Burst             int     `yaml:"burst"`
		MaxConcurrent     int     `yaml:"max_concurrent"` // global concurrent HTTP requests
	} `yaml:"rate_limiting"`
}

// Validate checks that configuration values are within acceptable ranges.
func (c *Config) Validate() error {
	// Server
	if c.Server.Address == "" {
		return fmt.Errorf("server.address must not be empty")
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout must be > 0")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server.write_timeout must be > 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be > 0")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server.max_upload_bytes must be > 0")
	}

	// Logging
	if c.Logging.Level == "" {
		return fmt.Errorf("logging.level must not be empty")
	}

	// Auth
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret must not be empty")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be > 0")
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("auth.bcrypt_cost must be between 4 and 31")
	}

	// Storage
	switch c.Storage.Driver {
	case StorageMemory:
	case StorageMongo:
		if c.Storage.Mongo.URI == "" || c.Storage.Mongo.Database == "" {
			return fmt.Errorf("storage.mongo.uri and storage.mongo.database must be set when storage.driver=mongo")
		}
	case StorageRedis:
		if c.Storage.Redis.Address == "" {
			return fmt.Errorf("storage.redis.address must not be empty when storage.driver=redis")
		}
		if c.Storage.Redis.PoolSize <= 0 {
			return fmt.Errorf("storage.redis.pool_size must be > 0 when storage.driver=redis")
		}
	default:
		return fmt.Errorf("storage.driver must be one of memory, mongo, redis (got %q)", c.Storage.Driver)
	}
	if c.Storage.UpdateAttempts <= 0 {
		return fmt.Errorf("storage.update_attempts must be > 0")
	}

	// Media
	switch c.Media.Driver {
	case MediaLocal:
		if c.Media.Local.Dir == "" {
			return fmt.Errorf("media.local.dir must not be empty when media.driver=local")
		}
	case MediaMinio:
		if c.Media.Minio.Endpoint == "" || c.Media.Minio.Bucket == "" {
			return fmt.Errorf("media.minio.endpoint and media.minio.bucket must be set when media.driver=minio")
		}
	case MediaS3:
		if c.Media.S3.Region == "" || c.Media.S3.Bucket == "" {
			return fmt.Errorf("media.s3.region and media.s3.bucket must be set when media.driver=s3")
		}
	default:
		return fmt.Errorf("media.driver must be one of local, minio, s3 (got %q)", c.Media.Driver)
	}
	if c.Media.Retry.MaxAttempts < 0 {
		return fmt.Errorf("media.retry.max_attempts must be >= 0")
	}
	if c.Media.CircuitBreaker.FailureThreshold <= 0 {
		return fmt.Errorf("media.circuit_breaker.failure_threshold must be > 0")
	}
	if c.Media.CircuitBreaker.Timeout <= 0 {
		return fmt.Errorf("media.circuit_breaker.timeout must be > 0")
	}

	// Videos
	if c.Videos.DeletePolicy != DeleteCascade && c.Videos.DeletePolicy != DeleteOrphan {
		return fmt.Errorf("videos.delete_policy must be cascade or orphan (got %q)", c.Videos.DeletePolicy)
	}

	// Tracing
	if c.Tracing.Enabled {
		if c.Tracing.JaegerURL == "" {
			return fmt.Errorf("tracing.jaeger_url must not be empty when tracing is enabled")
		}
		if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
			return fmt.Errorf("tracing.sample_rate must be within [0, 1]")
		}
	}

	// Rate limiting
	if c.RateLimiting.Enabled {
		if c.RateLimiting.RequestsPerSecond <= 0 {
			return fmt.Errorf("rate_limiting.requests_per_second must be > 0 when rate limiting is enabled")
		}
		if c.RateLimiting.Burst <= 0 {
			return fmt.Errorf("rate_limiting.burst must be > 0 when rate limiting is enabled")
		}
		if c.RateLimiting.MaxConcurrent < 0 {
			return fmt.Errorf("rate_limiting.max_concurrent must be >= 0 when rate limiting is enabled")
		}
	}

	return nil
}

// Load reads configuration from YAML file, applies defaults and env overrides.
func Load(configPath string) (*Config, error) {
	// If file does not exist, fall back to defaults
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config yaml: %w", err)
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// DefaultConfig returns configuration with sane defaults.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Server.Address = ":8080"
	cfg.Server.ReadTimeout = 60 * time.Second
	cfg.Server.WriteTimeout = 60 * time.Second
	cfg.Server.ShutdownTimeout = 30 * time.Second
	cfg.Server.MaxUploadBytes = 512 << 20

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "json"

	cfg.Auth.JWTSecret = "change-me-in-production"
	cfg.Auth.TokenTTL = 365 * 24 * time.Hour
	cfg.Auth.BcryptCost = 10

	cfg.Storage.Driver = StorageMemory
	cfg.Storage.Mongo.URI = "mongodb://localhost:27017/?replicaSet=rs0"
	cfg.Storage.Mongo.Database = "vidhub"
	cfg.Storage.Mongo.Timeout = 10 * time.Second
	cfg.Storage.Redis.Address = "localhost:6379"
	cfg.Storage.Redis.PoolSize = 10
	cfg.Storage.UpdateAttempts = 5

	cfg.Media.Driver = MediaLocal
	cfg.Media.Local.Dir = "./data/media"
	cfg.Media.Local.BaseURL = "http://localhost:8080/media"
	cfg.Media.Minio.Endpoint = "localhost:9000"
	cfg.Media.Minio.Bucket = "vidhub"
	cfg.Media.Minio.Region = "us-east-1"
	cfg.Media.S3.Region = "us-east-1"
	cfg.Media.Retry.MaxAttempts = 2
	cfg.Media.Retry.InitialDelay = 200 * time.Millisecond
	cfg.Media.Retry.MaxDelay = 2 * time.Second
	cfg.Media.CircuitBreaker.FailureThreshold = 5
	cfg.Media.CircuitBreaker.SuccessThreshold = 2
	cfg.Media.CircuitBreaker.Timeout = 30 * time.Second

	cfg.Videos.DeletePolicy = DeleteCascade

	cfg.Monitoring.PrometheusEnabled = true

	cfg.Tracing.Enabled = false
	cfg.Tracing.JaegerURL = "http://localhost:14268/api/traces"
	cfg.Tracing.Environment = "development"
	cfg.Tracing.SampleRate = 1.0

	// Rate limiting defaults (disabled by default)
	cfg.RateLimiting.Enabled = false
	cfg.RateLimiting.RequestsPerSecond = 50
	cfg.RateLimiting.Burst = 100
	cfg.RateLimiting.MaxConcurrent = 0

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if addr := os.Getenv("VIDHUB_SERVER_ADDRESS"); addr != "" {
		c.Server.Address = addr
	}
	if level := os.Getenv("VIDHUB_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if secret := os.Getenv("VIDHUB_JWT_SECRET"); secret != "" {
		c.Auth.JWTSecret = secret
	}
	if driver := os.Getenv("VIDHUB_STORAGE_DRIVER"); driver != "" {
		c.Storage.Driver = driver
	}
	if uri := os.Getenv("VIDHUB_MONGO_URI"); uri != "" {
		c.Storage.Mongo.URI = uri
	}
	if addr := os.Getenv("VIDHUB_REDIS_ADDRESS"); addr != "" {
		c.Storage.Redis.Address = addr
	}
	if driver := os.Getenv("VIDHUB_MEDIA_DRIVER"); driver != "" {
		c.Media.Driver = driver
	}
	if key := os.Getenv("VIDHUB_MINIO_ACCESS_KEY"); key != "" {
		c.Media.Minio.AccessKey = key
	}
	if key := os.Getenv("VIDHUB_MINIO_SECRET_KEY"); key != "" {
		c.Media.Minio.SecretKey = key
	}
	if policy := os.Getenv("VIDHUB_DELETE_POLICY"); policy != "" {
		c.Videos.DeletePolicy = policy
	}
	if ttl := os.Getenv("VIDHUB_TOKEN_TTL_HOURS"); ttl != "" {
		if hours, err := strconv.Atoi(ttl); err == nil && hours > 0 {
			c.Auth.TokenTTL = time.Duration(hours) * time.Hour
		}
	}
}
