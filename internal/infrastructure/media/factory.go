package media

import (
	"context"
	"fmt"

	"vidhub/internal/core/ports"
	"vidhub/pkg/circuitbreaker"
	"vidhub/pkg/config"
	"vidhub/pkg/retry"

	"go.uber.org/zap"
)

// NewMediaStore builds the configured backend wrapped in a ResilientStore.
func NewMediaStore(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) (*ResilientStore, error) {
	var (
		store ports.MediaStore
		err   error
	)

	switch cfg.Media.Driver {
	case config.MediaLocal, "":
		store, err = NewLocalStore(cfg.Media.Local.Dir, cfg.Media.Local.BaseURL)
	case config.MediaMinio:
		m := cfg.Media.Minio
		store, err = NewMinioStore(ctx, MinioConfig{
			Endpoint:  m.Endpoint,
			AccessKey: m.AccessKey,
			SecretKey: m.SecretKey,
			UseSSL:    m.UseSSL,
			Bucket:    m.Bucket,
			Region:    m.Region,
			BaseURL:   m.BaseURL,
		})
	case config.MediaS3:
		s := cfg.Media.S3
		store, err = NewS3Store(ctx, S3Config{
			Region:    s.Region,
			Bucket:    s.Bucket,
			Endpoint:  s.Endpoint,
			AccessKey: s.AccessKey,
			SecretKey: s.SecretKey,
			BaseURL:   s.BaseURL,
		})
	default:
		return nil, fmt.Errorf("unknown media driver: %s", cfg.Media.Driver)
	}
	if err != nil {
		return nil, err
	}

	driver := cfg.Media.Driver
	if driver == "" {
		driver = config.MediaLocal
	}
	logger.Infow("media store ready", "driver", driver)

	cbCfg := circuitbreaker.DefaultConfig()
	cbCfg.FailureThreshold = cfg.Media.CircuitBreaker.FailureThreshold
	cbCfg.SuccessThreshold = cfg.Media.CircuitBreaker.SuccessThreshold
	cbCfg.Timeout = cfg.Media.CircuitBreaker.Timeout

	retryCfg := retry.DefaultConfig()
	retryCfg.MaxAttempts = cfg.Media.Retry.MaxAttempts
	retryCfg.InitialDelay = cfg.Media.Retry.InitialDelay
	retryCfg.MaxDelay = cfg.Media.Retry.MaxDelay

	return NewResilientStore(store, driver, cbCfg, retryCfg, logger), nil
}

// LocalDir reports the directory served under the public base URL when the
// local driver is active.
func LocalDir(cfg *config.Config) (string, bool) {
	if cfg.Media.Driver != config.MediaLocal && cfg.Media.Driver != "" {
		return "", false
	}
	return cfg.Media.Local.Dir, true
}
