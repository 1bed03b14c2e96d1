package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"

	"whiskr/internal/cache"
	"whiskr/internal/config"
	"whiskr/internal/repository/sqlstore"
	"whiskr/internal/storage"
)

func newLogger(cfg config.Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	if strings.EqualFold(cfg.Log.Format, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.Warnf("unknown log level %q, using info", cfg.Log.Level)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

func openStore(ctx context.Context, cfg config.Config, logger *logrus.Logger) (*sqlstore.Store, error) {
	dialect, err := sqlstore.ParseDialect(cfg.Database.Driver)
	if err != nil {
		return nil, err
	}
	store, err := sqlstore.Open(ctx, dialect, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	logger.Infof("using %s database", dialect)
	return store, nil
}

func migrate(ctx context.Context, store *sqlstore.Store, logger *logrus.Logger) error {
	applied, err := sqlstore.Migrate(ctx, store)
	if err != nil {
		return err
	}
	for _, m := range applied {
		logger.Infof("applied migration %d (%s)", m.Version, m.Source)
	}
	return nil
}

func buildCache(ctx context.Context, cfg config.Config, logger *logrus.Logger) (cache.Store, error) {
	switch cfg.Cache.Backend {
	case "redis":
		logger.Infof("caching recipes in redis at %s", cfg.Cache.RedisAddr)
		return cache.NewRedisStore(ctx, cache.RedisOptions{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
			TTL:      cfg.Cache.TTL,
		})
	case "memory":
		logger.Info("caching recipes in memory")
		return cache.NewMemoryStore(cfg.Cache.TTL)
	default:
		return nil, nil
	}
}

func buildStorage(ctx context.Context, cfg config.Config, logger *logrus.Logger) (*storage.S3Store, error) {
	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Storage.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Infof("storing photos in s3 bucket %s (region %s)", cfg.Storage.Bucket, cfg.Storage.Region)
	return storage.NewS3Store(client, cfg.Storage.Bucket, cfg.Storage.KeyPrefix)
}
