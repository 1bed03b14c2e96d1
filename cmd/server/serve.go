package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"whiskr/internal/auth"
	"whiskr/internal/cache"
	"whiskr/internal/config"
	apphttp "whiskr/internal/http"
	"whiskr/internal/metrics"
	"whiskr/internal/purge"
	"whiskr/internal/repository"
	"whiskr/internal/repository/sqlstore"
	"whiskr/internal/service"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Run the HTTP API",
		Action: serveAction,
	}
}

// serveAction also runs when no subcommand is given.
func serveAction(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	return serve(c.Context, cfg)
}

func serve(ctx context.Context, cfg config.Config) error {
	logger := newLogger(cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	if cfg.Database.AutoMigrate {
		if err := migrate(ctx, store, logger); err != nil {
			return err
		}
	}

	m := metrics.New(prometheus.NewRegistry())
	if err := m.RegisterDB(store.DB(), "whiskr"); err != nil {
		logger.Warnf("register db metrics: %v", err)
	}

	tokens, err := auth.NewTokenIssuer([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL)
	if err != nil {
		return fmt.Errorf("token issuer: %w", err)
	}
	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)

	userRepo := sqlstore.NewUserRepository(store)
	var recipeRepo repository.RecipeRepository = sqlstore.NewRecipeRepository(store)

	cacheStore, err := buildCache(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("setup cache: %w", err)
	}
	if cacheStore != nil {
		defer cacheStore.Close()
		recipeRepo = cache.NewRecipeRepository(recipeRepo, cacheStore, logger, m.CacheLookup)
	}

	recipeOpts := service.RecipeOptions{PresignTTL: cfg.Storage.PresignTTL}
	if cfg.Storage.Enabled {
		photos, err := buildStorage(ctx, cfg, logger)
		if err != nil {
			return fmt.Errorf("setup storage: %w", err)
		}
		purger := purge.NewManager(purge.Config{
			MaxConcurrent: cfg.Storage.PurgeWorkers,
			Logger:        logger,
			Observe:       func(_ purge.Job, err error) { m.PhotoPurge(err) },
		}, photos)
		if err := purger.Start(ctx); err != nil {
			return fmt.Errorf("start purge manager: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := purger.Shutdown(shutdownCtx); err != nil {
				logger.Warnf("purge shutdown: %v", err)
			}
		}()
		recipeOpts.Photos = photos
		recipeOpts.Purger = purger
	} else {
		logger.Info("photo storage disabled")
	}

	svc := apphttp.Services{
		Users:     service.NewUserService(userRepo, hasher, tokens, cfg.Auth.MinPasswordLength),
		Recipes:   service.NewRecipeService(recipeRepo, recipeOpts),
		Ratings:   service.NewRatingService(sqlstore.NewRatingRepository(store), recipeRepo, cfg.Ratings.UniquePerUser),
		Bookmarks: service.NewBookmarkService(sqlstore.NewBookmarkRepository(store), recipeRepo),
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(svc, tokens, store, logger, m, apphttp.Config{
		QueryTimeout: cfg.Database.QueryTimeout,
		CORSOrigin:   cfg.Server.CORSOrigin,
		MaxPhotoSize: cfg.Storage.MaxPhotoSize,
	})
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warnf("http shutdown: %v", err)
		}
		return nil
	})

	err = g.Wait()
	logger.Info("bye")
	return err
}
