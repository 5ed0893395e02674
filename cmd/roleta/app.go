package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/user/roleta-service/internal/adapter/chromedp_source"
	"github.com/user/roleta-service/internal/adapter/httpsource"
	"github.com/user/roleta-service/internal/adapter/memory"
	"github.com/user/roleta-service/internal/adapter/postgres"
	redis_adapter "github.com/user/roleta-service/internal/adapter/redis"
	"github.com/user/roleta-service/internal/entity"
	"github.com/user/roleta-service/internal/extractor"
	"github.com/user/roleta-service/internal/poster"
	"github.com/user/roleta-service/internal/proxy"
	"github.com/user/roleta-service/internal/repository"
	"github.com/user/roleta-service/internal/sampler"
	"github.com/user/roleta-service/internal/usecase"
	"github.com/user/roleta-service/pkg/config"
)

// app is the assembled service. close releases the store connections.
type app struct {
	roleta usecase.Roleta
	lists  *usecase.ListCache
	store  repository.SnapshotRepository
	close  func()
}

func buildApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	store, closeStore, err := newSnapshotStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	source, err := newListSource(cfg, logger)
	if err != nil {
		closeStore()
		return nil, err
	}

	lists := usecase.NewListCache(
		source,
		extractor.New(cfg.ListBaseURL, logger),
		store,
		map[entity.Category]string{
			entity.CategoryBad:  cfg.BadList,
			entity.CategoryGood: cfg.GoodList,
		},
		cfg.CacheTTL,
		logger,
	)

	roleta := usecase.NewRoleta(
		lists,
		sampler.New(nil),
		poster.NewBuilder(cfg.PosterBaseURL),
		cfg.BlankListURL(),
		logger,
	)

	return &app{roleta: roleta, lists: lists, store: store, close: closeStore}, nil
}

func newListSource(cfg *config.Config, logger *zap.Logger) (repository.ListSource, error) {
	proxies, err := proxy.NewManager(cfg.ProxyURLs, cfg.UserAgents)
	if err != nil {
		return nil, fmt.Errorf("configuring proxies: %w", err)
	}

	if cfg.FetchMode == "browser" {
		logger.Info("using headless browser list source")
		return chromedp_source.NewChromedpSource(
			cfg.ListBaseURL, cfg.LetterboxdUser, proxies.UserAgent(), cfg.AcceptLanguage, cfg.FetchTimeout, logger,
		), nil
	}

	client := &http.Client{
		Transport: &http.Transport{
			Proxy:               proxies.ProxyFunc,
			MaxIdleConnsPerHost: 4,
			IdleConnTimeout:     90 * time.Second,
		},
	}
	return httpsource.New(cfg.ListBaseURL, cfg.LetterboxdUser,
		httpsource.WithHTTPClient(client),
		httpsource.WithUserAgents(proxies),
		httpsource.WithLimiter(rate.NewLimiter(rate.Limit(cfg.FetchRate), cfg.FetchBurst)),
		httpsource.WithAcceptLanguage(cfg.AcceptLanguage),
		httpsource.WithTimeout(cfg.FetchTimeout),
		httpsource.WithLogger(logger),
	), nil
}

func newSnapshotStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.SnapshotRepository, func(), error) {
	switch cfg.SnapshotBackend {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if _, err := rdb.Ping(ctx).Result(); err != nil {
			rdb.Close()
			return nil, nil, fmt.Errorf("connecting to redis: %w", err)
		}
		logger.Info("redis snapshot store connected", zap.String("addr", cfg.RedisAddr))
		return redis_adapter.NewSnapshotRepo(rdb), func() { rdb.Close() }, nil

	case "postgres":
		dbpool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		store := postgres.NewSnapshotRepo(dbpool)
		if err := store.EnsureSchema(ctx); err != nil {
			dbpool.Close()
			return nil, nil, fmt.Errorf("preparing postgres schema: %w", err)
		}
		logger.Info("postgres snapshot store connected")
		return store, dbpool.Close, nil

	default:
		return memory.NewSnapshotRepo(), func() {}, nil
	}
}
