package cli

import (
	"fmt"
	"io"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ppiankov/trustboard/internal/api"
	"github.com/ppiankov/trustboard/internal/cache"
	"github.com/ppiankov/trustboard/internal/dashboard"
	"github.com/ppiankov/trustboard/internal/logging"
	"github.com/ppiankov/trustboard/internal/model"
	"github.com/ppiankov/trustboard/internal/render"
)

// app is what every command runs against
type app struct {
	cfg       *model.Config
	logger    *zap.Logger
	client    *api.Client
	queries   *cache.Queries
	dashboard *dashboard.Service
	styles    render.Styles
}

// newApp wires the client stack from the effective configuration.
// logPath, when set, sends logs to a file instead of stderr.
func newApp(out io.Writer, logPath string) (*app, error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(logging.Options{Verbose: cfg.Output.Verbose, Path: logPath})
	if err != nil {
		return nil, err
	}

	client, err := api.NewClient(cfg.API, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("create api client: %w", err)
	}

	staleTime := cfg.Cache.StaleTime
	if !cfg.Cache.Enabled {
		staleTime = 0
	}
	queries := cache.NewQueries(
		cache.NewMemoryStore(cfg.Cache.GCTime, cfg.Cache.CleanupInterval),
		cache.Options{
			StaleTime: staleTime,
			GCTime:    cfg.Cache.GCTime,
			Timeout:   cfg.API.Timeout,
			Logger:    logger,
		},
	)

	logger.Debug("client ready",
		zap.String("base_url", client.BaseURL()),
		zap.Duration("stale_time", staleTime),
		zap.Bool("cache", cfg.Cache.Enabled))

	return &app{
		cfg:       cfg,
		logger:    logger,
		client:    client,
		queries:   queries,
		dashboard: dashboard.NewService(client, queries, logger),
		styles:    render.NewStyles(out, cfg.Output.NoColor),
	}, nil
}

func (a *app) close() {
	_ = a.logger.Sync()
}
