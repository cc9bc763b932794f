package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/DariaPPPPPP/rhizomerAPI/migrations"
	"github.com/DariaPPPPPP/rhizomerAPI/pkg/adapters/endpoint"
	"github.com/DariaPPPPPP/rhizomerAPI/pkg/config"
	"github.com/DariaPPPPPP/rhizomerAPI/pkg/crypto"
	"github.com/DariaPPPPPP/rhizomerAPI/pkg/curie"
	"github.com/DariaPPPPPP/rhizomerAPI/pkg/database"
	"github.com/DariaPPPPPP/rhizomerAPI/pkg/metrics"
	"github.com/DariaPPPPPP/rhizomerAPI/pkg/rdf"
	"github.com/DariaPPPPPP/rhizomerAPI/pkg/repositories"
	"github.com/DariaPPPPPP/rhizomerAPI/pkg/retry"
	"github.com/DariaPPPPPP/rhizomerAPI/pkg/services"
)

type globalOptions struct {
	configPath  string
	logLevel    string
	metricsFile string
}

// app wires configuration, storage and services for one command run.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	registry *prometheus.Registry
	metrics  *metrics.EndpointMetrics
	labels   *curie.Abbreviator
	clients  endpoint.ClientFactory

	db     *database.DB
	scopes *database.ScopeProvider

	datasets  repositories.DatasetRepository
	endpoints repositories.EndpointRepository
	classes   repositories.ClassRepository
	facets    repositories.FacetRepository
	ranges    repositories.RangeRepository

	profile   services.ProfileService
	retrieval services.RetrievalService
	graphs    services.GraphAdminService

	metricsFile string
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := cfg.ZapLevel()
	if err != nil {
		return nil, err
	}

	logConfig := zap.NewProductionConfig()
	if cfg.Env == "local" {
		logConfig = zap.NewDevelopmentConfig()
	}
	logConfig.Level = zap.NewAtomicLevelAt(level)
	return logConfig.Build()
}

// newApp builds the application. Without withDB, only the parts that do not
// touch Postgres are available (browse, formats, endpoint types).
func newApp(ctx context.Context, opts *globalOptions, withDB bool) (*app, error) {
	cfg, err := config.Load(opts.configPath, Version)
	if err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}

	labels := curie.New(nil)
	if cfg.PrefixesFile != "" {
		labels, err = curie.LoadFile(cfg.PrefixesFile)
		if err != nil {
			return nil, err
		}
	}

	registry := prometheus.NewRegistry()
	a := &app{
		cfg:         cfg,
		logger:      logger,
		registry:    registry,
		metrics:     metrics.NewEndpointMetrics(registry),
		labels:      labels,
		metricsFile: opts.metricsFile,
		datasets:    repositories.NewDatasetRepository(),
		classes:     repositories.NewClassRepository(),
		facets:      repositories.NewFacetRepository(),
		ranges:      repositories.NewRangeRepository(),
	}

	var retryCfg *retry.Config
	if cfg.Endpoint.MaxRetries > 0 {
		retryCfg = retry.DefaultConfig(cfg.Endpoint.MaxRetries)
	}
	a.clients = endpoint.NewClientFactory(endpoint.ClientConfig{
		Timeout:           cfg.Endpoint.Timeout(),
		Retry:             retryCfg,
		RequestsPerSecond: cfg.Endpoint.RequestsPerSecond,
		Burst:             cfg.Endpoint.Burst,
		UserAgent:         cfg.Endpoint.UserAgent,
	}, logger)

	if withDB {
		if err := a.openDatabase(ctx); err != nil {
			return nil, err
		}
	}

	runner := services.NewEndpointRunner(a.clients, cfg.Profiling.MaxConcurrentEndpoints, a.metrics, logger)
	serializer := rdf.NewSerializer(labels)
	dereferencer := services.NewHTTPDereferencer(services.DereferenceConfig{
		Timeout:   cfg.Browse.Timeout(),
		MaxBytes:  cfg.Browse.MaxBytes,
		UserAgent: cfg.Browse.UserAgent,
	}, logger)

	blacklist := services.Blacklist{
		Classes:    cfg.Profiling.ClassBlacklist,
		Properties: cfg.Profiling.PropertyBlacklist,
	}
	a.profile = services.NewProfileService(a.endpoints, a.classes, a.facets, a.ranges, runner, blacklist, labels, a.metrics, logger)
	a.retrieval = services.NewRetrievalService(a.endpoints, runner, labels, serializer, dereferencer, a.metrics, logger)
	a.graphs = services.NewGraphAdminService(a.datasets, a.endpoints, runner, serializer, a.metrics, logger)

	return a, nil
}

func (a *app) openDatabase(ctx context.Context) error {
	if a.cfg.CredentialsKey == "" {
		return fmt.Errorf("CREDENTIALS_KEY must be set")
	}
	enc, err := crypto.NewCredentialEncryptor(a.cfg.CredentialsKey)
	if err != nil {
		return err
	}
	a.endpoints = repositories.NewEndpointRepository(enc)

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            a.cfg.Database.ConnectionString(),
		MaxConnections: a.cfg.Database.MaxConnections,
	})
	if err != nil {
		return err
	}
	a.db = db
	a.scopes = database.NewScopeProvider(db)

	a.logger.Debug("Connected to database",
		zap.String("host", a.cfg.Database.Host),
		zap.Int("port", a.cfg.Database.Port),
		zap.String("database", a.cfg.Database.Database))
	return nil
}

// migrate applies the embedded schema.
func (a *app) migrate() error {
	sqlDB := a.db.SQL()
	defer sqlDB.Close()
	return database.RunMigrations(sqlDB, migrations.FS, a.logger)
}

// withScope returns a context carrying a database connection.
func (a *app) withScope(ctx context.Context) (context.Context, func(), error) {
	return a.scopes.WithScope(ctx)
}

func (a *app) close() {
	if a.metricsFile != "" {
		if err := prometheus.WriteToTextfile(a.metricsFile, a.registry); err != nil {
			a.logger.Warn("Failed to write metrics file", zap.String("path", a.metricsFile), zap.Error(err))
		}
	}
	if a.db != nil {
		a.db.Close()
	}
	_ = a.logger.Sync()
}
