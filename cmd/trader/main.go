package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/ChangShuKai/Taiwan-Stock-Instant-Trading-System/config"
	"github.com/ChangShuKai/Taiwan-Stock-Instant-Trading-System/internal/ledger"
	"github.com/ChangShuKai/Taiwan-Stock-Instant-Trading-System/internal/market"
	"github.com/ChangShuKai/Taiwan-Stock-Instant-Trading-System/internal/perflog"
	"github.com/ChangShuKai/Taiwan-Stock-Instant-Trading-System/internal/scheduler"
	"github.com/ChangShuKai/Taiwan-Stock-Instant-Trading-System/internal/stream"
	"github.com/ChangShuKai/Taiwan-Stock-Instant-Trading-System/internal/valuation"
	"github.com/ChangShuKai/Taiwan-Stock-Instant-Trading-System/logger"
	"github.com/ChangShuKai/Taiwan-Stock-Instant-Trading-System/pkg/storage/postgres"
	"github.com/ChangShuKai/Taiwan-Stock-Instant-Trading-System/pkg/twse"
	"github.com/ChangShuKai/Taiwan-Stock-Instant-Trading-System/pkg/yahoo"

	"go.uber.org/zap"
)

func main() {
	// viper config
	cfg := config.Load()

	// zap logger
	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer log.Sync()

	// virtual account
	book := ledger.New(cfg.Account.InitialCash)

	// provider chain
	exchange := twse.NewClient(cfg.Providers.TWSE.BaseURL, cfg.Providers.TWSE.Timeout)
	mis := twse.NewMISClient(cfg.Providers.MIS.BaseURL, cfg.Providers.MIS.Timeout)
	yq := yahoo.NewClient(cfg.Providers.Yahoo.BaseURL, cfg.Providers.Yahoo.Timeout)
	resolver := market.NewResolver(exchange, mis, yq, log)

	engine := valuation.NewEngine(resolver, log)

	store, err := newSnapshotStore(cfg, log)
	if err != nil {
		log.Fatal("failed to open snapshot store", zap.Error(err))
	}
	perf := perflog.New(store, log)

	sched := scheduler.New(book, engine, perf, cfg.Refresh.Interval, cfg.Account.Watch, log)

	// optional WebSocket feed for presentation clients
	if cfg.Stream.Addr != "" {
		broadcaster := stream.NewBroadcaster(log)
		go func() {
			if err := broadcaster.ListenAndServe(cfg.Stream.Addr); err != nil {
				log.Error("stream server stopped", zap.Error(err))
			}
		}()
		go func() {
			for res := range sched.Subscribe() {
				broadcaster.Broadcast(res)
			}
		}()
		log.Info("stream feed listening", zap.String("addr", cfg.Stream.Addr))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched.Run(ctx)
}

func newSnapshotStore(cfg *config.Config, log *zap.Logger) (perflog.Store, error) {
	switch cfg.Storage.Driver {
	case "postgres":
		client, err := postgres.InitializeAndMigrate(cfg.Storage.Postgres, cfg.Log.Environment, true)
		if err != nil {
			return nil, err
		}
		log.Info("snapshot store: postgres", zap.String("dbname", cfg.Storage.Postgres.DBName))
		return client, nil
	default:
		store, err := perflog.NewCSVStore(cfg.Storage.CSV.Dir)
		if err != nil {
			return nil, err
		}
		log.Info("snapshot store: csv", zap.String("dir", cfg.Storage.CSV.Dir))
		return store, nil
	}
}
