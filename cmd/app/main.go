package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/chris/funding-ledger/pkg/config"
	"github.com/chris/funding-ledger/pkg/coordinator"
	"github.com/chris/funding-ledger/pkg/handlers"
	"github.com/chris/funding-ledger/pkg/locker"
	"github.com/chris/funding-ledger/pkg/notifier"
	"github.com/chris/funding-ledger/pkg/policy"
	"github.com/chris/funding-ledger/pkg/provisioner"
	"github.com/chris/funding-ledger/pkg/storage"
	dynamostore "github.com/chris/funding-ledger/pkg/storage/dynamodb"
	"github.com/chris/funding-ledger/pkg/storage/memory"
	"github.com/chris/funding-ledger/pkg/storage/sqlstore"
	"github.com/chris/funding-ledger/pkg/wallet"
	goredislib "github.com/redis/go-redis/v9"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, health, closeStore, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	lk, closeLocker := newLocker(cfg)
	defer closeLocker()

	sender, closeSender, err := newSender(ctx, cfg, store)
	if err != nil {
		return err
	}
	defer closeSender()

	dispatcher := notifier.NewDispatcher(sender, notifier.Config{MaxAttempts: cfg.NotifyMaxAttempts})
	dispatcher.Start(context.Background())

	pol, err := policy.New(cfg.Policy)
	if err != nil {
		return err
	}
	coord := coordinator.New(store, pol, lk, dispatcher, coordinator.WithLogger(logger))
	wallets := wallet.NewService(coord)
	projects := provisioner.NewProjectService(provisioner.New(coord), store)

	handler := handlers.NewApiHandler(handlers.Dependencies{
		Store:       store,
		Coordinator: coord,
		Wallet:      wallets,
		Projects:    projects,
		Health:      health,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           handlers.NewRouter(handler, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", slog.String("port", cfg.HTTPPort),
			slog.String("storage", cfg.StorageBackend),
			slog.String("locker", cfg.LockBackend),
			slog.String("notifier", cfg.NotifierBackend))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", slog.String("error", err.Error()))
	}
	if err := dispatcher.Shutdown(shutdownCtx); err != nil {
		logger.Error("notifier shutdown", slog.String("error", err.Error()))
	}
	return nil
}

func openStorage(ctx context.Context, cfg *config.Config) (storage.Storage, func(context.Context) error, func(), error) {
	noop := func() {}
	switch cfg.StorageBackend {
	case config.StorageMemory:
		return memory.New(), nil, noop, nil
	case config.StorageDynamoDB:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, nil, noop, fmt.Errorf("unable to load SDK config: %w", err)
		}
		store := dynamostore.New(dynamodb.NewFromConfig(awsCfg), dynamostore.Tables(cfg.Tables))
		return store, nil, noop, nil
	case config.StorageSQLite, config.StoragePostgres:
		dialect := sqlstore.SQLite
		if cfg.StorageBackend == config.StoragePostgres {
			dialect = sqlstore.Postgres
		}
		store, err := sqlstore.Open(ctx, dialect, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, noop, err
		}
		closeFn := func() {
			if err := store.Close(); err != nil {
				slog.Error("closing database", slog.String("error", err.Error()))
			}
		}
		return store, store.Ping, closeFn, nil
	default:
		return nil, nil, noop, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

func newLocker(cfg *config.Config) (locker.Locker, func()) {
	if cfg.LockBackend != config.LockRedis {
		return locker.NewLocal(cfg.LockTimeout), func() {}
	}
	client := goredislib.NewClient(&goredislib.Options{Addr: cfg.RedisAddr})
	opts := locker.DefaultRedisOptions()
	opts.Timeout = cfg.LockTimeout
	return locker.NewRedis(client, opts), func() { _ = client.Close() }
}

func newSender(ctx context.Context, cfg *config.Config, store storage.NotificationStore) (notifier.Sender, func(), error) {
	noop := func() {}
	switch cfg.NotifierBackend {
	case config.NotifierStore:
		return notifier.NewStoreSender(store), noop, nil
	case config.NotifierSQS:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, noop, fmt.Errorf("unable to load SDK config: %w", err)
		}
		return notifier.NewSQSSender(sqs.NewFromConfig(awsCfg), cfg.SQSQueueURL), noop, nil
	case config.NotifierKafka:
		k := notifier.NewKafkaSender(cfg.KafkaBrokers, cfg.KafkaTopic)
		return k, func() { _ = k.Close() }, nil
	case config.NotifierNoOp:
		return notifier.NoOpSender{}, noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown notifier backend %q", cfg.NotifierBackend)
	}
}
