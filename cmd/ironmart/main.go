package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/ironmart/ironmart/internal/accounting"
	"github.com/ironmart/ironmart/internal/app"
	"github.com/ironmart/ironmart/internal/audit"
	"github.com/ironmart/ironmart/internal/auth"
	"github.com/ironmart/ironmart/internal/ledger"
	"github.com/ironmart/ironmart/internal/mirror"
	"github.com/ironmart/ironmart/internal/platform/cache"
	"github.com/ironmart/ironmart/internal/platform/db"
	"github.com/ironmart/ironmart/internal/pos"
	"github.com/ironmart/ironmart/internal/receiving"
	"github.com/ironmart/ironmart/internal/settings"
	"github.com/ironmart/ironmart/internal/store"
	"github.com/ironmart/ironmart/internal/transfer"
	"github.com/ironmart/ironmart/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	st := store.New(cfg.StoreDefaults())
	if err := st.Load(cfg.DataDir); err != nil {
		logger.Error("load snapshot", slog.Any("error", err))
		os.Exit(1)
	}

	var ledgerMirror ledger.MirrorPort
	var posMirror pos.MirrorPort
	var receivingMirror receiving.MirrorPort
	var transferMirror transfer.MirrorPort
	if cfg.PGDSN != "" {
		pool, err := db.New(ctx, cfg.PGDSN)
		if err != nil {
			logger.Error("connect postgres", slog.Any("error", err))
			os.Exit(1)
		}
		defer pool.Close()
		m := mirror.New(pool, logger)
		ledgerMirror, posMirror, receivingMirror, transferMirror = m, m, m, m
	}

	var reportCache *accounting.Cache
	var jobsClient *jobs.Client
	var jobsHandler *jobs.Handler
	if cfg.RedisAddr != "" {
		redisClient, err := cache.New(ctx, cfg.RedisAddr)
		if err != nil {
			logger.Warn("redis unavailable, report cache disabled", slog.Any("error", err))
		} else {
			defer func() {
				if err := redisClient.Close(); err != nil {
					logger.Warn("redis close", slog.Any("error", err))
				}
			}()
			reportCache = accounting.NewCache(redisClient, cfg.CacheTTL)
			redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
			jobsClient, err = jobs.NewClient(redisOpts, cfg.LowStockThreshold)
			if err != nil {
				logger.Warn("jobs client unavailable", slog.Any("error", err))
			} else {
				defer func() {
					if err := jobsClient.Close(); err != nil {
						logger.Warn("jobs client close", slog.Any("error", err))
					}
				}()
			}
			jobsHandler = jobs.NewHandler(asynq.NewInspector(redisOpts), logger)
		}
	}

	auditService := audit.NewService(st.Audit())
	ledgerService := ledger.NewService(st.Ledger(), auditService, ledgerMirror)
	settingsService := settings.NewService(st.Settings(), auditService)
	posService := pos.NewService(st.POS(), st.Settings(), auditService, posMirror)
	receivingService := receiving.NewService(st.Receiving(), auditService, receivingMirror)
	transferService := transfer.NewService(st.Transfer(), auditService, transferMirror)
	authService := auth.NewService(st.Auth(), auditService)
	accountingService := accounting.NewService(st.Accounting(), reportCache, auditService)

	var enqueuer pos.Enqueuer
	if jobsClient != nil {
		enqueuer = jobsClient
	}

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		LedgerHandler:     ledger.NewHandler(logger, ledgerService, st.Settings()),
		POSHandler:        pos.NewHandler(logger, posService, enqueuer),
		ReceivingHandler:  receiving.NewHandler(logger, receivingService),
		TransferHandler:   transfer.NewHandler(logger, transferService),
		AuditHandler:      audit.NewHandler(logger, auditService),
		AuthHandler:       auth.NewHandler(logger, authService),
		SettingsHandler:   settings.NewHandler(logger, settingsService),
		AccountingHandler: accounting.NewHandler(logger, accountingService),
		JobsHandler:       jobsHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", slog.String("addr", cfg.AppAddr), slog.String("env", cfg.AppEnv))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		ticker := time.NewTicker(cfg.SnapshotInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if err := st.Save(cfg.DataDir); err != nil {
					logger.Error("snapshot save", slog.Any("error", err))
				}
			}
		}
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server run", slog.Any("error", err))
	}

	if err := st.Save(cfg.DataDir); err != nil {
		logger.Error("final snapshot save", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}
