package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fieldops-assignment/internal/config"
	pg "fieldops-assignment/internal/infra/db/postgres"
	"fieldops-assignment/internal/infra/logging"
	"fieldops-assignment/internal/infra/metrics"
	red "fieldops-assignment/internal/infra/redis"
	"fieldops-assignment/internal/infra/sched"
	"fieldops-assignment/internal/infra/web"
	"fieldops-assignment/internal/infra/worker"
	"fieldops-assignment/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "development mode")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer pool.Close()
	go pg.ReportPoolStats(ctx, pool, 15*time.Second)

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connect failed")
	}
	defer redisClient.Close()
	notifQueue := red.NewNotificationQueue(redisClient)

	// ---- Repositories & queue ----
	tm := pg.NewTxManager(pool)
	caseRepo := pg.NewPostgresCaseRepo(pool)
	agentRepo := pg.NewPostgresAgentRepo(pool)
	historyRepo := pg.NewPostgresHistoryRepo(pool)
	batchRepo := pg.NewPostgresBatchStatusRepo(pool)
	jobQueue := pg.NewPostgresJobQueue(pool, tm, cfg.Assignment.MaxAttempts, cfg.Assignment.BackoffBase)
	auditWriter := pg.NewPostgresAuditWriter(pool)

	// ---- Use cases ----
	validator := usecase.NewValidatorUseCase(caseRepo, agentRepo, logger)
	assignUC := usecase.NewAssignUseCase(caseRepo, agentRepo, historyRepo, tm, auditWriter, notifQueue, logger)
	batchUC := usecase.NewBatchUseCase(agentRepo, assignUC, batchRepo, jobQueue, auditWriter, notifQueue, cfg.Assignment.SubBatchDelay, logger)
	submitUC := usecase.NewSubmitUseCase(validator, jobQueue, batchRepo, cfg.Assignment.MaxBulkSize, logger)
	statusUC := usecase.NewStatusUseCase(batchRepo, jobQueue, auditWriter, logger)

	// ---- Worker pool ----
	poolSize := worker.PoolSizeFor(cfg.Assignment.ExpectedConcurrentUsers)
	workerPool := worker.NewPool(poolSize)
	workerPool.Start(ctx)
	logger.Info().Int("workers", poolSize).Int("expected_users", cfg.Assignment.ExpectedConcurrentUsers).Msg("worker pool started")

	processor := worker.NewJobProcessor(jobQueue, assignUC, batchUC, cfg.Assignment.PollInterval, logger)
	go processor.Start(ctx, workerPool)

	sweeper := sched.NewQueueSweeper(jobQueue, cfg.Assignment.SweepInterval, cfg.Assignment.VisibilityTimeout, logger)
	go func() {
		if err := sweeper.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("queue sweeper stopped")
		}
	}()

	// ---- HTTP ----
	srv := web.NewServer(submitUC, statusUC, cfg.API.Token, logger)
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.API.Port),
		Handler: srv.Router(),
	}
	go func() {
		logger.Info().Int("port", cfg.API.Port).Msg("http server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server stopped")
			cancel()
		}
	}()

	// ---- Shutdown ----
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case s := <-sig:
		logger.Info().Str("signal", s.String()).Msg("shutting down")
	case <-ctx.Done():
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown failed")
	}
	workerPool.Stop()
	logger.Info().Msg("shutdown complete")
}
