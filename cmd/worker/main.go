package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"tentkids/internal/config"
	"tentkids/internal/db"
	"tentkids/internal/gate"
	"tentkids/internal/handlers"
	"tentkids/internal/i18n"
	"tentkids/internal/kv"
	"tentkids/internal/store"
	"tentkids/internal/usage"
	"tentkids/internal/worker"
	"tentkids/pkg/logger"
)

func main() {
	cfg := config.Load()

	logger, err := logger.NewLogger()
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backend, err := kv.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open kv store", zap.Error(err))
	}
	defer backend.Close()

	var database *db.DB
	if cfg.DatabaseURL != "" {
		database, err = db.NewDB(cfg.DatabaseURL)
		if err != nil {
			logger.Warn("failed to connect to database, continuing without identity checks", zap.Error(err))
			database = nil
		} else {
			defer database.Close()
		}
	}

	st := store.Open(ctx, backend, i18n.MustLoad(), logger,
		store.WithPersistTimeout(cfg.PersistTimeout))
	defer st.Close()

	g := gate.New(logger.Named("gate"))
	g.Restore(st.GateRecord())
	timer := usage.NewTimer(st, cfg.BreakAfter, time.Now, logger.Named("usage"))

	w := worker.NewWorker(g, timer, logger.Named("worker"))
	w.OnBreak = func() {
		logger.Info("break reminder shown", zap.String("message", st.T("breakTime")))
	}
	w.OnUnlock = func() {
		st.SetGateRecord(g.Record())
		logger.Info("parent gate available again")
	}

	go w.Run(ctx)

	sub := st.Subscribe()
	go func() {
		for ev := range sub.C {
			logger.Debug("state changed", zap.String("type", string(ev.Type)), zap.String("slice", ev.Slice))
		}
	}()

	router := handlers.NewRouter(logger,
		handlers.NewHealthHandler(backend, database, st),
		handlers.NewStatusHandler(st, g, timer),
		handlers.NewControlHandler(st, g, timer, logger.Named("controls")),
	)

	srv := &http.Server{
		Addr:    "0.0.0.0:" + cfg.DiagnosticsPort,
		Handler: router,
	}

	go func() {
		logger.Info("diagnostics server starting", zap.String("port", cfg.DiagnosticsPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down worker...")
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	if err := st.Flush(shutdownCtx); err != nil {
		logger.Error("failed to flush pending writes", zap.Error(err))
	}

	logger.Info("worker exited")
}
