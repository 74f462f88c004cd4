package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"foreknown/internal/collector"
	"foreknown/internal/handlers"
	"foreknown/internal/notifier"
	"foreknown/internal/recorder"
	"foreknown/internal/scheduler"
	"foreknown/internal/state"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scheduled forecaster, Telegram bot and HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log.Info("foreknown starting...")

	fetcher := newFetcher(cfg)
	log.Infof("data source: %s", fetcher.Name())
	col := collector.NewCollector(fetcher, cfg.DataSource.Symbol, cfg.DataSource.Lookback)
	fc := newForecaster(cfg)

	st, err := state.NewManager(cfg.State.File)
	if err != nil {
		return err
	}

	var n notifier.Notifier = notifier.NoopNotifier{}
	var tn *notifier.TelegramNotifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		n = tn
	} else {
		log.Warn("telegram not configured, reports are only recorded")
	}

	var rec recorder.Recorder = recorder.NewNoopRecorder()
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Warnf("init sqlite recorder failed, using noop: %v", err)
		} else {
			rec = sr
		}
	}
	defer rec.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched := scheduler.NewScheduler(ctx, col, fc, n, rec, st)
	if err := sched.Register(cfg.Schedule.ForecastCron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info("telegram polling started")
	}

	if os.Getenv("RUN_ON_START") == "true" {
		log.Info("RUN_ON_START enabled, forecasting now")
		go func() {
			if _, err := sched.RunNow(); err != nil {
				log.Errorf("startup forecast: %v", err)
			}
		}()
	}

	app := handlers.NewApp(fc, col)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infof("http api listening on %s", cfg.Server.Addr)
		return app.Listen(cfg.Server.Addr)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, stopping...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("foreknown stopped")
	return nil
}
