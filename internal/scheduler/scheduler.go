package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"foreknown/internal/collector"
	"foreknown/internal/forecaster"
	"foreknown/internal/model"
	"foreknown/internal/notifier"
	"foreknown/internal/recorder"
	"foreknown/internal/state"
)

// Scheduler manages the periodic forecast task.
type Scheduler struct {
	Cron       *cron.Cron
	Collector  *collector.Collector
	Forecaster *forecaster.Forecaster
	Notifier   notifier.Notifier
	Recorder   recorder.Recorder
	State      *state.Manager
	Ctx        context.Context

	runMu sync.Mutex
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, fc *forecaster.Forecaster, n notifier.Notifier, rec recorder.Recorder, st *state.Manager) *Scheduler {
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.Recover(cron.PrintfLogger(log.StandardLogger()))),
		),
		Collector:  col,
		Forecaster: fc,
		Notifier:   n,
		Recorder:   rec,
		State:      st,
		Ctx:        ctx,
	}
}

// Register registers the forecast task on the given cron expression.
func (s *Scheduler) Register(forecastCron string) error {
	if _, err := s.Cron.AddFunc(forecastCron, s.forecastTask); err != nil {
		return fmt.Errorf("register forecast task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info("scheduler stopped")
}

// RunNow executes one forecast immediately (manual trigger / RUN_ON_START).
// A panic inside the run is reported as a failed run.
func (s *Scheduler) RunNow() (fc *model.Forecast, err error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			fc = nil
			err = s.fail(s.Collector.Symbol, fmt.Errorf("forecast panicked: %v", r))
		}
	}()

	series, err := s.Collector.Collect(s.Ctx)
	if err != nil {
		return nil, s.fail(s.Collector.Symbol, fmt.Errorf("collect: %w", err))
	}
	fc, err = s.Forecaster.Run(s.Ctx, series)
	if err != nil {
		return nil, s.fail(series.Symbol, fmt.Errorf("forecast: %w", err))
	}

	runID, err := s.Recorder.RecordForecast(fc)
	if err != nil {
		log.Errorf("record forecast: %v", err)
	}
	fc.RunID = runID

	report := notifier.FormatForecastReport(fc)
	s.State.RecordSuccess(runID, fc.Symbol, report)
	s.trySend(report)

	log.WithFields(log.Fields{
		"run_id": runID,
		"symbol": fc.Symbol,
		"final":  fc.FinalValue(),
		"risk":   fc.Risk.Level,
	}).Info("forecast completed")
	return fc, nil
}

func (s *Scheduler) forecastTask() {
	log.Info("running forecast task")
	if _, err := s.RunNow(); err != nil {
		log.Errorf("forecast task: %v", err)
	}
}

func (s *Scheduler) fail(symbol string, err error) error {
	failures := s.State.RecordFailure(err)
	log.WithField("consecutive_failures", failures).Errorf("forecast %s failed: %v", symbol, err)
	s.trySend(notifier.FormatFailure(symbol, err))
	return err
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	switch command {
	case "/forecast":
		s.forecastTask()
		return ""
	case "/last":
		return s.lastReport()
	case "/status":
		st := s.State.GetState()
		msg := fmt.Sprintf("Runs: %d\nConsecutive failures: %d\n", st.Runs, st.ConsecutiveFailures)
		if !st.LastRunAt.IsZero() {
			msg += fmt.Sprintf("Last run: %s (%s)\n", st.LastRunAt.Format("2006-01-02 15:04"), st.LastRunID)
		}
		if st.LastError != "" {
			msg += "Last error: " + st.LastError + "\n"
		}
		return msg
	default:
		return "Available commands:\n• /forecast\n• /last\n• /status"
	}
}

func (s *Scheduler) lastReport() string {
	if st := s.State.GetState(); st.LastReport != "" {
		return st.LastReport
	}
	sum, err := s.Recorder.LatestForecast(s.Collector.Symbol)
	if errors.Is(err, recorder.ErrNotFound) {
		return "No forecast recorded yet."
	}
	if err != nil {
		log.Errorf("load last forecast: %v", err)
		return "Could not load the last forecast."
	}
	return notifier.FormatRunSummary(sum)
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Errorf("send notification: %v", err)
	}
}
