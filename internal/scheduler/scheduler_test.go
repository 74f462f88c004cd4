package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foreknown/internal/collector"
	"foreknown/internal/forecaster"
	"foreknown/internal/notifier"
	"foreknown/internal/predict"
	"foreknown/internal/recorder"
	"foreknown/internal/state"
)

type captureNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (c *captureNotifier) SendWithRetry(_ context.Context, text string, _ int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, text)
	return nil
}

func (c *captureNotifier) all() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.messages...)
}

func newTestScheduler(t *testing.T, fetcher collector.Fetcher, rec recorder.Recorder) (*Scheduler, *captureNotifier) {
	t.Helper()
	st, err := state.NewManager(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)
	n := &captureNotifier{}
	s := NewScheduler(
		context.Background(),
		collector.NewCollector(fetcher, "SPX500", 60),
		forecaster.New(predict.Options{Steps: 20, StepSize: 1.0, Paths: 25, Seed: 1}),
		n, rec, st,
	)
	return s, n
}

func TestRunNow_Success(t *testing.T) {
	rec, err := recorder.NewSQLiteRecorder(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer rec.Close()

	s, n := newTestScheduler(t, &collector.MockFetcher{Price: 5000}, rec)
	fc, err := s.RunNow()
	require.NoError(t, err)

	assert.NotEmpty(t, fc.RunID)
	assert.Len(t, fc.Predicted, 20)
	msgs := n.all()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "Forecast SPX500")

	st := s.State.GetState()
	assert.Equal(t, fc.RunID, st.LastRunID)
	assert.Equal(t, 1, st.Runs)

	latest, err := rec.LatestForecast("SPX500")
	require.NoError(t, err)
	assert.Equal(t, fc.RunID, latest.RunID)
}

func TestRunNow_InvalidHistory(t *testing.T) {
	s, n := newTestScheduler(t, &collector.MockFetcher{Closes: []float64{100, -5, 101}}, recorder.NewNoopRecorder())
	_, err := s.RunNow()
	require.Error(t, err)
	assert.ErrorIs(t, err, predict.ErrInvalidInput)

	msgs := n.all()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], notifier.MsgInvalidInput)
	assert.Equal(t, 1, s.State.GetState().ConsecutiveFailures)
}

func TestRunNow_FetchError(t *testing.T) {
	s, n := newTestScheduler(t, &collector.MockFetcher{Err: errors.New("timeout")}, recorder.NewNoopRecorder())
	_, err := s.RunNow()
	require.Error(t, err)
	assert.Contains(t, n.all()[0], notifier.MsgGeneric)
}

func TestHandleCommand(t *testing.T) {
	s, n := newTestScheduler(t, &collector.MockFetcher{Price: 100}, recorder.NewNoopRecorder())

	assert.Equal(t, "No forecast recorded yet.", s.HandleCommand("/last"))
	assert.Contains(t, s.HandleCommand("hello"), "/forecast")

	assert.Equal(t, "", s.HandleCommand("/forecast"))
	require.Len(t, n.all(), 1)

	assert.Equal(t, n.all()[0], s.HandleCommand("/last"))
	status := s.HandleCommand("/status")
	assert.True(t, strings.HasPrefix(status, "Runs: 1\n"), status)
}

func TestRegister(t *testing.T) {
	s, _ := newTestScheduler(t, &collector.MockFetcher{Price: 100}, recorder.NewNoopRecorder())
	assert.NoError(t, s.Register("0 0 22 * * 1-5"))
	assert.Error(t, s.Register("not a cron"))
	assert.Len(t, s.Cron.Entries(), 1)
}

type panicFetcher struct{}

func (panicFetcher) Name() string { return "panic" }

func (panicFetcher) FetchCloses(context.Context, string, int) ([]float64, error) {
	panic("malformed upstream payload")
}

func TestRunNow_RecoversPanic(t *testing.T) {
	s, n := newTestScheduler(t, panicFetcher{}, recorder.NewNoopRecorder())

	var err error
	require.NotPanics(t, func() { _, err = s.RunNow() })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed upstream payload")

	st := s.State.GetState()
	assert.Equal(t, 1, st.ConsecutiveFailures)
	assert.Len(t, n.all(), 1)
}

func TestCronJob_SurvivesPanic(t *testing.T) {
	s, _ := newTestScheduler(t, panicFetcher{}, recorder.NewNoopRecorder())
	require.NoError(t, s.Register("0 0 22 * * 1-5"))

	entries := s.Cron.Entries()
	require.Len(t, entries, 1)
	assert.NotPanics(t, entries[0].WrappedJob.Run)
	assert.NotPanics(t, func() { s.HandleCommand("/forecast") })
	assert.Equal(t, 2, s.State.GetState().ConsecutiveFailures)
}
