package recorder

import (
	"github.com/google/uuid"

	"foreknown/internal/model"
)

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordForecast(_ *model.Forecast) (string, error) {
	return uuid.NewString(), nil
}
func (n *NoopRecorder) LatestForecast(_ string) (*RunSummary, error) { return nil, ErrNotFound }
func (n *NoopRecorder) Close() error                                 { return nil }
