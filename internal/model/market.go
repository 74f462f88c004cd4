package model

import "time"

// Bar is a single daily observation returned by a price source.
type Bar struct {
	Time  time.Time
	Close float64
}

// Series holds the validated observation series for one symbol.
type Series struct {
	Symbol       string
	Source       string
	Observations []float64
	Summary      SeriesSummary
	FetchedAt    time.Time
}

// Last returns the most recent observation, or 0 for an empty series.
func (s *Series) Last() float64 {
	if len(s.Observations) == 0 {
		return 0
	}
	return s.Observations[len(s.Observations)-1]
}
