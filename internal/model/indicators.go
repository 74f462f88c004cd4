package model

// SeriesSummary holds descriptive statistics of an observation series.
type SeriesSummary struct {
	Count      int
	Last       float64
	Min        float64
	Max        float64
	SMA20      float64
	RSI14      float64
	Position   float64 // 0.0 ~ 1.0 within [Min, Max]
	MeanReturn float64 // mean log-return
	StdDevRet  float64 // sample standard deviation of log-returns
}
