package calculator

import "github.com/montanaflynn/stats"

// CalculateRSI returns the relative strength index with Wilder smoothing. The
// first period moves seed the averages; later moves decay them by 1/period.
// Series shorter than period+1 are neutral (50).
func CalculateRSI(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errBadPeriod
	}
	if len(prices) <= period {
		return 50, nil
	}

	ups, downs := splitMoves(prices)
	avgUp, err := stats.Mean(ups[:period])
	if err != nil {
		return 0, err
	}
	avgDown, err := stats.Mean(downs[:period])
	if err != nil {
		return 0, err
	}

	keep := float64(period-1) / float64(period)
	for i := period; i < len(ups); i++ {
		avgUp = avgUp*keep + ups[i]/float64(period)
		avgDown = avgDown*keep + downs[i]/float64(period)
	}

	if avgDown == 0 {
		return 100, nil
	}
	return 100 - 100/(1+avgUp/avgDown), nil
}

// splitMoves separates consecutive price changes into upward and downward
// magnitudes, both non-negative.
func splitMoves(prices []float64) (ups, downs stats.Float64Data) {
	ups = make(stats.Float64Data, len(prices)-1)
	downs = make(stats.Float64Data, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if d := prices[i] - prices[i-1]; d > 0 {
			ups[i-1] = d
		} else {
			downs[i-1] = -d
		}
	}
	return ups, downs
}
