package calculator

import (
	"errors"
	"math"
)

// LogReturns returns ln(prices[i+1]/prices[i]) for every adjacent pair.
// The result has len(prices)-1 elements and never aliases prices.
func LogReturns(prices []float64) ([]float64, error) {
	if len(prices) < 2 {
		return nil, errors.New("at least two prices are required for log-returns")
	}
	out := make([]float64, len(prices)-1)
	for i := 0; i < len(prices)-1; i++ {
		out[i] = math.Log(prices[i+1] / prices[i])
	}
	return out, nil
}
