package collector

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// Fetcher defines the interface for fetching historical closes, oldest first.
type Fetcher interface {
	FetchCloses(ctx context.Context, symbol string, count int) ([]float64, error)
	Name() string
}

func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
}

func trimTail(values []float64, count int) []float64 {
	if count > 0 && len(values) > count {
		return values[len(values)-count:]
	}
	return values
}
