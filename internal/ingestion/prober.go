package ingestion

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// StatusProber is a lightweight connector that checks whether an upstream is
// reachable without ingesting any records. A reachable-but-slow upstream is
// reported as delayed via DelayedError.
type StatusProber struct {
	name          string
	url           string
	slowThreshold time.Duration
	client        *http.Client
}

func NewStatusProber(name, url string, slowThreshold, timeout time.Duration) *StatusProber {
	return &StatusProber{
		name:          name,
		url:           url,
		slowThreshold: slowThreshold,
		client:        &http.Client{Timeout: timeout},
	}
}

func (p *StatusProber) Name() string {
	return p.name
}

func (p *StatusProber) Fetch(ctx context.Context) (Batch, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return Batch{}, fmt.Errorf("error creating request: %w", err)
	}

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		return Batch{}, fmt.Errorf("error doing request: %w", err)
	}
	resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return Batch{}, fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)
	}
	if elapsed := time.Since(start); elapsed > p.slowThreshold {
		return Batch{}, &DelayedError{Message: fmt.Sprintf("upstream responded in %s", elapsed.Round(time.Millisecond))}
	}
	return Batch{}, nil
}
