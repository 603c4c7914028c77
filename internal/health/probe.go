// Package health implements HTTP liveness probing with container-style
// semantics: a probe interval, a failure streak threshold and a start
// period during which failures are forgiven.
package health

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Prober is a single health check attempt.
type Prober interface {
	Check(ctx context.Context) error
}

// Probe checks an HTTP endpoint. Any 2xx response is healthy.
type Probe struct {
	url    string
	client *http.Client
}

func NewProbe(url string, timeout time.Duration) *Probe {
	return &Probe{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (p *Probe) URL() string { return p.url }

func (p *Probe) Check(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return fmt.Errorf("probe %s: %w", p.url, err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("probe %s: %w", p.url, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("probe %s: unhealthy status %s", p.url, resp.Status)
	}
	return nil
}
