// Package transport talks to the two backends: the XML-over-HTTP primary
// with retries and the single-attempt database/sql secondary.
package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tallyx-dev/tallyx/internal/apperr"
	"github.com/tallyx-dev/tallyx/internal/buildinfo"
	"github.com/tallyx-dev/tallyx/internal/metrics"
	"github.com/tallyx-dev/tallyx/internal/model"
)

// Outcome classifies a single request attempt.
type Outcome string

const (
	OutcomeSuccess           Outcome = "success"
	OutcomeHTTPError         Outcome = "http_error"
	OutcomeConnectionFailure Outcome = "connection_failure"
	OutcomeTimeout           Outcome = "timeout"
	OutcomeUnexpected        Outcome = "unexpected"
)

// Attempt is the result of one POST to the primary backend.
type Attempt struct {
	Outcome Outcome
	Status  int
	Body    string
	Err     error
}

func (a Attempt) err() error {
	switch a.Outcome {
	case OutcomeSuccess:
		return nil
	case OutcomeHTTPError:
		return fmt.Errorf("HTTP %d", a.Status)
	default:
		return fmt.Errorf("%s: %w", a.Outcome, a.Err)
	}
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the default SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// PrimaryConfig configures a Primary.
type PrimaryConfig struct {
	URL        string
	MaxRetries int
	RetryUnit  time.Duration
	Client     *http.Client
	Logger     logrus.FieldLogger
	Metrics    *metrics.Collectors
	Sleep      SleepFunc
}

// Primary posts XML requests to the primary backend.
type Primary struct {
	url        string
	maxRetries int
	retryUnit  time.Duration
	client     *http.Client
	log        logrus.FieldLogger
	metrics    *metrics.Collectors
	sleep      SleepFunc
}

// NewPrimary creates a Primary. Zero values fall back to 3 attempts, a one
// second retry unit and http.DefaultClient.
func NewPrimary(cfg PrimaryConfig) *Primary {
	p := &Primary{
		url:        cfg.URL,
		maxRetries: cfg.MaxRetries,
		retryUnit:  cfg.RetryUnit,
		client:     cfg.Client,
		log:        cfg.Logger,
		metrics:    cfg.Metrics,
		sleep:      cfg.Sleep,
	}
	if p.maxRetries <= 0 {
		p.maxRetries = 3
	}
	if p.retryUnit <= 0 {
		p.retryUnit = time.Second
	}
	if p.client == nil {
		p.client = http.DefaultClient
	}
	if p.log == nil {
		p.log = logrus.StandardLogger()
	}
	if p.sleep == nil {
		p.sleep = Sleep
	}
	return p
}

// Post performs exactly one attempt bounded by timeout.
func (p *Primary) Post(ctx context.Context, payload string, timeout time.Duration) Attempt {
	start := time.Now()
	a := p.post(ctx, payload, timeout)
	p.metrics.ObserveRequest(string(model.BackendXML), string(a.Outcome), time.Since(start))
	return a
}

func (p *Primary) post(ctx context.Context, payload string, timeout time.Duration) Attempt {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewBufferString(payload))
	if err != nil {
		return Attempt{Outcome: OutcomeUnexpected, Err: err}
	}
	req.Header.Set("Content-Type", "application/xml")
	req.Header.Set("User-Agent", buildinfo.UserAgent())

	resp, err := p.client.Do(req)
	if err != nil {
		return Attempt{Outcome: classify(err), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Attempt{Outcome: classify(err), Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Attempt{Outcome: OutcomeHTTPError, Status: resp.StatusCode, Body: string(body)}
	}
	return Attempt{Outcome: OutcomeSuccess, Status: resp.StatusCode, Body: string(body)}
}

func classify(err error) Outcome {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return OutcomeTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		return OutcomeTimeout
	case errors.Is(err, syscall.ECONNREFUSED), errors.Is(err, syscall.ECONNRESET):
		return OutcomeConnectionFailure
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return OutcomeConnectionFailure
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return OutcomeConnectionFailure
	}
	return OutcomeUnexpected
}

// Execute posts payload, retrying every failed attempt up to the configured
// maximum. Before attempt n+1 it waits n*2 retry units. The body of the
// first successful attempt is returned unmodified.
func (p *Primary) Execute(ctx context.Context, payload string, timeout time.Duration) (string, error) {
	var last Attempt
	for attempt := 1; attempt <= p.maxRetries; attempt++ {
		last = p.Post(ctx, payload, timeout)
		if last.Outcome == OutcomeSuccess {
			return last.Body, nil
		}

		p.log.WithFields(logrus.Fields{
			"backend": model.BackendXML,
			"attempt": attempt,
			"max":     p.maxRetries,
			"outcome": last.Outcome,
			"status":  last.Status,
		}).WithError(last.Err).Warn("primary request failed")

		if ctx.Err() != nil {
			break
		}
		if attempt < p.maxRetries {
			if err := p.sleep(ctx, time.Duration(attempt)*2*p.retryUnit); err != nil {
				break
			}
		}
	}
	return "", fmt.Errorf("%w: %s: %v", apperr.ErrTransport, p.url, last.err())
}
