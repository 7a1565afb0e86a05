// Package engine composes request builders, transports, parsers and the
// ledger cache into the public extraction operations.
package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tallyx-dev/tallyx/internal/apperr"
	"github.com/tallyx-dev/tallyx/internal/cache"
	"github.com/tallyx-dev/tallyx/internal/config"
	"github.com/tallyx-dev/tallyx/internal/metrics"
	"github.com/tallyx-dev/tallyx/internal/model"
	"github.com/tallyx-dev/tallyx/internal/request"
	"github.com/tallyx-dev/tallyx/internal/transport"
)

// Options carries the collaborators of an Engine. Zero values pick defaults.
type Options struct {
	Logger     logrus.FieldLogger
	HTTPClient *http.Client
	Open       transport.Opener
	Metrics    *metrics.Collectors
	Sleep      transport.SleepFunc
	Now        func() time.Time
}

// Engine extracts data of one company. It is safe for concurrent use.
type Engine struct {
	cfg       config.Config
	primary   *transport.Primary
	secondary *transport.Secondary
	ledgers   *cache.TTL[[]model.Ledger]
	active    atomic.Value // model.Backend
	log       logrus.FieldLogger
	metrics   *metrics.Collectors
	now       func() time.Time
}

// New creates an Engine for cfg.
func New(cfg config.Config, opts Options) *Engine {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	log = log.WithField("company", cfg.Company.Name)

	e := &Engine{
		cfg: cfg,
		primary: transport.NewPrimary(transport.PrimaryConfig{
			URL:        cfg.Backend.URL,
			MaxRetries: cfg.Backend.MaxRetries,
			RetryUnit:  cfg.Backend.RetryUnit,
			Client:     opts.HTTPClient,
			Logger:     log,
			Metrics:    opts.Metrics,
			Sleep:      opts.Sleep,
		}),
		secondary: transport.NewSecondary(transport.SecondaryConfig{
			Driver:     cfg.ODBC.Driver,
			ConnString: request.ConnString(cfg.ODBC.DSN, cfg.Company.Name, cfg.Backend.URL),
			Timeout:    cfg.ODBC.Timeout,
			Open:       opts.Open,
			Logger:     log,
			Metrics:    opts.Metrics,
		}),
		ledgers: cache.New[[]model.Ledger](cfg.Cache.LedgerTTL, now),
		log:     log,
		metrics: opts.Metrics,
		now:     now,
	}
	initial := model.BackendXML
	if cfg.ODBC.Force {
		initial = model.BackendODBC
	}
	e.active.Store(initial)
	return e
}

// Company returns the configured company name.
func (e *Engine) Company() string { return e.cfg.Company.Name }

// ActiveMethod returns the backend that answered last.
func (e *Engine) ActiveMethod() model.Backend {
	return e.active.Load().(model.Backend)
}

var errPrimaryDisabled = fmt.Errorf("%w: primary backend disabled", apperr.ErrBackendUnavailable)

// xml runs payload against the primary backend.
func (e *Engine) xml(ctx context.Context, payload string, timeout time.Duration) (string, error) {
	if e.cfg.ODBC.Force {
		return "", errPrimaryDisabled
	}
	body, err := e.primary.Execute(ctx, payload, timeout)
	if err != nil {
		return "", err
	}
	e.active.Store(model.BackendXML)
	return body, nil
}

// sql runs query against the secondary backend.
func (e *Engine) sql(ctx context.Context, query string) ([]map[string]any, error) {
	rows, err := e.secondary.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	e.active.Store(model.BackendODBC)
	return rows, nil
}

// Sourced is a value tagged with the backend that produced it.
type Sourced[T any] struct {
	Backend model.Backend
	Value   T
}

// stage is one step of a fallback pipeline.
type stage[T any] struct {
	backend model.Backend
	run     func(ctx context.Context) (T, error)
}

// firstOf runs stages in order and returns the first success. When every
// stage fails the joined errors are returned.
func firstOf[T any](ctx context.Context, e *Engine, report string, stages ...stage[T]) (Sourced[T], error) {
	var errs []error
	for i, s := range stages {
		v, err := s.run(ctx)
		if err == nil {
			if i > 0 {
				e.metrics.Fallback(report)
				e.log.WithFields(logrus.Fields{
					"report":  report,
					"backend": s.backend,
				}).Info("answered by fallback backend")
			}
			return Sourced[T]{Backend: s.backend, Value: v}, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", s.backend, err))
		if ctx.Err() != nil {
			break
		}
	}
	return Sourced[T]{}, fmt.Errorf("%s: %w", report, errors.Join(errs...))
}

// degrade logs a failed report. Only the caller's own cancellation is
// returned; every other failure leaves the caller with an empty result.
func (e *Engine) degrade(ctx context.Context, report string, err error) error {
	e.log.WithField("report", report).WithError(err).Error("extraction failed")
	return ctx.Err()
}

// orEmpty keeps empty reports serializing as [] rather than null.
func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
