package transport

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tallyx-dev/tallyx/internal/apperr"
	"github.com/tallyx-dev/tallyx/internal/metrics"
	"github.com/tallyx-dev/tallyx/internal/model"
)

// Opener opens a database handle. sql.Open is the default.
type Opener func(driverName, dataSourceName string) (*sql.DB, error)

// SecondaryConfig configures a Secondary.
type SecondaryConfig struct {
	Driver     string
	ConnString string
	Timeout    time.Duration
	Open       Opener
	Logger     logrus.FieldLogger
	Metrics    *metrics.Collectors
}

// Secondary queries the SQL view of the backend. Every query uses its own
// connection, which is closed before Query returns.
type Secondary struct {
	driver     string
	connString string
	timeout    time.Duration
	open       Opener
	log        logrus.FieldLogger
	metrics    *metrics.Collectors
}

// NewSecondary creates a Secondary.
func NewSecondary(cfg SecondaryConfig) *Secondary {
	s := &Secondary{
		driver:     cfg.Driver,
		connString: cfg.ConnString,
		timeout:    cfg.Timeout,
		open:       cfg.Open,
		log:        cfg.Logger,
		metrics:    cfg.Metrics,
	}
	if s.open == nil {
		s.open = sql.Open
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	if s.timeout <= 0 {
		s.timeout = 30 * time.Second
	}
	return s
}

// Query runs query once and returns every row keyed by column name.
// A missing driver or refused connection wraps apperr.ErrBackendUnavailable.
func (s *Secondary) Query(ctx context.Context, query string) ([]map[string]any, error) {
	start := time.Now()
	rows, err := s.query(ctx, query)
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeUnexpected
		s.log.WithFields(logrus.Fields{
			"backend": model.BackendODBC,
			"driver":  s.driver,
		}).WithError(err).Warn("secondary query failed")
	}
	s.metrics.ObserveRequest(string(model.BackendODBC), string(outcome), time.Since(start))
	return rows, err
}

func (s *Secondary) query(ctx context.Context, query string) ([]map[string]any, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	db, err := s.open(s.driver, s.connString)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", apperr.ErrBackendUnavailable, s.driver, err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("%w: connecting: %v", apperr.ErrBackendUnavailable, err)
	}

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying %q: %w", query, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading columns: %w", err)
	}

	var out []map[string]any
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning row %d: %w", len(out)+1, err)
		}
		row := make(map[string]any, len(cols))
		for i, c := range cols {
			row[c] = vals[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	return out, nil
}
