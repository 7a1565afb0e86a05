package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tallyx-dev/tallyx/internal/config"
	"github.com/tallyx-dev/tallyx/internal/engine"
	"github.com/tallyx-dev/tallyx/internal/logging"
	"github.com/tallyx-dev/tallyx/internal/metrics"
	"github.com/tallyx-dev/tallyx/internal/model"
	"github.com/tallyx-dev/tallyx/internal/runlog"
)

// app holds the persistent flags and the per-invocation engine.
type app struct {
	configPath  string
	company     string
	url         string
	forceODBC   bool
	showMetrics bool

	cfg     *config.Config
	log     *logrus.Logger
	logFile io.Closer
	reg     *prometheus.Registry
	eng     *engine.Engine
}

// loadConfig resolves the configuration and applies the flag overrides.
func (a *app) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Resolve(a.configPath)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("company") {
		cfg.Company.Name = a.company
	}
	if cmd.Flags().Changed("url") {
		cfg.Backend.URL = a.url
	}
	if a.forceODBC {
		cfg.ODBC.Force = true
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, closer, err := logging.Setup(cfg.Logging.Level, cfg.Logging.Dir, cmd.ErrOrStderr(), time.Now())
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logger
	a.logFile = closer
	a.reg = prometheus.NewRegistry()
	a.eng = engine.New(*cfg, engine.Options{
		Logger:  logger,
		Metrics: metrics.New(a.reg),
	})
	logger.WithFields(logrus.Fields{
		"company":    cfg.Company.Name,
		"url":        cfg.Backend.URL,
		"fy":         cfg.Fiscal.YearStart + "-" + cfg.Fiscal.YearEnd,
		"force_odbc": cfg.ODBC.Force,
	}).Debug("engine ready")
	return nil
}

func (a *app) close() {
	if a.showMetrics && a.reg != nil {
		a.logMetrics()
	}
	if a.logFile != nil {
		_ = a.logFile.Close()
		a.logFile = nil
	}
}

func (a *app) logMetrics() {
	samples, err := metrics.Snapshot(a.reg)
	if err != nil {
		a.log.WithError(err).Warn("collecting metrics")
		return
	}
	for _, s := range samples {
		fields := logrus.Fields{"value": s.Value}
		for k, v := range s.Labels {
			fields[k] = v
		}
		a.log.WithFields(fields).Info(s.Name)
	}
}

// action is the body of an engine-backed command. It returns the payload of
// the response envelope.
type action func(ctx context.Context, eng *engine.Engine, args []string) (any, error)

// run wraps an action: it builds the engine, prints the envelope and records
// the invocation in the run log.
func (a *app) run(fn action) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := a.setup(cmd); err != nil {
			return err
		}
		defer a.close()

		start := time.Now()
		data, err := fn(cmd.Context(), a.eng, args)
		a.record(cmd, data, err, time.Since(start))

		env := envelope{
			Success:          err == nil,
			ExtractionMethod: a.eng.ActiveMethod(),
			Timestamp:        time.Now(),
		}
		if err != nil {
			env.Error = fmt.Sprintf("%s: %v", cmd.Name(), err)
		} else {
			env.Data = data
			env.Count = countOf(data)
		}
		if werr := writeJSON(cmd.OutOrStdout(), env); werr != nil && err == nil {
			err = werr
		}
		return err
	}
}

func (a *app) record(cmd *cobra.Command, data any, err error, elapsed time.Duration) {
	if a.cfg.Logging.Dir == "" {
		return
	}
	e := runlog.Entry{
		Timestamp: time.Now(),
		Command:   cmd.CommandPath(),
		Company:   a.cfg.Company.Name,
		Method:    string(a.eng.ActiveMethod()),
		Duration:  elapsed,
	}
	if n := countOf(data); n != nil {
		e.Records = *n
	}
	if err != nil {
		e.Error = err.Error()
	}
	if err := runlog.Append(a.cfg.Logging.Dir, []runlog.Entry{e}); err != nil {
		a.log.WithError(err).Warn("writing run log")
	}
}

// envelope is the JSON document every engine-backed command prints.
type envelope struct {
	Success          bool          `json:"success"`
	Data             any           `json:"data"`
	Count            *int          `json:"count"`
	ExtractionMethod model.Backend `json:"extraction_method"`
	Timestamp        time.Time     `json:"timestamp"`
	Error            string        `json:"error,omitempty"`
}

// countOf returns the length of list payloads and nil for everything else.
func countOf(data any) *int {
	if data == nil {
		return nil
	}
	v := reflect.ValueOf(data)
	if v.Kind() != reflect.Slice {
		return nil
	}
	n := v.Len()
	return &n
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
