package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up when none is given.
const DefaultPath = "tallyx.yaml"

// Config represents the top-level tallyx.yaml configuration.
type Config struct {
	Backend BackendConfig `yaml:"backend"`
	ODBC    ODBCConfig    `yaml:"odbc"`
	Company CompanyConfig `yaml:"company"`
	Fiscal  FiscalConfig  `yaml:"fiscal"`
	Cache   CacheConfig   `yaml:"cache"`
	Logging LoggingConfig `yaml:"logging"`
}

// BackendConfig controls the primary XML backend.
type BackendConfig struct {
	URL            string        `yaml:"url" validate:"required,url"`
	Timeout        time.Duration `yaml:"timeout" validate:"gt=0"`
	VoucherTimeout time.Duration `yaml:"voucher_timeout" validate:"gt=0"`
	MaxRetries     int           `yaml:"max_retries" validate:"min=1,max=10"`
	RetryUnit      time.Duration `yaml:"retry_unit" validate:"gt=0"`
}

// ODBCConfig controls the secondary SQL backend.
type ODBCConfig struct {
	Driver  string        `yaml:"driver" validate:"required"`
	DSN     string        `yaml:"dsn" validate:"required"`
	Timeout time.Duration `yaml:"timeout" validate:"gt=0"`
	Force   bool          `yaml:"force"`
}

// CompanyConfig selects the company inside the backend.
type CompanyConfig struct {
	Name string `yaml:"name" validate:"required"`
}

// FiscalConfig defines the default voucher date range.
type FiscalConfig struct {
	YearStart string `yaml:"year_start" validate:"len=8,numeric"` // YYYYMMDD
	YearEnd   string `yaml:"year_end" validate:"len=8,numeric"`   // YYYYMMDD
}

// CacheConfig controls the ledger cache.
type CacheConfig struct {
	LedgerTTL time.Duration `yaml:"ledger_ttl" validate:"gt=0"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level string `yaml:"level" validate:"oneof=trace debug info warn warning error"`
	Dir   string `yaml:"dir"` // empty disables the log file
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			URL:            "http://localhost:9000",
			Timeout:        30 * time.Second,
			VoucherTimeout: 120 * time.Second,
			MaxRetries:     3,
			RetryUnit:      time.Second,
		},
		ODBC: ODBCConfig{
			Driver:  "odbc",
			DSN:     "TallyODBC_9000",
			Timeout: 30 * time.Second,
		},
		Company: CompanyConfig{
			Name: "Nimona",
		},
		Fiscal: FiscalConfig{
			YearStart: "20250401",
			YearEnd:   "20260331",
		},
		Cache: CacheConfig{
			LedgerTTL: 300 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
			Dir:   "logs",
		},
	}
}

// Load reads a tallyx.yaml file from disk on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Resolve builds the effective configuration: defaults, then the YAML file
// at path if it exists, then .env and TALLY_* environment variables. The
// result is validated.
func Resolve(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		loaded, err := Load(path)
		switch {
		case err == nil:
			cfg = loaded
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, err
		}
	}

	// A missing .env file is fine.
	_ = godotenv.Load()

	if err := ApplyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides cfg from TALLY_* variables.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	str("TALLY_URL", &cfg.Backend.URL)
	str("TALLY_COMPANY", &cfg.Company.Name)
	str("TALLY_ODBC_DSN", &cfg.ODBC.DSN)
	str("TALLY_ODBC_DRIVER", &cfg.ODBC.Driver)
	str("TALLY_FY_START", &cfg.Fiscal.YearStart)
	str("TALLY_FY_END", &cfg.Fiscal.YearEnd)
	str("TALLY_LOG_LEVEL", &cfg.Logging.Level)

	if v, ok := lookup("TALLY_FORCE_ODBC"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parsing TALLY_FORCE_ODBC %q: %w", v, err)
		}
		cfg.ODBC.Force = b
	}
	if v, ok := lookup("TALLY_MAX_RETRIES"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing TALLY_MAX_RETRIES %q: %w", v, err)
		}
		cfg.Backend.MaxRetries = n
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and that the fiscal year is ordered.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if cfg.Fiscal.YearEnd < cfg.Fiscal.YearStart {
		return fmt.Errorf("invalid config: fiscal year end %s before start %s", cfg.Fiscal.YearEnd, cfg.Fiscal.YearStart)
	}
	return nil
}
