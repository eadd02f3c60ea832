package app

import (
	"os"
	"strings"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"

	"github.com/xenking/supermarket-receipt/internal/receipt"
)

// Config holds the server configuration, loadable from environment variables
// (RECEIPT_ prefix), flags, or YAML config files.
type Config struct {
	Addr        string   `default:"0.0.0.0:8080" usage:"API server listen address"`
	Pricebooks  []string `usage:"Price book files with products and offers, merged in order" flag:"pricebook"`
	DatabaseURL string   `usage:"PostgreSQL URL; when set, catalog prices are loaded from the database" flag:"database-url"`
	Receipt     ReceiptConfig
	Health      HealthConfig
	Graceful    GracefulConfig
}

// ReceiptConfig controls the default receipt layout.
type ReceiptConfig struct {
	Columns    int    `default:"40" usage:"Receipt width in characters"`
	LineEnding string `default:"lf" usage:"Line ending: lf or crlf" flag:"line-ending"`
}

// HealthConfig controls background probe checks.
type HealthConfig struct {
	Interval      time.Duration `default:"10s" usage:"Health check interval" flag:"health-interval"`
	MaxGoroutines int           `default:"10000" usage:"Liveness goroutine threshold" flag:"max-goroutines"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// Options converts the section into renderer options.
func (c ReceiptConfig) Options() (receipt.Options, error) {
	opts := receipt.Options{Columns: c.Columns}
	switch strings.ToLower(c.LineEnding) {
	case "", "lf":
		opts.LineSeparator = "\n"
	case "crlf":
		opts.LineSeparator = "\r\n"
	default:
		return receipt.Options{}, errors.Errorf("unknown line ending %q", c.LineEnding)
	}
	if c.Columns <= 0 {
		return receipt.Options{}, errors.Errorf("receipt columns must be positive, got %d", c.Columns)
	}
	return opts, nil
}

// LoadConfig loads configuration from flags, environment variables and YAML
// files, then applies platform defaults.
func LoadConfig() (*Config, error) {
	return loadConfig(os.Args[1:])
}

func loadConfig(args []string) (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		Args:      args,
		EnvPrefix: "RECEIPT",
		Files:     []string{"config.yaml", "/etc/receipt/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that have no usable default.
func (c *Config) Validate() error {
	if len(c.Pricebooks) == 0 && c.DatabaseURL == "" {
		return errors.New("no catalog source: set RECEIPT_PRICEBOOKS or RECEIPT_DATABASE_URL")
	}
	if _, err := c.Receipt.Options(); err != nil {
		return errors.Wrap(err, "receipt")
	}
	return nil
}

// applyPlatformDefaults maps the conventional DATABASE_URL and PORT variables.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		c.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
