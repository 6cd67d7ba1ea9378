package harness

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/zacjones93/script-kit-next-sub009/flags"
)

// Config holds the harness configuration. It is constructed once at startup
// and threaded through every component; nothing reads it as ambient state.
type Config struct {
	Patterns        []string      // positional file/glob patterns selecting test files
	AppBinary       string        // path to the app binary under test
	WorkDir         string        // working directory for app processes
	Timeout         time.Duration // wall-clock budget per test file
	AutoSubmit      bool
	AutoSubmitDelay time.Duration
	Headless        bool
	AppLogLevel     string
	JSONOutput      bool   // machine-readable-only output
	Verbose         bool   // real-time stderr mirroring and extra diagnostics
	LogDir          string // per-run capture logs; empty disables
	Serve           bool   // healthz/metrics HTTP endpoints
	Log             log.Logger
}

// fileConfig is the optional harness.yaml shape. Every field is optional;
// flags and environment variables take precedence.
type fileConfig struct {
	AppBinary         string `yaml:"app_binary,omitempty"`
	TimeoutMS         int64  `yaml:"timeout_ms,omitempty"`
	AutoSubmit        *bool  `yaml:"auto_submit,omitempty"`
	AutoSubmitDelayMS int64  `yaml:"auto_submit_delay_ms,omitempty"`
	Headless          *bool  `yaml:"headless,omitempty"`
	AppLogLevel       string `yaml:"app_log_level,omitempty"`
	WorkDir           string `yaml:"workdir,omitempty"`
	LogDir            string `yaml:"log_dir,omitempty"`
}

// NewConfig creates a Config from the cli context. Precedence per setting:
// flag or KIT_TEST_* environment override, then the config file, then the
// flag default.
func NewConfig(ctx *cli.Context, logger log.Logger) (*Config, error) {
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	cfg := &Config{
		Patterns:        ctx.Args().Slice(),
		AppBinary:       ctx.String(flags.AppBinary.Name),
		WorkDir:         ctx.String(flags.WorkDir.Name),
		Timeout:         ctx.Duration(flags.Timeout.Name),
		AutoSubmit:      ctx.Bool(flags.AutoSubmit.Name),
		AutoSubmitDelay: ctx.Duration(flags.AutoSubmitDelay.Name),
		Headless:        ctx.Bool(flags.Headless.Name),
		AppLogLevel:     ctx.String(flags.AppLogLevel.Name),
		JSONOutput:      ctx.Bool(flags.JSONOutput.Name),
		Verbose:         ctx.Bool(flags.Verbose.Name),
		LogDir:          ctx.String(flags.LogDir.Name),
		Serve:           ctx.Bool(flags.Serve.Name),
		Log:             logger,
	}

	if path := ctx.String(flags.ConfigFile.Name); path != "" {
		if err := cfg.applyFile(ctx, path); err != nil {
			return nil, err
		}
	}

	if cfg.AppBinary == "" {
		return nil, errors.New("app binary is required")
	}
	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive, got %v", cfg.Timeout)
	}
	if cfg.AutoSubmitDelay < 0 {
		return nil, fmt.Errorf("auto-submit delay cannot be negative, got %v", cfg.AutoSubmitDelay)
	}
	return cfg, nil
}

// applyFile overlays harness.yaml values beneath anything the user set
// explicitly on the command line or environment.
func (c *Config) applyFile(ctx *cli.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if fc.AppBinary != "" && !ctx.IsSet(flags.AppBinary.Name) {
		c.AppBinary = fc.AppBinary
	}
	if fc.TimeoutMS > 0 && !ctx.IsSet(flags.Timeout.Name) {
		c.Timeout = time.Duration(fc.TimeoutMS) * time.Millisecond
	}
	if fc.AutoSubmit != nil && !ctx.IsSet(flags.AutoSubmit.Name) {
		c.AutoSubmit = *fc.AutoSubmit
	}
	if fc.AutoSubmitDelayMS > 0 && !ctx.IsSet(flags.AutoSubmitDelay.Name) {
		c.AutoSubmitDelay = time.Duration(fc.AutoSubmitDelayMS) * time.Millisecond
	}
	if fc.Headless != nil && !ctx.IsSet(flags.Headless.Name) {
		c.Headless = *fc.Headless
	}
	if fc.AppLogLevel != "" && !ctx.IsSet(flags.AppLogLevel.Name) {
		c.AppLogLevel = fc.AppLogLevel
	}
	if fc.WorkDir != "" && !ctx.IsSet(flags.WorkDir.Name) {
		c.WorkDir = fc.WorkDir
	}
	if fc.LogDir != "" && !ctx.IsSet(flags.LogDir.Name) {
		c.LogDir = fc.LogDir
	}
	return nil
}
