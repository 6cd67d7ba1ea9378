package flags

import (
	"time"

	"github.com/urfave/cli/v2"
)

const EnvVarPrefix = "KIT_TEST"

func prefixEnvVars(name string) []string {
	return []string{EnvVarPrefix + "_" + name}
}

var (
	AppBinary = &cli.StringFlag{
		Name:    "app-binary",
		Value:   "kit",
		EnvVars: prefixEnvVars("APP_BINARY"),
		Usage:   "Path to the app binary under test",
	}
	Timeout = &cli.DurationFlag{
		Name:    "timeout",
		Value:   30 * time.Second,
		EnvVars: prefixEnvVars("TIMEOUT"),
		Usage:   "Wall-clock budget per test file (e.g. '30s', '2m')",
	}
	AutoSubmit = &cli.BoolFlag{
		Name:    "auto-submit",
		Value:   true,
		EnvVars: prefixEnvVars("AUTO_SUBMIT"),
		Usage:   "Tell the app to submit prompts without waiting for a human",
	}
	AutoSubmitDelay = &cli.DurationFlag{
		Name:    "auto-submit-delay",
		Value:   500 * time.Millisecond,
		EnvVars: prefixEnvVars("AUTO_SUBMIT_DELAY"),
		Usage:   "Delay before each auto-submission",
	}
	Headless = &cli.BoolFlag{
		Name:    "headless",
		Value:   true,
		EnvVars: prefixEnvVars("HEADLESS"),
		Usage:   "Run the app without rendering",
	}
	AppLogLevel = &cli.StringFlag{
		Name:    "app-log-level",
		Value:   "warn",
		EnvVars: prefixEnvVars("APP_LOG_LEVEL"),
		Usage:   "Log-verbosity passthrough for the app under test",
	}
	WorkDir = &cli.StringFlag{
		Name:    "workdir",
		Value:   "",
		EnvVars: prefixEnvVars("WORKDIR"),
		Usage:   "Working directory for the app processes (defaults to the current directory)",
	}
	JSONOutput = &cli.BoolFlag{
		Name:  "json",
		Usage: "Emit a single machine-readable JSON summary on stdout and nothing else",
	}
	Verbose = &cli.BoolFlag{
		Name:    "verbose",
		Aliases: []string{"v"},
		Usage:   "Mirror app stderr in real time and enable extra diagnostics",
	}
	LogDir = &cli.StringFlag{
		Name:    "log-dir",
		Value:   "logs",
		EnvVars: prefixEnvVars("LOG_DIR"),
		Usage:   "Directory for per-run capture logs; empty disables file logging",
	}
	ConfigFile = &cli.StringFlag{
		Name:    "config",
		Value:   "",
		EnvVars: prefixEnvVars("CONFIG"),
		Usage:   "Path to an optional harness.yaml; flags take precedence over it",
	}
	Serve = &cli.BoolFlag{
		Name:    "serve",
		EnvVars: prefixEnvVars("SERVE"),
		Usage:   "Expose healthz and metrics HTTP endpoints for the duration of the run",
	}
	LogLevel = &cli.StringFlag{
		Name:    "log.level",
		Value:   "info",
		EnvVars: prefixEnvVars("LOG_LEVEL"),
		Usage:   "Harness log level (trace|debug|info|warn|error)",
	}
)

var Flags = []cli.Flag{
	AppBinary,
	Timeout,
	AutoSubmit,
	AutoSubmitDelay,
	Headless,
	AppLogLevel,
	WorkDir,
	JSONOutput,
	Verbose,
	LogDir,
	ConfigFile,
	Serve,
	LogLevel,
}
