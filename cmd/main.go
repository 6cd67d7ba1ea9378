package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ethereum/go-ethereum/log"
	"github.com/honeycombio/otel-config-go/otelconfig"
	"github.com/urfave/cli/v2"

	harness "github.com/zacjones93/script-kit-next-sub009"
	"github.com/zacjones93/script-kit-next-sub009/exitcodes"
	"github.com/zacjones93/script-kit-next-sub009/flags"
	"github.com/zacjones93/script-kit-next-sub009/reporting"
	"github.com/zacjones93/script-kit-next-sub009/service"
)

var (
	Version   = "v0.3.0"
	GitCommit = ""
	GitDate   = ""
)

func main() {
	app := cli.NewApp()
	app.Version = fmt.Sprintf("%s-%s-%s", Version, GitCommit, GitDate)
	app.Name = "kit-harness"
	app.Usage = "Script test harness for the app binary"
	app.Description = "kit-harness runs script test files against the app binary, reconciles its JSONL event output into verdicts, and reports one exit code for the whole run"
	app.ArgsUsage = "[patterns...]"
	app.Flags = flags.Flags
	app.Action = run
	app.ExitErrHandler = func(c *cli.Context, err error) {
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			cli.HandleExitCoder(exitErr)
		} else if err != nil {
			// Anything that escapes as a plain error is a harness problem,
			// never a test verdict.
			cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.RuntimeErr))
		}
	}

	if err := app.Run(os.Args); err != nil {
		log.Crit("Application failed", "message", err)
	}
}

func run(ctx *cli.Context) error {
	logger := newLogger(ctx.String(flags.LogLevel.Name))
	log.SetDefault(logger)

	// Telemetry is opt-in: without a collector endpoint the otel tracer
	// stays a no-op and nothing is exported.
	if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != "" {
		shutdown, err := otelconfig.ConfigureOpenTelemetry(
			otelconfig.WithServiceName(ctx.App.Name),
			otelconfig.WithServiceVersion(ctx.App.Version),
		)
		if err != nil {
			logger.Warn("Failed to set up open telemetry", "error", err)
		} else {
			defer shutdown()
		}
	}

	cfg, err := harness.NewConfig(ctx, logger)
	if err != nil {
		return harness.NewRuntimeError(fmt.Errorf("failed to create config: %w", err))
	}

	if cfg.Serve {
		svc := service.New()
		svc.Start(ctx.Context)
		defer svc.Shutdown()
	}

	h, err := harness.New(cfg)
	if err != nil {
		return harness.NewRuntimeError(fmt.Errorf("failed to create harness: %w", err))
	}

	runCtx, stop := signal.NotifyContext(ctx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := h.Run(runCtx)
	if err != nil {
		return err
	}

	if cfg.JSONOutput {
		if err := reporting.WriteSummary(os.Stdout, summary); err != nil {
			return harness.NewRuntimeError(err)
		}
	} else {
		formatter := harness.NewConsoleResultFormatter(os.Stdout, cfg.Verbose)
		if err := formatter.FormatResults(summary); err != nil {
			logger.Warn("Failed to render results table", "error", err)
		}
	}

	if summary.ExitCode != exitcodes.Success {
		// The message already reached the user via the report; the exit code
		// is the whole story here.
		return cli.Exit("", summary.ExitCode)
	}
	return nil
}

func newLogger(level string) log.Logger {
	return log.NewLogger(log.NewTerminalHandlerWithLevel(os.Stderr, parseLevel(level), true))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return log.LevelTrace
	case "debug":
		return log.LevelDebug
	case "warn":
		return log.LevelWarn
	case "error":
		return log.LevelError
	case "crit":
		return log.LevelCrit
	default:
		return log.LevelInfo
	}
}
