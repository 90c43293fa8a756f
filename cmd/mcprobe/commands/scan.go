package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/go-mclib/mcprobe/internal/config"
	"github.com/go-mclib/mcprobe/internal/endpointlist"
	"github.com/go-mclib/mcprobe/internal/report"
	"github.com/go-mclib/mcprobe/scanner"
)

// scanCmd runs the full pipeline: load config, read the endpoint list,
// probe every endpoint concurrently, write the report, log a summary
// (SPEC_FULL.md 6.2).
func scanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Probe every endpoint in the input file and write a JSON report",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd.Context())
		},
	}
}

func runScan(ctx context.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	applyFlagOverrides(cfg)

	level := new(slog.LevelVar)
	level.Set(config.ParseLogLevel(cfg.Log.Level))
	logger := config.NewLoggerWithLevel(os.Stdout, cfg.Log, level)

	endpoints, err := endpointlist.Load(cfg.InputPath, cfg.Scan.DefaultPort)
	if err != nil {
		return err
	}
	logger.Info("loaded endpoint list", slog.Int("count", len(endpoints)), slog.String("path", cfg.InputPath))

	scanCfg := scanner.Config{
		ConnectTimeout:         cfg.Scan.ConnectTimeout,
		AuthTimeout:            cfg.Scan.AuthTimeout,
		ScanTimeout:            cfg.Scan.ScanTimeout,
		MaxConcurrent:          cfg.Scan.MaxConcurrent,
		StatusProtocolSentinel: cfg.Scan.StatusProtocolSentinel,
		CheckAuth:              cfg.Scan.CheckAuth,
	}

	results, err := scanner.RunBatch(ctx, endpoints, scanCfg, logger)
	if err != nil {
		return err
	}

	if err := report.WriteFile(cfg.OutputPath, results); err != nil {
		return err
	}

	summary := report.Summarize(results)
	fields := []any{
		slog.Int("total", summary.Total),
		slog.Int("ok", summary.OK),
		slog.Int("failed", summary.Failed),
	}
	if cfg.Scan.CheckAuth {
		fields = append(fields,
			slog.Int("cracked", summary.Cracked),
			slog.Int("premium", summary.Premium),
			slog.Int("whitelisted", summary.Whitelisted),
			slog.Int("unknown", summary.Unknown),
		)
	}
	logger.Info("scan complete", fields...)

	return nil
}

// applyFlagOverrides layers CLI flags on top of the loaded config,
// mirroring dantte-lp-gobfd/cmd/gobfdctl's flag-then-config-default
// precedence: a flag left at its zero value never clobbers a config
// value.
func applyFlagOverrides(cfg *config.Config) {
	if inputPath != "" {
		cfg.InputPath = inputPath
	}
	if outputPath != "" {
		cfg.OutputPath = outputPath
	}
	if checkAuth {
		cfg.Scan.CheckAuth = true
	}
	if concurrency > 0 {
		cfg.Scan.MaxConcurrent = concurrency
	}
}
