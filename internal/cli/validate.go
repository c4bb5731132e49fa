package cli

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/sdejongh/sdverify/pkg/config"
	"github.com/sdejongh/sdverify/pkg/guard"
	"github.com/sdejongh/sdverify/pkg/logging"
	"github.com/sdejongh/sdverify/pkg/metrics"
	"github.com/sdejongh/sdverify/pkg/models"
	"github.com/sdejongh/sdverify/pkg/output"
	"github.com/spf13/cobra"
)

// session bundles what every command needs once flags and config are merged
type session struct {
	cfg       *config.Config
	logger    logging.Logger
	formatter output.Formatter
	metrics   *metrics.Metrics
	out       io.Writer
	errOut    io.Writer
}

// newSession loads the configuration, applies flags and builds the logger
// and formatter
func newSession(cmd *cobra.Command, outputFormat string) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	applyFlagsToConfig(cmd, cfg, outputFormat)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := createLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	useColor := cfg.Output.Color && isTerminal(cmd.OutOrStdout())
	formatter, err := output.NewFormatter(cfg.Output.Format, useColor)
	if err != nil {
		logger.Close()
		return nil, err
	}

	s := &session{
		cfg:       cfg,
		logger:    logger,
		formatter: formatter,
		out:       cmd.OutOrStdout(),
		errOut:    cmd.ErrOrStderr(),
	}

	if cfg.Output.Quiet && cfg.Output.Format == "human" {
		s.out = io.Discard
	}

	return s, nil
}

// enableMetrics loads the metrics textfile, if one is configured, so the
// command can add its observations to what earlier runs recorded. Only
// commands that observe something call it; the others leave the file alone.
func (s *session) enableMetrics(ctx context.Context) {
	path := s.cfg.Metrics.TextfilePath
	if path == "" {
		return
	}

	m := metrics.New()
	if err := m.Restore(path); err != nil {
		s.logger.Warn(ctx, "failed to load previous metrics, starting from zero", logging.Fields{"error": err.Error(), "path": path})
		m = metrics.New()
	}
	s.metrics = m
}

// close writes the metrics textfile, if any, and closes the logger
func (s *session) close(ctx context.Context) {
	if s.metrics != nil {
		if err := s.metrics.WriteTextfile(s.cfg.Metrics.TextfilePath); err != nil {
			s.logger.Warn(ctx, "failed to write metrics", logging.Fields{"error": err.Error(), "path": s.cfg.Metrics.TextfilePath})
		}
	}
	s.logger.Close()
}

// fail prints err through the formatter and returns it as a StatusError
func (s *session) fail(ctx context.Context, err error) error {
	s.logger.Error(ctx, "command failed", err, nil)

	w := s.errOut
	if s.formatter.Name() == "json" {
		w = s.out
	}
	s.formatter.Error(w, err)

	return &StatusError{Status: statusFor(err), Err: err}
}

// statusFor maps an error to the command status it ends with
func statusFor(err error) models.Status {
	if errors.Is(err, guard.ErrDeleteNotConfirmed) || errors.Is(err, guard.ErrDriveNotVerified) {
		return models.StatusCancelled
	}
	return models.StatusFailed
}

// loadConfig loads configuration from file or returns default
func loadConfig() (*config.Config, error) {
	if globalFlags.ConfigFile != "" {
		return config.LoadFromFile(globalFlags.ConfigFile)
	}
	return config.LoadDefault()
}

// applyFlagsToConfig overrides config values with command-line flags
func applyFlagsToConfig(cmd *cobra.Command, cfg *config.Config, outputFormat string) {
	flags := cmd.Flags()

	// Output format
	if outputFormat != "" && flags.Changed("output") {
		cfg.Output.Format = outputFormat
	}

	// Disable progress and decoration in quiet mode
	if globalFlags.Quiet {
		cfg.Output.Progress = false
		cfg.Output.Quiet = true
	}

	if globalFlags.NoColor {
		cfg.Output.Color = false
	}

	// Logging
	if flags.Changed("log-file") {
		cfg.Logging.File = globalFlags.LogFile
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format = globalFlags.LogFormat
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = globalFlags.LogLevel
	} else if globalFlags.Verbose {
		cfg.Logging.Level = "debug"
	}
	if globalFlags.Verbose || cfg.Logging.File != "" {
		cfg.Logging.Enabled = true
	}
}

// createLogger creates a logger based on configuration
func createLogger(cfg *config.Config, stderr io.Writer) (logging.Logger, error) {
	if !cfg.Logging.Enabled {
		return logging.NewNullLogger(), nil
	}

	format := logging.ParseFormat(cfg.Logging.Format)
	level := logging.ParseLevel(cfg.Logging.Level)

	if cfg.Logging.File != "" {
		return logging.NewFileLogger(logging.FileLoggerConfig{
			Path:       cfg.Logging.File,
			Format:     format,
			Level:      level,
			MaxSize:    10 * 1024 * 1024, // 10 MB
			MaxBackups: 5,
		})
	}

	if globalFlags.Verbose {
		return logging.New(stderr, format, level), nil
	}

	// If no log file specified, return null logger
	return logging.NewNullLogger(), nil
}

// isTerminal reports whether w is an interactive terminal
func isTerminal(w interface{}) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
