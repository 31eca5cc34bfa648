package cli

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/partdb/internal/config"
	"github.com/roach88/partdb/internal/crud"
	"github.com/roach88/partdb/internal/schema"
	"github.com/roach88/partdb/internal/store"
)

// session is the resolved config, data file and service a command works on.
type session struct {
	cfg       *config.Config
	schema    *schema.Schema
	store     *store.Store
	svc       *crud.Service
	logger    *slog.Logger
	formatter *OutputFormatter

	// loadErr is a non-fatal load problem (missing or undecodable file).
	loadErr error
}

// loadConfig reads the config file and applies flag overrides. The default
// path may be absent; an explicit --config must exist.
func loadConfig(opts *RootOptions, cmd *cobra.Command) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if cmd.Flags().Changed("config") {
		cfg, err = config.Load(opts.ConfigPath)
	} else {
		cfg, err = config.LoadOrDefault(opts.ConfigPath)
	}
	if err != nil {
		return nil, err
	}

	if opts.File != "" {
		cfg.File = opts.File
	}
	if opts.Schema != "" {
		cfg.SchemaName = opts.Schema
	}
	return cfg, nil
}

// newLogger builds the text logger on stderr. --verbose forces debug.
func newLogger(opts *RootOptions, cfg *config.Config, cmd *cobra.Command) *slog.Logger {
	level := cfg.Level()
	if opts.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: level,
	}))
}

// openSession loads config and the data file.
//
// A missing data file is never fatal: the collection starts empty and the
// first write creates the file. An undecodable file is fatal when strict is
// set, since writing the empty collection back would drop its contents;
// the interactive shell opens it anyway and warns.
func openSession(opts *RootOptions, cmd *cobra.Command, strict bool) (*session, error) {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	cfg, err := loadConfig(opts, cmd)
	if err != nil {
		_ = formatter.Error(ErrCodeConfig, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	logger := newLogger(opts, cfg, cmd)

	s, err := cfg.Schema()
	if err != nil {
		_ = formatter.Error(ErrCodeConfig, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "failed to resolve schema", err)
	}
	formatter.VerboseLog("Using %s (schema %s)", cfg.File, s.Name)

	st, loadErr := store.Load(cfg.File, s, store.WithLogger(logger))
	if loadErr != nil && !errors.Is(loadErr, store.ErrFileNotFound) && strict {
		return nil, formatter.Fail("failed to load data file", loadErr)
	}

	return &session{
		cfg:       cfg,
		schema:    s,
		store:     st,
		svc:       crud.New(st, crud.WithLogger(logger)),
		logger:    logger,
		formatter: formatter,
		loadErr:   loadErr,
	}, nil
}
