package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hupe1980/pathfiles"
	"github.com/hupe1980/pathfiles/internal/config"
)

// app holds state shared by all subcommands. It is populated by the root
// command's PersistentPreRunE once flags are parsed.
type app struct {
	configPath string

	cfg     *config.Config
	logger  *pathfiles.Logger
	metrics *pathfiles.BasicMetricsCollector
}

// flagKeys maps command-line flags onto configuration keys. A flag may
// feed several keys.
var flagKeys = map[string][]string{
	"capacity":    {"walk.capacity"},
	"prefix":      {"walk.prefix"},
	"log-level":   {"logging.level"},
	"log-format":  {"logging.format"},
	"skip-hidden": {"walk.skip_hidden"},
	"gitignore":   {"walk.gitignore"},
	"workers":     {"walk.workers"},
	"read-limit":  {"walk.read_limit"},

	"compression": {"archive.compression"},
	"level":       {"archive.level"},
	"codec":       {"archive.codec"},

	"target":       {"upload.target"},
	"dir":          {"upload.local.dir"},
	"bucket":       {"upload.s3.bucket", "upload.minio.bucket"},
	"key-prefix":   {"upload.s3.prefix", "upload.minio.prefix"},
	"ledger":       {"upload.ledger.type"},
	"ledger-path":  {"upload.ledger.badger.db_path"},
	"ledger-table": {"upload.ledger.dynamodb.table"},
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "pathfiles",
		Short: "Stream every file under a directory tree within a file descriptor budget",
		Long: `pathfiles enumerates the regular files below a root directory and streams
their contents while keeping the number of simultaneously open files
within a budget derived from the process descriptor limit.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			a.logStats(cmd)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (default is "+config.GetDefaultConfigPath()+")")
	pf.Int64("capacity", 0, "maximum number of simultaneously open files (0 derives it from the process limit)")
	pf.String("prefix", "", "prefix stripped from reported file names")
	pf.String("log-level", "", "log level (DEBUG, INFO, WARN, ERROR)")
	pf.String("log-format", "", "log format (text, json)")
	pf.Bool("skip-hidden", false, "skip dot-files and dot-directories")
	pf.String("gitignore", "", "exclude paths matched by this gitignore file")
	pf.Int("workers", 0, "maximum number of files processed concurrently (0 means unbounded)")
	pf.Int64("read-limit", 0, "combined read throughput limit in bytes per second (0 disables it)")

	cmd.AddCommand(
		newListCmd(a),
		newHashCmd(a),
		newArchiveCmd(a),
		newUploadCmd(a),
	)

	return cmd
}

func (a *app) load(cmd *cobra.Command) error {
	var bindings []config.FlagBinding
	for name, keys := range flagKeys {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			continue
		}
		for _, k := range keys {
			bindings = append(bindings, config.FlagBinding{Key: k, Flag: f})
		}
	}

	cfg, err := config.Load(a.configPath, bindings...)
	if err != nil {
		return err
	}

	logger, err := newLogger(cmd.ErrOrStderr(), cfg.Logging)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	a.metrics = &pathfiles.BasicMetricsCollector{}

	return nil
}

func newLogger(w io.Writer, cfg config.LoggingConfig) (*pathfiles.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return pathfiles.NewLogger(slog.NewJSONHandler(w, opts)), nil
	}
	return pathfiles.NewLogger(slog.NewTextHandler(w, opts)), nil
}

// walker builds a walker from the loaded walk configuration.
func (a *app) walker() *pathfiles.Walker {
	wc := a.cfg.Walk

	opts := []pathfiles.Option{
		pathfiles.WithPathPrefix(wc.Prefix),
		pathfiles.WithCapacity(wc.Capacity),
		pathfiles.WithChunkSize(wc.ChunkSize),
		pathfiles.WithReadLimit(wc.ReadLimit),
		pathfiles.WithSkipHidden(wc.SkipHidden),
		pathfiles.WithFollowSymlinks(!wc.NoFollowSymlinks),
		pathfiles.WithLogger(a.logger),
		pathfiles.WithMetricsCollector(a.metrics),
	}
	if wc.GitIgnore != "" {
		opts = append(opts, pathfiles.WithGitIgnore(wc.GitIgnore))
	}
	if len(wc.Ignore) > 0 {
		opts = append(opts, pathfiles.WithIgnorePatterns(wc.Ignore...))
	}

	return pathfiles.New(opts...)
}

// finish reports why t stopped early, if it did. Skipped entries have
// already been logged.
func finish(t *pathfiles.Traversal) error {
	if err := t.Aborted(); err != nil {
		return fmt.Errorf("traversal of %s stopped: %w", t.Root(), err)
	}
	return nil
}

func (a *app) logStats(cmd *cobra.Command) {
	if a.logger == nil || a.metrics == nil {
		return
	}

	s := a.metrics.GetStats()
	a.logger.DebugContext(cmd.Context(), "pathfiles stats",
		slog.Int64("entries", s.EntryCount),
		slog.Int64("entry_bytes", s.EntryBytes),
		slog.Int64("skipped", s.SkipCount),
		slog.Int64("opens", s.OpenCount),
		slog.Int64("open_errors", s.OpenErrors),
		slog.Int64("open_avg_wait_ns", s.OpenAvgWaitNanos),
		slog.Int64("streams", s.StreamCount),
		slog.Int64("stream_bytes", s.StreamBytes),
	)
}
