package pathfiles

import (
	"github.com/hupe1980/pathfiles/internal/fs"
	"github.com/hupe1980/pathfiles/resource"
)

// DefaultChunkSize is the default number of bytes per stream chunk.
const DefaultChunkSize = 64 * 1024

type options struct {
	pathPrefix     string
	budget         *resource.Budget
	capacity       int64
	chunkSize      int
	readLimit      int64
	followSymlinks bool
	skipHidden     bool
	gitIgnorePath  string
	ignorePatterns []string
	errorHandler   func(error)
	logger         *Logger
	metrics        MetricsCollector
	fsys           fs.FileSystem
}

func defaultOptions() options {
	return options{
		chunkSize:      DefaultChunkSize,
		followSymlinks: true,
		logger:         NoopLogger(),
		metrics:        NoopMetricsCollector{},
		fsys:           fs.Default,
	}
}

// Option configures a Walker.
type Option func(*options)

// WithPathPrefix strips prefix from the name of every file whose absolute
// path begins with it. Paths that do not begin with prefix keep their full
// name.
//
// Example:
//
//	files, _ := pathfiles.CollectAll(ctx, "/data/in", pathfiles.WithPathPrefix("/data"))
//	files[0].Name() // "/in/a.txt"
func WithPathPrefix(prefix string) Option {
	return func(o *options) {
		o.pathPrefix = prefix
	}
}

// WithBudget shares an existing descriptor budget. Walkers sharing a budget
// are jointly limited by its capacity.
//
// Takes precedence over WithCapacity.
func WithBudget(b *resource.Budget) Option {
	return func(o *options) {
		o.budget = b
	}
}

// WithCapacity gives the walker its own budget of capacity descriptors.
// Without this option (and without WithBudget) the process-wide
// resource.Default() budget is used.
func WithCapacity(capacity int64) Option {
	return func(o *options) {
		o.capacity = capacity
	}
}

// WithChunkSize sets the number of bytes per stream chunk.
// Values <= 0 select DefaultChunkSize.
func WithChunkSize(size int) Option {
	return func(o *options) {
		if size <= 0 {
			size = DefaultChunkSize
		}
		o.chunkSize = size
	}
}

// WithReadLimit throttles the combined read throughput of all streams of
// the walker to bytesPerSec. Values <= 0 disable throttling.
func WithReadLimit(bytesPerSec int64) Option {
	return func(o *options) {
		o.readLimit = bytesPerSec
	}
}

// WithFollowSymlinks controls whether symbolic links are resolved (once).
// Default: true.
func WithFollowSymlinks(follow bool) Option {
	return func(o *options) {
		o.followSymlinks = follow
	}
}

// WithSkipHidden skips files and directories whose name starts with a dot.
// Default: false.
func WithSkipHidden(skip bool) Option {
	return func(o *options) {
		o.skipHidden = skip
	}
}

// WithGitIgnore excludes paths matched by the gitignore file at path.
// Patterns are evaluated relative to the traversal root.
func WithGitIgnore(path string) Option {
	return func(o *options) {
		o.gitIgnorePath = path
	}
}

// WithIgnorePatterns excludes paths matched by gitignore-syntax patterns,
// evaluated relative to the traversal root.
func WithIgnorePatterns(patterns ...string) Option {
	return func(o *options) {
		o.ignorePatterns = append(o.ignorePatterns, patterns...)
	}
}

// WithErrorHandler registers fn to receive every skipped-entry error as it
// happens. fn runs on the goroutine ranging over the traversal.
func WithErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.errorHandler = fn
	}
}

// WithLogger configures the logger. Pass nil to disable logging.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &pathfiles.BasicMetricsCollector{}
//	w := pathfiles.New(pathfiles.WithMetricsCollector(metrics))
//	// ... walk and stream ...
//	stats := metrics.GetStats()
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metrics = mc
	}
}

func withFileSystem(fsys fs.FileSystem) Option {
	return func(o *options) {
		o.fsys = fsys
	}
}
