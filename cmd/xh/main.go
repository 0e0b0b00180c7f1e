package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/suykerbuyk/x-heatmap/internal/activity"
	"github.com/suykerbuyk/x-heatmap/internal/archive"
	"github.com/suykerbuyk/x-heatmap/internal/cache"
	"github.com/suykerbuyk/x-heatmap/internal/check"
	"github.com/suykerbuyk/x-heatmap/internal/config"
	"github.com/suykerbuyk/x-heatmap/internal/help"
	"github.com/suykerbuyk/x-heatmap/internal/logging"
	"github.com/suykerbuyk/x-heatmap/internal/metrics"
	"github.com/suykerbuyk/x-heatmap/internal/pipeline"
	"github.com/suykerbuyk/x-heatmap/internal/report"
	"github.com/suykerbuyk/x-heatmap/internal/store"
	"github.com/suykerbuyk/x-heatmap/internal/watch"
)

// flags that consume the following argument
var valueFlags = map[string]bool{
	"--year":     true,
	"--tz":       true,
	"--config":   true,
	"--snapshot": true,
	"--sqlite":   true,
	"--debounce": true,
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, help.FormatUsage(help.TopLevel, help.Subcommands))
		os.Exit(1)
	}

	name, args := os.Args[1], os.Args[2:]

	switch name {
	case "help", "--help", "-h":
		runHelp(args)
		return
	case "version", "--version":
		fmt.Printf("xh %s\n", help.Version)
		return
	}

	cmd, ok := help.Lookup(name)
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", name)
		fmt.Fprint(os.Stderr, help.FormatUsage(help.TopLevel, help.Subcommands))
		os.Exit(1)
	}
	if hasFlag(args, "--help") || hasFlag(args, "-h") {
		fmt.Print(help.FormatTerminal(cmd))
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var code int
	switch name {
	case "init":
		code = runInit(args)
	case "process":
		code = runProcess(ctx, args)
	case "export":
		code = runExport(ctx, args)
	case "show":
		code = runShow(ctx, args)
	case "check":
		code = runCheck(ctx, args)
	case "watch":
		code = runWatch(ctx, args)
	}
	stop()
	os.Exit(code)
}

func runHelp(args []string) {
	if len(args) == 0 {
		fmt.Print(help.FormatUsage(help.TopLevel, help.Subcommands))
		return
	}
	cmd, ok := help.Lookup(args[0])
	if !ok {
		fatal("unknown command: %s", args[0])
	}
	fmt.Print(help.FormatTerminal(cmd))
}

func runInit(args []string) int {
	path, action, err := config.WriteDefault(hasFlag(args, "--force"))
	if err != nil {
		fatal("init: %v", err)
	}
	fmt.Printf("%s: %s\n", action, config.CompressHome(path))
	return 0
}

func runProcess(ctx context.Context, args []string) int {
	path := positional(args)
	if path == "" {
		fatal("usage: %s", help.CmdProcess.Usage)
	}
	year := yearFlag(args)

	env, err := setup(args)
	if err != nil {
		return fail(err)
	}
	defer env.flush()

	res := env.proc.ProcessFile(ctx, path)
	if hasFlag(args, "--json") {
		if err := printJSON(res); err != nil {
			return fail(err)
		}
		if !res.Success {
			return 1
		}
		return 0
	}
	if !res.Success {
		return fail(errors.New(res.Error))
	}
	return printSummary(res.Data, year, hasFlag(args, "--years"))
}

func runExport(ctx context.Context, args []string) int {
	path := positional(args)
	if path == "" {
		fatal("usage: %s", help.CmdExport.Usage)
	}

	env, err := setup(args)
	if err != nil {
		return fail(err)
	}
	defer env.flush()

	res := env.proc.ProcessFile(ctx, path)
	if !res.Success {
		return fail(errors.New(res.Error))
	}

	snapshot := flagValue(args, "--snapshot")
	sqlitePath := flagValue(args, "--sqlite")
	if snapshot == "" && sqlitePath == "" {
		snapshot = archive.SnapshotPath(path, env.cfg.Export.Dir)
	}

	if snapshot != "" {
		data, err := json.Marshal(res.Data)
		if err != nil {
			return fail(fmt.Errorf("encode snapshot: %w", err))
		}
		if err := archive.WriteSnapshot(snapshot, data); err != nil {
			return fail(err)
		}
		fmt.Printf("snapshot: %s\n", config.CompressHome(snapshot))
	}

	if sqlitePath != "" {
		if err := exportSQLite(ctx, sqlitePath, res.Data); err != nil {
			return fail(err)
		}
	}
	return 0
}

func exportSQLite(ctx context.Context, path string, data *activity.HeatmapData) error {
	db, err := store.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.SaveHeatmap(ctx, data); err != nil {
		return err
	}
	posts, err := db.TweetCount(ctx)
	if err != nil {
		return err
	}
	replies, err := db.ReplyCount(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("sqlite: %s (%s posts, %s replies)\n",
		config.CompressHome(path), humanize.Comma(int64(posts)), humanize.Comma(int64(replies)))
	return nil
}

func runShow(ctx context.Context, args []string) int {
	path := positional(args)
	if path == "" {
		fatal("usage: %s", help.CmdShow.Usage)
	}
	year := yearFlag(args)

	var (
		data *activity.HeatmapData
		err  error
	)
	if isDatabase(path) {
		data, err = loadDatabase(ctx, path)
	} else {
		data, err = loadSnapshot(path)
	}
	if err != nil {
		return fail(err)
	}

	if hasFlag(args, "--json") {
		if err := printJSON(data); err != nil {
			return fail(err)
		}
		return 0
	}
	return printSummary(data, year, hasFlag(args, "--years"))
}

func isDatabase(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}

func loadSnapshot(path string) (*activity.HeatmapData, error) {
	raw, err := archive.ReadSnapshot(path)
	if err != nil {
		return nil, err
	}
	var data activity.HeatmapData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	return &data, nil
}

func loadDatabase(ctx context.Context, path string) (*activity.HeatmapData, error) {
	// store.Open creates missing files, which show must not do
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	data, err := db.LoadHeatmap(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%s holds no exported years", path)
	}
	return data, err
}

func runCheck(ctx context.Context, args []string) int {
	cfg := loadConfig(args)
	r := check.Run(ctx, cfg, positional(args))
	fmt.Print(r.Format())
	if r.HasFailures() {
		return 1
	}
	return 0
}

func runWatch(ctx context.Context, args []string) int {
	path := positional(args)
	if path == "" {
		fatal("usage: %s", help.CmdWatch.Usage)
	}
	year := yearFlag(args)

	debounce := watch.DefaultDebounce
	if v := flagValue(args, "--debounce"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			fatal("invalid --debounce %q: %v", v, err)
		}
		debounce = d
	}

	env, err := setup(args)
	if err != nil {
		return fail(err)
	}
	defer env.flush()

	run := func(ctx context.Context) {
		res := env.proc.ProcessFile(ctx, path)
		if !res.Success {
			fmt.Fprintf(os.Stderr, "xh: %s\n", res.Error)
			return
		}
		printSummary(res.Data, year, false)
		if err := env.rec.Flush(); err != nil {
			env.logger.Warn().Err(err).Msg("flush metrics")
		}
	}

	w, err := watch.New(path, debounce, env.logger)
	if err != nil {
		return fail(err)
	}
	env.logger.Info().Str("path", w.Path()).Dur("debounce", debounce).Msg("watching")

	run(ctx)
	if err := w.Run(ctx, run); err != nil && !errors.Is(err, context.Canceled) {
		return fail(fmt.Errorf("watch: %w", err))
	}
	return 0
}

type runtimeEnv struct {
	cfg    config.Config
	logger zerolog.Logger
	rec    metrics.Recorder
	proc   *pipeline.Processor
}

func (e *runtimeEnv) flush() {
	if err := e.rec.Flush(); err != nil {
		e.logger.Warn().Err(err).Msg("flush metrics")
	}
}

// setup loads config and builds the processor with its collaborators.
func setup(args []string) (*runtimeEnv, error) {
	cfg := loadConfig(args)

	logger, err := logging.New(cfg.Logging, os.Stderr)
	if err != nil {
		return nil, err
	}

	rec := metrics.New(cfg.Metrics)
	proc, err := pipeline.New(cfg, logger, rec, cache.New(cfg.Cache, logger))
	if err != nil {
		return nil, err
	}
	return &runtimeEnv{cfg: cfg, logger: logger, rec: rec, proc: proc}, nil
}

func loadConfig(args []string) config.Config {
	var (
		cfg config.Config
		err error
	)
	if path := flagValue(args, "--config"); path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fatal("load config: %v", err)
	}

	if tz := flagValue(args, "--tz"); tz != "" {
		cfg.Timezone = tz
		if err := cfg.Validate(); err != nil {
			fatal("%v", err)
		}
	}
	return cfg
}

func printSummary(data *activity.HeatmapData, year int, years bool) int {
	if years {
		fmt.Print(report.FormatYears(data))
		return 0
	}
	out, err := report.Format(data, year)
	if err != nil {
		return fail(err)
	}
	fmt.Print(out)
	return 0
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

func yearFlag(args []string) int {
	v := flagValue(args, "--year")
	if v == "" {
		return 0
	}
	year, err := strconv.Atoi(v)
	if err != nil {
		fatal("invalid --year %q", v)
	}
	return year
}

// positional returns the first argument that is neither a flag nor a flag's value.
func positional(args []string) string {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if strings.HasPrefix(a, "-") {
			if valueFlags[a] {
				i++
			}
			continue
		}
		return a
	}
	return ""
}

func flagValue(args []string, flag string) string {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func hasFlag(args []string, flag string) bool {
	for _, a := range args {
		if a == flag {
			return true
		}
	}
	return false
}

// fail reports err and returns the exit status, letting deferred cleanup run.
func fail(err error) int {
	fmt.Fprintf(os.Stderr, "xh: %v\n", err)
	return 1
}

// fatal exits at once. Use it only before any file, database, or metrics
// recorder is open.
func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "xh: "+format+"\n", args...)
	os.Exit(1)
}
