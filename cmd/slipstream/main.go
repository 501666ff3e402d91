package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jatassi/slipstream-go/config"
	"github.com/jatassi/slipstream-go/internal/bootstrap"
	"github.com/jatassi/slipstream-go/internal/domain/model"
	"github.com/jatassi/slipstream-go/internal/query"
	"github.com/jatassi/slipstream-go/internal/service"
	"github.com/jatassi/slipstream-go/internal/tui"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
}

const defaultCommandTimeout = 30 * time.Second

func main() {
	logger := bootstrap.InitLogger()

	if len(os.Args) < 2 {
		if err := printUsage(); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		if err := writef(os.Stderr, "unknown command %q\n\n", cmdName); err != nil {
			logger.Error("print unknown command message failed", "error", err)
		}
		if err := printUsage(); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.ErrorContext(context.Background(), "load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}

	cmdCtx := &commandContext{
		Ctx:    context.Background(),
		Logger: logger,
		Config: cfg,
	}
	if runErr := cmd.run(cmdCtx, os.Args[2:]); runErr != nil {
		logger.ErrorContext(cmdCtx.Ctx, "command failed", "command", cmdName, "error", runErr)
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func commands() map[string]command {
	return map[string]command{
		"settings": {
			name:        "settings",
			description: "Show the RSS sync settings",
			run:         runSettings,
		},
		"set-settings": {
			name:        "set-settings",
			description: "Update the RSS sync settings",
			run:         runSetSettings,
		},
		"status": {
			name:        "status",
			description: "Show the last RSS sync run",
			run:         runStatus,
		},
		"trigger": {
			name:        "trigger",
			description: "Start an RSS sync run now",
			run:         runTrigger,
		},
		"storage": {
			name:        "storage",
			description: "List storage mounts and free space",
			run:         runStorage,
		},
		"watch": {
			name:        "watch",
			description: "Follow the RSS sync status in a live view",
			run:         runWatch,
		},
	}
}

func printUsage() error {
	if err := writef(os.Stdout, "Usage: slipstream <command> [flags]\n\n"); err != nil {
		return err
	}
	if err := writef(os.Stdout, "Available commands:\n"); err != nil {
		return err
	}
	cmds := commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := writef(os.Stdout, "  %-14s %s\n", name, cmds[name].description); err != nil {
			return err
		}
	}
	return nil
}

type outputOptions struct {
	Query string
	JSON  bool
}

func bindOutputFlags(fs *flag.FlagSet, opts *outputOptions) {
	fs.StringVar(&opts.Query, "query", "", "JMESPath expression applied to the JSON output")
	fs.BoolVar(&opts.JSON, "json", false, "Print raw JSON instead of the table view")
}

type setSettingsOptions struct {
	Enabled  bool
	Interval int
	Output   outputOptions
}

func runSettings(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("settings", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var out outputOptions
	bindOutputFlags(fs, &out)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := bootstrap.NewAPIClient(cmdCtx.Config)
	if err != nil {
		return err
	}

	ctx, cancel := commandTimeout(cmdCtx)
	defer cancel()

	settings, err := client.RSSSync().GetSettings(ctx)
	if err != nil {
		return fmt.Errorf("get sync settings: %w", err)
	}

	if out.JSON || out.Query != "" {
		return printJSON(os.Stdout, settings, out.Query)
	}

	return printSettings(settings)
}

func runSetSettings(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("set-settings", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts setSettingsOptions
	fs.BoolVar(&opts.Enabled, "enabled", false, "Enable automatic RSS sync")
	fs.IntVar(&opts.Interval, "interval", 0, "Sync interval in minutes (required)")
	bindOutputFlags(fs, &opts.Output)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if opts.Interval <= 0 {
		return errors.New("--interval must be greater than zero")
	}

	client, err := bootstrap.NewAPIClient(cmdCtx.Config)
	if err != nil {
		return err
	}

	ctx, cancel := commandTimeout(cmdCtx)
	defer cancel()

	updated, err := client.RSSSync().UpdateSettings(ctx, model.SyncSettings{
		Enabled:     opts.Enabled,
		IntervalMin: opts.Interval,
	})
	if err != nil {
		return fmt.Errorf("update sync settings: %w", err)
	}

	cmdCtx.Logger.Info("sync settings updated",
		"enabled", updated.Enabled,
		"interval_min", updated.IntervalMin,
	)

	if opts.Output.JSON || opts.Output.Query != "" {
		return printJSON(os.Stdout, updated, opts.Output.Query)
	}

	return printSettings(updated)
}

func runStatus(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var out outputOptions
	bindOutputFlags(fs, &out)
	if err := fs.Parse(args); err != nil {
		return err
	}

	statusQuery, err := newStatusQuery(cmdCtx)
	if err != nil {
		return err
	}

	ctx, cancel := commandTimeout(cmdCtx)
	defer cancel()

	status, err := statusQuery.Get(ctx)
	if err != nil {
		return fmt.Errorf("get sync status: %w", err)
	}

	if out.JSON || out.Query != "" {
		return printJSON(os.Stdout, status, out.Query)
	}

	return printStatus(status)
}

func runTrigger(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("trigger", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var out outputOptions
	bindOutputFlags(fs, &out)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := bootstrap.NewAPIClient(cmdCtx.Config)
	if err != nil {
		return err
	}

	ctx, cancel := commandTimeout(cmdCtx)
	defer cancel()

	ack, err := client.RSSSync().Trigger(ctx)
	if err != nil {
		return fmt.Errorf("trigger sync: %w", err)
	}

	// A trigger makes any cached status stale immediately. A memory store
	// dies with this invocation; only a shared Redis entry can outlive it.
	if statusCacheOutlivesProcess(cmdCtx.Config) {
		if statusQuery, queryErr := newStatusQuery(cmdCtx); queryErr == nil {
			if invErr := statusQuery.Invalidate(ctx); invErr != nil {
				cmdCtx.Logger.Warn("invalidate cached status failed", "error", invErr)
			}
		}
	}

	if out.JSON || out.Query != "" {
		return printJSON(os.Stdout, ack, out.Query)
	}

	if err := writef(os.Stdout, "%s\n", ack.Message); err != nil {
		return fmt.Errorf("print trigger ack: %w", err)
	}
	return nil
}

func runStorage(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("storage", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var out outputOptions
	bindOutputFlags(fs, &out)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := bootstrap.NewAPIClient(cmdCtx.Config)
	if err != nil {
		return err
	}

	storageQuery, err := service.NewStorageQuery(service.StorageQueryOptions{
		API:    client.Storage(),
		Store:  bootstrap.NewQueryStore(cmdCtx.Config),
		Policy: bootstrap.QueryPolicy(cmdCtx.Config),
		Logger: cmdCtx.Logger,
	})
	if err != nil {
		return fmt.Errorf("build storage query: %w", err)
	}

	ctx, cancel := commandTimeout(cmdCtx)
	defer cancel()

	infos, err := storageQuery.Get(ctx)
	if err != nil {
		return fmt.Errorf("get storage info: %w", err)
	}

	if out.JSON || out.Query != "" {
		return printJSON(os.Stdout, infos, out.Query)
	}

	return printStorageTable(infos)
}

func runWatch(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	interval := fs.Duration("interval", 2*time.Second, "Poll interval for the live view")
	if err := fs.Parse(args); err != nil {
		return err
	}

	statusQuery, err := newStatusQuery(cmdCtx)
	if err != nil {
		return err
	}

	metrics, err := bootstrap.NewMetrics(cmdCtx.Config, cmdCtx.Logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := metrics.Close(); closeErr != nil {
			cmdCtx.Logger.Warn("statsd close failed", "error", closeErr)
		}
	}()

	runner, err := service.NewStatusRunner(statusQuery, cmdCtx.Logger, metrics)
	if err != nil {
		return fmt.Errorf("build status runner: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmdCtx.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	runnerCtx, cancelRunner := context.WithCancel(ctx)
	defer cancelRunner()
	go func() {
		if runErr := runner.Run(runnerCtx); runErr != nil {
			cmdCtx.Logger.Warn("status runner stopped", "error", runErr)
		}
	}()

	program := tea.NewProgram(
		tui.NewWatch(statusQuery, *interval),
		tea.WithContext(ctx),
	)
	if _, runErr := program.Run(); runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return fmt.Errorf("run watch view: %w", runErr)
	}
	return nil
}

func newStatusQuery(cmdCtx *commandContext) (*query.Query[model.SyncStatus], error) {
	client, err := bootstrap.NewAPIClient(cmdCtx.Config)
	if err != nil {
		return nil, err
	}

	q, err := service.NewStatusQuery(service.StatusQueryOptions{
		API:    client.RSSSync(),
		Store:  bootstrap.NewQueryStore(cmdCtx.Config),
		Logger: cmdCtx.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build status query: %w", err)
	}
	return q, nil
}

func printSettings(settings model.SyncSettings) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if err := writef(w, "Enabled\t%t\n", settings.Enabled); err != nil {
		return fmt.Errorf("write settings enabled: %w", err)
	}
	if err := writef(w, "Interval\t%dm\n", settings.IntervalMin); err != nil {
		return fmt.Errorf("write settings interval: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush settings: %w", err)
	}
	return nil
}

func printStatus(status model.SyncStatus) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)

	state := "idle"
	if status.Running {
		state = "syncing"
	}
	if err := writef(w, "State\t%s\n", state); err != nil {
		return fmt.Errorf("write status state: %w", err)
	}

	lastRun := "never"
	if status.LastRun != nil {
		lastRun = status.LastRun.Local().Format(time.RFC1123)
	}
	if err := writef(w, "Last run\t%s\n", lastRun); err != nil {
		return fmt.Errorf("write status last run: %w", err)
	}

	if err := writef(w, "Releases\t%d\n", status.TotalReleases); err != nil {
		return fmt.Errorf("write status releases: %w", err)
	}
	if err := writef(w, "Matched\t%d\n", status.Matched); err != nil {
		return fmt.Errorf("write status matched: %w", err)
	}
	if err := writef(w, "Grabbed\t%d\n", status.Grabbed); err != nil {
		return fmt.Errorf("write status grabbed: %w", err)
	}
	if err := writef(w, "Elapsed\t%s\n", status.Elapsed()); err != nil {
		return fmt.Errorf("write status elapsed: %w", err)
	}
	if status.Error != "" {
		if err := writef(w, "Error\t%s\n", status.Error); err != nil {
			return fmt.Errorf("write status error: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush status: %w", err)
	}
	return nil
}

func printStorageTable(infos []model.StorageInfo) error {
	if len(infos) == 0 {
		if err := writef(os.Stdout, "(no storage mounts)\n"); err != nil {
			return fmt.Errorf("print empty storage notice: %w", err)
		}
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if err := writef(w, "Label\tPath\tFree\tTotal\n"); err != nil {
		return fmt.Errorf("write storage header: %w", err)
	}
	for _, info := range infos {
		label := info.Label
		if strings.TrimSpace(label) == "" {
			label = "-"
		}
		if err := writef(
			w,
			"%s\t%s\t%s\t%s\n",
			label,
			info.Path,
			formatBytes(info.FreeSpace),
			formatBytes(info.TotalSpace),
		); err != nil {
			return fmt.Errorf("write storage row %q: %w", info.Path, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush storage table: %w", err)
	}
	return nil
}

func commandTimeout(cmdCtx *commandContext) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmdCtx.Ctx, defaultCommandTimeout)
}

// statusCacheOutlivesProcess reports whether a cached status entry can be
// seen by later invocations, i.e. a shared Redis store is configured.
func statusCacheOutlivesProcess(cfg config.AppConfig) bool {
	return cfg.Cache.UseRedis()
}
