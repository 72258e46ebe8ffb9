// Command pf browses permit application workflows in the terminal and exports
// the data set to markdown, JSON, SQLite and SVG.
package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vanderheijden86/permitflow/pkg/config"
	"github.com/vanderheijden86/permitflow/pkg/debug"
	"github.com/vanderheijden86/permitflow/pkg/loader"
	"github.com/vanderheijden86/permitflow/pkg/metrics"
	"github.com/vanderheijden86/permitflow/pkg/model"
	"github.com/vanderheijden86/permitflow/pkg/ui"
	"github.com/vanderheijden86/permitflow/pkg/version"
	"github.com/vanderheijden86/permitflow/pkg/watcher"
)

var (
	// Global flags
	verbose bool
	logFile string
	dataDir string
	watch   bool
	view    string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "pf",
	Short: "pf - permit workflow browser",
	Long: `pf is a terminal browser for permit application workflows.

Workflows are shown as step carousels, info panels and tables, each backed by
citations into the source documents. Run without a subcommand to open the
browser; use export, show or docs for scripted output.`,
	Version:      version.Version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		}
		if logFile != "" {
			cfg.OutputPaths = []string{logFile}
			cfg.ErrorOutputPaths = []string{logFile}
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		if verbose && logFile != "" {
			debug.SetLogger(logger.Named("debug"))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			for _, st := range metrics.AllTimingStats() {
				logger.Debug("timing",
					zap.String("name", st.Name),
					zap.Int64("count", st.Count),
					zap.Float64("avg_ms", st.AvgMs),
					zap.Float64("max_ms", st.MaxMs))
			}
			_ = logger.Sync()
		}
		debug.Sync()
	},
	RunE: runBrowse,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to this file instead of stderr")
	rootCmd.PersistentFlags().StringVarP(&dataDir, "data", "d", "", "Directory with workflows.yaml, tests.yaml and citations.yaml (default: embedded data)")

	rootCmd.Flags().BoolVarP(&watch, "watch", "w", false, "Reload when the data files change (requires --data)")
	rootCmd.Flags().StringVar(&view, "view", "", "Start view: workflows, tests or documents")

	rootCmd.AddCommand(
		exportCmd,
		showCmd,
		docsCmd,
		checkCmd,
		versionCmd,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the user config and applies flag overrides. An unreadable
// config file is logged and replaced by the defaults.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		logger.Warn("ignoring config file", zap.String("path", config.ConfigPath()), zap.Error(err))
		cfg = config.DefaultConfig()
	}
	if view != "" {
		if _, ok := model.ParseView(view); !ok {
			return cfg, fmt.Errorf("unknown view %q (want workflows, tests or documents)", view)
		}
		cfg.UI.DefaultView = view
	}
	if watch {
		cfg.Data.Watch = true
	}
	return cfg, nil
}

// resolveDataDir picks the data directory: --data, then PERMITFLOW_DATA_DIR,
// then the config file. Empty means the embedded set.
func resolveDataDir(cfg config.Config) string {
	if dataDir != "" {
		return dataDir
	}
	return loader.GetDataDir(cfg.Data.Dir)
}

func loadDataset(dir string) (*loader.Dataset, error) {
	start := time.Now()
	ds, err := loader.Load(dir)
	if err != nil {
		return nil, err
	}
	logger.Debug("data set loaded",
		zap.String("source", ds.Source),
		zap.Int("workflows", len(ds.Workflows)),
		zap.Int("citations", ds.Citations.Len()),
		zap.Int("diagnostics", len(ds.Diagnostics)),
		zap.Duration("took", time.Since(start)))
	for _, d := range ds.Diagnostics {
		logger.Warn("data problem", zap.String("detail", d.String()))
	}
	return ds, nil
}

func runBrowse(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	dir := resolveDataDir(cfg)
	ds, err := loadDataset(dir)
	if err != nil {
		return fmt.Errorf("loading data: %w", err)
	}

	opts := ui.Options{Config: cfg, DataDir: dir}
	if cfg.Data.Watch {
		if dir == "" {
			return errors.New("--watch needs a data directory (--data or PERMITFLOW_DATA_DIR)")
		}
		w, err := watcher.NewWatcher(loader.DataFiles(dir),
			watcher.WithOnError(func(err error) {
				logger.Warn("watch error", zap.Error(err))
			}),
		)
		if err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
		if err := w.Start(); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
		defer w.Stop()
		logger.Debug("watching data files", zap.Strings("paths", w.Paths()), zap.Bool("polling", w.IsPolling()))
		opts.Watcher = w
	}

	// The browser owns the terminal; without a log file, stay quiet.
	if logFile == "" {
		logger = zap.NewNop()
	}
	return runTUIProgram(ui.NewModel(ds, opts))
}

func runTUIProgram(m ui.Model) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// PF_TUI_AUTOCLOSE_MS quits the browser after a delay, for smoke tests.
	if v := os.Getenv("PF_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}

				p.Quit()

				select {
				case <-runDone:
					return
				case <-time.After(2 * time.Second):
				}

				p.Kill()
			}()
		}
	}

	_, err := p.Run()
	if err != nil && (errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted)) {
		return nil
	}
	return err
}
