package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/joescharf/itlog/internal/menu"
	"github.com/joescharf/itlog/internal/output"
	"github.com/joescharf/itlog/internal/store"
	"github.com/joescharf/itlog/internal/tracker"
)

// Package-level shared dependencies, initialized in cobra.OnInitialize.
var (
	ui     *output.UI
	logger *zap.Logger
	app    *appDeps

	verbose bool
	dryRun  bool
)

// appDeps holds the stores and tracker for one process.
type appDeps struct {
	csv     *store.CSVStore
	json    *store.JSONStore
	sqlite  *store.SQLiteStore // nil unless sqlite_path is set
	tracker *tracker.Tracker
}

var rootCmd = &cobra.Command{
	Use:   "itlog",
	Short: "IT Issue Logger - record and search IT issue reports",
	Long: `itlog records IT issue reports (software, hardware, network) to a CSV
file and a JSON file, and lists or filters them.

Run without a subcommand to start the interactive menu.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		closeApp()
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initDeps)

	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return rootRun(cmd)
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "Show what would happen without making changes")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/itlog/config.yaml)")
}

func initConfig() {
	// If --config is explicitly set, use that file
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if dir, err := configDirFunc(); err == nil {
		viper.AddConfigPath(dir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("ITLOG")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	// Read config file if it exists (optional)
	_ = viper.ReadInConfig()
}

// setDefaults registers default values for every config key.
// Store files live in the working directory unless configured otherwise.
func setDefaults() {
	viper.SetDefault("csv_path", "issues.csv")
	viper.SetDefault("json_path", "issues.json")
	viper.SetDefault("sqlite_path", "")
	viper.SetDefault("anthropic.api_key", "")
	viper.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
}

func initDeps() {
	ui = output.New()
	ui.Verbose = verbose
	ui.DryRun = dryRun
	logger = newLogger(verbose)
}

// newLogger builds the diagnostic logger. Only errors are shown unless verbose.
func newLogger(verbose bool) *zap.Logger {
	config := zap.NewProductionConfig()
	config.Encoding = "console"
	config.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	l, err := config.Build()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// rootRun handles `itlog` with no subcommand: the interactive menu.
func rootRun(cmd *cobra.Command) error {
	a, err := getApp()
	if err != nil {
		return err
	}
	m := menu.New(a.tracker, ui, menu.NewLinePrompter(cmd.InOrStdin(), ui.Out))
	return m.Run(cmd.Context())
}

// getApp returns the shared stores and tracker, initializing them on first call.
func getApp() (*appDeps, error) {
	if app != nil {
		return app, nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	a := &appDeps{
		csv:  store.NewCSVStore(viper.GetString("csv_path"), logger.Named("csv")),
		json: store.NewJSONStore(viper.GetString("json_path"), logger.Named("json")),
	}
	sinks := []store.Sink{a.csv, a.json}

	if dbPath := viper.GetString("sqlite_path"); dbPath != "" {
		s, err := store.NewSQLiteStore(expandHome(dbPath), logger.Named("sqlite"))
		if err != nil {
			return nil, fmt.Errorf("open sqlite mirror: %w", err)
		}
		if err := s.Migrate(context.Background()); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("migrate sqlite mirror: %w", err)
		}
		a.sqlite = s
		sinks = append(sinks, s)
	}

	a.tracker = tracker.New(a.csv, sinks, logger.Named("tracker"))
	app = a
	return app, nil
}

// reader returns the store named by source.
func (a *appDeps) reader(source string) (store.Reader, error) {
	switch source {
	case "csv":
		return a.csv, nil
	case "json":
		return a.json, nil
	case "sqlite":
		if a.sqlite == nil {
			return nil, fmt.Errorf("sqlite mirror is disabled (set sqlite_path)")
		}
		return a.sqlite, nil
	}
	return nil, fmt.Errorf("unknown source: %s (use: csv, json, sqlite)", source)
}

// closeApp releases the SQLite mirror, if one was opened.
func closeApp() {
	if app != nil && app.sqlite != nil {
		_ = app.sqlite.Close()
	}
	app = nil
}

// expandHome replaces a leading ~/ with the user's home directory.
func expandHome(path string) string {
	if len(path) < 2 || path[:2] != "~/" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
