package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ridedash/internal/config"
	"ridedash/internal/service"
	"ridedash/internal/store"
	"ridedash/internal/tui"
)

// Linker flags set at release time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// cliFlags holds every flag value; persistent ones apply to all commands.
type cliFlags struct {
	configPath string
	dbPath     string
	ftp        float64
	maxHR      float64
	verbose    bool

	limit    int
	offset   int
	save     bool
	format   string
	out      string
	addr     string
	schedule string
}

var flags cliFlags

var warn = color.New(color.FgYellow).SprintFunc()

// rootCmd launches the terminal dashboard.
var rootCmd = &cobra.Command{
	Use:   "ridedash",
	Short: "Cycling training dashboard for Strava rides",
	Long: `ridedash syncs your rides from Strava and analyzes them:
normalized power, intensity, training stress, efficiency, heart rate drift,
zone distributions and fitness trends.

Run without a subcommand to open the terminal dashboard.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runDashboard,
}

// Execute runs the root command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	logger := newLogger(io.Discard) // slog output would corrupt the alt screen

	cfg, err := loadConfig(cmd.OutOrStdout(), true)
	if err != nil || cfg == nil {
		return err
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	source, err := connect(ctx, cmd.OutOrStdout(), cfg, db)
	if err != nil {
		return err
	}

	syncSvc := service.NewSyncService(source, db, cfg, logger)
	querySvc := service.NewQueryService(db, cfg.Athlete.AnalysisConfig())
	app := tui.NewApp(querySvc, syncSvc, tui.NewUnits(cfg.Display))

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}

// loadConfig reads the config file and applies flag overrides.
// With strict set, Strava credentials are required; a missing file is
// replaced with an example and nil is returned so the caller can stop.
// Otherwise defaults stand in for a missing file.
func loadConfig(out io.Writer, strict bool) (*config.Config, error) {
	path := flags.configPath
	if path == "" {
		dir, err := config.GetConfigDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, "config.json")
	}

	cfg, err := config.LoadFile(path)
	switch {
	case errors.Is(err, config.ErrNoConfig) && strict:
		if err := config.CreateExampleFile(path); err != nil {
			return nil, fmt.Errorf("creating example config: %w", err)
		}
		fmt.Fprintf(out, "No config file found. An example was written to:\n  %s\n\n", path)
		fmt.Fprintln(out, "Add your Strava API credentials from https://www.strava.com/settings/api and run again.")
		return nil, nil
	case errors.Is(err, config.ErrNoConfig):
		d := config.DefaultConfig()
		cfg = &d
	case err != nil:
		return nil, fmt.Errorf("loading config: %w", err)
	}

	applyOverrides(cfg)

	if strict {
		err = cfg.Validate()
	} else {
		err = cfg.Athlete.Validate()
	}
	if err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// applyOverrides lets --ftp and --max-hr win over the config file
func applyOverrides(cfg *config.Config) {
	if flags.ftp > 0 {
		cfg.Athlete.FTP = flags.ftp
	}
	if flags.maxHR > 0 {
		cfg.Athlete.MaxHR = flags.maxHR
	}
}

func openDB() (*store.DB, error) {
	if flags.dbPath != "" {
		return store.Open(flags.dbPath)
	}
	return store.OpenDefault()
}

// newLogger writes text logs to w, at debug level with --verbose
func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if flags.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
