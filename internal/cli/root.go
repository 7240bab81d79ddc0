// Package cli defines the hydro-tui command line: the interactive dashboard
// plus headless snapshot and export commands.
package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/j-veylop/hydro-dashboard-tui/internal/app"
	"github.com/j-veylop/hydro-dashboard-tui/internal/config"
	"github.com/j-veylop/hydro-dashboard-tui/internal/logger"
	"github.com/j-veylop/hydro-dashboard-tui/internal/metrics"
	"github.com/j-veylop/hydro-dashboard-tui/internal/models"
	"github.com/j-veylop/hydro-dashboard-tui/internal/services"
	"github.com/j-veylop/hydro-dashboard-tui/internal/ui/tabs/dashboard"
	"github.com/j-veylop/hydro-dashboard-tui/internal/ui/tabs/info"
	"github.com/j-veylop/hydro-dashboard-tui/internal/ui/tabs/reports"
	"github.com/j-veylop/hydro-dashboard-tui/internal/ui/tabs/stations"
	"github.com/j-veylop/hydro-dashboard-tui/internal/version"
)

var (
	cfg *config.Config

	// logCloser releases the log file opened in PersistentPreRunE.
	logCloser io.Closer

	configFile string
)

var rootCmd = &cobra.Command{
	Use:   "hydro-tui",
	Short: "Terminal dashboard for hydrological monitoring stations",
	Long: `hydro-tui shows live discharge, weather, rain gauge and dam readings,
paged station reports with PDF and Excel export, and rotates through the
station views when left unattended on a wide display.

Keyboard:
  1-6             Switch tabs
  Tab/Shift+Tab   Next/previous tab
  r               Refresh data
  ?               Toggle help
  q, Ctrl+C       Quit`,
	Version:       version.GetVersion(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		logCloser, err = logger.Setup(cfg.Log.Path, cfg.Log.Level)
		if err != nil {
			return fmt.Errorf("failed to set up logging: %w", err)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDashboard(cfg)
	},
}

// Execute runs the root command.
func Execute() {
	if err := execute(nil); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// execute runs the root command with args, or the process arguments when
// args is nil. The log file is closed whether or not the command failed.
func execute(args []string) error {
	defer closeLog()
	if args != nil {
		rootCmd.SetArgs(args)
	}
	return rootCmd.Execute()
}

func closeLog() {
	if logCloser != nil {
		_ = logCloser.Close()
		logCloser = nil
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"config file (default: ./config.yaml or ~/.config/hydro-tui/config.yaml)")
	rootCmd.SetVersionTemplate(version.Info() + "\n")

	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(exportCmd)
}

// runDashboard wires the services and tabs and runs the TUI until quit.
func runDashboard(cfg *config.Config) error {
	mgr, err := services.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer func() {
		if closeErr := mgr.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: error closing services: %v\n", closeErr)
		}
	}()

	if cfg.MetricsAddr != "" {
		metrics.Init(mgr.Database().DB)
		srv := metrics.StartServer(cfg.MetricsAddr, healthCheck(mgr))
		defer func() { _ = srv.Close() }()
	}

	model := app.NewModel(mgr)
	state := model.GetState()

	// Order follows app.TabID.
	model.SetTabs([]app.Tab{
		dashboard.New(state),
		stations.New(state, models.ReportDischarge),
		stations.New(state, models.ReportAWS),
		stations.New(state, models.ReportRainGauge),
		reports.New(state, mgr.Reports(), model.Exports()),
		info.New(state, cfg),
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	go func() {
		if _, ok := <-sigChan; ok {
			p.Send(tea.Quit())
		}
	}()

	_, err = p.Run()
	model.Shutdown()
	if err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

// healthCheck reports the summary feed as unhealthy while it is failing.
func healthCheck(mgr *services.Manager) metrics.HealthFunc {
	return func() error {
		snap, ok := mgr.LastSnapshot()
		if !ok {
			return fmt.Errorf("no snapshot yet")
		}
		return snap.SummaryErr
	}
}
