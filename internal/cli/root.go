// Package cli wires the command line entry point: flag parsing, engine
// construction, and launching the desktop window.
package cli

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/spf13/cobra"

	"github.com/mmctools/timelapse-launcher/internal/config"
	"github.com/mmctools/timelapse-launcher/internal/engine/sim"
	"github.com/mmctools/timelapse-launcher/internal/logging"
	"github.com/mmctools/timelapse-launcher/internal/platform"
	"github.com/mmctools/timelapse-launcher/internal/sequence"
	"github.com/mmctools/timelapse-launcher/internal/ui"
)

// Version is set at build time via ldflags.
var Version = "dev"

var (
	flagSequence string
	flagMMConfig string
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "timelapse-launcher",
	Short: "Desktop launcher for Micro-Manager time-lapse acquisitions",
	Long: `timelapse-launcher opens a small desktop window for configuring and
running time-lapse acquisitions against a Micro-Manager core. Load a
sequence file (or build a simple time-lapse in-app), check the hardware
is ready, and start; progress is tracked frame by frame.`,
	RunE: runLauncher,
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("timelapse-launcher version {{.Version}}\n")

	rootCmd.Flags().StringVarP(&flagSequence, "sequence", "s", "", "sequence file to load on startup (.useq.json or .useq.yaml)")
	rootCmd.Flags().StringVar(&flagMMConfig, "mm-config", "", "Micro-Manager system configuration file to load")
	rootCmd.Flags().StringVar(&flagLogLevel, "log-level", "", "log level (DEBUG, INFO, WARN, ERROR); overrides the saved setting")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func runLauncher(cmd *cobra.Command, args []string) error {
	log := logging.With("component", "cli")

	fyneApp := app.NewWithID("com.mmctools.timelapse-launcher")
	settings := config.NewSettings(fyneApp)

	levelName := flagLogLevel
	if levelName == "" {
		levelName = settings.GetLogLevel()
	}
	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", levelName, err)
	}
	logging.SetLevel(level)

	if dir := settings.GetOutputDirectory(); dir != "" {
		if err := platform.CreateDirectoryIfNotExists(dir); err != nil {
			log.Warn("cannot ensure output directory", "path", dir, "err", err)
		}
	}

	eng := sim.New()
	if flagMMConfig != "" {
		path, err := platform.ExpandUser(flagMMConfig)
		if err != nil {
			return fmt.Errorf("resolve config path: %w", err)
		}
		if err := eng.LoadSystemConfiguration(path); err != nil {
			return fmt.Errorf("load system configuration %s: %w", path, err)
		}
		log.Info("loaded system configuration", "path", path,
			"devices", len(eng.LoadedDevices()), "focus", eng.FocusDevice())
	}

	fyneApp.Settings().SetTheme(ui.NewLauncherTheme())
	window := fyneApp.NewWindow(ui.TitleLauncher)

	launcher := ui.NewLauncherUI(window, fyneApp, eng)

	switch {
	case flagSequence != "":
		path, err := platform.ExpandUser(flagSequence)
		if err != nil {
			return fmt.Errorf("resolve sequence path: %w", err)
		}
		seq, err := sequence.Load(path)
		if err != nil {
			return fmt.Errorf("load sequence %s: %w", path, err)
		}
		launcher.SetSequence(seq, path)
	default:
		if last := settings.GetLastSequenceFile(); last != "" && platform.FileExists(last) {
			if seq, err := sequence.Load(last); err == nil {
				launcher.SetSequence(seq, last)
			} else {
				log.Warn("cannot reload last sequence", "path", last, "err", err)
				fyne.Do(launcher.PromptForSequence)
			}
		} else {
			// Runs once the event loop is up.
			fyne.Do(launcher.PromptForSequence)
		}
	}

	window.ShowAndRun()
	return nil
}
