package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"karolbroda.com/coverglow/internal/config"
)

var (
	// global flags
	configPath   string
	sourceName   string
	mprisService string
	samplingMode string
	stride       int
	logFile      string
	logLevel     string
	noArt        bool

	// static track flags
	trackTitle  string
	trackArtist string
	trackAlbum  string
	trackCover  string
	trackLength int64
)

var rootCmd = &cobra.Command{
	Use:   "coverglow",
	Short: "terminal music player widget tinted by its cover art",
	Long: `coverglow shows the current track with playback controls, a progress bar and a
background gradient that starts from the average color of the cover art.

tracks come from the command line (--title, --artist, --cover) or from an mpris
player on the session bus (--source mpris). there is no audio playback.

when run without a subcommand, it starts the widget.`,
	Version: "1.0.0",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWidget(cmd, args)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "config file (default $XDG_CONFIG_HOME/coverglow/config.toml)")
	flags.StringVar(&sourceName, "source", "", "track source: static or mpris")
	flags.StringVarP(&mprisService, "mpris-service", "m", "", "mpris service name (e.g., org.mpris.MediaPlayer2.spotify)")
	flags.StringVar(&samplingMode, "mode", "", "color sampling mode: average or prominent")
	flags.IntVar(&stride, "stride", 0, "sample every n-th pixel in average mode")
	flags.StringVar(&logFile, "log-file", "", "write logs to this file")
	flags.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.BoolVar(&noArt, "no-art", false, "do not draw the cover art")
}

// loadConfig applies flags that were set on top of file and environment config.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("source") {
		cfg.Source = sourceName
	}
	if flags.Changed("mpris-service") {
		cfg.MprisService = mprisService
		if !flags.Changed("source") {
			cfg.Source = config.SourceMPRIS
		}
	}
	if flags.Changed("mode") {
		cfg.Sampling.Mode = samplingMode
	}
	if flags.Changed("stride") {
		cfg.Sampling.Stride = stride
	}
	if flags.Changed("log-file") {
		cfg.Log.File = logFile
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("no-art") {
		cfg.Display.ShowArt = !noArt
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
