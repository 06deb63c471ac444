package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/godbus/dbus/v5"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"karolbroda.com/coverglow/internal/artwork"
	"karolbroda.com/coverglow/internal/config"
	"karolbroda.com/coverglow/internal/logging"
	"karolbroda.com/coverglow/internal/source"
	"karolbroda.com/coverglow/internal/terminal"
	"karolbroda.com/coverglow/internal/track"
	"karolbroda.com/coverglow/internal/ui"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "start the player widget",
	Long:  `starts the terminal player widget for a fixed track or an mpris player.`,
	RunE:  runWidget,
}

func init() {
	rootCmd.AddCommand(runCmd)

	for _, cmd := range []*cobra.Command{rootCmd, runCmd} {
		cmd.Flags().StringVarP(&trackTitle, "title", "t", "", "track title")
		cmd.Flags().StringVarP(&trackArtist, "artist", "a", "", "track artist")
		cmd.Flags().StringVar(&trackAlbum, "album", "", "track album")
		cmd.Flags().StringVar(&trackCover, "cover", "", "cover art path or url")
		cmd.Flags().Int64Var(&trackLength, "length", 0, "track length in seconds")
	}
}

func runWidget(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logPath := cfg.Log.File
	if logPath == "" {
		logPath = config.DefaultLogPath()
	}
	logger, closer, err := logging.Open(logPath, logging.ParseLevel(cfg.Log.Level))
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	go func() {
		<-sigChan
		cancel()
		terminal.Reset()
		os.Exit(0)
	}()

	defer terminal.Reset()

	src, cleanup, err := openSource(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := src.Start(ctx); err != nil {
		return fmt.Errorf("failed to start track source: %w", err)
	}

	opts := artwork.Options{
		Mode:    cfg.SamplingMode(),
		Stride:  cfg.Sampling.Stride,
		Timeout: cfg.Sampling.FetchTimeout.Duration,
	}
	defaultColor := cfg.DefaultColor()

	caps := terminal.DetectCapabilities()
	if caps.TrueColor {
		// the background gradient needs 24-bit color to look smooth
		lipgloss.SetColorProfile(termenv.TrueColor)
	}

	model := ui.NewModel(ui.ModelConfig{
		Source: src,
		Sample: func(ctx context.Context, ref string) (*artwork.Result, error) {
			return artwork.Load(ctx, ref, opts)
		},
		DefaultColor: &defaultColor,
		ShowArt:      cfg.Display.ShowArt,
		TermCaps:     caps,
		Logger:       logger,
	})

	logger.Info("starting widget", "source", cfg.Source, "mode", opts.Mode)

	p := tea.NewProgram(model, tea.WithAltScreen())

	go func() {
		<-ctx.Done()
		src.Stop()
		p.Quit()
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running bubble tea: %w", err)
	}

	return nil
}

func openSource(cfg *config.Config, logger *log.Logger) (source.Source, func(), error) {
	if cfg.Source == config.SourceMPRIS {
		bus, err := dbus.ConnectSessionBus()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to session bus: %w", err)
		}

		src, err := source.NewMPRIS(bus, cfg.MprisService, config.PollInterval, logger)
		if err != nil {
			bus.Close()
			return nil, nil, fmt.Errorf("failed to create mpris source: %w", err)
		}
		return src, func() { bus.Close() }, nil
	}

	trk := &track.Info{
		Title:        trackTitle,
		Artist:       trackArtist,
		Album:        trackAlbum,
		CoverRef:     trackCover,
		DurationSecs: trackLength,
	}
	if !trk.IsValid() {
		return nil, nil, errors.New("a static track needs --title and --artist (or use --source mpris)")
	}

	return source.NewStatic(trk), func() {}, nil
}
