package main

import (
	"fmt"

	"github.com/godbus/dbus/v5"
	"github.com/spf13/cobra"

	"karolbroda.com/coverglow/internal/source"
)

var playersCmd = &cobra.Command{
	Use:   "players",
	Short: "mpris player utilities",
	Long:  `discover mpris-compatible music players that can feed tracks to the widget.`,
}

var playersListCmd = &cobra.Command{
	Use:   "list",
	Short: "list available mpris players",
	RunE: func(cmd *cobra.Command, args []string) error {
		bus, err := dbus.ConnectSessionBus()
		if err != nil {
			return fmt.Errorf("failed to connect to session bus: %w", err)
		}
		defer bus.Close()

		players, err := source.ListPlayers(bus)
		if err != nil {
			return err
		}

		if len(players) == 0 {
			fmt.Println("no mpris players found")
			fmt.Println("\ncheck if your music player is running and supports mpris")
			return nil
		}

		fmt.Printf("found %d mpris player(s):\n\n", len(players))
		for _, p := range players {
			if p.Identity != "" {
				fmt.Printf("  %s (%s)\n", p.Service, p.Identity)
			} else {
				fmt.Printf("  %s\n", p.Service)
			}
		}

		fmt.Println("\nuse --mpris-service to pick one")

		return nil
	},
}

var playersCurrentCmd = &cobra.Command{
	Use:   "current",
	Short: "show the track an mpris player is on",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		bus, err := dbus.ConnectSessionBus()
		if err != nil {
			return fmt.Errorf("failed to connect to session bus: %w", err)
		}
		defer bus.Close()

		src, err := source.NewMPRIS(bus, cfg.MprisService, 0, nil)
		if err != nil {
			return fmt.Errorf("failed to connect to player: %w", err)
		}

		trk, err := src.CurrentTrack()
		if err != nil {
			fmt.Println("no track currently playing")
			return nil
		}

		fmt.Printf("title:  %s\n", trk.Title)
		fmt.Printf("artist: %s\n", trk.Artist)
		if trk.Album != "" {
			fmt.Printf("album:  %s\n", trk.Album)
		}
		if trk.DurationSecs > 0 {
			fmt.Printf("length: %d:%02d\n", trk.DurationSecs/60, trk.DurationSecs%60)
		}
		if trk.CoverRef != "" {
			fmt.Printf("cover:  %s\n", trk.CoverRef)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(playersCmd)
	playersCmd.AddCommand(playersListCmd)
	playersCmd.AddCommand(playersCurrentCmd)
}
