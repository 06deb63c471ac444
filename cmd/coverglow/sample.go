package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"karolbroda.com/coverglow/internal/artwork"
	"karolbroda.com/coverglow/internal/colors"
)

var sampleJSON bool

var sampleCmd = &cobra.Command{
	Use:   "sample <cover>...",
	Short: "print the background color for cover art",
	Long: `load each cover (path, file:// or http(s) url), run one sampling pass and print
the resulting color. failures are reported per cover and do not stop the rest.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		opts := artwork.Options{
			Mode:    cfg.SamplingMode(),
			Stride:  cfg.Sampling.Stride,
			Timeout: cfg.Sampling.FetchTimeout.Duration,
		}

		type sampleResult struct {
			Cover string `json:"cover"`
			Hex   string `json:"hex,omitempty"`
			CSS   string `json:"css,omitempty"`
			Error string `json:"error,omitempty"`
		}

		results := make([]sampleResult, 0, len(args))
		failed := 0
		for _, ref := range args {
			res, err := artwork.Load(context.Background(), ref, opts)
			if err != nil {
				failed++
				results = append(results, sampleResult{Cover: ref, Error: err.Error()})
				continue
			}
			results = append(results, sampleResult{Cover: ref, Hex: colors.Hex(res.Color), CSS: colors.CSS(res.Color)})
		}

		if sampleJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(results); err != nil {
				return fmt.Errorf("failed to encode results: %w", err)
			}
		} else {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "COVER\tHEX\tCSS")
			for _, r := range results {
				if r.Error != "" {
					fmt.Fprintf(w, "%s\t-\t%s\n", r.Cover, r.Error)
					continue
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", r.Cover, r.Hex, r.CSS)
			}
			w.Flush()
		}

		if failed == len(args) {
			return fmt.Errorf("no cover could be sampled")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sampleCmd)
	sampleCmd.Flags().BoolVar(&sampleJSON, "json", false, "print results as json")
}
