// Copyright 2026 The FotoGeo Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/jcodagnone/fotogeo/geoloc"
	"github.com/jcodagnone/fotogeo/utils"
)

var resolveOptions struct {
	Hint        string
	DbPath      string
	RegionsFile string
	JSONOutput  bool
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <image>...",
	Short: "Resolve where one or more photos were taken",
	Long: `Runs every applicable signal source over each photo and prints the
aggregated best-guess coordinate with its confidence, or "no location
determined" when nothing survives validation.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		regions, err := buildRegions(resolveOptions.RegionsFile)
		if err != nil {
			return err
		}

		var repo geoloc.LocationRepository

		if resolveOptions.DbPath != "" {
			r, db, err := openRepository(resolveOptions.DbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			repo = r
		}

		service := buildService(ctx, regions, repo)

		images := make([][]byte, len(args))
		hints := make([]string, len(args))

		for i, path := range args {
			data, err := os.ReadFile(path) // #nosec G304 - paths come from the CLI user
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}

			images[i] = data
			hints[i] = resolveOptions.Hint
		}

		var bar *progressbar.ProgressBar
		if len(args) > 1 && isatty.IsTerminal(os.Stderr.Fd()) {
			bar = progressbar.NewOptions(len(args),
				progressbar.OptionSetDescription("Resolving"),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		}

		outcomes := service.ResolveLocationBatch(ctx, images, hints)

		located := 0

		for i, outcome := range outcomes {
			if bar != nil {
				if err := bar.Add(1); err != nil {
					log.Printf("Updating progress bar - %v", err)
				}
			}

			if err := printOutcome(args[i], outcome); err != nil {
				return err
			}

			if outcome.Err == nil && outcome.Result.Location != nil {
				located++
			}
		}

		if len(args) > 1 {
			log.Printf("Resolved %s of %s photos", utils.FormatInt(int64(located)), utils.FormatInt(int64(len(args))))
		}

		return nil
	},
}

func printOutcome(path string, outcome geoloc.BatchOutcome) error {
	if outcome.Err != nil {
		if errors.Is(outcome.Err, geoloc.ErrInvalidImage) {
			fmt.Printf("%s: %v\n", path, outcome.Err)

			return nil
		}

		return outcome.Err
	}

	if resolveOptions.JSONOutput {
		data, err := json.Marshal(outcome.Result)
		if err != nil {
			return fmt.Errorf("marshaling result: %w", err)
		}

		fmt.Printf("%s\t%s\n", path, data)

		return nil
	}

	location := outcome.Result.Location
	if location == nil {
		if s := outcome.Result.Suggestion; s != nil {
			fmt.Printf("%s: no location determined (hint suggests %s, around %.4f, %.4f)\n",
				path, s.Region, s.Point.Lat, s.Point.Lng)
		} else {
			fmt.Printf("%s: no location determined\n", path)
		}

		return nil
	}

	fmt.Printf("%s: %.6f, %.6f (confidence %.2f, primary %s, %d agreeing sources)\n",
		path,
		location.Point.Lat,
		location.Point.Lng,
		location.Confidence,
		location.PrimarySource,
		len(location.ContributingSources),
	)

	return nil
}

func init() {
	resolveCmd.Flags().StringVar(&resolveOptions.Hint, "hint", "", "optional free-text location hint applied to every photo")
	resolveCmd.Flags().StringVar(&resolveOptions.DbPath, "db", "", "DuckDB file for persistence and the reverse-image index")
	resolveCmd.Flags().StringVar(&resolveOptions.RegionsFile, "regions", "", "JSON region table (defaults to the built-in table)")
	resolveCmd.Flags().BoolVar(&resolveOptions.JSONOutput, "json", false, "print one JSON result per line")

	rootCmd.AddCommand(resolveCmd)
}
