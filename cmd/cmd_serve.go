// Copyright 2026 The FotoGeo Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jcodagnone/fotogeo/geoloc"
)

var serveOptions struct {
	Addr        string
	DbPath      string
	RegionsFile string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the resolve HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := os.MkdirAll(filepath.Dir(serveOptions.DbPath), 0o750); err != nil {
			return fmt.Errorf("creating db directory: %w", err)
		}

		repo, db, err := openRepository(serveOptions.DbPath)
		if err != nil {
			return err
		}
		defer db.Close()

		regions, err := buildRegions(serveOptions.RegionsFile)
		if err != nil {
			return err
		}

		service := buildService(ctx, regions, repo)
		server := geoloc.NewServer(service, repo)

		fmt.Printf("fotogeo %s listening on %s\n", Version, serveOptions.Addr)

		return server.Run(serveOptions.Addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveOptions.Addr, "addr", ":8080", "listen address")
	serveCmd.Flags().StringVar(&serveOptions.DbPath, "db", "data/fotogeo.duckdb", "DuckDB file for persistence and the reverse-image index")
	serveCmd.Flags().StringVar(&serveOptions.RegionsFile, "regions", "", "JSON region table (defaults to the built-in table)")

	rootCmd.AddCommand(serveCmd)
}
