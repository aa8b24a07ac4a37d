// Copyright 2026 The FotoGeo Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type logWriter struct {
	writer io.Writer
}

func (w *logWriter) Write(bytes []byte) (int, error) {
	return fmt.Fprintf(w.writer, "%s %s", time.Now().Format("2006-01-02 15:04:05"), string(bytes))
}

func init() {
	log.SetFlags(0)
	log.SetOutput(&logWriter{writer: os.Stderr})

	// Optional .env for API keys and defaults; absence is fine.
	_ = godotenv.Load()
}

var rootCmd = &cobra.Command{
	Use:   "fotogeo",
	Short: "infer where a photo was taken",
	Long: `
fotogeo combines EXIF GPS data, geocoding services, OCR, object detection
and image similarity into a single best-guess coordinate for a photo,
with a confidence score - or an explicit "no location determined".
`,
}

var Version = "dev"

func Execute(version string) {
	Version = version

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
