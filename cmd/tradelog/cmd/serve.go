package cmd

import (
	"os"

	"tradelog-analyzer/cmd/tradelog/config"
	"tradelog-analyzer/internal/server"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the serve command
var (
	serveAddr      string
	maxUploadBytes int64
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analyzer over HTTP",
	Long: `Serve starts an HTTP server exposing the analysis pipeline.

Endpoints:
  POST /api/analyze  multipart upload ('workbook' xlsx field, or 'files'
                     delimited export fields), returns the JSON report
  GET  /healthz      liveness check

The window, bucketing and delimited ingestion flags apply to every request.

Examples:
  tradelog serve --addr :8080
  tradelog serve --addr 127.0.0.1:9000 --start-hour 9 --end-hour 17`,

	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
	serveCmd.Flags().Int64Var(&maxUploadBytes, "max-upload-bytes", 20<<20, "multipart upload size limit")

	// The analysis knobs are shared with analyze
	serveCmd.Flags().IntVar(&startHour, "start-hour", 8, "trading window start hour (inclusive)")
	serveCmd.Flags().IntVar(&endHour, "end-hour", 18, "trading window end hour (exclusive)")
	serveCmd.Flags().IntVar(&bucketMinutes, "bucket-minutes", 1, "bucket granularity in minutes for the interval search")
	serveCmd.Flags().StringVar(&delimiter, "delimiter", ";", "field delimiter of delimited uploads")
	serveCmd.Flags().IntVar(&skipRows, "skip-rows", 5, "banner lines to skip before the header row")
	serveCmd.Flags().StringVar(&encoding, "encoding", "latin-1", "upload encoding: latin-1, utf-8")

	viper.BindPFlag("addr", serveCmd.Flags().Lookup("addr"))
}

func runServe(cmd *cobra.Command, args []string) error {
	handler := NewCLIErrorHandler()

	cfg, err := config.CreateServerConfig(serveAddr, maxUploadBytes, analyzeOptions())
	if err != nil {
		os.Exit(handler.HandleError(err))
	}

	if err := server.NewServer(cfg).ListenAndServe(); err != nil {
		os.Exit(handler.HandleError(err))
	}
	return nil
}
