package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"tradelog-analyzer/cmd/tradelog/config"
	"tradelog-analyzer/internal/ingest"
	"tradelog-analyzer/internal/models"
	"tradelog-analyzer/internal/pipeline"
	"tradelog-analyzer/internal/reporter"
	"tradelog-analyzer/pkg/errors"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the analyze command
var (
	workbookFile string
	exportFiles  []string
	outputFormat string
	outputFile   string
	csvDelimiter string

	startHour     int
	endHour       int
	bucketMinutes int

	delimiter string
	skipRows  int
	encoding  string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze trading operation exports",
	Long: `Analyze ingests trading operation exports, consolidates all sources into
one chronology, restricts it to the trading window and reports totals per
robot, per-minute extremes and the most profitable contiguous interval.

Input is either a single xlsx workbook (one sheet per robot) or one or more
delimited exports (one file per robot).

Examples:
  # Analyze a broker workbook
  tradelog analyze --workbook operations.xlsx

  # Analyze delimited robot exports with a custom window
  tradelog analyze --files robot_a.csv,robot_b.csv --start-hour 9 --end-hour 17

  # JSON report to a file
  tradelog analyze --workbook operations.xlsx --format json --output report.json

  # 5-minute buckets for the interval search
  tradelog analyze --workbook operations.xlsx --bucket-minutes 5`,

	PreRunE: validateAnalyzeFlags,
	RunE:    runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	// Input flags
	analyzeCmd.Flags().StringVarP(&workbookFile, "workbook", "w", "", "path to an xlsx workbook (one sheet per robot)")
	analyzeCmd.Flags().StringSliceVar(&exportFiles, "files", []string{}, "comma-separated delimited export paths (one file per robot)")

	// Output flags
	analyzeCmd.Flags().StringVarP(&outputFormat, "format", "f", "console", "output format: console, json, csv")
	analyzeCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file path (default: stdout)")
	analyzeCmd.Flags().StringVar(&csvDelimiter, "csv-delimiter", ",", "delimiter for csv output")

	// Window and bucketing flags
	analyzeCmd.Flags().IntVar(&startHour, "start-hour", 8, "trading window start hour (inclusive)")
	analyzeCmd.Flags().IntVar(&endHour, "end-hour", 18, "trading window end hour (exclusive)")
	analyzeCmd.Flags().IntVar(&bucketMinutes, "bucket-minutes", 1, "bucket granularity in minutes for the interval search")

	// Delimited ingestion flags
	analyzeCmd.Flags().StringVar(&delimiter, "delimiter", ";", "field delimiter of the delimited exports")
	analyzeCmd.Flags().IntVar(&skipRows, "skip-rows", 5, "banner lines to skip before the header row")
	analyzeCmd.Flags().StringVar(&encoding, "encoding", ingest.EncodingLatin1, "export encoding: latin-1, utf-8")

	// Bind flags to viper
	viper.BindPFlag("workbook", analyzeCmd.Flags().Lookup("workbook"))
	viper.BindPFlag("files", analyzeCmd.Flags().Lookup("files"))
	viper.BindPFlag("format", analyzeCmd.Flags().Lookup("format"))
	viper.BindPFlag("output", analyzeCmd.Flags().Lookup("output"))
	viper.BindPFlag("start-hour", analyzeCmd.Flags().Lookup("start-hour"))
	viper.BindPFlag("end-hour", analyzeCmd.Flags().Lookup("end-hour"))
	viper.BindPFlag("bucket-minutes", analyzeCmd.Flags().Lookup("bucket-minutes"))
}

func validateAnalyzeFlags(cmd *cobra.Command, args []string) error {
	if workbookFile == "" && len(exportFiles) == 0 {
		return errors.ConfigError(errors.CodeMissingConfig, "input", nil).
			WithSuggestion("provide --workbook or --files")
	}
	if workbookFile != "" && len(exportFiles) > 0 {
		return errors.ConfigError(errors.CodeInvalidConfig, "input", nil).
			WithSuggestion("--workbook and --files are mutually exclusive")
	}
	if workbookFile != "" && !strings.EqualFold(filepath.Ext(workbookFile), ".xlsx") {
		return errors.ConfigError(errors.CodeInvalidConfig, "workbook", nil).
			WithContext("path", workbookFile).
			WithSuggestion("--workbook expects an .xlsx file; use --files for delimited exports")
	}
	if !reporter.OutputFormat(outputFormat).IsValid() {
		return errors.ConfigError(errors.CodeInvalidConfig, "format", nil).
			WithContext("format", outputFormat).
			WithSuggestion("valid formats: console, json, csv")
	}
	return nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	handler := NewCLIErrorHandler()

	if err := executeAnalyze(); err != nil {
		os.Exit(handler.HandleError(err))
	}
	return nil
}

func executeAnalyze() error {
	opts := analyzeOptions()

	pipelineCfg, err := config.CreatePipelineConfig(opts)
	if err != nil {
		return err
	}
	reportCfg, err := config.CreateReportConfig(opts)
	if err != nil {
		return err
	}
	rep, err := reporter.NewReporter(reportCfg)
	if err != nil {
		return err
	}

	frames, notes, err := loadFrames(opts)
	if err != nil {
		return err
	}

	result, err := pipeline.Run(frames, pipelineCfg)
	if err != nil {
		return err
	}
	result.Dataset.Notes = append(result.Dataset.Notes, notes...)

	out := os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return errors.FileError(errors.CodeFilePermission, outputFile, err).
				WithSuggestion("check that the output directory exists and is writable")
		}
		defer f.Close()
		out = f
	}

	if err := rep.Write(out, result); err != nil {
		return errors.InternalError("report rendering", err)
	}
	if outputFile != "" {
		fmt.Fprintf(os.Stderr, "Report written to %s\n", outputFile)
	}
	return nil
}

func loadFrames(opts config.AnalyzeOptions) ([]models.RawFrame, []string, error) {
	if workbookFile != "" {
		frames, err := ingest.ReadWorkbook(workbookFile)
		return frames, nil, err
	}

	delimited, err := config.CreateDelimitedOptions(opts)
	if err != nil {
		return nil, nil, err
	}
	frames, notes := ingest.ReadDelimitedFiles(exportFiles, delimited)
	return frames, notes, nil
}

func analyzeOptions() config.AnalyzeOptions {
	return config.AnalyzeOptions{
		StartHour:     startHour,
		EndHour:       endHour,
		BucketMinutes: bucketMinutes,
		Delimiter:     delimiter,
		SkipRows:      skipRows,
		Encoding:      encoding,
		Format:        outputFormat,
		CSVDelimiter:  csvDelimiter,
	}
}
