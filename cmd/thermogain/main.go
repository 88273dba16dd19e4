package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/thermogain/thermogain/internal/app"
	"github.com/thermogain/thermogain/internal/breakeven"
	"github.com/thermogain/thermogain/internal/config"
	"github.com/thermogain/thermogain/internal/logging"
	"github.com/thermogain/thermogain/internal/projection"
	"github.com/thermogain/thermogain/pkg/constants"
	"github.com/thermogain/thermogain/pkg/optimization"
	"github.com/thermogain/thermogain/pkg/output"
	"github.com/thermogain/thermogain/pkg/report"
	"github.com/thermogain/thermogain/pkg/validation"
	"go.uber.org/zap"
)

type runOptions struct {
	outputFormat string
	outputFile   string
	now          time.Time
}

func main() {
	// Process command line flags first to get config location
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv, xlsx, pdf")
	outputFile := flag.String("output-file", "", "output file for pretty/csv, output directory for xlsx/pdf")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	// Load the config file to get logging configuration
	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	// Initialize logging based on config and CLI override
	logger, err := logging.New(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	target := conf.Output.File
	if *outputFile != "" {
		target = *outputFile
	}

	err = run(context.Background(), logger, conf, runOptions{
		outputFormat: outputFormat,
		outputFile:   target,
		now:          time.Now(),
	}, os.Stdout)
	if err != nil {
		logger.Fatal("thermogain run failed",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}

// run computes every active project of the configuration and writes the
// results in the requested format.
func run(ctx context.Context, logger *zap.Logger, conf *config.Configuration, opts runOptions, stdout io.Writer) error {
	if err := validation.ValidateOutputFormat(opts.outputFormat); err != nil {
		return err
	}

	// Validate configuration and display any warnings
	warnings, err := conf.ValidateConfiguration()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	for _, warning := range warnings {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main.run"),
		)
	}

	now, err := conf.FixedTime(opts.now)
	if err != nil {
		return err
	}

	application, err := app.New(ctx, logger, conf)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer application.Close()

	runner, err := breakeven.NewRunner(logger, application.Engine, now)
	if err != nil {
		return err
	}

	var (
		results   []*projection.Results
		summaries []optimization.Summary
		failed    int
	)
	for _, p := range conf.ActiveProjects() {
		res, err := application.Engine.CalculateWithFixedTime(p.Snapshot, now)
		if err != nil {
			failed++
			logger.Error("failed to compute project",
				zap.String("op", "main.run"),
				zap.String("projectId", p.ProjectID),
				zap.Error(err),
			)
			continue
		}
		if _, err := application.Results.SaveResults(ctx, res); err != nil {
			logger.Warn("failed to persist results",
				zap.String("op", "main.run"),
				zap.String("projectId", p.ProjectID),
				zap.Error(err),
			)
		}
		results = append(results, res)

		projectSummaries, err := runner.RunProject(p)
		if err != nil {
			logger.Error("break-even search failed",
				zap.String("op", "main.run"),
				zap.String("projectId", p.ProjectID),
				zap.Error(err),
			)
			continue
		}
		summaries = append(summaries, projectSummaries...)
	}

	if err := writeOutput(opts, results, summaries, stdout); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d project(s) could not be computed", failed)
	}
	return nil
}

func writeOutput(opts runOptions, results []*projection.Results, summaries []optimization.Summary, stdout io.Writer) error {
	if validation.IsBinaryFormat(opts.outputFormat) {
		dir := opts.outputFile
		if dir == "" {
			dir = "."
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
		for _, res := range results {
			var (
				data []byte
				err  error
			)
			if opts.outputFormat == constants.OutputFormatXLSX {
				data, err = report.BuildResultsXLSX(res)
			} else {
				data, err = report.BuildResultsPDF(res)
			}
			if err != nil {
				return err
			}
			path := filepath.Join(dir, res.ProjectID+"."+opts.outputFormat)
			if err := os.WriteFile(path, data, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
		}
		return nil
	}

	var buf bytes.Buffer
	switch opts.outputFormat {
	case constants.OutputFormatPretty:
		output.PrettyFormat(&buf, results)
		if len(summaries) > 0 {
			fmt.Fprintf(&buf, "\n")
			output.BreakevenFormat(&buf, summaries)
		}
	case constants.OutputFormatCSV:
		if err := output.CsvFormat(&buf, results); err != nil {
			return err
		}
	}

	if opts.outputFile == "" {
		_, err := stdout.Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(opts.outputFile, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", opts.outputFile, err)
	}
	return nil
}
