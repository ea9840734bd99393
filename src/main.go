// Ant colony results analysis, headless entrypoint.
//
// Reads the SQLite results database written by the test server, flattens every run against its
// NumClients parameter values, averages BestValue / MethodRunTime / StartTimeClient per client count and
// prints the table. With --out-dir both charts are also written as PNG files.
//
// Design notes:
//   - The database is opened read-only; a missing file is an error, never an implicit create.
//   - Configuration: defaults, then --config YAML, then any flag given explicitly on the command line.
//   - Dependency direction: main -> analysis (pipeline) -> store (sqlite); main -> charts, report for output.
//   - cmd/antviewer is the interactive counterpart that shows both charts in a window.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/MyfirstAcc/AntDist/src/analysis"
	"github.com/MyfirstAcc/AntDist/src/charts"
	"github.com/MyfirstAcc/AntDist/src/config"
	"github.com/MyfirstAcc/AntDist/src/logging"
	"github.com/MyfirstAcc/AntDist/src/report"
)

// parseConfig builds the effective configuration from args (without the program name).
func parseConfig(args []string) (config.Config, error) {
	fs := flag.NewFlagSet("antresults", flag.ContinueOnError)
	configPath := fs.String("config", "", "Optional YAML config file (flags given explicitly override it)")
	dbPath := fs.String("db", config.DefaultDBPath, "Path to the SQLite results database")
	param := fs.String("param", config.DefaultParameterName, "Parameter name expanded into client counts")
	title := fs.String("title", config.DefaultTitle, "Title of the run time / best value chart")
	outDir := fs.String("out-dir", "", "If set, write both charts as PNG files into this directory")
	width := fs.Int("width", config.DefaultWidth, "Chart width in pixels")
	height := fs.Int("height", config.DefaultHeight, "Chart height in pixels")
	reportFmt := fs.String("report", "md", "Report printed to stdout (md|json|none)")
	logLevel := fs.String("log-level", "info", "Log level (debug|info|warn|error)")
	if err := fs.Parse(args); err != nil {
		return config.Config{}, err
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "db":
			cfg.DBPath = *dbPath
		case "param":
			cfg.ParameterName = *param
		case "title":
			cfg.Title = *title
		case "out-dir":
			cfg.OutDir = *outDir
		case "width":
			cfg.Width = *width
		case "height":
			cfg.Height = *height
		case "report":
			cfg.Report = *reportFmt
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// run executes the whole pipeline once and writes the report to stdout.
func run(ctx context.Context, cfg config.Config, stdout io.Writer) error {
	logging.SetLogLevel(cfg.LogLevel)
	res, err := analysis.AnalyzeDatabase(ctx, cfg.DBPath, analysis.Options{ParameterName: cfg.ParameterName})
	if err != nil {
		return err
	}
	if len(res.Groups) == 0 {
		logging.Warnf("no runs with parameter %s in %s; charts will be empty", cfg.ParameterName, cfg.DBPath)
	}

	switch cfg.Report {
	case "md":
		if err := report.Generate(stdout, res.Groups); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	case "json":
		if err := report.WriteJSON(stdout, res.Groups); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}

	if cfg.OutDir != "" {
		paths, err := charts.WriteAll(cfg.OutDir, res.Groups, charts.Options{Title: cfg.Title, Width: cfg.Width, Height: cfg.Height})
		if err != nil {
			return err
		}
		for _, p := range paths {
			logging.Infof("wrote %s", p)
		}
	}
	return nil
}

func main() {
	cfg, err := parseConfig(os.Args[1:])
	if err != nil {
		if err == flag.ErrHelp {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}
	defer logging.Sync()
	if err := run(context.Background(), cfg, os.Stdout); err != nil {
		logging.Errorf("%v", err)
		logging.Sync()
		os.Exit(1)
	}
}
