package main

import (
	"context"
	"fmt"

	"github.com/MyfirstAcc/AntDist/cmd/antviewer/uihelpers"
	"github.com/MyfirstAcc/AntDist/src/analysis"
	"github.com/MyfirstAcc/AntDist/src/charts"
	"github.com/MyfirstAcc/AntDist/src/config"
	"github.com/MyfirstAcc/AntDist/src/logging"
)

// RunScreenshotsMode renders both charts and writes them as PNGs under outDir.
// It runs headlessly without creating a UI window.
func RunScreenshotsMode(dbPath, outDir, parameter, title string, width int) error {
	if dbPath == "" {
		dbPath = config.DefaultDBPath
	}
	if outDir == "" {
		return fmt.Errorf("screenshots: empty output directory")
	}
	res, err := analysis.AnalyzeDatabase(context.Background(), dbPath, analysis.Options{ParameterName: parameter})
	if err != nil {
		return err
	}
	w, h := uihelpers.ComputeChartDimensions(width)
	paths, err := charts.WriteAll(outDir, res.Groups, charts.Options{Title: title, Width: w, Height: h})
	if err != nil {
		return err
	}
	for _, p := range paths {
		logging.Infof("wrote %s", p)
	}
	return nil
}
