package uihelpers

import (
	"math"
	"path/filepath"
	"strconv"
)

// ComputeChartDimensions applies width/height clamp rules used for charts.
// Input: desired raw width (e.g., canvas width). Returns clamped width & height.
func ComputeChartDimensions(rawW int) (int, int) {
	w := rawW
	if w < 600 {
		w = 600
	}
	if w > 1600 {
		w = 1600
	}
	// 3:2 like the default 600x400 export
	h := w * 2 / 3
	if h < 400 {
		h = 400
	}
	if h > 640 {
		h = 640
	}
	return w, h
}

// ComputeTableColumnWidths returns the 5 column widths for the aggregates table given a window width.
// Order: Clients, Rows, BestValue, MethodRunTime, StartClient
func ComputeTableColumnWidths(winW float32) [5]int {
	const compactBreakpoint = 760
	const ultraCompactBreakpoint = 480
	if winW < ultraCompactBreakpoint {
		return [5]int{70, 0, 100, 110, 0}
	}
	if winW < compactBreakpoint {
		return [5]int{80, 50, 110, 130, 120}
	}
	return [5]int{110, 70, 150, 190, 170}
}

// FormatCellValue renders a mean for the table; missing means show as "-".
func FormatCellValue(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	av := math.Abs(v)
	switch {
	case av >= 1000:
		return strconv.FormatInt(int64(math.Round(v)), 10)
	case av >= 10:
		return strconv.FormatFloat(v, 'f', 2, 64)
	default:
		return strconv.FormatFloat(v, 'f', 4, 64)
	}
}

// TruncatePath shortens p to about n characters, always keeping the base name.
func TruncatePath(p string, n int) string {
	if len(p) <= n {
		return p
	}
	base := filepath.Base(p)
	if len(base)+4 >= n {
		return "..." + base
	}
	dir := filepath.Dir(p)
	left := n - len(base) - 4
	if len(dir) > left {
		dir = dir[:left]
	}
	return dir + string(filepath.Separator) + "..." + base
}

// MergeRecent puts path first and keeps at most max distinct entries from list after it.
func MergeRecent(list []string, path string, max int) []string {
	out := []string{path}
	for _, f := range list {
		if f != path && f != "" && len(out) < max {
			out = append(out, f)
		}
	}
	return out
}
