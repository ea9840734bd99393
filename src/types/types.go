// Package types holds the data model shared by the store, analysis, report and chart packages.
//
// Metric fields use NaN for a value that was NULL or non-numeric in the results database;
// aggregation skips such values.
package types

import "math"

// RunRow is one row of the extraction query: a test run joined with its results.
type RunRow struct {
	RunID int64 `json:"run_id"`
	// NumClients is the ", " joined list of client-count parameter values ("" when none).
	NumClients      string  `json:"num_clients"`
	BestValue       float64 `json:"best_value"`
	MethodRunTime   float64 `json:"method_run_time_s"`
	StartTimeClient float64 `json:"start_time_client_s"`
}

// RunSample is a RunRow with its client-count list parsed.
type RunSample struct {
	RunID           int64
	ClientCounts    []int
	BestValue       float64
	MethodRunTime   float64
	StartTimeClient float64
}

// ExpandedRow is a RunSample flattened against a single client count.
type ExpandedRow struct {
	RunID           int64
	ClientCount     int
	BestValue       float64
	MethodRunTime   float64
	StartTimeClient float64
}

// GroupedAggregate holds per client-count means over the expanded rows.
type GroupedAggregate struct {
	ClientCount     int
	Rows            int
	BestValue       float64
	MethodRunTime   float64
	StartTimeClient float64
}

// Missing is the marker used for absent metric values.
func Missing() float64 { return math.NaN() }

// IsMissing reports whether v marks an absent metric value.
func IsMissing(v float64) bool { return math.IsNaN(v) }
