// Package report formats grouped client-count aggregates as a markdown table or JSON.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/MyfirstAcc/AntDist/src/types"
)

// Generate writes a markdown table with one line per client count.
// The report is assembled in memory and written once; a failed write is returned.
func Generate(w io.Writer, groups []types.GroupedAggregate) error {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "## Results by number of clients")
	fmt.Fprintln(&buf)
	if len(groups) == 0 {
		fmt.Fprintln(&buf, "No runs with client-count parameters found.")
	} else {
		fmt.Fprintln(&buf, "| Clients | Rows | Best Value | Method Run Time (s) | Start Client (s) |")
		fmt.Fprintln(&buf, "|---------|------|------------|---------------------|------------------|")
		for _, g := range groups {
			fmt.Fprintf(&buf, "| %d | %d | %s | %s | %s |\n",
				g.ClientCount,
				g.Rows,
				formatValue(g.BestValue),
				formatValue(g.MethodRunTime),
				formatValue(g.StartTimeClient),
			)
		}
		if best := bestGroup(groups); best != nil {
			fmt.Fprintln(&buf)
			fmt.Fprintf(&buf, "Fastest method run time: **%s s** at %d clients\n", formatValue(best.MethodRunTime), best.ClientCount)
		}
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// jsonGroup mirrors GroupedAggregate with missing means encoded as null.
type jsonGroup struct {
	ClientCount     int      `json:"num_clients"`
	Rows            int      `json:"rows"`
	BestValue       *float64 `json:"best_value"`
	MethodRunTime   *float64 `json:"method_run_time_s"`
	StartTimeClient *float64 `json:"start_time_client_s"`
}

// WriteJSON writes the groups as an indented JSON array.
func WriteJSON(w io.Writer, groups []types.GroupedAggregate) error {
	out := make([]jsonGroup, 0, len(groups))
	for _, g := range groups {
		out = append(out, jsonGroup{
			ClientCount:     g.ClientCount,
			Rows:            g.Rows,
			BestValue:       present(g.BestValue),
			MethodRunTime:   present(g.MethodRunTime),
			StartTimeClient: present(g.StartTimeClient),
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func present(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

func formatValue(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	av := math.Abs(v)
	switch {
	case av >= 1000:
		return fmt.Sprintf("%.0f", v)
	case av >= 10:
		return fmt.Sprintf("%.2f", v)
	default:
		return fmt.Sprintf("%.3f", v)
	}
}

// bestGroup returns the group with the lowest mean method run time, nil if none is present.
func bestGroup(groups []types.GroupedAggregate) *types.GroupedAggregate {
	var best *types.GroupedAggregate
	for i := range groups {
		g := &groups[i]
		if math.IsNaN(g.MethodRunTime) {
			continue
		}
		if best == nil || g.MethodRunTime < best.MethodRunTime {
			best = g
		}
	}
	return best
}
