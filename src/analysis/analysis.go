package analysis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/MyfirstAcc/AntDist/src/logging"
	"github.com/MyfirstAcc/AntDist/src/store"
	"github.com/MyfirstAcc/AntDist/src/types"
)

// DefaultParameterName is the TestParameters name holding the client count of a run.
const DefaultParameterName = "NumClients"

// ParseError reports a client-count list containing a token that is not an integer.
type ParseError struct {
	Input string
	Token string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse client counts %q: token %q is not an integer", e.Input, e.Token)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseClientCounts splits a ", " joined list into integers, preserving order.
// An empty string yields an empty (non-nil) list.
func ParseClientCounts(s string) ([]int, error) {
	if s == "" {
		return []int{}, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		tok := strings.TrimSpace(p)
		n, err := strconv.Atoi(tok)
		if err != nil {
			return nil, &ParseError{Input: s, Token: tok, Err: err}
		}
		out = append(out, n)
	}
	return out, nil
}

// ParseRows parses the client-count column of every row. The first malformed row aborts.
func ParseRows(rows []types.RunRow) ([]types.RunSample, error) {
	out := make([]types.RunSample, 0, len(rows))
	for _, r := range rows {
		counts, err := ParseClientCounts(r.NumClients)
		if err != nil {
			return nil, fmt.Errorf("run %d: %w", r.RunID, err)
		}
		out = append(out, types.RunSample{
			RunID:           r.RunID,
			ClientCounts:    counts,
			BestValue:       r.BestValue,
			MethodRunTime:   r.MethodRunTime,
			StartTimeClient: r.StartTimeClient,
		})
	}
	return out, nil
}

// Expand emits one row per (sample, client count) pair, duplicating the sample's metrics.
// Samples with no client counts contribute nothing.
func Expand(samples []types.RunSample) []types.ExpandedRow {
	n := 0
	for _, s := range samples {
		n += len(s.ClientCounts)
	}
	out := make([]types.ExpandedRow, 0, n)
	for _, s := range samples {
		for _, c := range s.ClientCounts {
			out = append(out, types.ExpandedRow{
				RunID:           s.RunID,
				ClientCount:     c,
				BestValue:       s.BestValue,
				MethodRunTime:   s.MethodRunTime,
				StartTimeClient: s.StartTimeClient,
			})
		}
	}
	return out
}

// meanAcc is a running mean over present values only.
type meanAcc struct {
	sum float64
	n   int
}

func (m *meanAcc) add(v float64) {
	if types.IsMissing(v) {
		return
	}
	m.sum += v
	m.n++
}

func (m meanAcc) mean() float64 {
	if m.n == 0 {
		return types.Missing()
	}
	return m.sum / float64(m.n)
}

type groupAcc struct {
	rows                  int
	best, method, startup meanAcc
}

// Aggregate groups expanded rows by client count and averages each metric over the values
// present in the group. Groups are returned in ascending client-count order.
func Aggregate(rows []types.ExpandedRow) []types.GroupedAggregate {
	groups := map[int]*groupAcc{}
	for _, r := range rows {
		g, ok := groups[r.ClientCount]
		if !ok {
			g = &groupAcc{}
			groups[r.ClientCount] = g
		}
		g.rows++
		g.best.add(r.BestValue)
		g.method.add(r.MethodRunTime)
		g.startup.add(r.StartTimeClient)
	}
	keys := make([]int, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	out := make([]types.GroupedAggregate, 0, len(keys))
	for _, k := range keys {
		g := groups[k]
		out = append(out, types.GroupedAggregate{
			ClientCount:     k,
			Rows:            g.rows,
			BestValue:       g.best.mean(),
			MethodRunTime:   g.method.mean(),
			StartTimeClient: g.startup.mean(),
		})
	}
	return out
}

// Options control AnalyzeDatabase.
type Options struct {
	// ParameterName selects the parameter expanded into client counts (default NumClients).
	ParameterName string
}

// Result keeps every intermediate table so callers can report on any stage.
type Result struct {
	Path     string
	Rows     []types.RunRow
	Samples  []types.RunSample
	Expanded []types.ExpandedRow
	Groups   []types.GroupedAggregate
}

// AnalyzeDatabase runs extraction, parsing, expansion and aggregation against the database at path.
// Errors are *store.DataAccessError or wrap *ParseError; nothing is retried.
func AnalyzeDatabase(ctx context.Context, path string, opts Options) (*Result, error) {
	param := opts.ParameterName
	if param == "" {
		param = DefaultParameterName
	}
	defer logging.TimeTrack(time.Now(), "analysis")

	rows, err := store.LoadRunRows(ctx, path, param)
	if err != nil {
		return nil, err
	}
	samples, err := ParseRows(rows)
	if err != nil {
		return nil, err
	}
	expanded := Expand(samples)
	groups := Aggregate(expanded)
	logging.Infof("analyzed %s: runs=%d expanded=%d groups=%d", path, len(rows), len(expanded), len(groups))
	return &Result{Path: path, Rows: rows, Samples: samples, Expanded: expanded, Groups: groups}, nil
}

// IsParseError reports whether err carries a *ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
