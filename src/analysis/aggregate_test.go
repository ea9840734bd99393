package analysis

import (
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/MyfirstAcc/AntDist/src/types"
)

func TestExpand_RowCountMatchesClientCounts(t *testing.T) {
	samples := []types.RunSample{
		{RunID: 1, ClientCounts: []int{5, 10, 15}, BestValue: 0.9, MethodRunTime: 3, StartTimeClient: 1},
		{RunID: 2, ClientCounts: []int{}, BestValue: 0.1},
		{RunID: 3, ClientCounts: []int{10}, BestValue: 0.5, MethodRunTime: 1, StartTimeClient: 0.5},
	}
	rows := Expand(samples)
	if len(rows) != 4 {
		t.Fatalf("expected 4 expanded rows, got %d", len(rows))
	}
	for i, want := range []int{5, 10, 15} {
		r := rows[i]
		if r.RunID != 1 || r.ClientCount != want || r.BestValue != 0.9 || r.MethodRunTime != 3 || r.StartTimeClient != 1 {
			t.Fatalf("row %d not a copy of run 1: %+v", i, r)
		}
	}
	if rows[3].RunID != 3 || rows[3].ClientCount != 10 {
		t.Fatalf("unexpected last row %+v", rows[3])
	}
}

func TestExpand_Empty(t *testing.T) {
	if rows := Expand(nil); len(rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(rows))
	}
}

func TestAggregate_SpecExample(t *testing.T) {
	rows := []types.ExpandedRow{
		{RunID: 1, ClientCount: 5, BestValue: 0.8, MethodRunTime: 2.0, StartTimeClient: 1.0},
		{RunID: 1, ClientCount: 10, BestValue: 0.8, MethodRunTime: 2.0, StartTimeClient: 1.0},
		{RunID: 2, ClientCount: 10, BestValue: 0.6, MethodRunTime: 1.0, StartTimeClient: 0.5},
	}
	want := []types.GroupedAggregate{
		{ClientCount: 5, Rows: 1, BestValue: 0.8, MethodRunTime: 2.0, StartTimeClient: 1.0},
		{ClientCount: 10, Rows: 2, BestValue: 0.7, MethodRunTime: 1.5, StartTimeClient: 0.75},
	}
	if diff := cmp.Diff(want, Aggregate(rows), cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Fatalf("aggregate mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregate_SingleElementGroupEqualsElement(t *testing.T) {
	in := types.ExpandedRow{ClientCount: 42, BestValue: 123.456, MethodRunTime: 7.25, StartTimeClient: 0.125}
	got := Aggregate([]types.ExpandedRow{in})
	if len(got) != 1 {
		t.Fatalf("expected one group, got %d", len(got))
	}
	g := got[0]
	if g.BestValue != in.BestValue || g.MethodRunTime != in.MethodRunTime || g.StartTimeClient != in.StartTimeClient {
		t.Fatalf("single element mean differs: %+v vs %+v", g, in)
	}
}

func TestAggregate_OrderInvariantAndSorted(t *testing.T) {
	var rows []types.ExpandedRow
	for i := 0; i < 60; i++ {
		rows = append(rows, types.ExpandedRow{
			RunID:           int64(i),
			ClientCount:     []int{20, 5, 10}[i%3],
			BestValue:       float64(i),
			MethodRunTime:   float64(i) / 4,
			StartTimeClient: float64(i%7) / 8,
		})
	}
	base := Aggregate(rows)
	for i := 1; i < len(base); i++ {
		if base[i-1].ClientCount >= base[i].ClientCount {
			t.Fatalf("groups not ascending: %v then %v", base[i-1].ClientCount, base[i].ClientCount)
		}
	}
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 5; trial++ {
		shuffled := append([]types.ExpandedRow(nil), rows...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		if diff := cmp.Diff(base, Aggregate(shuffled), cmpopts.EquateApprox(0, 1e-9)); diff != "" {
			t.Fatalf("aggregate depends on row order:\n%s", diff)
		}
	}
}

func TestAggregate_MissingValuesExcludedFromMean(t *testing.T) {
	nan := math.NaN()
	rows := []types.ExpandedRow{
		{ClientCount: 5, BestValue: 1, MethodRunTime: nan, StartTimeClient: nan},
		{ClientCount: 5, BestValue: nan, MethodRunTime: 4, StartTimeClient: nan},
		{ClientCount: 5, BestValue: 3, MethodRunTime: 2, StartTimeClient: nan},
	}
	got := Aggregate(rows)
	if len(got) != 1 || got[0].Rows != 3 {
		t.Fatalf("unexpected groups %+v", got)
	}
	if got[0].BestValue != 2 || got[0].MethodRunTime != 3 {
		t.Fatalf("means over present values wrong: %+v", got[0])
	}
	if !math.IsNaN(got[0].StartTimeClient) {
		t.Fatalf("all-missing field should stay missing, got %v", got[0].StartTimeClient)
	}
}

func TestAggregate_Empty(t *testing.T) {
	if got := Aggregate(nil); len(got) != 0 {
		t.Fatalf("expected no groups, got %+v", got)
	}
}
