package charts

import (
	"math"
	"strings"
	"testing"

	"github.com/MyfirstAcc/AntDist/src/types"
)

func TestBuildRangeAndTicksBasicPadding(t *testing.T) {
	min, max := 10.0, 10.0 // degenerate
	rng, ticks := buildRangeAndTicks(min, max, 6, 0.05)
	if rng.Min >= rng.Max {
		t.Fatalf("expected widened range; got %v >= %v", rng.Min, rng.Max)
	}
	if len(ticks) < 2 {
		t.Fatalf("expected >=2 ticks, got %d", len(ticks))
	}
	first, last := ticks[0].Value, ticks[len(ticks)-1].Value
	if !(rng.Min < first && rng.Max > last) {
		t.Fatalf("expected padding beyond tick span: range [%v,%v] ticks [%v,%v]", rng.Min, rng.Max, first, last)
	}
}

func TestBuildRangeAndTicksNoPadding(t *testing.T) {
	min, max := 5.0, 123.0
	rng, ticks := buildRangeAndTicks(min, max, 6, 0)
	if len(ticks) < 2 {
		t.Fatalf("expected ticks")
	}
	first, last := ticks[0].Value, ticks[len(ticks)-1].Value
	if math.Abs(rng.Min-first) > 1e-9 || math.Abs(rng.Max-last) > 1e-9 {
		t.Fatalf("expected no padding: range [%v,%v] vs tick span [%v,%v]", rng.Min, rng.Max, first, last)
	}
	if first > min || last < max {
		t.Fatalf("ticks [%v,%v] do not cover data [%v,%v]", first, last, min, max)
	}
}

func TestBuildRangeAndTicksZeroValues(t *testing.T) {
	rng, ticks := buildRangeAndTicks(0, 0, 6, 0.04)
	if rng.Max-rng.Min <= 0 || len(ticks) < 2 {
		t.Fatalf("all-zero data must still yield a usable range: %+v ticks=%d", rng, len(ticks))
	}
}

func TestNiceAxisBounds(t *testing.T) {
	a, b := niceAxisBounds(3, 97)
	if a > 3 || b < 97 {
		t.Fatalf("bounds [%v,%v] do not contain data", a, b)
	}
	a, b = niceAxisBounds(5, 5)
	if b <= a {
		t.Fatalf("degenerate input must widen: [%v,%v]", a, b)
	}
}

func TestTickLabelsNonEmpty(t *testing.T) {
	for _, tk := range niceTicks(0.61, 0.83, 6) {
		if tk.Label == "" {
			t.Fatalf("empty label for %v", tk.Value)
		}
	}
}

func TestFormatTick(t *testing.T) {
	cases := map[float64]string{0: "0", 250: "250", 12.5: "12.5", 0.75: "0.75", 0.025: "0.025"}
	for in, want := range cases {
		if got := formatTick(in); got != want {
			t.Errorf("formatTick(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestBuildXAxisTicksEveryClientCount(t *testing.T) {
	groups := []types.GroupedAggregate{{ClientCount: 5}, {ClientCount: 10}, {ClientCount: 20}}
	xa := buildXAxis(groups)
	var labels []string
	for _, tk := range xa.Ticks {
		if tk.Label != "" {
			labels = append(labels, tk.Label)
		}
	}
	if strings.Join(labels, ",") != "5,10,20" {
		t.Fatalf("unexpected tick labels %v", labels)
	}
	first, last := xa.Ticks[0].Value, xa.Ticks[len(xa.Ticks)-1].Value
	if first != xa.Range.GetMin() || last != xa.Range.GetMax() {
		t.Fatalf("tick span [%v,%v] should equal the padded range %v", first, last, xa.Range)
	}
	if xa.Name != "Number of Clients" {
		t.Fatalf("unexpected axis name %q", xa.Name)
	}
}

func TestBuildXAxisSingleClientCountHasNonZeroSpan(t *testing.T) {
	xa := buildXAxis([]types.GroupedAggregate{{ClientCount: 20}})
	if len(xa.Ticks) < 2 {
		t.Fatalf("expected bracketing ticks, got %+v", xa.Ticks)
	}
	first, last := xa.Ticks[0].Value, xa.Ticks[len(xa.Ticks)-1].Value
	if !(first < 20 && last > 20) {
		t.Fatalf("ticks [%v,%v] should bracket 20", first, last)
	}
	labelled := 0
	for _, tk := range xa.Ticks {
		if tk.Label == "20" {
			labelled++
		}
	}
	if labelled != 1 {
		t.Fatalf("expected one labelled tick for 20, got %+v", xa.Ticks)
	}
}

func TestBuildXAxisManyClientCountsUsesNiceTicks(t *testing.T) {
	var groups []types.GroupedAggregate
	for i := 1; i <= 40; i++ {
		groups = append(groups, types.GroupedAggregate{ClientCount: i})
	}
	xa := buildXAxis(groups)
	if len(xa.Ticks) == 0 || len(xa.Ticks) > 12 {
		t.Fatalf("expected a reduced tick set, got %d", len(xa.Ticks))
	}
}
