package uihelpers

import (
	"math"
	"path/filepath"
	"strings"
	"testing"
)

func TestComputeChartDimensions(t *testing.T) {
	cases := []struct {
		in    int
		wantW int
		wantH int
	}{
		{100, 600, 400},
		{599, 600, 400},
		{600, 600, 400},
		{900, 900, 600},
		{1200, 1200, 640},
		{4000, 1600, 640},
	}
	for _, c := range cases {
		w, h := ComputeChartDimensions(c.in)
		if w != c.wantW || h != c.wantH {
			t.Fatalf("input %d => %dx%d want %dx%d", c.in, w, h, c.wantW, c.wantH)
		}
	}
}

func TestComputeTableColumnWidths(t *testing.T) {
	ultra := ComputeTableColumnWidths(400)
	if ultra[1] != 0 || ultra[4] != 0 {
		t.Fatalf("expected rows/start hidden when ultra compact: %#v", ultra)
	}
	if ultra[0] == 0 || ultra[2] == 0 || ultra[3] == 0 {
		t.Fatalf("clients, best value and method time must stay visible: %#v", ultra)
	}
	compact := ComputeTableColumnWidths(700)
	for i, w := range compact {
		if w == 0 {
			t.Fatalf("column %d hidden at 700: %#v", i, compact)
		}
	}
	full := ComputeTableColumnWidths(1200)
	if full != [5]int{110, 70, 150, 190, 170} {
		t.Fatalf("full widths mismatch: %#v", full)
	}
	if ComputeTableColumnWidths(479)[1] != 0 || ComputeTableColumnWidths(480)[1] == 0 {
		t.Fatalf("ultra compact breakpoint should be 480")
	}
}

func TestFormatCellValue(t *testing.T) {
	cases := map[float64]string{
		0.7:     "0.7000",
		1.25:    "1.2500",
		12.3456: "12.35",
		1500.4:  "1500",
		-3.5:    "-3.5000",
	}
	for in, want := range cases {
		if got := FormatCellValue(in); got != want {
			t.Fatalf("FormatCellValue(%v)=%q want %q", in, got, want)
		}
	}
	if FormatCellValue(math.NaN()) != "-" || FormatCellValue(math.Inf(1)) != "-" {
		t.Fatalf("missing values should render as -")
	}
}

func TestTruncatePath(t *testing.T) {
	if got := TruncatePath("short.db", 20); got != "short.db" {
		t.Fatalf("short path changed: %q", got)
	}
	long := "/home/user/experiments/ants/2024/november/results/testsAnts.db"
	got := TruncatePath(long, 30)
	if !strings.HasSuffix(got, "testsAnts.db") {
		t.Fatalf("base name lost: %q", got)
	}
	if len(got) > 30 {
		t.Fatalf("truncated path too long (%d): %q", len(got), got)
	}
	if !strings.Contains(got, string(filepath.Separator)+"...") {
		t.Fatalf("expected the platform separator before the ellipsis: %q", got)
	}
	if got := TruncatePath("/x/averyveryverylongdatabasename.db", 10); got != "...averyveryverylongdatabasename.db" {
		t.Fatalf("expected base only, got %q", got)
	}
}

func TestMergeRecent(t *testing.T) {
	got := MergeRecent([]string{"a.db", "b.db", "c.db"}, "b.db", 3)
	want := []string{"b.db", "a.db", "c.db"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("got %v want %v", got, want)
	}
	got = MergeRecent([]string{"a.db", "b.db", "c.db"}, "d.db", 2)
	if len(got) != 2 || got[0] != "d.db" || got[1] != "a.db" {
		t.Fatalf("cap not applied: %v", got)
	}
}
