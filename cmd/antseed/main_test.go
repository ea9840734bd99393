package main

import (
	"bytes"
	"context"
	"math/rand"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MyfirstAcc/AntDist/src/analysis"
	"github.com/MyfirstAcc/AntDist/src/store"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRecordWritesRunsReadableByExtraction(t *testing.T) {
	db := filepath.Join(t.TempDir(), "testsAnts.db")
	out, err := execute(t, "record", "--db", db, "--runs", "6", "--clients", "5,10,20", "--seed", "7", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "recorded 6 runs")

	rows, err := store.LoadRunRows(context.Background(), db, "NumClients")
	require.NoError(t, err)
	require.Len(t, rows, 6)

	want := []string{"5", "10", "20", "5", "10", "20"}
	for i, r := range rows {
		assert.Equal(t, want[i], r.NumClients, "run %d", r.RunID)
		assert.Greater(t, r.MethodRunTime, 0.0)
		assert.Greater(t, r.StartTimeClient, 0.0)
	}

	res, err := analysis.AnalyzeDatabase(context.Background(), db, analysis.Options{})
	require.NoError(t, err)
	require.Len(t, res.Groups, 3)
	for _, g := range res.Groups {
		assert.Equal(t, 2, g.Rows)
	}
}

func TestRecordStoresColonyParameters(t *testing.T) {
	db := filepath.Join(t.TempDir(), "ants.db")
	_, err := execute(t, "record", "--db", db, "--runs", "2", "--clients", "8", "--max-ants", "35", "--seed", "1", "--log-level", "error")
	require.NoError(t, err)

	for name, want := range map[string]string{"MaxAnts": "35", "maxIteration": "200", "Alpha": "1", "RHO": "0.5"} {
		rows, err := store.LoadRunRows(context.Background(), db, name)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, want, rows[0].NumClients, name)
	}
}

func TestRecordAppendsToExistingDatabase(t *testing.T) {
	db := filepath.Join(t.TempDir(), "ants.db")
	_, err := execute(t, "record", "--db", db, "--runs", "2", "--seed", "3", "--log-level", "error")
	require.NoError(t, err)
	_, err = execute(t, "record", "--db", db, "--runs", "3", "--seed", "4", "--log-level", "error")
	require.NoError(t, err)

	rows, err := store.LoadRunRows(context.Background(), db, "NumClients")
	require.NoError(t, err)
	assert.Len(t, rows, 5)
}

func TestRecordRejectsBadFlags(t *testing.T) {
	db := filepath.Join(t.TempDir(), "ants.db")
	_, err := execute(t, "record", "--db", db, "--runs", "0")
	require.Error(t, err)

	_, err = execute(t, "record", "--db", db, "--clients", "5,x")
	require.Error(t, err)

	_, err = execute(t, "record", "--db", db, "--clients", "5,-1")
	require.Error(t, err)
}

func TestSchemaCreatesEmptyDatabase(t *testing.T) {
	db := filepath.Join(t.TempDir(), "empty.db")
	_, err := execute(t, "schema", "--db", db, "--log-level", "error")
	require.NoError(t, err)

	rows, err := store.LoadRunRows(context.Background(), db, "NumClients")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSyntheticRunDeterministic(t *testing.T) {
	c := colonyParams{}.withDefaults()
	a := syntheticRun(rand.New(rand.NewSource(42)), c, 10)
	b := syntheticRun(rand.New(rand.NewSource(42)), c, 10)
	assert.Equal(t, a, b)

	assert.Len(t, strings.Split(a.bestItems, ","), c.countSubjects)
	assert.Greater(t, a.totalRunTime, a.methodRunTime)
}

func TestColonyParametersOrder(t *testing.T) {
	ps := colonyParams{}.withDefaults().parameters(12)
	require.Len(t, ps, 8)
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = p.name
	}
	assert.Equal(t, []string{"Alpha", "Beta", "Q", "RHO", "CountSubjects", "maxIteration", "MaxAnts", "NumClients"}, names)
	assert.Equal(t, strconv.Itoa(12), ps[7].value)
}
