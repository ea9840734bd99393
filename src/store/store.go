// Package store reads and records ant colony test runs in the SQLite results database.
//
// Extraction (LoadRunRows) opens the file read-only and never creates or modifies it.
// Recording (Create + Recorder) mirrors what the test server writes after every run:
// one TestRuns row, its TestParameters and a TestResults row.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver

	"github.com/MyfirstAcc/AntDist/src/logging"
	"github.com/MyfirstAcc/AntDist/src/types"
)

// DriverName is the database/sql driver registered by modernc.org/sqlite.
const DriverName = "sqlite"

// runRowsQuery concatenates the values of the selected parameter per run and subtracts the
// method time from the total time. Conditional aggregation yields NULL for other parameter names,
// which GROUP_CONCAT skips.
const runRowsQuery = `
SELECT
    TestRuns.Id,
    GROUP_CONCAT(
        CASE
            WHEN TestParameters.ParameterName = ? THEN TestParameters.ParameterValue
            ELSE NULL
        END, ', '
    ) AS NumClients,
    TestResults.BestValue,
    TestResults.MethodRunTime,
    TestResults.TotalRunTime - TestResults.MethodRunTime AS StartTimeClient
FROM
    TestRuns
JOIN
    TestParameters ON TestRuns.Id = TestParameters.TestRunId
JOIN
    TestResults ON TestRuns.Id = TestResults.TestRunId
GROUP BY
    TestRuns.Id, TestResults.BestValue, TestResults.MethodRunTime
ORDER BY
    TestRuns.Id`

var schema = []string{
	`CREATE TABLE IF NOT EXISTS TestRuns (
    Id INTEGER PRIMARY KEY AUTOINCREMENT,
    TestType TEXT NOT NULL,
    Data DATETIME NOT NULL,
    Local INTEGER,
    TypeProtocol TEXT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS TestParameters (
    Id INTEGER PRIMARY KEY AUTOINCREMENT,
    TestRunId INTEGER NOT NULL,
    ParameterName TEXT NOT NULL,
    ParameterValue TEXT NOT NULL,
    FOREIGN KEY (TestRunId) REFERENCES TestRuns(Id)
)`,
	`CREATE TABLE IF NOT EXISTS TestResults (
    Id INTEGER PRIMARY KEY AUTOINCREMENT,
    TestRunId INTEGER NOT NULL,
    BestItems TEXT NOT NULL,
    BestValue REAL NOT NULL,
    MethodRunTime REAL NOT NULL,
    TotalRunTime REAL NOT NULL,
    FOREIGN KEY (TestRunId) REFERENCES TestRuns(Id)
)`,
}

// DataAccessError reports a failure to open, query or write the results database.
type DataAccessError struct {
	Op   string
	Path string
	Err  error
}

func (e *DataAccessError) Error() string {
	return fmt.Sprintf("data access: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *DataAccessError) Unwrap() error { return e.Err }

// ErrNotExist is wrapped by a DataAccessError when the database file is missing.
var ErrNotExist = errors.New("database file does not exist")

// readOnlyDSN builds a file: URI so the driver opens path with mode=ro (no implicit create).
func readOnlyDSN(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs), RawQuery: "mode=ro"}
	return u.String(), nil
}

// LoadRunRows runs the extraction query against the database at path. parameterName selects which
// TestParameters rows are concatenated into RunRow.NumClients (normally "NumClients").
// The connection is released before returning, on success and on error.
func LoadRunRows(ctx context.Context, path, parameterName string) ([]types.RunRow, error) {
	st, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &DataAccessError{Op: "open", Path: path, Err: ErrNotExist}
		}
		return nil, &DataAccessError{Op: "open", Path: path, Err: err}
	}
	if st.IsDir() {
		return nil, &DataAccessError{Op: "open", Path: path, Err: errors.New("is a directory")}
	}
	dsn, err := readOnlyDSN(path)
	if err != nil {
		return nil, &DataAccessError{Op: "open", Path: path, Err: err}
	}
	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, &DataAccessError{Op: "open", Path: path, Err: err}
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	start := time.Now()
	defer logging.TimeTrack(start, "extract "+path)

	rows, err := db.QueryContext(ctx, runRowsQuery, parameterName)
	if err != nil {
		return nil, &DataAccessError{Op: "query", Path: path, Err: err}
	}
	defer rows.Close()

	var out []types.RunRow
	for rows.Next() {
		var (
			id                     int64
			clients                sql.NullString
			best, method, startCli any
		)
		if err := rows.Scan(&id, &clients, &best, &method, &startCli); err != nil {
			return nil, &DataAccessError{Op: "scan", Path: path, Err: err}
		}
		out = append(out, types.RunRow{
			RunID:           id,
			NumClients:      clients.String,
			BestValue:       numeric(best),
			MethodRunTime:   numeric(method),
			StartTimeClient: numeric(startCli),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, &DataAccessError{Op: "query", Path: path, Err: err}
	}
	logging.Debugf("extracted %d run rows from %s (parameter=%s)", len(out), path, parameterName)
	return out, nil
}

// numeric converts a dynamically typed SQLite value into a float64. NULL and values that do not
// parse as numbers become types.Missing().
func numeric(v any) float64 {
	switch x := v.(type) {
	case nil:
		return types.Missing()
	case int64:
		return float64(x)
	case float64:
		return x
	case bool:
		if x {
			return 1
		}
		return 0
	case []byte:
		return parseNumeric(string(x))
	case string:
		return parseNumeric(x)
	default:
		return types.Missing()
	}
}

func parseNumeric(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsInf(f, 0) {
		return types.Missing()
	}
	return f
}

// Recorder writes test runs into a results database.
type Recorder struct {
	db   *sql.DB
	path string
}

// Create opens (creating if needed) the database at path and ensures the schema exists.
func Create(ctx context.Context, path string) (*Recorder, error) {
	db, err := sql.Open(DriverName, path)
	if err != nil {
		return nil, &DataAccessError{Op: "create", Path: path, Err: err}
	}
	db.SetMaxOpenConns(1)
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, &DataAccessError{Op: "create schema", Path: path, Err: err}
		}
	}
	return &Recorder{db: db, path: path}, nil
}

// AddTestRun inserts a TestRuns row and returns its id.
func (r *Recorder) AddTestRun(ctx context.Context, testType string, startedAt time.Time, local bool, protocol string) (int64, error) {
	localInt := 0
	if local {
		localInt = 1
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO TestRuns (TestType, Data, Local, TypeProtocol) VALUES (?, ?, ?, ?)`,
		testType, startedAt.UTC().Format("2006-01-02 15:04:05"), localInt, protocol)
	if err != nil {
		return 0, &DataAccessError{Op: "insert run", Path: r.path, Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, &DataAccessError{Op: "insert run", Path: r.path, Err: err}
	}
	return id, nil
}

// AddTestParameter attaches a name/value parameter to a run. A run may carry the same name more than once.
func (r *Recorder) AddTestParameter(ctx context.Context, runID int64, name, value string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO TestParameters (TestRunId, ParameterName, ParameterValue) VALUES (?, ?, ?)`,
		runID, name, value)
	if err != nil {
		return &DataAccessError{Op: "insert parameter", Path: r.path, Err: err}
	}
	return nil
}

// AddTestResult stores the outcome of a run. Times are in seconds.
func (r *Recorder) AddTestResult(ctx context.Context, runID int64, bestItems string, bestValue, methodRunTime, totalRunTime float64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO TestResults (TestRunId, BestItems, BestValue, MethodRunTime, TotalRunTime) VALUES (?, ?, ?, ?, ?)`,
		runID, bestItems, bestValue, methodRunTime, totalRunTime)
	if err != nil {
		return &DataAccessError{Op: "insert result", Path: r.path, Err: err}
	}
	return nil
}

// Close releases the database handle.
func (r *Recorder) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}
