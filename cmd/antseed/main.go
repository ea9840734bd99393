// Package main provides antseed, a CLI that creates an ant colony results database
// and records synthetic test runs the way the test server does after every run.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/MyfirstAcc/AntDist/src/config"
	"github.com/MyfirstAcc/AntDist/src/logging"
	"github.com/MyfirstAcc/AntDist/src/store"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		logging.Errorf("%v", err)
		logging.Sync()
		os.Exit(1)
	}
	logging.Sync()
}

func newRootCmd() *cobra.Command {
	var logLevel string
	root := &cobra.Command{
		Use:   "antseed",
		Short: "Create and fill ant colony results databases",
		Long: `Antseed creates the TestRuns / TestParameters / TestResults schema and records
synthetic ant colony runs, one NumClients value per run, so the analysis tools
have data to work on without a running test server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			logging.SetLogLevel(logLevel)
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug|info|warn|error)")

	root.AddCommand(newSchemaCmd())
	root.AddCommand(newRecordCmd())

	return root
}

func newSchemaCmd() *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Create the results schema (no runs)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rec, err := store.Create(cmd.Context(), dbPath)
			if err != nil {
				return err
			}
			logging.Infof("schema ready in %s", dbPath)
			return rec.Close()
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", config.DefaultDBPath, "Path to the SQLite results database")
	return cmd
}

func newRecordCmd() *cobra.Command {
	var cfg recordConfig

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record synthetic ant colony runs",
		Long: `Record --runs synthetic runs. Client counts are taken round-robin from --clients;
every run also carries the colony parameters (Alpha, Beta, Q, RHO, CountSubjects,
maxIteration, MaxAnts) as TestParameters rows.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRecord(cmd.Context(), cmd.OutOrStdout(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.dbPath, "db", config.DefaultDBPath,
		"Path to the SQLite results database (created if missing)")
	flags.IntVar(&cfg.runs, "runs", 30,
		"Number of runs to record")
	flags.IntSliceVar(&cfg.clients, "clients", []int{5, 10, 20},
		"Client counts, used round-robin")
	flags.Int64Var(&cfg.seed, "seed", 0,
		"Random seed (0 = use current time)")
	flags.StringVar(&cfg.protocol, "protocol", "TCP",
		"TypeProtocol stored with every run")
	flags.BoolVar(&cfg.local, "local", true,
		"Mark runs as local (clients on the same host)")
	flags.IntVar(&cfg.colony.maxAnts, "max-ants", 20,
		"MaxAnts parameter")
	flags.IntVar(&cfg.colony.maxIteration, "max-iteration", 200,
		"maxIteration parameter")
	flags.IntVar(&cfg.colony.countSubjects, "count-subjects", 20,
		"CountSubjects parameter (knapsack items)")

	return cmd
}

type recordConfig struct {
	dbPath   string
	runs     int
	clients  []int
	seed     int64
	protocol string
	local    bool
	colony   colonyParams
}

func runRecord(ctx context.Context, out io.Writer, cfg recordConfig) error {
	if cfg.runs <= 0 {
		return fmt.Errorf("--runs must be positive, got %d", cfg.runs)
	}
	if len(cfg.clients) == 0 {
		return errors.New("--clients is empty")
	}
	for _, c := range cfg.clients {
		if c <= 0 {
			return fmt.Errorf("client count must be positive, got %d", c)
		}
	}
	if ctx == nil {
		ctx = context.Background()
	}
	seed := cfg.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	colony := cfg.colony.withDefaults()

	rec, err := store.Create(ctx, cfg.dbPath)
	if err != nil {
		return err
	}
	defer rec.Close()

	started := time.Now().UTC()
	for i := 0; i < cfg.runs; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		clients := cfg.clients[i%len(cfg.clients)]
		run := syntheticRun(rng, colony, clients)
		id, err := rec.AddTestRun(ctx, "AntColony", started.Add(time.Duration(i)*time.Minute), cfg.local, cfg.protocol)
		if err != nil {
			return err
		}
		for _, p := range colony.parameters(clients) {
			if err := rec.AddTestParameter(ctx, id, p.name, p.value); err != nil {
				return err
			}
		}
		if err := rec.AddTestResult(ctx, id, run.bestItems, run.bestValue, run.methodRunTime, run.totalRunTime); err != nil {
			return err
		}
		logging.Debugf("run %d: clients=%d best=%.3f method=%.3fs total=%.3fs", id, clients, run.bestValue, run.methodRunTime, run.totalRunTime)
	}
	fmt.Fprintf(out, "recorded %d runs into %s (seed %d)\n", cfg.runs, cfg.dbPath, seed)
	return nil
}
