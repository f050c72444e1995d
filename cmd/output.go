package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/overlaysim/overlaysim/sim"
	"github.com/overlaysim/overlaysim/sim/config"
	"github.com/overlaysim/overlaysim/sim/trace"
)

// printResults writes the per-experiment outcome and the last record of
// every observer.
func printResults(w io.Writer, sc *config.Scenario, results []sim.RunResult, summary *trace.TraceSummary, elapsed time.Duration) {
	fmt.Fprintf(w, "=== Simulation Results (%s engine, seed %d) ===\n", sc.Engine, sc.Seed)
	for k, r := range results {
		fmt.Fprintf(w, "experiment %d: time=%d stopped=%t", k, r.Time, r.Stopped)
		if sc.Engine == config.EngineEvent {
			fmt.Fprintf(w, " dispatched=%d dropped=%d", r.Dispatched, r.Dropped)
		}
		fmt.Fprintln(w)
	}
	if summary.TotalObservations > 0 {
		fmt.Fprintf(w, "=== Observations (%d records) ===\n", summary.TotalObservations)
		names := maps.Keys(summary.Last)
		slices.Sort(names)
		for _, name := range names {
			rec := summary.Last[name]
			fmt.Fprintf(w, "%s (t=%d):", name, rec.Time)
			for _, f := range rec.Fields {
				fmt.Fprintf(w, " %s=%g", f.Name, f.Value)
			}
			fmt.Fprintln(w)
		}
	}
	fmt.Fprintf(w, "wall time: %s\n", elapsed.Round(time.Millisecond))
}

// writeFile creates path and streams content into it.
func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
