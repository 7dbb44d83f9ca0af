package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hillrush/hillrush/internal/archive"
	"github.com/hillrush/hillrush/internal/game"
	"github.com/hillrush/hillrush/internal/replay"
)

// Lists archived runs and dumps replay files.
func main() {
	var (
		dataDir = flag.String("data-dir", "data", "replay and archive directory")
		top     = flag.Int("top", 10, "number of runs to list")
		seed    = flag.Int64("seed", 0, "list runs for one seed only")
		dump    = flag.String("dump", "", "replay file to print tick by tick")
		every   = flag.Int("every", 60, "print every Nth frame when dumping")
	)
	flag.Parse()

	if *dump != "" {
		if err := dumpReplay(*dump, *every); err != nil {
			fmt.Fprintln(os.Stderr, "dump:", err)
			os.Exit(1)
		}
		return
	}

	a, err := archive.Open(filepath.Join(*dataDir, "runs.db"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "open archive:", err)
		os.Exit(1)
	}
	defer a.Close()

	var runs []archive.Run
	if *seed != 0 {
		runs, err = a.RunsForSeed(*seed, *top)
	} else {
		runs, err = a.TopRuns(*top)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "query runs:", err)
		os.Exit(1)
	}

	if len(runs) == 0 {
		fmt.Println("no runs recorded")
		return
	}
	for i, r := range runs {
		fmt.Printf("%2d. %-36s seed=%-12d distance=%-10.1f ticks=%-8d duration=%s\n",
			i+1, r.ID, r.Seed, r.Distance, r.Ticks, r.Duration.Round(time.Second))
	}
}

func dumpReplay(path string, every int) error {
	if every <= 0 {
		every = 1
	}
	r, err := replay.Open(path)
	if err != nil {
		return err
	}
	defer r.Close()

	h := r.Header()
	fmt.Printf("run %s seed=%d started=%s\n", h.RunID, h.Seed, h.StartedAt.Format(time.RFC3339))

	var n int
	for {
		var f game.Frame
		ok, err := r.Next(&f)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if n%every == 0 {
			fmt.Printf("tick=%-8d x=%-10.1f y=%-8.1f speed=%-7.1f biome=%s\n",
				f.Tick, f.X, f.Y, f.Speed, f.Biome)
		}
		n++
	}
}
