// Command y86sim runs an assembled Y86-64 object file against one of
// the registered architectures (seq_std, seq_plus_std, pipe_std) and
// reports the final architectural state.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sarchlab/y86sim/arch"
	"github.com/sarchlab/y86sim/object"
	"github.com/sarchlab/y86sim/runconfig"
	"github.com/sarchlab/y86sim/signal"
	"github.com/sarchlab/y86sim/trace"
	"github.com/sarchlab/y86sim/units"
)

// memSize matches the reference toolchain's flat 64KB Y86-64 address space.
const memSize = 1 << 16

var (
	archName   = flag.String("arch", "seq_std", "architecture to simulate (seq_std, seq_plus_std, pipe_std)")
	verbose    = flag.Bool("v", false, "verbose per-cycle dump")
	configPath = flag.String("config", "", "path to a YAML machine-descriptor overlay")
	jsonPath   = flag.String("json", "", "path to write a structured JSON trace export")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: y86sim [options] <object file>\n\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	os.Exit(run(flag.Arg(0)))
}

func run(objPath string) int {
	cfg := runconfig.Default()
	if *configPath != "" {
		var err error
		cfg, err = runconfig.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			return 1
		}
	}

	f, err := os.Open(objPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening object file: %v\n", err)
		return 1
	}
	defer f.Close()

	img, err := object.Load(f, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading object: %v\n", err)
		return 1
	}

	mem := units.NewMemory(memSize)
	if err := img.LoadInto(mem); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	m, err := arch.Build(*archName, mem, img.StartPC)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building architecture %q: %v\n", *archName, err)
		return 1
	}

	if rf, ok := m.Units["regfile"].(*units.RegisterFileUnit); ok {
		if err := cfg.ApplyRegisters(rf); err != nil {
			fmt.Fprintf(os.Stderr, "Error applying config: %v\n", err)
			return 1
		}
	}

	var renderer *trace.TextRenderer
	if *verbose {
		renderer = trace.NewTextRenderer(os.Stdout)
	}
	var exporter *trace.StructuredExporter
	if *jsonPath != "" {
		exporter = trace.NewStructuredExporter()
	}

	status := signal.StatusBub
	for m.Cycle() < cfg.CycleLimit && !m.Halted() {
		if _, err := m.Tick(); err != nil {
			fmt.Fprintf(os.Stderr, "Error at cycle %d: %v\n", m.Cycle(), err)
			return 1
		}
		snap := trace.Capture(m)
		status = snap.Status
		if renderer != nil {
			renderer.Render(snap)
		}
		if exporter != nil {
			exporter.Add(snap)
		}
	}

	if renderer != nil {
		if err := renderer.Flush(); err != nil {
			fmt.Fprintf(os.Stderr, "Error flushing trace: %v\n", err)
			return 1
		}
	}
	if exporter != nil {
		jf, err := os.Create(*jsonPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating JSON export: %v\n", err)
			return 1
		}
		defer jf.Close()
		if err := exporter.ToJSON(jf); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing JSON export: %v\n", err)
			return 1
		}
	}

	fmt.Printf("Cycles: %d\nStatus: %s\n", m.Cycle(), status)

	if !m.Halted() {
		fmt.Fprintln(os.Stderr, "y86sim: runaway — cycle limit reached without halting")
		return 2
	}
	if status != signal.StatusHlt {
		return 1
	}
	return 0
}
