package trace

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"go.yaml.in/yaml/v3"

	"github.com/sarchlab/y86sim/units"
)

// registerOrder fixes the column order for text rendering: general
// registers by index, then the program counter.
var registerOrder = append(append([]string{}, units.RegisterNames...), "pc")

// TextRenderer prints one tab-aligned line per Snapshot, suitable for
// a verbose per-cycle CLI dump.
type TextRenderer struct {
	w      *tabwriter.Writer
	header bool
}

// NewTextRenderer wraps dst in a tabwriter with the column widths this
// package's Snapshot layout expects.
func NewTextRenderer(dst io.Writer) *TextRenderer {
	return &TextRenderer{w: tabwriter.NewWriter(dst, 0, 4, 2, ' ', 0)}
}

// Render writes one row for snap. The first call also writes a header
// row naming every column.
func (r *TextRenderer) Render(snap *Snapshot) error {
	if !r.header {
		fmt.Fprint(r.w, "cycle\tstatus\thalted")
		for _, name := range registerOrder {
			fmt.Fprintf(r.w, "\t%s", name)
		}
		fmt.Fprint(r.w, "\tcc\n")
		r.header = true
	}

	fmt.Fprintf(r.w, "%d\t%s\t%t", snap.Cycle, snap.Status, snap.Halted)
	for _, name := range registerOrder {
		fmt.Fprintf(r.w, "\t%#x", snap.Registers[name])
	}
	fmt.Fprintf(r.w, "\t{Z:%t S:%t O:%t}\n", snap.CC.ZF, snap.CC.SF, snap.CC.OF)
	for _, w := range snap.MemWrites {
		fmt.Fprintf(r.w, "  mem write\t%#x\t%#x\n", w.Addr, w.Value)
	}
	return nil
}

// Flush must be called after the last Render to emit buffered output.
func (r *TextRenderer) Flush() error { return r.w.Flush() }

// RenderSignals writes every named HCL signal computed this cycle, in
// sorted order, one per line. Intended for a verbose CLI mode that
// wants the full wire dump rather than just the architectural state.
func (r *TextRenderer) RenderSignals(snap *Snapshot) {
	for _, name := range sortedSignalNames(snap) {
		fmt.Fprintf(r.w, "  %s\t%s\n", name, snap.Signals[name])
	}
}

// StructuredExporter accumulates snapshots for a whole run and emits
// them as a single JSON or YAML document once the run finishes.
type StructuredExporter struct {
	snapshots []*Snapshot
}

// NewStructuredExporter creates an empty exporter.
func NewStructuredExporter() *StructuredExporter { return &StructuredExporter{} }

// Add appends snap to the run being accumulated.
func (e *StructuredExporter) Add(snap *Snapshot) { e.snapshots = append(e.snapshots, snap) }

// Snapshots returns the accumulated run in cycle order.
func (e *StructuredExporter) Snapshots() []*Snapshot { return e.snapshots }

// ToJSON writes the accumulated run to dst as an indented JSON array.
func (e *StructuredExporter) ToJSON(dst io.Writer) error {
	enc := json.NewEncoder(dst)
	enc.SetIndent("", "  ")
	return enc.Encode(e.snapshots)
}

// FromJSON replaces the accumulated run with the array decoded from src.
func (e *StructuredExporter) FromJSON(src io.Reader) error {
	var snaps []*Snapshot
	if err := json.NewDecoder(src).Decode(&snaps); err != nil {
		return err
	}
	e.snapshots = snaps
	return nil
}

// ToYAML writes the accumulated run to dst as a YAML document.
func (e *StructuredExporter) ToYAML(dst io.Writer) error {
	enc := yaml.NewEncoder(dst)
	defer enc.Close()
	return enc.Encode(e.snapshots)
}

// FromYAML replaces the accumulated run with the document decoded from src.
func (e *StructuredExporter) FromYAML(src io.Reader) error {
	var snaps []*Snapshot
	if err := yaml.NewDecoder(src).Decode(&snaps); err != nil {
		return err
	}
	e.snapshots = snaps
	return nil
}

// sortedSignalNames returns snap's signal names in sorted order, for
// deterministic rendering of the free-form Signals map.
func sortedSignalNames(snap *Snapshot) []string {
	names := make([]string, 0, len(snap.Signals))
	for k := range snap.Signals {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
