package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"pandemica/internal/sim"
)

// WriteHistoryCSV writes one row per step: the step number followed by the
// count of each state.
func WriteHistoryCSV(w io.Writer, history []sim.Counts) error {
	cw := csv.NewWriter(w)
	header := []string{"step"}
	for _, s := range sim.States() {
		header = append(header, s.String())
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	row := make([]string, len(header))
	for i, c := range history {
		row[0] = strconv.Itoa(i + 1)
		for j, s := range sim.States() {
			row[j+1] = strconv.Itoa(c.Get(s))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write step %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
