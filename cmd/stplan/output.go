package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/pdrpinto/stastar"
)

type report struct {
	RunID       string              `json:"run_id"`
	Scenario    string              `json:"scenario"`
	Found       bool                `json:"found"`
	Termination stastar.Termination `json:"termination"`
	Expansions  int                 `json:"expansions"`
	Generated   int                 `json:"generated"`
	Rejected    int                 `json:"rejected"`
	Cost        float64             `json:"cost"`
	Path        []stastar.State     `json:"path"`
}

func newReport(runID, name string, result stastar.Result) report {
	path := result.Path
	if path == nil {
		path = []stastar.State{}
	}
	return report{
		RunID:       runID,
		Scenario:    name,
		Found:       result.Found,
		Termination: result.Termination,
		Expansions:  result.Expansions,
		Generated:   result.Generated,
		Rejected:    result.Rejected,
		Cost:        result.Cost,
		Path:        path,
	}
}

// writeReports prints one report as an object or several as an array.
func writeReports(w io.Writer, asJSON, asList bool, reports ...report) error {
	if asJSON {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if asList {
			return encoder.Encode(reports)
		}
		return encoder.Encode(reports[0])
	}

	for i, r := range reports {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s: %s after %d expansions", r.Scenario, r.Termination, r.Expansions)
		if !r.Found {
			fmt.Fprintln(w, ", no trajectory")
			continue
		}
		fmt.Fprintf(w, ", cost %.4f\n", r.Cost)

		table := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(table, "t\ts\tl\ttheta\tv\t")
		for _, st := range r.Path {
			fmt.Fprintf(table, "%.2f\t%.3f\t%.3f\t%.3f\t%.2f\t\n", st.T, st.S, st.L, st.Theta, st.V)
		}
		if err := table.Flush(); err != nil {
			return err
		}
	}
	return nil
}
