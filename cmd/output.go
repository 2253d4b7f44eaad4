package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/frahmantamala/star-supla/internal"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

var stdout io.Writer = os.Stdout

// render prints v as indented JSON with -o json, otherwise as a table of
// header and rows.
func render(v interface{}, header []string, rows [][]string) error {
	switch outputFormat {
	case outputJSON:
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputTable, "":
		return writeTable(stdout, header, rows)
	}
	return internal.NewValidationFieldError("output", fmt.Sprintf("unknown output format %q", outputFormat), internal.ErrCodeValidationFailed)
}

func writeTable(w io.Writer, header []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	writeRow(tw, header)
	for _, row := range rows {
		writeRow(tw, row)
	}
	return tw.Flush()
}

func writeRow(w io.Writer, cells []string) {
	for i, c := range cells {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, c)
	}
	fmt.Fprintln(w)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func printf(format string, args ...interface{}) {
	fmt.Fprintf(stdout, format, args...)
}
