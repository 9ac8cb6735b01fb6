package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
)

// response is the JSON envelope written in --format json mode.
type response struct {
	Status string `json:"status"`
	Data   any    `json:"data,omitempty"`
}

// printer renders command results as text or as a JSON envelope.
type printer struct {
	format string
	w      io.Writer
}

// Print writes data as JSON, or calls text to render it for humans.
func (p *printer) Print(data any, text func(w io.Writer)) error {
	if p.format == "json" {
		return json.NewEncoder(p.w).Encode(response{Status: "ok", Data: data})
	}
	text(p.w)
	return nil
}

// Message prints a one-line confirmation; in JSON mode it is the data.
func (p *printer) Message(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	return p.Print(map[string]string{"message": msg}, func(w io.Writer) {
		fmt.Fprintln(w, msg)
	})
}

// table writes tab-separated rows aligned into columns.
func table(w io.Writer, header []string, rows [][]string) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	writeRow(tw, header)
	for _, r := range rows {
		writeRow(tw, r)
	}
	_ = tw.Flush()
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
