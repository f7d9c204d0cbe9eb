package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/razeghi71/dqexpr/table"
)

func write(w io.Writer, format string, f *table.Frame) error {
	switch format {
	case "table":
		return writeTable(w, f)
	case "csv":
		return writeCSV(w, f)
	case "jsonl":
		return writeJSONL(w, f)
	default:
		return fmt.Errorf("unknown output format %q (supported: table, csv, jsonl)", format)
	}
}

func cells(f *table.Frame, r int) []string {
	out := make([]string, f.NCols())
	for j, v := range f.Row(r) {
		out[j] = v.AsString()
	}
	return out
}

func writeTable(w io.Writer, f *table.Frame) error {
	if f.NCols() == 0 {
		return nil
	}
	tw := tablewriter.NewWriter(w)
	tw.SetHeader(f.Names)
	tw.SetAutoFormatHeaders(false)
	for r := 0; r < f.NRows(); r++ {
		tw.Append(cells(f, r))
	}
	tw.Render()
	return nil
}

func writeCSV(w io.Writer, f *table.Frame) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(f.Names); err != nil {
		return err
	}
	for r := 0; r < f.NRows(); r++ {
		row := f.Row(r)
		rec := make([]string, len(row))
		for j, v := range row {
			if !v.IsNull() {
				rec[j] = v.AsString()
			}
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeJSONL(w io.Writer, f *table.Frame) error {
	enc := json.NewEncoder(w)
	for r := 0; r < f.NRows(); r++ {
		rec := make(map[string]any, f.NCols())
		for j, v := range f.Row(r) {
			rec[f.Names[j]] = v.Any()
		}
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}
	return nil
}
