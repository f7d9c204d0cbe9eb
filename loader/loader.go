// Package loader reads data files into frames.
package loader

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	goavro "github.com/linkedin/goavro/v2"
	"github.com/parquet-go/parquet-go"
	"github.com/razeghi71/dqexpr/table"
)

// Load reads a file and returns a Frame. The format follows the file
// extension; column types are inferred from the values.
func Load(filename string) (*table.Frame, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".csv":
		return loadCSV(filename)
	case ".json":
		return loadJSON(filename)
	case ".jsonl":
		return loadJSONL(filename)
	case ".avro":
		return loadAvro(filename)
	case ".parquet":
		return loadParquet(filename)
	default:
		return nil, fmt.Errorf("unsupported file format %q (supported: .csv, .json, .jsonl, .avro, .parquet)", ext)
	}
}

func loadCSV(filename string) (*table.Frame, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s: %w", filename, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("cannot read CSV header from %s: %w", filename, err)
	}
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(h)
	}

	var rows [][]table.Value
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV row: %w", err)
		}
		vals := make([]table.Value, len(columns))
		for i := range columns {
			if i < len(record) {
				vals[i] = parseValue(strings.TrimSpace(record[i]))
			}
		}
		rows = append(rows, vals)
	}
	return buildFrame(columns, rows)
}

// parseValue infers the type of a CSV cell value.
func parseValue(s string) table.Value {
	if s == "" || strings.EqualFold(s, "null") {
		return table.Null()
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return table.IntVal(v)
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return table.FloatVal(v)
	}
	switch strings.ToLower(s) {
	case "true":
		return table.BoolVal(true)
	case "false":
		return table.BoolVal(false)
	}
	return table.StrVal(s)
}

func loadJSON(filename string) (*table.Frame, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", filename, err)
	}
	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("cannot parse JSON from %s: %w (expected array of objects)", filename, err)
	}
	return frameFromRecords(records, nil, jsonValue)
}

func loadJSONL(filename string) (*table.Frame, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s: %w", filename, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	var records []map[string]any
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var rec map[string]any
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, fmt.Errorf("invalid JSON on line %d: %w", lineNum, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading %s: %w", filename, err)
	}
	return frameFromRecords(records, nil, jsonValue)
}

// frameFromRecords builds a frame from keyed records. Columns follow order
// when given; otherwise keys are taken record by record, each record's new
// keys in sorted order.
func frameFromRecords(records []map[string]any, order []string, conv func(any) table.Value) (*table.Frame, error) {
	columns := order
	if columns == nil {
		seen := make(map[string]bool)
		for _, rec := range records {
			for _, k := range slices.Sorted(maps.Keys(rec)) {
				if !seen[k] {
					seen[k] = true
					columns = append(columns, k)
				}
			}
		}
	}
	rows := make([][]table.Value, len(records))
	for r, rec := range records {
		vals := make([]table.Value, len(columns))
		for i, col := range columns {
			if v, ok := rec[col]; ok && v != nil {
				vals[i] = conv(v)
			}
		}
		rows[r] = vals
	}
	return buildFrame(columns, rows)
}

func jsonValue(v any) table.Value {
	switch val := v.(type) {
	case float64:
		// JSON numbers are float64; check if it's actually an integer
		if val == float64(int64(val)) {
			return table.IntVal(int64(val))
		}
		return table.FloatVal(val)
	case string:
		return table.StrVal(val)
	case bool:
		return table.BoolVal(val)
	case nil:
		return table.Null()
	default:
		// nested objects and arrays are kept as they are
		return table.ObjVal(val)
	}
}

func loadAvro(filename string) (*table.Frame, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s: %w", filename, err)
	}
	defer f.Close()

	ocfr, err := goavro.NewOCFReader(f)
	if err != nil {
		return nil, fmt.Errorf("cannot read Avro OCF from %s: %w", filename, err)
	}

	var schemaDef struct {
		Fields []struct {
			Name string `json:"name"`
		} `json:"fields"`
	}
	if err := json.Unmarshal([]byte(ocfr.Codec().Schema()), &schemaDef); err != nil {
		return nil, fmt.Errorf("cannot parse Avro schema: %w", err)
	}
	columns := make([]string, len(schemaDef.Fields))
	for i, field := range schemaDef.Fields {
		columns[i] = field.Name
	}

	var records []map[string]any
	for ocfr.Scan() {
		datum, err := ocfr.Read()
		if err != nil {
			return nil, fmt.Errorf("error reading Avro record: %w", err)
		}
		rec, ok := datum.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("unexpected Avro record type %T", datum)
		}
		records = append(records, rec)
	}
	if err := ocfr.Err(); err != nil {
		return nil, fmt.Errorf("error reading Avro file: %w", err)
	}
	return frameFromRecords(records, columns, nativeValue)
}

func loadParquet(filename string) (*table.Frame, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s: %w", filename, err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("cannot stat %s: %w", filename, err)
	}
	pqFile, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("cannot read Parquet from %s: %w", filename, err)
	}

	fields := pqFile.Schema().Fields()
	columns := make([]string, len(fields))
	for i, field := range fields {
		columns[i] = field.Name()
	}

	reader := parquet.NewReader(pqFile)
	defer reader.Close()

	var records []map[string]any
	for {
		row := make(map[string]any)
		if err := reader.Read(&row); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("error reading Parquet row: %w", err)
		}
		records = append(records, row)
	}
	return frameFromRecords(records, columns, nativeValue)
}

// nativeValue converts a value decoded by a binary format reader.
func nativeValue(v any) table.Value {
	switch val := v.(type) {
	case nil:
		return table.Null()
	case int32:
		return table.IntVal(int64(val))
	case int64:
		return table.IntVal(val)
	case int:
		return table.IntVal(int64(val))
	case float32:
		return table.FloatVal(float64(val))
	case float64:
		return table.FloatVal(val)
	case string:
		return table.StrVal(val)
	case bool:
		return table.BoolVal(val)
	case []byte:
		return table.StrVal(string(val))
	case time.Time:
		return table.ObjVal(val)
	case map[string]any:
		// Avro unions decode as {"type": value}
		if len(val) == 1 {
			for _, inner := range val {
				return nativeValue(inner)
			}
		}
		return table.ObjVal(val)
	default:
		return table.ObjVal(val)
	}
}

// buildFrame infers a storage type for every column and builds the frame.
func buildFrame(columns []string, rows [][]table.Value) (*table.Frame, error) {
	types := make([]table.SType, len(columns))
	for j := range columns {
		types[j] = inferType(rows, j)
	}
	return table.FromRows(columns, types, rows)
}

// inferType picks the narrowest type that holds every value of column j:
// integers become int64, integers mixed with floats become float64, and
// columns mixing other kinds become obj. A column without values is void.
func inferType(rows [][]table.Value, j int) table.SType {
	var ints, floats, bools, strs, objs int
	for _, r := range rows {
		if j >= len(r) {
			continue
		}
		switch r[j].Type {
		case table.TypeInt:
			ints++
		case table.TypeFloat:
			floats++
		case table.TypeBool:
			bools++
		case table.TypeString:
			strs++
		case table.TypeObject:
			objs++
		}
	}
	numeric := ints + floats
	kinds := 0
	for _, n := range []int{numeric, bools, strs, objs} {
		if n > 0 {
			kinds++
		}
	}
	switch {
	case kinds == 0:
		return table.Void
	case kinds > 1 || objs > 0:
		return table.Obj
	case floats > 0:
		return table.Float64
	case ints > 0:
		return table.Int64
	case bools > 0:
		return table.Bool
	default:
		return table.Str
	}
}
