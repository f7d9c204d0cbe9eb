package loader

import (
	"os"
	"path/filepath"
	"testing"

	goavro "github.com/linkedin/goavro/v2"
	"github.com/parquet-go/parquet-go"
	"github.com/razeghi71/dqexpr/table"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func expectTypes(t *testing.T, f *table.Frame, want map[string]table.SType) {
	t.Helper()
	for name, st := range want {
		i := f.ColIndex(name)
		if i < 0 {
			t.Errorf("column %q missing from %v", name, f.Names)
			continue
		}
		if got := f.Column(i).Type; got != st {
			t.Errorf("column %q: expected %s, got %s", name, st, got)
		}
	}
}

func TestLoadCSV(t *testing.T) {
	path := writeFile(t, "users.csv", "name, age, score, ok, empty\nAlice, 30, 1.5, true,\nBob, 25, 2, false, null\n")
	f, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if f.NRows() != 2 {
		t.Fatalf("expected 2 rows, got %d", f.NRows())
	}
	expectTypes(t, f, map[string]table.SType{
		"name":  table.Str,
		"age":   table.Int64,
		"score": table.Float64,
		"ok":    table.Bool,
		"empty": table.Void,
	})
	if got := f.Get(1, "score").Float; got != 2 {
		t.Errorf("expected integer cell widened to 2.0, got %v", got)
	}
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "users.json", `[{"name": "Alice", "age": 30}, {"name": "Bob", "tags": [1]}]`)
	f, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(f.Names) != 3 || f.Names[0] != "age" || f.Names[2] != "tags" {
		t.Fatalf("unexpected columns %v", f.Names)
	}
	expectTypes(t, f, map[string]table.SType{"age": table.Int64, "name": table.Str, "tags": table.Obj})
	if !f.Get(1, "age").IsNull() {
		t.Errorf("absent key should be missing")
	}
}

func TestLoadJSONL(t *testing.T) {
	path := writeFile(t, "events.jsonl", "{\"v\": 1}\n\n{\"v\": \"x\"}\n")
	f, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	expectTypes(t, f, map[string]table.SType{"v": table.Obj})

	bad := writeFile(t, "bad.jsonl", "{\"v\": 1}\n{oops\n")
	if _, err := Load(bad); err == nil {
		t.Error("expected error for invalid line")
	}
}

func TestLoadAvro(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.avro")
	out, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	w, err := goavro.NewOCFWriter(goavro.OCFConfig{
		W: out,
		Schema: `{"type": "record", "name": "user", "fields": [
			{"name": "name", "type": "string"},
			{"name": "age", "type": "long"},
			{"name": "score", "type": ["null", "double"]}
		]}`,
	})
	if err != nil {
		t.Fatal(err)
	}
	err = w.Append([]map[string]any{
		{"name": "Alice", "age": int64(30), "score": goavro.Union("double", 1.5)},
		{"name": "Bob", "age": int64(25), "score": nil},
	})
	if err != nil {
		t.Fatal(err)
	}
	out.Close()

	f, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if f.NRows() != 2 || f.Names[0] != "name" {
		t.Fatalf("unexpected frame %s", f)
	}
	expectTypes(t, f, map[string]table.SType{"name": table.Str, "age": table.Int64, "score": table.Float64})
	if f.Get(0, "score").Float != 1.5 || !f.Get(1, "score").IsNull() {
		t.Errorf("union values not unwrapped: %s", f)
	}
}

type parquetRow struct {
	ID    int64    `parquet:"id"`
	Name  string   `parquet:"name"`
	Score *float64 `parquet:"score,optional"`
}

func TestLoadParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.parquet")
	out, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	score := 2.5
	w := parquet.NewGenericWriter[parquetRow](out)
	if _, err := w.Write([]parquetRow{{1, "Alice", &score}, {2, "Bob", nil}}); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	out.Close()

	f, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(f.Names) != 3 || f.Names[0] != "id" || f.Names[2] != "score" {
		t.Fatalf("unexpected columns %v", f.Names)
	}
	expectTypes(t, f, map[string]table.SType{"id": table.Int64, "name": table.Str, "score": table.Float64})
	if f.Get(1, "name").Str != "Bob" || !f.Get(1, "score").IsNull() {
		t.Errorf("unexpected frame %s", f)
	}
}

func TestLoadUnsupported(t *testing.T) {
	if _, err := Load("data.xlsx"); err == nil {
		t.Error("expected error for unknown extension")
	}
}
