// Command gen writes the sample data files used when trying out dqexpr:
// testdata/sales.parquet, testdata/sales.avro and testdata/by_city.json.
package main

import (
	"log"
	"os"

	goavro "github.com/linkedin/goavro/v2"
	parquet "github.com/parquet-go/parquet-go"
)

type Sale struct {
	City   string  `parquet:"city"`
	Store  int32   `parquet:"store"`
	Amount float64 `parquet:"amount"`
}

var sales = []Sale{
	{"NY", 1, 120.5},
	{"LA", 2, 80},
	{"NY", 1, 99.5},
	{"SF", 3, 42},
	{"LA", 2, 18.25},
	{"NY", 4, 300},
}

const avroSchema = `{"type": "record", "name": "sale", "fields": [
	{"name": "city", "type": "string"},
	{"name": "store", "type": "int"},
	{"name": "amount", "type": "double"}
]}`

const byCity = `{
  "select": [
    {"op": "sum", "args": [{"f": "amount"}], "as": "total"},
    {"op": "count0", "as": "n"}
  ],
  "by": [{"f": "city"}],
  "having": {"op": "gt", "args": [{"f": "total"}, {"int": 50}]}
}
`

func main() {
	writeParquet("testdata/sales.parquet")
	writeAvro("testdata/sales.avro")
	if err := os.WriteFile("testdata/by_city.json", []byte(byCity), 0o644); err != nil {
		log.Fatal(err)
	}
}

func writeParquet(path string) {
	f, err := os.Create(path)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	w := parquet.NewWriter(f)
	for _, s := range sales {
		if err := w.Write(s); err != nil {
			log.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		log.Fatal(err)
	}
}

func writeAvro(path string) {
	f, err := os.Create(path)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	w, err := goavro.NewOCFWriter(goavro.OCFConfig{W: f, Schema: avroSchema})
	if err != nil {
		log.Fatal(err)
	}
	records := make([]map[string]any, len(sales))
	for i, s := range sales {
		records[i] = map[string]any{"city": s.City, "store": s.Store, "amount": s.Amount}
	}
	if err := w.Append(records); err != nil {
		log.Fatal(err)
	}
}
