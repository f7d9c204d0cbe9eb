package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/razeghi71/dqexpr/ast"
	"github.com/razeghi71/dqexpr/engine"
	"github.com/razeghi71/dqexpr/loader"
	"github.com/razeghi71/dqexpr/table"
)

var (
	stmtFlag    = flag.String("s", "", "statement file (JSON); - reads standard input")
	formatFlag  = flag.String("f", "table", "output format: table, csv, jsonl")
	workersFlag = flag.Int("workers", 0, "goroutines used by reductions (0 = GOMAXPROCS)")
	chunkFlag   = flag.Int("chunk", 0, "rows per reduction chunk (0 = default)")
	verboseFlag = flag.Bool("v", false, "log evaluation stages to stderr")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s -s stmt.json [options] <file> [file...]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Evaluates a select statement over data files. The first file is\n")
		fmt.Fprintf(os.Stderr, "frame f, the following ones are joined row by row.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExample statement:\n")
		fmt.Fprintf(os.Stderr, "  {\"select\": [{\"op\": \"sum\", \"args\": [{\"f\": \"age\"}]}], \"by\": [{\"f\": \"city\"}]}\n")
	}
	flag.Parse()

	if *stmtFlag == "" || flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	stmt, err := readStatement(*stmtFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "statement error: %v\n", err)
		os.Exit(1)
	}

	frames := make([]*table.Frame, flag.NArg())
	for i, name := range flag.Args() {
		frames[i], err = loader.Load(name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "load error: %v\n", err)
			os.Exit(1)
		}
	}

	cfg := engine.DefaultConfig()
	if *workersFlag > 0 {
		cfg.Workers = *workersFlag
	}
	if *chunkFlag > 0 {
		cfg.ChunkSize = *chunkFlag
	}
	if *verboseFlag {
		cfg.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	result, err := engine.New(cfg).Execute(stmt, frames...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := write(os.Stdout, *formatFlag, result); err != nil {
		fmt.Fprintf(os.Stderr, "output error: %v\n", err)
		os.Exit(1)
	}
}

func readStatement(name string) (*ast.Statement, error) {
	var data []byte
	var err error
	if name == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return nil, err
	}
	return ast.DecodeStatement(data)
}
