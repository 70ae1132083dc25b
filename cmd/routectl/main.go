package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "seed":
		err = runSeed(os.Args[2:])
	case "import":
		err = runImport(os.Args[2:])
	case "export":
		err = runExport(os.Args[2:])
	case "plan":
		err = runPlan(os.Args[2:], os.Stdout)
	case "version":
		fmt.Println("routectl " + version)
	case "help", "--help", "-h":
		printUsage()
	default:
		printUsage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `routectl - Jeju travel route planner tools

Usage:
  routectl seed [flags]     Load the sample Jeju catalog into a SQLite db
  routectl import [flags]   Import places from an xlsx sheet into a SQLite db
  routectl export [flags]   Export the catalog of a SQLite db to xlsx
  routectl plan [flags]     Plan a route and print it as JSON or write xlsx
  routectl version          Show version

Run 'routectl <command> -h' for flags.
`)
}

func newLogger(verbose bool) *slog.Logger {
	if !verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
