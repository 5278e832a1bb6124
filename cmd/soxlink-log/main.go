// Command soxlink-log views and analyzes soxlink protocol log files.
//
// Log files are written by soxlink when started with -protocol-log.
//
// Usage:
//
//	soxlink-log <command> [flags] <file.soxlog>
//
// Commands:
//
//	view     View log file in human-readable format
//	export   Export log file to JSONL or CSV
//	stats    Show statistics about the log file
//
// Examples:
//
//	# View requests sent to one endpoint
//	soxlink-log view -endpoint plant1 -category request bridge.soxlog
//
//	# Export to CSV
//	soxlink-log export -format csv -o bridge.csv bridge.soxlog
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/soxlink/soxlink-go/cmd/soxlink-log/commands"
)

const usage = `soxlink-log - soxlink protocol log viewer

Usage:
  soxlink-log <command> [flags] <file.soxlog>

Commands:
  view     View log file in human-readable format
  export   Export log file to JSONL or CSV
  stats    Show statistics about the log file

Use "soxlink-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func requirePath(fs *flag.FlagSet) string {
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func runView(args []string) {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `soxlink-log view - View log file in human-readable format

Usage:
  soxlink-log view [flags] <file.soxlog>

Flags:
`)
		fs.PrintDefaults()
	}

	endpoint := fs.String("endpoint", "", "Filter by endpoint name")
	connID := fs.String("conn-id", "", "Filter by connection ID")
	direction := fs.String("direction", "", "Filter by direction (in, out)")
	category := fs.String("category", "", "Filter by category (state, request, notification, error)")
	timeStart := fs.String("time-start", "", "Filter by start time (RFC3339)")
	timeEnd := fs.String("time-end", "", "Filter by end time (RFC3339)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := requirePath(fs)

	filter := commands.ViewFilter{Endpoint: *endpoint, ConnID: *connID}
	if *direction != "" {
		d, err := commands.ParseDirectionFlag(*direction)
		if err != nil {
			fail(err)
		}
		filter.Direction = &d
	}
	if *category != "" {
		c, err := commands.ParseCategoryFlag(*category)
		if err != nil {
			fail(err)
		}
		filter.Category = &c
	}
	if *timeStart != "" {
		t, err := commands.ParseTimeFlag(*timeStart)
		if err != nil {
			fail(err)
		}
		filter.TimeStart = t
	}
	if *timeEnd != "" {
		t, err := commands.ParseTimeFlag(*timeEnd)
		if err != nil {
			fail(err)
		}
		filter.TimeEnd = t
	}

	if err := commands.RunView(path, filter, os.Stdout); err != nil {
		fail(err)
	}
}

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `soxlink-log export - Export log file to JSONL or CSV

Usage:
  soxlink-log export [flags] <file.soxlog>

Flags:
`)
		fs.PrintDefaults()
	}

	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.String("o", "", "Output file (default: stdout)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := requirePath(fs)

	if err := commands.RunExport(path, *format, *output); err != nil {
		fail(err)
	}
}

func runStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `soxlink-log stats - Show statistics about the log file

Usage:
  soxlink-log stats <file.soxlog>

`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := requirePath(fs)

	if err := commands.RunStats(path, os.Stdout); err != nil {
		fail(err)
	}
}
