// Package main is the entry point for the longview pager.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/longview/internal/app"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	application, err := app.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}

	// Ensure cleanup on all exit paths
	defer application.Shutdown()

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create screen: %v\n", err)
		return 1
	}
	if err := application.SetScreen(screen); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to set screen: %v\n", err)
		return 1
	}

	// Handle signals for graceful shutdown
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-signals
		// Fini unblocks the view's event loop; cleanup runs via the
		// deferred Shutdown.
		screen.Fini()
	}()

	if err := application.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	return 0
}

func parseFlags() app.Options {
	var opts app.Options
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.BoolVar(&opts.Follow, "follow", false, "Tail the file, loading new lines as they appear")
	flag.BoolVar(&opts.Follow, "f", false, "Tail the file (shorthand)")
	flag.BoolVar(&opts.Chunked, "chunked", false, "Force chunked mode regardless of file size")
	flag.IntVar(&opts.ChunkSize, "chunk-size", 0, "Lines per chunk (0 uses configuration)")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&opts.LogPath, "log", "", "Append logs to a file")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Longview - pager for very large line-oriented files\n\n")
		fmt.Fprintf(os.Stderr, "Usage: longview [options] [file]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  longview huge.log             View a file\n")
		fmt.Fprintf(os.Stderr, "  longview -f service.log       View and tail a growing log\n")
		fmt.Fprintf(os.Stderr, "  longview -chunked small.txt   Force chunked storage\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("Longview %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	if opts.LogLevel != "" {
		switch opts.LogLevel {
		case "debug", "info", "warn", "error":
			// Valid
		default:
			fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.LogLevel)
			os.Exit(1)
		}
	}

	if flag.NArg() > 1 {
		fmt.Fprintf(os.Stderr, "Error: expected at most one file, got %d\n", flag.NArg())
		os.Exit(1)
	}
	if flag.NArg() == 1 {
		opts.File = flag.Arg(0)
	}

	return opts
}
