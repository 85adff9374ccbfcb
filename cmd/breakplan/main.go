// Command breakplan plans breaks for a JSON list of calendar events.
//
// Usage:
//
//	breakplan [-f events.json] [-now 2026-10-14T09:00:00Z] [-v]
//
// Events are read from stdin when -f is omitted. Each event is an object with
// id, summary, start and end. The break list is written to stdout as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/omriShneor/serenity/internal/breaks"
	"github.com/omriShneor/serenity/internal/logging"
	"github.com/omriShneor/serenity/internal/timeutil"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "breakplan: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("breakplan", flag.ContinueOnError)
	file := fs.String("f", "", "read events from `file` instead of stdin")
	nowFlag := fs.String("now", "", "plan as of this ISO-8601 `time` (default: current time)")
	verbose := fs.Bool("v", false, "log planning details to stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}

	now := time.Now().UTC()
	if *nowFlag != "" {
		t, err := timeutil.ParseInstant(*nowFlag)
		if err != nil {
			return fmt.Errorf("invalid -now: %w", err)
		}
		now = t
	}

	in := stdin
	if *file != "" {
		f, err := os.Open(*file)
		if err != nil {
			return fmt.Errorf("failed to open events file: %w", err)
		}
		defer f.Close()
		in = f
	}

	var events []breaks.RawEvent
	if err := json.NewDecoder(in).Decode(&events); err != nil {
		return fmt.Errorf("failed to decode events: %w", err)
	}

	log := zerolog.Nop()
	if *verbose {
		log = logging.New("debug", true)
	}

	engine := breaks.New(breaks.Options{
		Store:  breaks.NewMemoryCache(breaks.DefaultCacheTTL),
		Clock:  func() time.Time { return now },
		Logger: log,
	})
	planned := engine.Suggest(context.Background(), breaks.Request{Scope: "breakplan", Events: events})

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(planned)
}
