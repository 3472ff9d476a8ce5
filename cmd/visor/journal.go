package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/everydev1618/govisor/internal/config"
	"github.com/everydev1618/govisor/internal/journal"
)

// journalCmd lists recorded job progress.
func journalCmd(args []string) {
	fs := flag.NewFlagSet("journal", flag.ExitOnError)
	configPath := fs.String("config", config.DefaultPath, "Path to visor.yaml")
	limit := fs.Int("limit", 20, "Number of entries to show")
	job := fs.String("job", "", "Only show the latest entry of this job")

	fs.Usage = func() {
		fmt.Println(`Usage: visor journal [options]

Show job progress recorded in the journal database.

Options:`)
		fs.PrintDefaults()
		fmt.Println(`
Examples:
  visor journal --limit 50
  visor journal --job addon_run_mosquitto`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", *configPath, err)
		os.Exit(1)
	}
	if cfg.Journal == "" {
		fmt.Fprintln(os.Stderr, "Error: no journal configured")
		os.Exit(1)
	}

	j, err := journal.Open(cfg.Journal, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening journal: %v\n", err)
		os.Exit(1)
	}
	defer j.Close()

	var entries []journal.Entry
	if *job != "" {
		e, err := j.Latest(*job)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			j.Close()
			os.Exit(1)
		}
		if e != nil {
			entries = append(entries, *e)
		}
	} else {
		entries, err = j.Recent(*limit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			j.Close()
			os.Exit(1)
		}
	}

	if len(entries) == 0 {
		fmt.Println("No progress recorded.")
		return
	}
	for _, e := range entries {
		fmt.Printf("%s  %-28s %6.1f%%  %s\n",
			e.CreatedAt.Local().Format(time.DateTime), e.Name, e.Progress, e.Session[:8])
	}
}
