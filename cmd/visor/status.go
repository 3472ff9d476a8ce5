package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/everydev1618/govisor/container"
)

// statusCmd shows the engine's view of an add-on container.
func statusCmd(args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	flags := addCommonFlags(fs)

	fs.Usage = func() {
		fmt.Println(`Usage: visor status [slug] [options]

Show the state of an add-on container. Without a slug, every configured
add-on is listed.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	e := setup(ctx, flags)
	defer e.close()

	slugs := fs.Args()
	if len(slugs) == 0 {
		for _, a := range e.cfg.Addons {
			slugs = append(slugs, a.Slug)
		}
	}

	for _, slug := range slugs {
		name := container.AddonName(slug)
		st, err := e.runner.Status(ctx, name)
		if container.IsNotFound(err) {
			fmt.Printf("%-24s absent\n", name)
			continue
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			cancel()
			e.close()
			os.Exit(1)
		}

		version := "-"
		if st.Version != nil {
			version = *st.Version
		}
		fmt.Printf("%-24s %-10s %s  %s  version %s  created %s\n",
			name, st.State, st.ID, st.Image, version, st.Created.Format(time.RFC3339))
	}
}

// logsCmd prints the logs of an add-on container.
func logsCmd(args []string) {
	fs := flag.NewFlagSet("logs", flag.ExitOnError)
	flags := addCommonFlags(fs)
	tail := fs.Int("tail", 100, "Number of lines to show (0 for all)")

	fs.Usage = func() {
		fmt.Println(`Usage: visor logs <slug> [options]

Print the stdout and stderr of an add-on container.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: no add-on slug specified")
		fs.Usage()
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	e := setup(ctx, flags)
	defer e.close()

	out, err := e.runner.Logs(ctx, container.AddonName(fs.Arg(0)), *tail)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		e.close()
		os.Exit(1)
	}
	fmt.Print(out)
}
