package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/everydev1618/govisor/container"
	"github.com/everydev1618/govisor/monitor"
)

// runCmd starts an add-on container.
func runCmd(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	flags := addCommonFlags(fs)
	job := fs.String("job", "", "Job name progress is reported under (default addon_run_<slug>)")

	fs.Usage = func() {
		fmt.Println(`Usage: visor run <slug> [options]

Start the container of a configured add-on. A running container is left
alone; a stopped one is removed and replaced.

Options:`)
		fs.PrintDefaults()
		fmt.Println(`
Examples:
  visor run mosquitto
  visor run mosquitto --config /etc/visor.yaml --verbose`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: no add-on slug specified")
		fs.Usage()
		os.Exit(1)
	}
	slug := fs.Arg(0)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e := setup(ctx, flags)
	defer e.close()

	spec, err := e.cfg.Spec(slug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitWith(1, stop, e)
	}

	sender, release := e.progressSender(ctx)
	defer release()

	name := *job
	if name == "" {
		name = "addon_run_" + slug
	}

	// With -verbose, progress is also printed as it happens.
	finishWatch := func() {}
	if *flags.verbose {
		broker := monitor.NewBroker()
		done := watchProgress(os.Stderr, broker.Subscribe(name))
		sender = monitor.Multi{sender, broker}
		finishWatch = func() {
			broker.Close()
			<-done
		}
	}

	started, err := runJob(ctx, e.runner, spec, monitor.NewReporter(sender, name))
	finishWatch()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: can't run %s: %v\n", spec.Name, err)
		release()
		exitWith(1, stop, e)
	}

	if !started {
		fmt.Printf("%s is already running\n", spec.Name)
		return
	}

	version := "unknown"
	if v := e.runner.Version(); v != nil {
		version = *v
	}
	fmt.Printf("Started %s (%s), version %s\n", spec.Name, spec.Image, version)
	if ports := spec.PortList(); len(ports) > 0 {
		fmt.Printf("  ports: %s\n", strings.Join(ports, ", "))
	}
}

// runJob drives the runner and reports progress as it goes.
func runJob(ctx context.Context, runner *container.Runner, spec container.Spec, m monitor.JobMonitor) (bool, error) {
	m.SendProgress(0, nil)
	started, err := runner.Run(ctx, spec)
	if err != nil {
		return false, err
	}
	m.SendProgress(100, nil)
	return started, nil
}

// stopCmd stops and removes an add-on container.
func stopCmd(args []string) {
	fs := flag.NewFlagSet("stop", flag.ExitOnError)
	flags := addCommonFlags(fs)

	fs.Usage = func() {
		fmt.Println(`Usage: visor stop <slug> [options]

Stop and remove the container of an add-on. Stopping a container that does
not exist succeeds.

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
	slug := fs.Arg(0)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e := setup(ctx, flags)
	defer e.close()

	if _, err := e.cfg.Addon(slug); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitWith(1, stop, e)
	}

	name := container.AddonName(slug)
	if err := e.runner.Stop(ctx, name); err != nil {
		fmt.Fprintf(os.Stderr, "Error: can't stop %s: %v\n", name, err)
		exitWith(1, stop, e)
	}
	fmt.Printf("Stopped %s\n", name)
}

// exitWith releases what deferred calls would have and exits.
func exitWith(code int, stop context.CancelFunc, e *env) {
	stop()
	e.close()
	os.Exit(code)
}
