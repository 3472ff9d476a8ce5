package main

import (
	"fmt"
	"io"

	"github.com/everydev1618/govisor/monitor"
)

// watchProgress prints every update on sub until it is closed. The
// returned channel is closed once printing has stopped.
func watchProgress(w io.Writer, sub *monitor.Subscription) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for env := range sub.C {
			fmt.Fprintf(w, "  %s: %.0f%%\n", env.Data.Name, env.Data.State.Progress)
		}
	}()
	return done
}
