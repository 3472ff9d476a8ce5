package main

import (
	"bytes"
	"testing"

	"github.com/everydev1618/govisor/monitor"
)

func TestWatchProgressPrintsUpdates(t *testing.T) {
	broker := monitor.NewBroker()
	var out bytes.Buffer
	done := watchProgress(&out, broker.Subscribe("addon_run_example"))

	r := monitor.NewReporter(monitor.Multi{monitor.Discard, broker}, "addon_run_example")
	r.SendProgress(0, nil)
	r.SendProgress(100, nil)
	monitor.NewReporter(broker, "other_job").SendProgress(50, nil)

	broker.Close()
	<-done

	want := "  addon_run_example: 0%\n  addon_run_example: 100%\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}
