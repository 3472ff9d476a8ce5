package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/network"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	visorcontainer "github.com/everydev1618/govisor/container"
	"github.com/everydev1618/govisor/monitor"
)

// stubEngine starts every container it is asked to create. Methods the
// run job does not reach are left to the nil embedded interface.
type stubEngine struct {
	visorcontainer.Engine
	listErr error
}

func (s *stubEngine) ContainerList(ctx context.Context, options container.ListOptions) ([]types.Container, error) {
	return nil, s.listErr
}

func (s *stubEngine) ContainerCreate(ctx context.Context, config *container.Config, hostConfig *container.HostConfig, networkingConfig *network.NetworkingConfig, platform *ocispec.Platform, name string) (container.CreateResponse, error) {
	return container.CreateResponse{ID: "0123456789abcdef"}, nil
}

func (s *stubEngine) ContainerStart(ctx context.Context, id string, options container.StartOptions) error {
	return nil
}

func (s *stubEngine) ContainerInspect(ctx context.Context, id string) (types.ContainerJSON, error) {
	return types.ContainerJSON{
		ContainerJSONBase: &types.ContainerJSONBase{ID: id, State: &types.ContainerState{Running: true}},
		Config:            &container.Config{Env: []string{"HASSIO_VERSION=1.0.0"}},
	}, nil
}

type progressLog []float64

func (p *progressLog) SendProgress(progress float64, buffer []byte) {
	*p = append(*p, progress)
}

func testJobSpec() visorcontainer.Spec {
	return visorcontainer.Spec{
		Image:     "example/addon:1",
		Name:      "addon_example",
		ConfigDir: "/srv/config",
		SSLDir:    "/srv/ssl",
	}
}

func TestRunJobReportsProgress(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	runner := visorcontainer.NewRunner(&stubEngine{}, visorcontainer.WithLogger(logger))

	var got progressLog
	started, err := runJob(context.Background(), runner, testJobSpec(), &got)
	if err != nil || !started {
		t.Fatalf("runJob = %v, %v", started, err)
	}
	if len(got) != 2 || got[0] != 0 || got[1] != 100 {
		t.Errorf("progress = %v, want [0 100]", got)
	}
	if v := runner.Version(); v == nil || *v != "1.0.0" {
		t.Errorf("Version = %v", v)
	}
}

func TestRunJobStopsReportingOnFailure(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	runner := visorcontainer.NewRunner(&stubEngine{listErr: errors.New("connection refused")}, visorcontainer.WithLogger(logger))

	var got progressLog
	started, err := runJob(context.Background(), runner, testJobSpec(), &got)
	if started || !visorcontainer.IsEngineError(err) {
		t.Fatalf("runJob = %v, %v; want false, *EngineError", started, err)
	}
	if len(got) != 1 {
		t.Errorf("progress = %v, want only the start update", got)
	}
}

var _ monitor.JobMonitor = (*progressLog)(nil)
