package container

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/errdefs"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

type fakeContainer struct {
	id      string
	name    string
	image   string
	state   string
	env     []string
	created string
	logs    []byte
}

// fakeEngine is an in-memory Engine keyed by container name.
type fakeEngine struct {
	containers map[string]*fakeContainer
	nextID     int

	// env is given to every created container.
	env []string

	listErr   error
	createErr error
	startErr  error
	stopErr   error
	removeErr error

	lastConfig     *container.Config
	lastHostConfig *container.HostConfig

	creates int
	starts  int
	stops   int
	removes int
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{containers: make(map[string]*fakeContainer)}
}

func (f *fakeEngine) add(name, state string, env ...string) *fakeContainer {
	f.nextID++
	c := &fakeContainer{
		id:      fmt.Sprintf("%064d", f.nextID),
		name:    name,
		image:   "example/image:1",
		state:   state,
		env:     env,
		created: "2024-01-02T03:04:05.000000006Z",
	}
	f.containers[name] = c
	return c
}

func (f *fakeEngine) byID(id string) *fakeContainer {
	for _, c := range f.containers {
		if c.id == id {
			return c
		}
	}
	return nil
}

func (f *fakeEngine) ContainerList(ctx context.Context, options container.ListOptions) ([]types.Container, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	want := options.Filters.Get("name")
	var out []types.Container
	for _, c := range f.containers {
		if len(want) > 0 && !strings.Contains(c.name, want[0]) {
			continue
		}
		out = append(out, types.Container{
			ID:     c.id,
			Names:  []string{"/" + c.name},
			Image:  c.image,
			State:  c.state,
			Labels: map[string]string{},
		})
	}
	return out, nil
}

func (f *fakeEngine) ContainerInspect(ctx context.Context, id string) (types.ContainerJSON, error) {
	c := f.byID(id)
	if c == nil {
		return types.ContainerJSON{}, errdefs.NotFound(errors.New("no such container"))
	}
	return types.ContainerJSON{
		ContainerJSONBase: &types.ContainerJSONBase{
			ID:      c.id,
			Name:    "/" + c.name,
			Created: c.created,
			State: &types.ContainerState{
				Status:  c.state,
				Running: c.state == "running",
			},
		},
		Config: &container.Config{
			Image: c.image,
			Env:   c.env,
		},
	}, nil
}

func (f *fakeEngine) ContainerCreate(ctx context.Context, config *container.Config, hostConfig *container.HostConfig, networkingConfig *network.NetworkingConfig, platform *ocispec.Platform, name string) (container.CreateResponse, error) {
	f.creates++
	f.lastConfig = config
	f.lastHostConfig = hostConfig
	if f.createErr != nil {
		return container.CreateResponse{}, f.createErr
	}
	if _, exists := f.containers[name]; exists {
		return container.CreateResponse{}, errdefs.Conflict(fmt.Errorf("name %s already in use", name))
	}
	c := f.add(name, "created", f.env...)
	c.image = config.Image
	return container.CreateResponse{ID: c.id}, nil
}

func (f *fakeEngine) ContainerStart(ctx context.Context, id string, options container.StartOptions) error {
	f.starts++
	if f.startErr != nil {
		return f.startErr
	}
	c := f.byID(id)
	if c == nil {
		return errdefs.NotFound(errors.New("no such container"))
	}
	c.state = "running"
	return nil
}

func (f *fakeEngine) ContainerStop(ctx context.Context, id string, options container.StopOptions) error {
	f.stops++
	if f.stopErr != nil {
		return f.stopErr
	}
	c := f.byID(id)
	if c == nil {
		return errdefs.NotFound(errors.New("no such container"))
	}
	c.state = "exited"
	return nil
}

func (f *fakeEngine) ContainerRemove(ctx context.Context, id string, options container.RemoveOptions) error {
	f.removes++
	if f.removeErr != nil {
		return f.removeErr
	}
	c := f.byID(id)
	if c == nil {
		return errdefs.NotFound(errors.New("no such container"))
	}
	delete(f.containers, c.name)
	return nil
}

func (f *fakeEngine) ContainerLogs(ctx context.Context, id string, options container.LogsOptions) (io.ReadCloser, error) {
	c := f.byID(id)
	if c == nil {
		return nil, errdefs.NotFound(errors.New("no such container"))
	}
	return io.NopCloser(strings.NewReader(string(c.logs))), nil
}
