package container

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/errdefs"
	"github.com/docker/docker/pkg/stdcopy"
)

// DefaultStopTimeout is how many seconds the engine waits before killing
// a container that does not stop on its own.
const DefaultStopTimeout = 10

// Instance is the live handle of a container started by a Runner.
type Instance struct {
	ID      string
	Name    string
	Image   string
	Version *string
	Running bool
}

// Runner keeps one named container running.
//
// Runner does no locking: callers must serialize Run and Stop for the
// same name, since the engine is the only source of truth.
type Runner struct {
	engine      Engine
	logger      *slog.Logger
	versionKey  string
	stopTimeout int

	instance *Instance
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the logger used for run failures and state changes.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithVersionKey sets the environment variable the version is read from.
func WithVersionKey(key string) RunnerOption {
	return func(r *Runner) {
		if key != "" {
			r.versionKey = key
		}
	}
}

// WithStopTimeout sets the grace period, in seconds, given to a stopping container.
func WithStopTimeout(seconds int) RunnerOption {
	return func(r *Runner) {
		r.stopTimeout = seconds
	}
}

// NewRunner creates a runner on top of a container engine.
func NewRunner(engine Engine, opts ...RunnerOption) *Runner {
	r := &Runner{
		engine:      engine,
		logger:      slog.Default(),
		versionKey:  DefaultVersionKey,
		stopTimeout: DefaultStopTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("component", "container")
	return r
}

// Run starts the container described by spec.
//
// It returns false with a nil error when a container with the same name is
// already running. Any existing, non-running container under that name is
// removed first. Engine failures are logged and returned as *EngineError;
// the caller decides when to try again.
func (r *Runner) Run(ctx context.Context, spec Spec) (bool, error) {
	if err := spec.Validate(); err != nil {
		return false, err
	}

	if r.IsRunning(ctx, spec.Name) {
		r.logger.Debug("container already running", "name", spec.Name)
		return false, nil
	}

	// cleanup old container
	if err := r.Stop(ctx, spec.Name); err != nil {
		r.logger.Error("can't remove old container", "name", spec.Name, "image", spec.Image, "error", err)
		return false, err
	}

	inst, err := r.launch(ctx, spec)
	if err != nil {
		r.logger.Error("can't run container", "name", spec.Name, "image", spec.Image, "error", err)
		return false, err
	}
	r.instance = inst

	version := "unknown"
	if inst.Version != nil {
		version = *inst.Version
	}
	r.logger.Info("container started", "name", inst.Name, "id", shortID(inst.ID), "version", version)
	return true, nil
}

func (r *Runner) launch(ctx context.Context, spec Spec) (*Instance, error) {
	cfg, hostCfg, err := spec.engineConfig()
	if err != nil {
		return nil, err
	}

	resp, err := r.engine.ContainerCreate(ctx, cfg, hostCfg, nil, nil, spec.Name)
	if err != nil {
		return nil, &EngineError{Op: "create", Name: spec.Name, Err: err}
	}

	if err := r.engine.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		r.discard(ctx, resp.ID)
		return nil, &EngineError{Op: "start", Name: spec.Name, Err: err}
	}

	info, err := r.engine.ContainerInspect(ctx, resp.ID)
	if err != nil {
		r.discard(ctx, resp.ID)
		return nil, &EngineError{Op: "inspect", Name: spec.Name, Err: err}
	}

	inst := &Instance{
		ID:    resp.ID,
		Name:  spec.Name,
		Image: spec.Image,
	}
	if info.ContainerJSONBase != nil && info.State != nil {
		inst.Running = info.State.Running
	}
	if info.Config != nil {
		inst.Version = ExtractValue(info.Config.Env, r.versionKey)
	}
	return inst, nil
}

// discard force-removes a container left behind by a failed launch.
func (r *Runner) discard(ctx context.Context, id string) {
	err := r.engine.ContainerRemove(ctx, id, container.RemoveOptions{Force: true})
	if err != nil && !errdefs.IsNotFound(err) {
		r.logger.Warn("can't remove failed container", "id", shortID(id), "error", err)
	}
}

// Stop stops and removes the container with the given name. A missing
// container is not an error.
func (r *Runner) Stop(ctx context.Context, name string) error {
	c, err := r.lookup(ctx, name)
	if IsNotFound(err) {
		r.drop(name)
		return nil
	}
	if err != nil {
		return err
	}

	timeout := r.stopTimeout
	if err := r.engine.ContainerStop(ctx, c.ID, container.StopOptions{Timeout: &timeout}); err != nil && !errdefs.IsNotFound(err) {
		return &EngineError{Op: "stop", Name: name, Err: err}
	}
	if err := r.engine.ContainerRemove(ctx, c.ID, container.RemoveOptions{Force: true}); err != nil && !errdefs.IsNotFound(err) {
		return &EngineError{Op: "remove", Name: name, Err: err}
	}

	r.drop(name)
	r.logger.Info("container removed", "name", name, "id", shortID(c.ID))
	return nil
}

func (r *Runner) drop(name string) {
	if r.instance != nil && r.instance.Name == name {
		r.instance = nil
	}
}

// IsRunning reports whether a container with the given name is running.
// Engine errors read as not running.
func (r *Runner) IsRunning(ctx context.Context, name string) bool {
	c, err := r.lookup(ctx, name)
	if err != nil {
		return false
	}
	return c.State == "running"
}

// Instance returns the container started by the last successful Run, or nil.
func (r *Runner) Instance() *Instance {
	return r.instance
}

// Version returns the version extracted from the running instance, or nil.
func (r *Runner) Version() *string {
	if r.instance == nil {
		return nil
	}
	return r.instance.Version
}

// Status holds the engine's view of a named container.
type Status struct {
	ID      string
	Name    string
	Image   string
	State   string
	Running bool
	Created time.Time
	Version *string
}

// Status inspects the container with the given name.
func (r *Runner) Status(ctx context.Context, name string) (*Status, error) {
	c, err := r.lookup(ctx, name)
	if err != nil {
		return nil, err
	}

	info, err := r.engine.ContainerInspect(ctx, c.ID)
	if err != nil {
		if errdefs.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, &EngineError{Op: "inspect", Name: name, Err: err}
	}

	st := &Status{
		ID:    shortID(c.ID),
		Name:  name,
		Image: c.Image,
		State: c.State,
	}
	if info.ContainerJSONBase != nil {
		st.Created, _ = time.Parse(time.RFC3339Nano, info.Created)
		if info.State != nil {
			st.Running = info.State.Running
		}
	}
	if info.Config != nil {
		st.Image = info.Config.Image
		st.Version = ExtractValue(info.Config.Env, r.versionKey)
	}
	return st, nil
}

// Logs returns the last tail lines of the container's stdout and stderr.
func (r *Runner) Logs(ctx context.Context, name string, tail int) (string, error) {
	c, err := r.lookup(ctx, name)
	if err != nil {
		return "", err
	}

	options := container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Tail:       "all",
	}
	if tail > 0 {
		options.Tail = strconv.Itoa(tail)
	}

	reader, err := r.engine.ContainerLogs(ctx, c.ID, options)
	if err != nil {
		return "", &EngineError{Op: "logs", Name: name, Err: err}
	}
	defer reader.Close()

	var output strings.Builder
	_, err = stdcopy.StdCopy(&output, &output, reader)
	if err != nil && err != io.EOF {
		return "", &EngineError{Op: "logs", Name: name, Err: err}
	}

	return output.String(), nil
}

// lookup finds a container by exact name.
func (r *Runner) lookup(ctx context.Context, name string) (types.Container, error) {
	containers, err := r.engine.ContainerList(ctx, container.ListOptions{
		All: true,
		Filters: filters.NewArgs(
			filters.Arg("name", name),
		),
	})
	if err != nil {
		return types.Container{}, &EngineError{Op: "list", Name: name, Err: err}
	}

	// The name filter matches substrings, so compare exactly.
	for _, c := range containers {
		for _, n := range c.Names {
			if n == "/"+name {
				return c, nil
			}
		}
	}

	return types.Container{}, fmt.Errorf("%w: %s", ErrNotFound, name)
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
