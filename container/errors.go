package container

import (
	"errors"
	"fmt"

	"github.com/docker/docker/errdefs"
)

var (
	// ErrInvalidSpec is returned when a Spec cannot be turned into a container.
	ErrInvalidSpec = errors.New("invalid container spec")

	// ErrNotFound is returned when no container exists under a name.
	ErrNotFound = errors.New("container not found")
)

// EngineError reports a failed call against the container engine.
type EngineError struct {
	Op   string
	Name string
	Err  error
}

func (e *EngineError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("engine %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("engine %s %s: %v", e.Op, e.Name, e.Err)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

// IsEngineError reports whether err came from the container engine.
func IsEngineError(err error) bool {
	var ee *EngineError
	return errors.As(err, &ee)
}

// IsNotFound reports whether err means the container does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errdefs.IsNotFound(err)
}
