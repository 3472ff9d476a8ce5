package container

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/go-connections/nat"
)

const (
	// LabelManagedBy marks containers created by govisor.
	LabelManagedBy = "govisor.managed-by"
	// LabelAddon carries the add-on slug a container was created for.
	LabelAddon = "govisor.addon"

	// ConfigTarget is where the config directory is bound inside the container.
	ConfigTarget = "/config"
	// SSLTarget is where the certificate directory is bound inside the container.
	SSLTarget = "/ssl"

	// MaxRestartRetries is the engine restart budget for a crashed instance.
	MaxRestartRetries = 10

	addonPrefix = "addon_"
)

// Spec describes the single container a Runner keeps alive.
type Spec struct {
	Image string
	Name  string

	// Ports maps a container port spec ("8080/tcp", "53/udp", "80")
	// to the host port it is published on.
	Ports map[string]int

	// ConfigDir and SSLDir are host paths, as seen by the Docker daemon.
	ConfigDir string
	SSLDir    string

	Labels map[string]string
}

// AddonConfig is the part of an add-on's configuration the runner cares about.
type AddonConfig struct {
	Slug  string         `yaml:"slug"`
	Image string         `yaml:"image"`
	Ports map[string]int `yaml:"ports,omitempty"`
}

// Paths are the host directories shared with every add-on.
type Paths struct {
	ConfigDir string `yaml:"config"`
	SSLDir    string `yaml:"ssl"`
}

// AddonName returns the canonical container name for an add-on slug.
func AddonName(slug string) string {
	return addonPrefix + slug
}

// NewAddonSpec builds the container spec for an add-on.
func NewAddonSpec(cfg *AddonConfig, paths Paths) (Spec, error) {
	if cfg == nil {
		return Spec{}, fmt.Errorf("%w: missing add-on config", ErrInvalidSpec)
	}
	if cfg.Slug == "" {
		return Spec{}, fmt.Errorf("%w: add-on slug is empty", ErrInvalidSpec)
	}

	ports := make(map[string]int, len(cfg.Ports))
	for k, v := range cfg.Ports {
		ports[k] = v
	}

	s := Spec{
		Image:     cfg.Image,
		Name:      AddonName(cfg.Slug),
		Ports:     ports,
		ConfigDir: paths.ConfigDir,
		SSLDir:    paths.SSLDir,
		Labels: map[string]string{
			LabelManagedBy: "govisor",
			LabelAddon:     cfg.Slug,
		},
	}
	if err := s.Validate(); err != nil {
		return Spec{}, err
	}
	return s, nil
}

// Validate checks that the spec can be handed to the engine.
func (s Spec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidSpec)
	}
	if s.Image == "" {
		return fmt.Errorf("%w: image is empty", ErrInvalidSpec)
	}
	if s.ConfigDir == "" || s.SSLDir == "" {
		return fmt.Errorf("%w: config and ssl directories are required", ErrInvalidSpec)
	}
	_, _, err := s.portBindings()
	return err
}

func (s Spec) portBindings() (nat.PortSet, nat.PortMap, error) {
	exposed := make(nat.PortSet, len(s.Ports))
	bindings := make(nat.PortMap, len(s.Ports))

	for raw, hostPort := range s.Ports {
		proto, port := nat.SplitProtoPort(strings.TrimSpace(raw))
		switch proto {
		case "tcp", "udp", "sctp":
		default:
			return nil, nil, fmt.Errorf("%w: port %q has unknown protocol %q", ErrInvalidSpec, raw, proto)
		}
		p, err := nat.NewPort(proto, port)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: port %q: %v", ErrInvalidSpec, raw, err)
		}
		if p.Int() < 1 || p.Int() > 65535 {
			return nil, nil, fmt.Errorf("%w: port %q out of range", ErrInvalidSpec, raw)
		}
		if hostPort < 1 || hostPort > 65535 {
			return nil, nil, fmt.Errorf("%w: host port %d for %q out of range", ErrInvalidSpec, hostPort, raw)
		}
		exposed[p] = struct{}{}
		bindings[p] = append(bindings[p], nat.PortBinding{HostPort: strconv.Itoa(hostPort)})
	}

	return exposed, bindings, nil
}

// engineConfig translates the spec into Docker create options.
func (s Spec) engineConfig() (*container.Config, *container.HostConfig, error) {
	exposed, bindings, err := s.portBindings()
	if err != nil {
		return nil, nil, err
	}

	labels := make(map[string]string, len(s.Labels))
	for k, v := range s.Labels {
		labels[k] = v
	}

	cfg := &container.Config{
		Image:        s.Image,
		ExposedPorts: exposed,
		Labels:       labels,
	}

	hostCfg := &container.HostConfig{
		NetworkMode:  container.NetworkMode("bridge"),
		PortBindings: bindings,
		Mounts: []mount.Mount{
			{
				Type:   mount.TypeBind,
				Source: s.ConfigDir,
				Target: ConfigTarget,
			},
			{
				Type:   mount.TypeBind,
				Source: s.SSLDir,
				Target: SSLTarget,
			},
		},
		RestartPolicy: container.RestartPolicy{
			Name:              container.RestartPolicyOnFailure,
			MaximumRetryCount: MaxRestartRetries,
		},
	}

	return cfg, hostCfg, nil
}

// PortList returns the spec's port keys in a stable order.
func (s Spec) PortList() []string {
	keys := make([]string, 0, len(s.Ports))
	for k := range s.Ports {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
