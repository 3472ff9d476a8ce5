package main

import (
	"testing"

	"github.com/everydev1618/govisor/internal/config"
)

func TestStarterConfigIsValid(t *testing.T) {
	t.Setenv("SUPERVISOR_TOKEN", "token")

	cfg, err := config.Parse([]byte(starterConfig))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	spec, err := cfg.Spec("mosquitto")
	if err != nil {
		t.Fatalf("Spec: %v", err)
	}
	if spec.Name != "addon_mosquitto" {
		t.Errorf("Name = %q", spec.Name)
	}
	if cfg.Core.Token != "token" {
		t.Errorf("Core.Token = %q", cfg.Core.Token)
	}
}
