// Package container keeps a single named add-on container running on a
// Docker engine.
//
// # Overview
//
// A Runner owns the run/stop/inspect cycle for one container name:
//
//   - Run is idempotent: a running container is left alone.
//   - A stale container under the same name is stopped and removed
//     before a fresh one is launched.
//   - The started container's version is read from its environment
//     (HASSIO_VERSION by default) with ExtractValue.
//
// Restarts after a crash are left to the engine's on-failure restart
// policy; the Runner does not observe them.
//
// # Errors
//
// Failures of the engine itself are returned as *EngineError. Missing
// containers are not errors for Stop; Status and Logs report ErrNotFound.
//
// # Example
//
//	cli, err := container.NewClient(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer cli.Close()
//
//	spec, err := container.NewAddonSpec(&container.AddonConfig{
//	    Slug:  "mosquitto",
//	    Image: "homeassistant/amd64-addon-mosquitto:6.4.0",
//	    Ports: map[string]int{"1883/tcp": 1883},
//	}, container.Paths{ConfigDir: "/usr/share/hassio/homeassistant", SSLDir: "/usr/share/hassio/ssl"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	runner := container.NewRunner(cli)
//	started, err := runner.Run(ctx, spec)
package container
