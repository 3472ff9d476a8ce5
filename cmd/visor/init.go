package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/everydev1618/govisor/internal/config"
)

const starterConfig = `# visor configuration
log_level: info
journal: ~/.visor/journal.db

# Host paths shared with every add-on, as seen by the Docker daemon.
paths:
  config: /usr/share/hassio/homeassistant
  ssl: /usr/share/hassio/ssl

# Front-end websocket that job progress is relayed to.
core:
  url: ws://homeassistant:8123/api/websocket
  token: ${SUPERVISOR_TOKEN}

addons:
  - slug: mosquitto
    image: homeassistant/amd64-addon-mosquitto:6.4.0
    ports:
      1883/tcp: 1883
`

// initCmd writes a starter configuration file.
func initCmd(args []string) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	path := fs.String("config", config.DefaultPath, "Where to write the configuration")
	force := fs.Bool("force", false, "Overwrite an existing file")

	fs.Usage = func() {
		fmt.Println(`Usage: visor init [options]

Write a starter visor.yaml.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if _, err := os.Stat(*path); err == nil && !*force {
		fmt.Fprintf(os.Stderr, "Error: %s already exists (use --force to overwrite)\n", *path)
		os.Exit(1)
	}

	if _, err := config.Parse([]byte(starterConfig)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: starter configuration is invalid: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*path, []byte(starterConfig), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", *path, err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", *path)
}
