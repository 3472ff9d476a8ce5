// Package main provides the visor CLI.
package main

import (
	"fmt"
	"os"
)

var (
	version = "dev"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "init":
		initCmd(args)
	case "run":
		runCmd(args)
	case "stop":
		stopCmd(args)
	case "status":
		statusCmd(args)
	case "logs":
		logsCmd(args)
	case "journal":
		journalCmd(args)
	case "version":
		fmt.Printf("visor %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Visor - add-on container supervisor

Usage:
  visor <command> [options]

Commands:
  init      Write a starter visor.yaml
  run       Start an add-on container (no-op if it is already running)
  stop      Stop and remove an add-on container
  status    Show the state of an add-on container
  logs      Print the logs of an add-on container
  journal   Show recorded job progress
  version   Print version information
  help      Show this help message

Examples:
  visor run mosquitto
  visor status mosquitto
  visor logs mosquitto --tail 50

Run 'visor <command> --help' for more information on a command.`)
}
