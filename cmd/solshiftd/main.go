// Command solshiftd runs the solshift daemon headless, for supervisors and
// session managers that do not go through the CLI.
package main

import (
	"context"
	"log"
	"os"

	"solshift/internal/config"
	"solshift/internal/daemonrun"
)

func main() {
	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("ensure directories: %v", err)
	}

	if err := daemonrun.Run(context.Background(), cfg, daemonrun.Options{}); err != nil {
		log.Printf("solshiftd: %v", err)
		os.Exit(1)
	}
}
