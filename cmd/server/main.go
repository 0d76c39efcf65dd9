// Package main is the entry point for the ledcostume API server
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/james-see/ledcostume/pkg/api"
	"github.com/james-see/ledcostume/pkg/config"
)

func main() {
	configPath := flag.String("config", "", "Config file")
	port := flag.Int("port", 0, "Server port (default from config)")
	dataDir := flag.String("data", "", "Data directory (default from config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}

	fmt.Printf("Starting ledcostume API server on %s...\n", cfg.Addr())
	fmt.Printf("Serving data from %s\n", cfg.DataDir)
	fmt.Printf("Swagger docs available at http://localhost:%d/swagger/index.html\n", cfg.Server.Port)

	if err := api.StartServer(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
