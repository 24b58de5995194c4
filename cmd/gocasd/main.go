// Command gocasd serves the gocas tool interface over HTTP.
//
// Usage:
//
//	gocasd serve --addr :8080
//	gocasd config
//
// Tool call endpoint: POST /tool
// Schema endpoint:    GET  /schema
// Health endpoint:    GET  /health
//
// Settings come from flags, GOCAS_* environment variables and an optional
// YAML file (--config, or ./gocasd.yaml).
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
