// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 The Parley Authors

package cli

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"

	"parley/internal/api"
	"parley/internal/dispatch"
	"parley/internal/logger"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local HTTP bridge",
	Long: `Starts an HTTP server exposing a small JSON API over the authoring
service, so editors and build tooling can list applications, inspect
versions and trigger training without shelling out to the CLI. The bridge
uses the same effective configuration as any other command.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runBridgeServer()
	},
}

// runBridgeServer starts the HTTP server for the bridge API.
func runBridgeServer() {
	cfg, err := composeEffective()
	if err != nil {
		errorColor.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		errorColor.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	router := mux.NewRouter()
	api.NewBridge(cfg, dispatch.New()).Register(router)

	statusColor.Printf("Starting bridge on %s\n", serveAddr)
	logger.Infof("Bridge listening on %s", serveAddr)
	log.Fatal(http.ListenAndServe(serveAddr, router))
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:7460", "address the bridge listens on")
	rootCmd.AddCommand(serveCmd)
}
