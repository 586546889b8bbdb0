package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tecsim/tecsim/api"
)

var (
	addr       string // Listen address for the HTTP API
	recordsDir string // Directory of technology record YAML files
)

// serveCmd exposes the evaluator over HTTP.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the evaluator as an HTTP API",
	Run: func(cmd *cobra.Command, args []string) {
		server := api.NewServer()
		if err := server.LoadDir(recordsDir); err != nil {
			logrus.Fatalf("loading technology records from %s: %v", recordsDir, err)
		}
		if err := server.ListenAndServe(addr); err != nil {
			logrus.Fatalf("serving API: %v", err)
		}
	},
}

func init() {
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")
	serveCmd.Flags().StringVar(&recordsDir, "records", "", "Directory of technology record YAML files (required)")
	_ = serveCmd.MarkFlagRequired("records")
	rootCmd.AddCommand(serveCmd)
}
