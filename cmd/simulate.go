package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tecsim/tecsim/tec"
)

var (
	simRecordPath   string // Path to the technology record YAML
	simSchedulePath string // Path to the dispatch schedule YAML
)

// simulateCmd steps a unit through a proposed dispatch schedule and prints
// the accumulated energy and cost summary.
var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a dispatch schedule through the operational state machine",
	Run: func(cmd *cobra.Command, args []string) {
		model, err := tec.LoadTechnologyModel(simRecordPath)
		if err != nil {
			logrus.Fatalf("loading technology record: %v", err)
		}
		sched, err := tec.LoadSchedule(simSchedulePath)
		if err != nil {
			logrus.Fatalf("loading schedule: %v", err)
		}

		res, err := tec.RunDispatch(model, sched)
		if err != nil {
			logrus.Fatalf("dispatch run failed: %v", err)
		}
		res.Print()
	},
}

func init() {
	simulateCmd.Flags().StringVar(&simRecordPath, "record", "", "Path to the technology record YAML (required)")
	simulateCmd.Flags().StringVar(&simSchedulePath, "schedule", "", "Path to the dispatch schedule YAML (required)")
	_ = simulateCmd.MarkFlagRequired("record")
	_ = simulateCmd.MarkFlagRequired("schedule")
	rootCmd.AddCommand(simulateCmd)
}
