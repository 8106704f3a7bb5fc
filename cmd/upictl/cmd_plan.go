package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan [link]",
	Short: "Show the probe order for a payment link",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlan,
}

func runPlan(cmd *cobra.Command, args []string) error {
	reg, err := loadRegistry()
	if err != nil {
		return err
	}
	for _, c := range reg.Plan(args[0]) {
		fmt.Printf("%-8s %s\n", c.App, c.URI)
	}
	return nil
}
