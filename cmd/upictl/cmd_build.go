package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/boopathydreams/capnpay-upi/internal/usecase"
)

var (
	buildPayload  string
	buildAddress  string
	buildName     string
	buildAmount   string
	buildNote     string
	buildAutoRef  bool
	buildShowPlan bool
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a launchable payment link",
	Example: `  upictl build --payload "upi://pay?pa=shop@ybl&pn=Shop" --amount 250
  upictl build --address ravi@okaxis --name "Ravi Kumar" --amount 99.99 --note chai`,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVar(&buildPayload, "payload", "", "Scanned QR payload")
	buildCmd.Flags().StringVar(&buildAddress, "address", "", "Payee address for manual entry")
	buildCmd.Flags().StringVar(&buildName, "name", "", "Payee display name for manual entry")
	buildCmd.Flags().StringVar(&buildAmount, "amount", "", "Amount in rupees (falls back to the payload's)")
	buildCmd.Flags().StringVar(&buildNote, "note", "", "Transaction note")
	buildCmd.Flags().BoolVar(&buildAutoRef, "auto-ref", false, "Mint a transaction reference for peer-to-peer links")
	buildCmd.Flags().BoolVar(&buildShowPlan, "plan", false, "Also print the launch probe order")
}

func runBuild(cmd *cobra.Command, args []string) error {
	if buildPayload == "" && buildAddress == "" {
		return errors.New("one of --payload or --address is required")
	}
	reg, err := loadRegistry()
	if err != nil {
		return err
	}

	flow := usecase.NewScanWorkflow(reg, 0, nil)
	res, err := flow.Compose(usecase.ComposeRequest{
		Payload: buildPayload,
		Address: buildAddress,
		Name:    buildName,
		Amount:  buildAmount,
		Note:    buildNote,
		AutoRef: buildAutoRef,
	})
	if err != nil {
		return err
	}

	fmt.Println(res.DeepLink)
	if buildShowPlan {
		for _, c := range res.Plan {
			fmt.Printf("%-8s %s\n", c.App, c.URI)
		}
	}
	return nil
}
