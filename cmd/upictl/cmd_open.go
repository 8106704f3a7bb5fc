package main

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/boopathydreams/capnpay-upi/internal/launch"
)

var openTimeout time.Duration

var openCmd = &cobra.Command{
	Use:   "open [link]",
	Short: "Probe installed handlers and open the payment link",
	Args:  cobra.ExactArgs(1),
	RunE:  runOpen,
}

func init() {
	openCmd.Flags().DurationVar(&openTimeout, "timeout", 10*time.Second, "Give up after this long")
}

// execOpener shells out to the desktop URL opener, which resolves whatever
// handler the OS has registered for the candidate's scheme.
type execOpener struct{}

func (execOpener) CanOpen(_ context.Context, _ string) bool {
	_, err := exec.LookPath(openerBinary())
	return err == nil
}

func (execOpener) Open(ctx context.Context, uri string) error {
	return exec.CommandContext(ctx, openerBinary(), uri).Run()
}

func openerBinary() string {
	if runtime.GOOS == "darwin" {
		return "open"
	}
	return "xdg-open"
}

func runOpen(cmd *cobra.Command, args []string) error {
	reg, err := loadRegistry()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), openTimeout)
	defer cancel()

	res, err := launch.NewLauncher(reg, execOpener{}, nil).Launch(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Printf("opened with %s: %s\n", res.App, res.URI)
	return nil
}
