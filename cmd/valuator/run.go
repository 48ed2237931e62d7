package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

// runCmd performs a single revaluation and exits.
type runCmd struct {
	reason string
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "revalue the wallet once and write the snapshot" }
func (*runCmd) Usage() string {
	return `valuator run [-reason <text>]

  Loads the wallet, resolves every price, and replaces the stored snapshot.
`
}

func (c *runCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.reason, "reason", "manual", "Reason recorded with the run")
}

func (c *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	summary, err := a.runner.Run(ctx, c.reason)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("%d positions valued (%d unresolved), total %s %s, P&L %s %s\n",
		summary.Positions, summary.Unresolved,
		summary.TotalBase.StringFixed(2), summary.BaseCurrency,
		summary.ProfitLoss.StringFixed(2), summary.BaseCurrency)
	return subcommands.ExitSuccess
}
