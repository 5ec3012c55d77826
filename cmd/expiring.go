package cmd

import (
	"context"
	"flag"

	"github.com/google/subcommands"

	"github.com/ezhou/ledger"
	"github.com/ezhou/ledger/renderer"
)

// expiringCmd holds the flags for the 'expiring' subcommand.
type expiringCmd struct {
	threshold int
}

func (*expiringCmd) Name() string     { return "expiring" }
func (*expiringCmd) Synopsis() string { return "report expired and soon-to-expire accounts" }
func (*expiringCmd) Usage() string {
	return `pal expiring [-t <days>]

  Scans every account against the clock, marks the ones past their expiry
  time, and lists the ones expiring within the threshold.
`
}

func (c *expiringCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.threshold, "t", ledger.DefaultExpiryThreshold, "Expiring-soon horizon in days")
}

func (c *expiringCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	l, err := openLedger(ctx)
	if err != nil {
		return fail(err)
	}
	report, err := l.CheckExpiring(c.threshold)
	if report != nil {
		printMarkdown(renderer.ExpiryReport(report))
	}
	if err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}
