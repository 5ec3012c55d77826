package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

// balanceCmd holds the flags for the 'balance' subcommand.
type balanceCmd struct{}

func (*balanceCmd) Name() string     { return "balance" }
func (*balanceCmd) Synopsis() string { return "show an account's balance and status" }
func (*balanceCmd) Usage() string {
	return `pal balance <phone|last-four>

  Displays the balance, the registration bonus and the remaining validity.
  The query takes no credential; only mutations are authenticated.
`
}

func (*balanceCmd) SetFlags(*flag.FlagSet) {}

func (c *balanceCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one account identifier is required")
		return subcommands.ExitUsageError
	}

	l, err := openLedger(ctx)
	if err != nil {
		return fail(err)
	}
	acc, err := l.Find(f.Arg(0))
	if err != nil {
		return fail(err)
	}

	s := l.Summarize(acc)
	fmt.Printf("Account %s\n", s.Phone)
	fmt.Printf("  Balance:   %s\n", s.Balance)
	fmt.Printf("  Bonus:     %s\n", s.Bonus)
	fmt.Printf("  Status:    %s\n", s.Status)
	if s.Remaining != "" {
		fmt.Printf("  Remaining: %s\n", s.Remaining)
	}
	return subcommands.ExitSuccess
}
