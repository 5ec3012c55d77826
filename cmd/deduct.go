package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/ezhou/ledger"
)

// deductCmd holds the flags for the 'deduct' subcommand.
type deductCmd struct {
	amount string
	pin    string
}

func (*deductCmd) Name() string     { return "deduct" }
func (*deductCmd) Synopsis() string { return "spend funds from an account" }
func (*deductCmd) Usage() string {
	return `pal deduct [-a <amount>] [-pin <pin>] <phone|last-four>

  Authenticates with the account password and debits the amount. A
  deduction larger than the balance is rejected without changing anything.
`
}

func (c *deductCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.amount, "a", "", "Amount to spend (prompted when omitted)")
	f.StringVar(&c.pin, "pin", "", "Account password, for non-interactive use")
}

func (c *deductCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	if err := authenticate(l, acc, c.pin); err != nil {
		return reportAuth(err)
	}

	amount, err := askMoney(c.amount, "Amount to spend")
	if errors.Is(err, ledger.ErrCancelled) {
		fmt.Println("Cancelled.")
		return subcommands.ExitSuccess
	}
	if err != nil {
		return fail(err)
	}

	balance, err := l.Deduct(ctx, acc.Phone, amount)
	if errors.Is(err, ledger.ErrInsufficientBalance) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err != nil {
		return fail(err)
	}
	fmt.Printf("Deducted %s. New balance: %s\n", amount, balance)
	return subcommands.ExitSuccess
}
