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

// rechargeCmd holds the flags for the 'recharge' subcommand.
type rechargeCmd struct {
	amount string
	pin    string
}

func (*rechargeCmd) Name() string     { return "recharge" }
func (*rechargeCmd) Synopsis() string { return "add funds to an account" }
func (*rechargeCmd) Usage() string {
	return `pal recharge [-a <amount>] [-pin <pin>] <phone|last-four>

  Authenticates with the account password and credits the amount. The
  account is identified by its full phone number or its last four digits.
  With -pin the password is checked once instead of prompting.
`
}

func (c *rechargeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.amount, "a", "", "Amount to add (prompted when omitted)")
	f.StringVar(&c.pin, "pin", "", "Account password, for non-interactive use")
}

func (c *rechargeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	amount, err := askMoney(c.amount, "Amount to add")
	if errors.Is(err, ledger.ErrCancelled) {
		fmt.Println("Cancelled.")
		return subcommands.ExitSuccess
	}
	if err != nil {
		return fail(err)
	}

	balance, err := l.Recharge(ctx, acc.Phone, amount)
	if err != nil {
		return fail(err)
	}
	fmt.Printf("Recharged %s. New balance: %s\n", amount, balance)
	return subcommands.ExitSuccess
}

// authenticate verifies the account password, interactively unless a pin
// was passed on the command line.
func authenticate(l *ledger.Ledger, acc *ledger.Account, pin string) error {
	if pin != "" {
		return l.VerifyPassword(acc, pin)
	}
	return l.AuthenticatePassword(acc, passwordPrompt())
}

// askMoney parses the flag value, or prompts for an amount.
func askMoney(flagValue, label string) (ledger.Money, error) {
	_, currency := defaultBonus()
	if flagValue != "" {
		return ledger.ParseMoney(flagValue, currency)
	}
	for {
		s, err := readLine(label)
		if err != nil {
			return ledger.Money{}, err
		}
		m, err := ledger.ParseMoney(s, currency)
		if err != nil {
			fmt.Println("Not a valid amount, try again.")
			continue
		}
		return m, nil
	}
}

// reportAuth prints authentication failures in user terms.
func reportAuth(err error) subcommands.ExitStatus {
	switch {
	case errors.Is(err, ledger.ErrCancelled):
		fmt.Println("Cancelled.")
		return subcommands.ExitSuccess
	case errors.Is(err, ledger.ErrAuthExhausted):
		fmt.Fprintln(os.Stderr, "Error: too many failed attempts")
		return subcommands.ExitFailure
	case errors.Is(err, ledger.ErrExpired):
		fmt.Fprintln(os.Stderr, "Error: this account has expired")
		return subcommands.ExitFailure
	default:
		return fail(err)
	}
}
