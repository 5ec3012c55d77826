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

// registerCmd holds the flags for the 'register' subcommand.
type registerCmd struct {
	phone string
	bonus string
	days  int
}

func (*registerCmd) Name() string     { return "register" }
func (*registerCmd) Synopsis() string { return "register a new account" }
func (*registerCmd) Usage() string {
	return `pal register -p <phone> [-bonus <amount>] [-days <n>]

  Creates a new account keyed by its phone number, credits the registration
  bonus, and walks through the validity period and the security setup.
  Entering 0 at any prompt cancels and removes the provisional account.
`
}

func (c *registerCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.phone, "p", "", "Phone number of the new account")
	f.StringVar(&c.bonus, "bonus", "", "Registration bonus (defaults to the configured bonus)")
	f.IntVar(&c.days, "days", 0, "Validity period in days (prompted when omitted)")
}

func (c *registerCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.phone == "" {
		fmt.Fprintln(os.Stderr, "Error: -p <phone> is required")
		return subcommands.ExitUsageError
	}

	l, err := openLedger(ctx)
	if err != nil {
		return fail(err)
	}

	bonus, err := c.parseBonus()
	if err != nil {
		return fail(err)
	}

	flow := ledger.RegisterFlow{
		Phone: c.phone,
		Bonus: bonus,
		ValidDays: func() (int, error) {
			if c.days > 0 {
				return c.days, nil
			}
			return readInt("Validity period in days")
		},
		Security: askSecurity,
	}

	acc, err := l.Register(ctx, flow)
	if errors.Is(err, ledger.ErrCancelled) {
		fmt.Println("Registration cancelled, nothing was created.")
		return subcommands.ExitSuccess
	}
	if err != nil {
		return fail(err)
	}

	s := l.Summarize(acc)
	fmt.Printf("Registered %s with a %s bonus, valid for %s.\n", s.Phone, s.Bonus, s.Remaining)
	return subcommands.ExitSuccess
}

func (c *registerCmd) parseBonus() (ledger.Money, error) {
	amount, currency := defaultBonus()
	if c.bonus == "" {
		return ledger.ParseMoney(fmt.Sprintf("%g", amount), currency)
	}
	return ledger.ParseMoney(c.bonus, currency)
}
