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

// resetPasswordCmd holds the flags for the 'reset-password' subcommand.
type resetPasswordCmd struct {
	answer string
}

func (*resetPasswordCmd) Name() string     { return "reset-password" }
func (*resetPasswordCmd) Synopsis() string { return "reset an account password" }
func (*resetPasswordCmd) Usage() string {
	return `pal reset-password [-answer <answer>] <phone|last-four>

  Answers the account's security question, then replaces the password.
  The question allows the same number of attempts as a password. With
  -answer the security answer is checked once instead of prompting.
`
}

func (c *resetPasswordCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.answer, "answer", "", "Security answer, for non-interactive use")
}

func (c *resetPasswordCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	if !acc.Secured() {
		fmt.Fprintln(os.Stderr, "Error: this account has no security question on file")
		return subcommands.ExitFailure
	}

	if c.answer != "" {
		if err := l.VerifyAnswer(acc, c.answer); err != nil {
			return reportAuth(err)
		}
	} else if err := l.AuthenticateSecurity(acc, answerPrompt(acc)); err != nil {
		return reportAuth(err)
	}

	pin, err := askPIN()
	if errors.Is(err, ledger.ErrCancelled) {
		fmt.Println("Cancelled, the password is unchanged.")
		return subcommands.ExitSuccess
	}
	if err != nil {
		return fail(err)
	}

	if err := l.ResetPassword(ctx, acc.Phone, pin); err != nil {
		return fail(err)
	}
	fmt.Println("Password updated.")
	return subcommands.ExitSuccess
}
