package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/ezhou/ledger/renderer"
)

// listCmd holds the flags for the 'list' subcommand.
type listCmd struct{}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "list all registered accounts" }
func (*listCmd) Usage() string {
	return `pal list

  Displays every account with its balance, status and remaining validity,
  in registration order.
`
}

func (*listCmd) SetFlags(*flag.FlagSet) {}

func (c *listCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	l, err := openLedger(ctx)
	if err != nil {
		return fail(err)
	}
	summaries := l.List()
	if len(summaries) == 0 {
		fmt.Println("No accounts registered yet.")
		return subcommands.ExitSuccess
	}
	printMarkdown(renderer.Accounts(summaries))
	return subcommands.ExitSuccess
}
