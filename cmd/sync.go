package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/ezhou/ledger"
	"github.com/ezhou/ledger/renderer"
)

// pushCmd holds the flags for the 'push' subcommand.
type pushCmd struct{}

func (*pushCmd) Name() string     { return "push" }
func (*pushCmd) Synopsis() string { return "upload the snapshot to the sync remote" }
func (*pushCmd) Usage() string {
	return `pal push

  Uploads the current snapshot to the configured sync backend.
`
}

func (*pushCmd) SetFlags(*flag.FlagSet) {}

func (c *pushCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	l, err := openLedger(ctx)
	if err != nil {
		return fail(err)
	}
	msg, err := l.SyncPush(ctx)
	if err != nil {
		return reportSync(err)
	}
	fmt.Println(msg)
	return subcommands.ExitSuccess
}

// pullCmd holds the flags for the 'pull' subcommand.
type pullCmd struct{}

func (*pullCmd) Name() string     { return "pull" }
func (*pullCmd) Synopsis() string { return "fetch the latest snapshot from the sync remote" }
func (*pullCmd) Usage() string {
	return `pal pull

  Fetches the latest snapshot from the configured sync backend and reloads
  the local accounts from it.
`
}

func (*pullCmd) SetFlags(*flag.FlagSet) {}

func (c *pullCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	l, err := openLedger(ctx)
	if err != nil {
		return fail(err)
	}
	msg, err := l.SyncPull(ctx)
	if err != nil {
		return reportSync(err)
	}
	fmt.Println(msg)
	return subcommands.ExitSuccess
}

// syncStatusCmd holds the flags for the 'sync-status' subcommand.
type syncStatusCmd struct{}

func (*syncStatusCmd) Name() string     { return "sync-status" }
func (*syncStatusCmd) Synopsis() string { return "show the sync remote state" }
func (*syncStatusCmd) Usage() string {
	return `pal sync-status

  Shows the configured remote and whether local changes are waiting to be
  pushed.
`
}

func (*syncStatusCmd) SetFlags(*flag.FlagSet) {}

func (c *syncStatusCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	l, err := openLedger(ctx)
	if err != nil {
		return fail(err)
	}
	status, err := l.SyncStatus(ctx)
	if err != nil {
		return reportSync(err)
	}
	printMarkdown(renderer.SyncStatus(status))
	return subcommands.ExitSuccess
}

// reportSync prints sync failures in user terms.
func reportSync(err error) subcommands.ExitStatus {
	if errors.Is(err, ledger.ErrSyncDisabled) {
		fmt.Fprintln(os.Stderr, "Error: no sync backend configured, set LEDGER_SYNC_BACKEND to git or s3")
		return subcommands.ExitFailure
	}
	return fail(err)
}
