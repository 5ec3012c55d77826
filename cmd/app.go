// Package cmd implements the CLI application to operate the account ledger.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/ezhou/ledger"
	"github.com/ezhou/ledger/config"
	"github.com/ezhou/ledger/gitsync"
	"github.com/ezhou/ledger/logging"
	"github.com/ezhou/ledger/s3sync"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&registerCmd{}, "accounts")
	c.Register(&balanceCmd{}, "accounts")
	c.Register(&listCmd{}, "accounts")
	c.Register(&expiringCmd{}, "accounts")

	c.Register(&rechargeCmd{}, "balance")
	c.Register(&deductCmd{}, "balance")

	c.Register(&resetPasswordCmd{}, "security")

	c.Register(&pushCmd{}, "sync")
	c.Register(&pullCmd{}, "sync")
	c.Register(&syncStatusCmd{}, "sync")

	c.Register(&topicCmd{}, "documentation")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var dataDir = flag.String("data-dir", "", "Override the ledger data directory")

// openLedger wires configuration, persistence and the optional sync backend
// into a ready ledger.
func openLedger(ctx context.Context) (*ledger.Ledger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("could not load configuration: %w", err)
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}

	log := logging.New(cfg.LogLevel)

	file := ledger.NewFileStore(cfg.SnapshotPath(), cfg.Currency)
	file.Retain = cfg.BackupRetain

	opts := []ledger.Option{
		ledger.WithLogger(log),
		ledger.WithMaxAttempts(cfg.AuthAttempts),
	}

	switch cfg.SyncBackend {
	case config.SyncGit:
		syncer, err := gitsync.New(ctx, cfg.DataDir, cfg.GitRemote)
		if err != nil {
			return nil, fmt.Errorf("could not set up git sync: %w", err)
		}
		opts = append(opts, ledger.WithSyncer(syncer))
	case config.SyncS3:
		syncer, err := s3sync.New(ctx, cfg.SnapshotPath(), s3sync.Options{
			Bucket:      cfg.S3Bucket,
			Key:         cfg.S3Key,
			Region:      cfg.S3Region,
			EndpointURL: cfg.S3EndpointURL,
		})
		if err != nil {
			return nil, fmt.Errorf("could not set up s3 sync: %w", err)
		}
		opts = append(opts, ledger.WithSyncer(syncer))
	}

	return ledger.Open(file, opts...), nil
}

// defaultBonus returns the configured registration bonus and the currency,
// for the register command's prompt defaults.
func defaultBonus() (float64, string) {
	cfg, err := config.Load()
	if err != nil {
		return 50, "CNY"
	}
	return cfg.DefaultBonus, cfg.Currency
}

// fail prints an error and maps it to an exit status.
func fail(err error) subcommands.ExitStatus {
	fmt.Fprintln(os.Stderr, "Error:", err)
	return subcommands.ExitFailure
}
