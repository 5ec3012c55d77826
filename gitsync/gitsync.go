// Package gitsync mirrors the account snapshot through a git repository.
// The data directory is a working copy; every push stages the snapshot,
// commits it and pushes to the configured remote.
package gitsync

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/ezhou/ledger"
)

// runFunc executes one git command in dir and returns its combined output.
// It is a field so tests can substitute a fake.
type runFunc func(ctx context.Context, dir string, args ...string) (string, error)

func runGit(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return string(out), fmt.Errorf("git %s: %w: %s", args[0], err, strings.TrimSpace(string(out)))
	}
	return string(out), nil
}

// Syncer implements ledger.Syncer over a git working copy.
type Syncer struct {
	dir    string // repository root, the ledger data directory
	remote string
	run    runFunc
}

// New prepares the data directory as a git repository pointed at remote,
// initializing it and setting origin as needed.
func New(ctx context.Context, dir, remote string) (*Syncer, error) {
	s := &Syncer{dir: dir, remote: remote, run: runGit}

	if _, err := os.Stat(filepath.Join(dir, ".git")); os.IsNotExist(err) {
		if _, err := s.run(ctx, dir, "init"); err != nil {
			return nil, fmt.Errorf("could not init repository in %q: %w", dir, err)
		}
	}

	if _, err := s.run(ctx, dir, "remote", "get-url", "origin"); err != nil {
		if _, err := s.run(ctx, dir, "remote", "add", "origin", remote); err != nil {
			return nil, fmt.Errorf("could not add remote: %w", err)
		}
	} else {
		if _, err := s.run(ctx, dir, "remote", "set-url", "origin", remote); err != nil {
			return nil, fmt.Errorf("could not update remote: %w", err)
		}
	}
	return s, nil
}

// Push stages the snapshot, commits, and pushes to origin, trying the main
// branch first and falling back to master. A commit that goes through while
// the push fails is still a success: the change is recorded locally and the
// next push will carry it.
func (s *Syncer) Push(ctx context.Context, snapshotPath string) (string, error) {
	rel, err := filepath.Rel(s.dir, snapshotPath)
	if err != nil {
		rel = snapshotPath
	}
	if _, err := s.run(ctx, s.dir, "add", rel); err != nil {
		return "", err
	}

	status, err := s.run(ctx, s.dir, "status", "--porcelain")
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(status) == "" {
		return "nothing to commit", nil
	}

	msg := fmt.Sprintf("update accounts - %s", time.Now().Format("2006-01-02 15:04:05"))
	if _, err := s.run(ctx, s.dir, "commit", "-m", msg); err != nil {
		return "", err
	}

	if _, err := s.run(ctx, s.dir, "push", "-u", "origin", "main"); err != nil {
		if _, err := s.run(ctx, s.dir, "push", "-u", "origin", "master"); err != nil {
			return "committed locally, push failed", nil
		}
	}
	return "pushed to remote", nil
}

// Pull fetches the latest snapshot from origin.
func (s *Syncer) Pull(ctx context.Context) (string, error) {
	out, err := s.run(ctx, s.dir, "pull")
	if err != nil {
		return "", fmt.Errorf("pull failed: %w", err)
	}
	if strings.Contains(out, "Already up to date") {
		return "already up to date", nil
	}
	return "updated from remote", nil
}

// Status reports the remote configuration and whether uncommitted snapshot
// changes exist.
func (s *Syncer) Status(ctx context.Context) (ledger.SyncStatus, error) {
	remotes, err := s.run(ctx, s.dir, "remote", "-v")
	if err != nil {
		return ledger.SyncStatus{}, err
	}
	status, err := s.run(ctx, s.dir, "status", "--short")
	if err != nil {
		return ledger.SyncStatus{}, err
	}
	return ledger.SyncStatus{
		HasRemote: strings.TrimSpace(remotes) != "",
		Remote:    s.remote,
		Dirty:     strings.TrimSpace(status) != "",
	}, nil
}
