package ledger

import "context"

// Syncer mirrors the persisted snapshot to a remote store. Implementations
// own their transport and retry policy; the ledger only looks at the
// message and the error. A sync failure is never fatal to the local
// mutation that triggered it, which is already durable by the time Push is
// called.
type Syncer interface {
	// Push uploads the snapshot at the given local path.
	Push(ctx context.Context, snapshotPath string) (string, error)
	// Pull fetches the latest remote snapshot into place.
	Pull(ctx context.Context) (string, error)
	// Status describes the remote without transferring data.
	Status(ctx context.Context) (SyncStatus, error)
}

// SyncStatus describes the configured remote.
type SyncStatus struct {
	HasRemote bool
	Remote    string // human-readable remote descriptor
	Dirty     bool   // local changes not yet pushed
}
