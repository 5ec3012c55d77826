// Package ledger implements a local, file-backed account ledger keyed by
// phone number. It is designed to be local-first and auditable: every
// mutation is written to a single human-readable snapshot file, protected by
// rotating backups, and optionally mirrored to a remote store.
//
// The core functionalities include:
//   - Account Registration: provisioning phone-number accounts with a
//     registration bonus, a validity period, and password/security-question
//     credentials, with full rollback when any step fails.
//   - Authentication: attempt-limited password and security-question
//     verification guarding every balance mutation and password reset.
//   - Balance Management: recharges and deductions on an exact decimal
//     balance that is never allowed to go negative.
//   - Expiry Tracking: lazy detection of accounts past their validity
//     period, both on access and through a dedicated scan.
//   - Data Persistence: a backup-then-overwrite snapshot contract so that a
//     failed write never loses the previous state.
//
// This package serves as the foundational logic for the `pal` command-line
// tool; the tool collects operator input and the ledger enforces every
// invariant.
package ledger
