package ledger

import "errors"

// Sentinel errors for the account ledger. Callers classify failures with
// errors.Is; every operation returns one of these (possibly wrapped with
// context) instead of aborting the process.
var (
	// ErrInvalidPhone reports a phone number that does not match the
	// accepted mobile format.
	ErrInvalidPhone = errors.New("invalid phone number")

	// ErrInvalidPIN reports a password that is not exactly four digits.
	ErrInvalidPIN = errors.New("password must be 4 digits")

	// ErrInvalidAmount reports a non-positive or unparseable amount.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidIdentifier reports a lookup key that is neither a full
	// phone number nor a 4-digit tail.
	ErrInvalidIdentifier = errors.New("identifier must be a phone number or a 4-digit tail")

	// ErrInvalidInput reports any other format or range violation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound reports that no account matches the identifier.
	ErrNotFound = errors.New("account not found")

	// ErrDuplicatePhone reports that the phone number is already registered.
	ErrDuplicatePhone = errors.New("phone number already registered")

	// ErrDuplicateTail reports that another account already owns the same
	// last four digits.
	ErrDuplicateTail = errors.New("tail digits already in use")

	// ErrAuthFailed reports a wrong credential with attempts remaining.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrAuthExhausted reports that the attempt limit was reached.
	ErrAuthExhausted = errors.New("too many failed attempts")

	// ErrExpired reports an operation on an account past its validity.
	ErrExpired = errors.New("account expired")

	// ErrInsufficientBalance reports a deduction larger than the balance.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrCorruptData reports a snapshot file that exists but cannot be
	// parsed. The caller decides the fallback; the ledger logs and starts
	// from an empty store.
	ErrCorruptData = errors.New("corrupt snapshot data")

	// ErrCancelled reports a user-initiated abort of an in-progress
	// operation. No partial state survives a cancellation.
	ErrCancelled = errors.New("operation cancelled")

	// ErrSyncDisabled reports a sync request when no remote is configured.
	ErrSyncDisabled = errors.New("sync is not configured")
)
