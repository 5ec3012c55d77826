package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const (
	// MaxAuthAttempts bounds the password and security-question loops.
	MaxAuthAttempts = 3

	// DefaultExpiryThreshold is the expiring-soon horizon, in days.
	DefaultExpiryThreshold = 3
)

// Ledger owns the in-memory account store and is the only way to mutate it.
// Every mutating operation follows the same discipline: validate, locate,
// mutate the in-memory record, persist the full snapshot, revert the
// mutation if persistence fails, and finally push to the sync remote, whose
// failure is reported but never undoes the already-durable local change.
type Ledger struct {
	store       *Store
	file        *FileStore
	syncer      Syncer
	log         *slog.Logger
	now         func() time.Time
	maxAttempts int
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithSyncer enables snapshot mirroring to a remote store.
func WithSyncer(s Syncer) Option { return func(l *Ledger) { l.syncer = s } }

// WithLogger sets the logger used to report degradations.
func WithLogger(log *slog.Logger) Option { return func(l *Ledger) { l.log = log } }

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option { return func(l *Ledger) { l.now = now } }

// WithMaxAttempts overrides the authentication attempt limit.
func WithMaxAttempts(n int) Option {
	return func(l *Ledger) {
		if n > 0 {
			l.maxAttempts = n
		}
	}
}

// Open loads the snapshot and returns a ready ledger. A missing file starts
// empty; an unreadable or corrupt file is logged and also starts empty, so
// the operator keeps a running (if degraded) system and the corrupt file is
// preserved on disk for inspection.
func Open(file *FileStore, opts ...Option) *Ledger {
	l := &Ledger{
		file:        file,
		now:         time.Now,
		log:         slog.Default(),
		maxAttempts: MaxAuthAttempts,
	}
	for _, opt := range opts {
		opt(l)
	}

	store, err := file.Load()
	if err != nil {
		l.log.Warn("could not load snapshot, starting empty", "path", file.Path, "err", err)
		store = NewStore()
	}
	l.store = store
	return l
}

// Len returns the number of registered accounts.
func (l *Ledger) Len() int { return l.store.Len() }

// RegisterFlow carries the inputs of a registration. Phone and Bonus are
// collected up front; the validity period and the security credentials are
// supplied by callbacks so the operator can still cancel (by returning
// ErrCancelled) after the provisional record exists. Any failure after the
// record is created removes it entirely.
type RegisterFlow struct {
	Phone     string
	Bonus     Money // zero is allowed and yields an empty starting balance
	ValidDays func() (int, error)
	Security  func() (SecuritySetup, error)
}

// Register creates a new account. It fails with ErrInvalidPhone,
// ErrDuplicatePhone or ErrDuplicateTail before anything is created, and
// rolls the provisional account back if the validity or security step
// fails, is cancelled, or the snapshot cannot be persisted.
func (l *Ledger) Register(ctx context.Context, flow RegisterFlow) (*Account, error) {
	if !ValidPhone(flow.Phone) {
		return nil, ErrInvalidPhone
	}
	if flow.Bonus.IsNegative() {
		return nil, fmt.Errorf("%w: registration bonus cannot be negative", ErrInvalidAmount)
	}

	bonus := flow.Bonus.withCurrency(l.file.Currency)
	acc := &Account{
		Phone:             flow.Phone,
		LastFour:          flow.Phone[len(flow.Phone)-4:],
		Balance:           bonus,
		RegistrationBonus: bonus,
		Status:            StatusUnset,
	}
	if err := l.store.Add(acc); err != nil {
		return nil, err
	}

	// From here on the provisional record must not survive a failure.
	rollback := func() { l.store.Remove(acc.Phone) }

	days, err := flow.ValidDays()
	if err != nil {
		rollback()
		return nil, err
	}
	if days <= 0 {
		rollback()
		return nil, fmt.Errorf("%w: validity must be at least one day", ErrInvalidInput)
	}
	now := l.now()
	acc.ValidDays = days
	acc.CreatedAt = now
	acc.ExpiryTime = ExpiryTime(now, days)
	acc.Status = StatusActive

	setup, err := flow.Security()
	if err != nil {
		rollback()
		return nil, err
	}
	if err := setup.check(); err != nil {
		rollback()
		return nil, err
	}
	acc.PasswordHash = HashSecret(setup.PIN)
	acc.SecurityQuestion = SecurityQuestions[setup.Question-1]
	acc.SecurityAnswerHash = HashSecret(NormalizeAnswer(setup.Answer))
	acc.LastModified = l.now()

	if err := l.persist(); err != nil {
		rollback()
		return nil, err
	}
	l.pushSync(ctx)
	return acc, nil
}

// Find resolves an identifier to an account. The identifier is either a
// full phone number (exact match) or exactly four digits (tail match,
// unique by invariant).
func (l *Ledger) Find(identifier string) (*Account, error) {
	switch {
	case ValidPhone(identifier):
		if a := l.store.Get(identifier); a != nil {
			return a, nil
		}
		return nil, ErrNotFound
	case tailPattern.MatchString(identifier):
		if a := l.store.ByTail(identifier); a != nil {
			return a, nil
		}
		return nil, ErrNotFound
	default:
		return nil, ErrInvalidIdentifier
	}
}

// Recharge adds amount to the account's balance. The caller must have
// authenticated the account's password first.
func (l *Ledger) Recharge(ctx context.Context, phone string, amount Money) (Money, error) {
	acc := l.store.Get(phone)
	if acc == nil {
		return Money{}, ErrNotFound
	}
	if !amount.IsPositive() {
		return Money{}, fmt.Errorf("%w: recharge amount must be positive", ErrInvalidAmount)
	}

	oldBalance, oldMod := acc.Balance, acc.LastModified
	acc.Balance = acc.Balance.Add(amount)
	acc.LastModified = l.now()

	if err := l.persist(); err != nil {
		acc.Balance, acc.LastModified = oldBalance, oldMod
		return Money{}, err
	}
	l.pushSync(ctx)
	return acc.Balance, nil
}

// Deduct subtracts amount from the account's balance. The balance is never
// allowed to go negative: the check happens before the mutation, and a
// rejected deduction touches neither memory nor disk.
func (l *Ledger) Deduct(ctx context.Context, phone string, amount Money) (Money, error) {
	acc := l.store.Get(phone)
	if acc == nil {
		return Money{}, ErrNotFound
	}
	if !amount.IsPositive() {
		return Money{}, fmt.Errorf("%w: deduction amount must be positive", ErrInvalidAmount)
	}
	if acc.Balance.LessThan(amount) {
		return Money{}, fmt.Errorf("%w: balance is %s", ErrInsufficientBalance, acc.Balance)
	}

	oldBalance, oldMod := acc.Balance, acc.LastModified
	acc.Balance = acc.Balance.Sub(amount)
	acc.LastModified = l.now()

	if err := l.persist(); err != nil {
		acc.Balance, acc.LastModified = oldBalance, oldMod
		return Money{}, err
	}
	l.pushSync(ctx)
	return acc.Balance, nil
}

// ResetPassword replaces the account's password. The caller must have
// authenticated the account's security question first.
func (l *Ledger) ResetPassword(ctx context.Context, phone, newPIN string) error {
	acc := l.store.Get(phone)
	if acc == nil {
		return ErrNotFound
	}
	if !ValidPIN(newPIN) {
		return ErrInvalidPIN
	}

	oldHash, oldMod := acc.PasswordHash, acc.LastModified
	acc.PasswordHash = HashSecret(newPIN)
	acc.LastModified = l.now()

	if err := l.persist(); err != nil {
		acc.PasswordHash, acc.LastModified = oldHash, oldMod
		return err
	}
	l.pushSync(ctx)
	return nil
}

// List returns read-only summaries of every account in insertion order.
func (l *Ledger) List() []Summary {
	now := l.now()
	summaries := make([]Summary, 0, l.store.Len())
	for a := range l.store.All() {
		summaries = append(summaries, a.summary(now))
	}
	return summaries
}

// Summarize projects a single account for display.
func (l *Ledger) Summarize(a *Account) Summary {
	return a.summary(l.now())
}

// ExpiryEntry is one account in an expiry report.
type ExpiryEntry struct {
	Phone     string
	Remaining string
}

// ExpiryReport classifies every configured account against the clock.
type ExpiryReport struct {
	Threshold int // days
	Expired   []string
	Expiring  []ExpiryEntry
}

// CheckExpiring scans all accounts and classifies each configured one as
// expired, expiring within the threshold, or normal. Newly observed expiry
// transitions are persisted; since they are derived from the clock they are
// not reverted if persistence fails, only reported. With no elapsed time
// between two scans the classification is identical and balances are
// untouched.
func (l *Ledger) CheckExpiring(threshold int) (*ExpiryReport, error) {
	if threshold <= 0 {
		threshold = DefaultExpiryThreshold
	}
	now := l.now()
	report := &ExpiryReport{Threshold: threshold}

	dirty := false
	for a := range l.store.All() {
		if !a.Configured() {
			continue
		}
		if a.Status == StatusExpired || Expired(now, a.ExpiryTime) {
			if a.Status != StatusExpired {
				a.Status = StatusExpired
				dirty = true
			}
			report.Expired = append(report.Expired, a.Phone)
			continue
		}
		if RemainingDays(now, a.ExpiryTime) <= threshold {
			report.Expiring = append(report.Expiring, ExpiryEntry{
				Phone:     a.Phone,
				Remaining: FormatRemaining(now, a.ExpiryTime),
			})
		}
	}

	if dirty {
		if err := l.persist(); err != nil {
			return report, err
		}
	}
	return report, nil
}

// SyncPush uploads the current snapshot to the configured remote.
func (l *Ledger) SyncPush(ctx context.Context) (string, error) {
	if l.syncer == nil {
		return "", ErrSyncDisabled
	}
	return l.syncer.Push(ctx, l.file.Path)
}

// SyncPull fetches the latest remote snapshot and reloads the store from
// it. Like Open, an unreadable result is logged and yields an empty store
// rather than a dead process.
func (l *Ledger) SyncPull(ctx context.Context) (string, error) {
	if l.syncer == nil {
		return "", ErrSyncDisabled
	}
	msg, err := l.syncer.Pull(ctx)
	if err != nil {
		return msg, fmt.Errorf("sync pull failed: %w", err)
	}
	store, err := l.file.Load()
	if err != nil {
		l.log.Warn("could not reload snapshot after pull, starting empty", "path", l.file.Path, "err", err)
		store = NewStore()
	}
	l.store = store
	return msg, nil
}

// SyncStatus describes the configured remote.
func (l *Ledger) SyncStatus(ctx context.Context) (SyncStatus, error) {
	if l.syncer == nil {
		return SyncStatus{}, ErrSyncDisabled
	}
	return l.syncer.Status(ctx)
}

// persist writes the full snapshot.
func (l *Ledger) persist() error {
	if err := l.file.Save(l.store); err != nil {
		return fmt.Errorf("could not persist accounts: %w", err)
	}
	return nil
}

// pushSync mirrors the snapshot after a durable local mutation. Failure is
// logged and otherwise ignored: the local state is already safe.
func (l *Ledger) pushSync(ctx context.Context) {
	if l.syncer == nil {
		return
	}
	msg, err := l.syncer.Push(ctx, l.file.Path)
	if err != nil {
		l.log.Warn("sync push failed", "err", err)
		return
	}
	l.log.Info("sync push", "msg", msg)
}
