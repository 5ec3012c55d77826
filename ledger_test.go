package ledger

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ezhou/ledger/logging"
)

// testClock is a settable time source for tests.
type testClock struct{ t time.Time }

func (c *testClock) now() time.Time          { return c.t }
func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLedger(t *testing.T) (*Ledger, *testClock) {
	t.Helper()
	clock := &testClock{t: testNow}
	file := newTestFileStore(t)
	l := Open(file,
		WithClock(clock.now),
		WithLogger(logging.Discard()),
	)
	return l, clock
}

// setup returns registration callbacks that accept everything.
func setup(days int) (func() (int, error), func() (SecuritySetup, error)) {
	return func() (int, error) { return days, nil },
		func() (SecuritySetup, error) {
			return SecuritySetup{PIN: "1234", Question: 4, Answer: "Fluffy"}, nil
		}
}

func register(t *testing.T, l *Ledger, phone string) *Account {
	t.Helper()
	days, security := setup(30)
	acc, err := l.Register(context.Background(), RegisterFlow{
		Phone:     phone,
		Bonus:     M(50.0, "CNY"),
		ValidDays: days,
		Security:  security,
	})
	if err != nil {
		t.Fatalf("Register(%s): %v", phone, err)
	}
	return acc
}

func TestRegister(t *testing.T) {
	l, _ := newTestLedger(t)
	acc := register(t, l, "13800001234")

	if acc.LastFour != "1234" {
		t.Errorf("last four = %q, want 1234", acc.LastFour)
	}
	if !acc.Balance.Equal(M(50.0, "CNY")) {
		t.Errorf("balance = %s, want 50", acc.Balance)
	}
	if !acc.RegistrationBonus.Equal(M(50.0, "CNY")) {
		t.Errorf("bonus = %s, want 50", acc.RegistrationBonus)
	}
	if acc.Status != StatusActive || acc.ValidDays != 30 {
		t.Errorf("status/days = %s/%d, want active/30", acc.Status, acc.ValidDays)
	}
	if !acc.ExpiryTime.Equal(testNow.Add(30 * Day)) {
		t.Errorf("expiry = %v, want %v", acc.ExpiryTime, testNow.Add(30*Day))
	}
	if !acc.Secured() {
		t.Error("registered account must carry credentials")
	}
	if acc.PasswordHash != HashSecret("1234") {
		t.Error("password hash mismatch")
	}
	if acc.SecurityAnswerHash != HashSecret("fluffy") {
		t.Error("answer must be normalized before hashing")
	}
	if acc.SecurityQuestion != SecurityQuestions[3] {
		t.Errorf("question = %q, want %q", acc.SecurityQuestion, SecurityQuestions[3])
	}
}

func TestRegisterRejections(t *testing.T) {
	l, _ := newTestLedger(t)
	register(t, l, "13800001234")

	days, security := setup(30)
	tests := []struct {
		name  string
		phone string
		want  error
	}{
		{"bad phone", "12345", ErrInvalidPhone},
		{"duplicate phone", "13800001234", ErrDuplicatePhone},
		{"duplicate tail", "13900001234", ErrDuplicateTail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.Register(context.Background(), RegisterFlow{
				Phone: tt.phone, Bonus: M(50.0, "CNY"),
				ValidDays: days, Security: security,
			})
			if !errors.Is(err, tt.want) {
				t.Fatalf("Register = %v, want %v", err, tt.want)
			}
		})
	}
	if l.Len() != 1 {
		t.Fatalf("rejected registrations must not leave accounts, have %d", l.Len())
	}
}

func TestRegisterCancelledRollsBack(t *testing.T) {
	l, _ := newTestLedger(t)

	// Cancel after the validity step: the provisional record must vanish.
	_, err := l.Register(context.Background(), RegisterFlow{
		Phone: "13800001234", Bonus: M(50.0, "CNY"),
		ValidDays: func() (int, error) { return 30, nil },
		Security:  func() (SecuritySetup, error) { return SecuritySetup{}, ErrCancelled },
	})
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("Register = %v, want ErrCancelled", err)
	}
	if l.Len() != 0 {
		t.Fatalf("cancelled registration left %d accounts", l.Len())
	}

	// The phone and its tail are free for reuse.
	register(t, l, "13800001234")
}

func TestRegisterPersistFailureRollsBack(t *testing.T) {
	dir := t.TempDir()
	// A regular file where the data directory should be makes every write fail.
	blocked := filepath.Join(dir, "blocked")
	if err := os.WriteFile(blocked, nil, 0644); err != nil {
		t.Fatal(err)
	}
	file := NewFileStore(filepath.Join(blocked, "phone_accounts.json"), "CNY")
	l := Open(file, WithClock((&testClock{t: testNow}).now), WithLogger(logging.Discard()))

	days, security := setup(30)
	_, err := l.Register(context.Background(), RegisterFlow{
		Phone: "13800001234", Bonus: M(50.0, "CNY"),
		ValidDays: days, Security: security,
	})
	if err == nil {
		t.Fatal("Register must fail when the snapshot cannot be written")
	}
	if l.Len() != 0 {
		t.Fatalf("failed registration left %d accounts", l.Len())
	}
}

func TestFind(t *testing.T) {
	l, _ := newTestLedger(t)
	register(t, l, "13800001234")

	if acc, err := l.Find("13800001234"); err != nil || acc.Phone != "13800001234" {
		t.Errorf("Find by phone = %v, %v", acc, err)
	}
	if acc, err := l.Find("1234"); err != nil || acc.Phone != "13800001234" {
		t.Errorf("Find by tail = %v, %v", acc, err)
	}
	if _, err := l.Find("13900009999"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Find unknown phone = %v, want ErrNotFound", err)
	}
	if _, err := l.Find("9999"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Find unknown tail = %v, want ErrNotFound", err)
	}
	if _, err := l.Find("12ab"); !errors.Is(err, ErrInvalidIdentifier) {
		t.Errorf("Find malformed = %v, want ErrInvalidIdentifier", err)
	}
}

func TestRechargeAndDeduct(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	register(t, l, "13800001234")

	balance, err := l.Recharge(ctx, "13800001234", M(25.5, "CNY"))
	if err != nil {
		t.Fatalf("Recharge: %v", err)
	}
	if !balance.Equal(M(75.5, "CNY")) {
		t.Fatalf("balance after recharge = %s, want 75.5", balance)
	}

	if _, err := l.Recharge(ctx, "13800001234", M(-5.0, "CNY")); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("negative recharge = %v, want ErrInvalidAmount", err)
	}
	if _, err := l.Recharge(ctx, "13900009999", M(5.0, "CNY")); !errors.Is(err, ErrNotFound) {
		t.Errorf("recharge unknown = %v, want ErrNotFound", err)
	}

	balance, err = l.Deduct(ctx, "13800001234", M(70.0, "CNY"))
	if err != nil {
		t.Fatalf("Deduct: %v", err)
	}
	if !balance.Equal(M(5.5, "CNY")) {
		t.Fatalf("balance after deduct = %s, want 5.5", balance)
	}
}

func TestRechargeSubCentRoundTrip(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	register(t, l, "13800001234")

	amount, err := ParseMoney("0.125", "CNY")
	if err != nil {
		t.Fatal(err)
	}
	balance, err := l.Recharge(ctx, "13800001234", amount)
	if err != nil {
		t.Fatalf("Recharge: %v", err)
	}

	// The balance after reload is exactly the balance reported, fraction
	// settled at the input boundary rather than at save time.
	reloaded := Open(l.file, WithLogger(logging.Discard()))
	got := reloaded.store.Get("13800001234").Balance
	if !got.Equal(balance) {
		t.Fatalf("durable balance %s diverged from in-memory balance %s", got, balance)
	}
	if !got.Equal(M(50.13, "CNY")) {
		t.Fatalf("balance = %s, want 50.13", got)
	}
}

func TestDeductNeverOverdraws(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	register(t, l, "13800001234")

	_, err := l.Deduct(ctx, "13800001234", M(200.0, "CNY"))
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("overdraw = %v, want ErrInsufficientBalance", err)
	}

	// Neither memory nor disk changed.
	acc, _ := l.Find("13800001234")
	if !acc.Balance.Equal(M(50.0, "CNY")) {
		t.Fatalf("balance after rejected deduct = %s, want 50", acc.Balance)
	}
	reloaded := Open(l.file, WithLogger(logging.Discard()))
	if got := reloaded.store.Get("13800001234").Balance; !got.Equal(M(50.0, "CNY")) {
		t.Fatalf("persisted balance = %s, want 50", got)
	}
}

func TestMutationsPersist(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	register(t, l, "13800001234")
	if _, err := l.Recharge(ctx, "13800001234", M(25.5, "CNY")); err != nil {
		t.Fatal(err)
	}

	reloaded := Open(l.file, WithLogger(logging.Discard()))
	acc := reloaded.store.Get("13800001234")
	if acc == nil {
		t.Fatal("account missing after reload")
	}
	if !acc.Balance.Equal(M(75.5, "CNY")) {
		t.Fatalf("reloaded balance = %s, want 75.5", acc.Balance)
	}
}

func TestResetPassword(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	register(t, l, "13800001234")
	acc, _ := l.Find("13800001234")

	if err := l.ResetPassword(ctx, "13800001234", "12"); !errors.Is(err, ErrInvalidPIN) {
		t.Fatalf("short pin = %v, want ErrInvalidPIN", err)
	}
	if err := l.ResetPassword(ctx, "13800001234", "5678"); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	if err := l.VerifyPassword(acc, "5678"); err != nil {
		t.Errorf("new password rejected: %v", err)
	}
	if err := l.VerifyPassword(acc, "1234"); !errors.Is(err, ErrAuthFailed) {
		t.Errorf("old password still accepted: %v", err)
	}
}

func TestCheckExpiring(t *testing.T) {
	l, clock := newTestLedger(t)
	ctx := context.Background()

	days, security := setup(30)
	if _, err := l.Register(ctx, RegisterFlow{
		Phone: "13800001111", Bonus: M(50.0, "CNY"),
		ValidDays: days, Security: security,
	}); err != nil {
		t.Fatal(err)
	}
	soonDays, _ := setup(2)
	if _, err := l.Register(ctx, RegisterFlow{
		Phone: "13800002222", Bonus: M(50.0, "CNY"),
		ValidDays: soonDays, Security: security,
	}); err != nil {
		t.Fatal(err)
	}

	report, err := l.CheckExpiring(3)
	if err != nil {
		t.Fatalf("CheckExpiring: %v", err)
	}
	if len(report.Expired) != 0 {
		t.Fatalf("expired = %v, want none", report.Expired)
	}
	if len(report.Expiring) != 1 || report.Expiring[0].Phone != "13800002222" {
		t.Fatalf("expiring = %v, want just 13800002222", report.Expiring)
	}

	// Past the short account's validity, it flips to expired and stays there.
	clock.advance(3 * Day)
	report, err = l.CheckExpiring(3)
	if err != nil {
		t.Fatalf("CheckExpiring: %v", err)
	}
	if len(report.Expired) != 1 || report.Expired[0] != "13800002222" {
		t.Fatalf("expired = %v, want just 13800002222", report.Expired)
	}
	acc, _ := l.Find("13800002222")
	if acc.Status != StatusExpired {
		t.Fatalf("status = %s, want expired", acc.Status)
	}

	// A second scan with no elapsed time reports the same and changes nothing.
	again, err := l.CheckExpiring(3)
	if err != nil {
		t.Fatalf("CheckExpiring: %v", err)
	}
	if len(again.Expired) != 1 || len(again.Expiring) != len(report.Expiring) {
		t.Fatal("repeated scan must be idempotent")
	}
	if !acc.Balance.Equal(M(50.0, "CNY")) {
		t.Fatal("expiry scans must never touch balances")
	}
}

func TestListOrder(t *testing.T) {
	l, _ := newTestLedger(t)
	register(t, l, "13800001111")
	register(t, l, "13800002222")
	register(t, l, "13800003333")

	summaries := l.List()
	if len(summaries) != 3 {
		t.Fatalf("List returned %d, want 3", len(summaries))
	}
	want := []string{"13800001111", "13800002222", "13800003333"}
	for i, s := range summaries {
		if s.Phone != want[i] {
			t.Errorf("List[%d] = %s, want %s", i, s.Phone, want[i])
		}
		if s.Remaining != "30d" {
			t.Errorf("List[%d].Remaining = %q, want 30d", i, s.Remaining)
		}
	}
}

func TestSyncDisabled(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	if _, err := l.SyncPush(ctx); !errors.Is(err, ErrSyncDisabled) {
		t.Errorf("SyncPush = %v, want ErrSyncDisabled", err)
	}
	if _, err := l.SyncPull(ctx); !errors.Is(err, ErrSyncDisabled) {
		t.Errorf("SyncPull = %v, want ErrSyncDisabled", err)
	}
	if _, err := l.SyncStatus(ctx); !errors.Is(err, ErrSyncDisabled) {
		t.Errorf("SyncStatus = %v, want ErrSyncDisabled", err)
	}
}

// fakeSyncer records pushes and serves a canned pull.
type fakeSyncer struct {
	pushes  int
	pushErr error
}

func (s *fakeSyncer) Push(ctx context.Context, path string) (string, error) {
	s.pushes++
	return "pushed", s.pushErr
}
func (s *fakeSyncer) Pull(ctx context.Context) (string, error) { return "pulled", nil }
func (s *fakeSyncer) Status(ctx context.Context) (SyncStatus, error) {
	return SyncStatus{HasRemote: true, Remote: "fake"}, nil
}

func TestPushAfterMutation(t *testing.T) {
	clock := &testClock{t: testNow}
	file := newTestFileStore(t)
	syncer := &fakeSyncer{}
	l := Open(file, WithClock(clock.now), WithLogger(logging.Discard()), WithSyncer(syncer))
	ctx := context.Background()

	register(t, l, "13800001234")
	if syncer.pushes != 1 {
		t.Fatalf("pushes after register = %d, want 1", syncer.pushes)
	}
	if _, err := l.Recharge(ctx, "13800001234", M(10.0, "CNY")); err != nil {
		t.Fatal(err)
	}
	if syncer.pushes != 2 {
		t.Fatalf("pushes after recharge = %d, want 2", syncer.pushes)
	}

	// A failing push never undoes the durable local change.
	syncer.pushErr = errors.New("remote down")
	balance, err := l.Recharge(ctx, "13800001234", M(10.0, "CNY"))
	if err != nil {
		t.Fatalf("Recharge with failing push: %v", err)
	}
	if !balance.Equal(M(70.0, "CNY")) {
		t.Fatalf("balance = %s, want 70", balance)
	}
}
