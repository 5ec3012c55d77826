package ledger

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of an account. The only transitions are
// unset to active when a validity period is set, and active to expired when
// an expiry check observes the clock past the expiry time. Expired is
// terminal.
type Status string

const (
	// StatusUnset marks an account whose validity period is not configured yet.
	StatusUnset Status = "unset"
	// StatusActive marks an account inside its validity period.
	StatusActive Status = "active"
	// StatusExpired marks an account past its validity period.
	StatusExpired Status = "expired"
)

// ParseStatus converts the persisted representation back to a Status.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusUnset, StatusActive, StatusExpired:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown account status %q", s)
}

// Account is one record per registered phone number.
//
// ValidDays, CreatedAt, ExpiryTime and LastModified stay at their zero
// values until a validity period is configured; that absence is meaningful
// and round-trips through the snapshot file.
type Account struct {
	Phone             string
	LastFour          string
	Balance           Money
	RegistrationBonus Money // credited at creation, immutable afterwards

	PasswordHash       string // empty until security setup completes
	SecurityQuestion   string
	SecurityAnswerHash string

	Status       Status
	ValidDays    int
	CreatedAt    time.Time
	ExpiryTime   time.Time
	LastModified time.Time
}

// Secured reports whether both the password and the security question are
// set. They are only ever written together, so checking either would do,
// but the invariant is cheap to state in full.
func (a *Account) Secured() bool {
	return a.PasswordHash != "" && a.SecurityQuestion != "" && a.SecurityAnswerHash != ""
}

// Configured reports whether a validity period has been set.
func (a *Account) Configured() bool {
	return a.ValidDays > 0 && !a.CreatedAt.IsZero()
}

// Summary is the read-only projection of an account used for listings.
type Summary struct {
	Phone       string
	Tail        string
	Balance     string
	Status      string
	Remaining   string
	Bonus       string
	HasPassword bool
	HasSecurity bool
}

// summary projects the account for display at the given instant.
func (a *Account) summary(now time.Time) Summary {
	s := Summary{
		Phone:       a.Phone,
		Tail:        a.LastFour,
		Balance:     a.Balance.String(),
		Status:      string(a.Status),
		Bonus:       a.RegistrationBonus.String(),
		HasPassword: a.PasswordHash != "",
		HasSecurity: a.SecurityQuestion != "",
	}
	if a.Configured() && a.Status != StatusExpired {
		s.Remaining = FormatRemaining(now, a.ExpiryTime)
	}
	return s
}
