package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// This file persists the account store as a single JSON object mapping
// phone number to account, in insertion order, indented so the file stays
// human-readable and diff-friendly. Fields that are unset before a validity
// period is configured are simply absent; that absence round-trips.

// MarshalJSON writes the account with a fixed field order. Credentials are
// explicit nulls until security setup completes; timestamps only appear
// once the validity period is configured.
func (a *Account) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("balance", a.Balance)
	w.Append("last_four", a.LastFour)
	w.Append("password", nullable(a.PasswordHash))
	w.Append("security_question", nullable(a.SecurityQuestion))
	w.Append("security_answer", nullable(a.SecurityAnswerHash))
	w.Append("status", a.Status)
	w.Append("registration_bonus", a.RegistrationBonus)
	w.Optional("valid_days", a.ValidDays)
	w.Optional("created_at", stamp(a.CreatedAt))
	w.Optional("expiry_time", stamp(a.ExpiryTime))
	w.Optional("last_modified", stamp(a.LastModified))
	return w.MarshalJSON()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DatetimeFormat)
}

// EncodeStore writes the full snapshot to w.
func EncodeStore(w io.Writer, s *Store) error {
	var obj jsonObjectWriter
	for a := range s.All() {
		obj.Append(a.Phone, a)
	}
	compact, err := obj.MarshalJSON()
	if err != nil {
		return fmt.Errorf("could not encode store: %w", err)
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", "  "); err != nil {
		return fmt.Errorf("could not indent store: %w", err)
	}
	out.WriteByte('\n')
	if _, err := w.Write(out.Bytes()); err != nil {
		return fmt.Errorf("could not write store: %w", err)
	}
	return nil
}

// jaccount mirrors the on-disk account object for decoding.
type jaccount struct {
	Balance           decimal.Decimal `json:"balance"`
	LastFour          string          `json:"last_four"`
	Password          *string         `json:"password"`
	SecurityQuestion  *string         `json:"security_question"`
	SecurityAnswer    *string         `json:"security_answer"`
	Status            string          `json:"status"`
	RegistrationBonus decimal.Decimal `json:"registration_bonus"`
	ValidDays         int             `json:"valid_days"`
	CreatedAt         string          `json:"created_at"`
	ExpiryTime        string          `json:"expiry_time"`
	LastModified      string          `json:"last_modified"`
}

// DecodeStore reads a snapshot, preserving the order phone numbers appear
// in the file. Amounts are tagged with the given currency.
func DecodeStore(r io.Reader, currency string) (*Store, error) {
	store := NewStore()
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			return store, nil // empty file is an empty store
		}
		return nil, fmt.Errorf("%w: %v", ErrCorruptData, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("%w: snapshot is not a JSON object", ErrCorruptData)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptData, err)
		}
		phone, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: unexpected key %v", ErrCorruptData, keyTok)
		}

		var ja jaccount
		if err := dec.Decode(&ja); err != nil {
			return nil, fmt.Errorf("%w: account %q: %v", ErrCorruptData, phone, err)
		}
		acc, err := ja.account(phone, currency)
		if err != nil {
			return nil, fmt.Errorf("%w: account %q: %v", ErrCorruptData, phone, err)
		}
		if err := store.Add(acc); err != nil {
			return nil, fmt.Errorf("%w: account %q: %v", ErrCorruptData, phone, err)
		}
	}
	return store, nil
}

// account converts the decoded object into the in-memory representation.
func (ja jaccount) account(phone, currency string) (*Account, error) {
	status, err := ParseStatus(ja.Status)
	if err != nil {
		return nil, err
	}
	acc := &Account{
		Phone:             phone,
		LastFour:          ja.LastFour,
		Balance:           M(ja.Balance, currency),
		RegistrationBonus: M(ja.RegistrationBonus, currency),
		Status:            status,
		ValidDays:         ja.ValidDays,
	}
	if ja.Password != nil {
		acc.PasswordHash = *ja.Password
	}
	if ja.SecurityQuestion != nil {
		acc.SecurityQuestion = *ja.SecurityQuestion
	}
	if ja.SecurityAnswer != nil {
		acc.SecurityAnswerHash = *ja.SecurityAnswer
	}
	for _, f := range []struct {
		raw  string
		into *time.Time
	}{
		{ja.CreatedAt, &acc.CreatedAt},
		{ja.ExpiryTime, &acc.ExpiryTime},
		{ja.LastModified, &acc.LastModified},
	} {
		if f.raw == "" {
			continue
		}
		t, err := time.Parse(DatetimeFormat, f.raw)
		if err != nil {
			return nil, err
		}
		*f.into = t
	}
	return acc, nil
}
