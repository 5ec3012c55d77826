package ledger

// CredentialFunc supplies one credential attempt. attempt is 1-based.
// Returning ErrCancelled abandons the whole authentication with no state
// change; any other error aborts it likewise.
type CredentialFunc func(attempt int) (string, error)

// AuthenticatePassword verifies the account's password, allowing up to the
// configured number of attempts before failing with ErrAuthExhausted.
//
// The expiry state is checked first: an account observed past its validity
// fails with ErrExpired, and that active-to-expired transition is persisted
// as a side effect even though the authentication itself fails.
func (l *Ledger) AuthenticatePassword(acc *Account, next CredentialFunc) error {
	if err := l.checkExpiry(acc); err != nil {
		return err
	}
	return l.authenticate(acc.PasswordHash, HashSecret, next)
}

// AuthenticateSecurity verifies the account's security answer under the
// same attempt and cancellation contract as AuthenticatePassword. Answers
// are normalized before hashing, so case and surrounding whitespace do not
// matter.
func (l *Ledger) AuthenticateSecurity(acc *Account, next CredentialFunc) error {
	return l.authenticate(acc.SecurityAnswerHash, func(s string) string {
		return HashSecret(NormalizeAnswer(s))
	}, next)
}

// VerifyPassword checks a single already-collected password, for
// non-interactive callers. It applies the same expiry side effect as
// AuthenticatePassword and fails with ErrAuthFailed on a mismatch.
func (l *Ledger) VerifyPassword(acc *Account, pin string) error {
	if err := l.checkExpiry(acc); err != nil {
		return err
	}
	if acc.PasswordHash == "" || HashSecret(pin) != acc.PasswordHash {
		return ErrAuthFailed
	}
	return nil
}

// VerifyAnswer checks a single already-collected security answer.
func (l *Ledger) VerifyAnswer(acc *Account, answer string) error {
	if acc.SecurityAnswerHash == "" || HashSecret(NormalizeAnswer(answer)) != acc.SecurityAnswerHash {
		return ErrAuthFailed
	}
	return nil
}

// authenticate runs the attempt loop. A nil error means the digest of one
// supplied secret matched the stored hash.
func (l *Ledger) authenticate(stored string, digest func(string) string, next CredentialFunc) error {
	for attempt := 1; attempt <= l.maxAttempts; attempt++ {
		secret, err := next(attempt)
		if err != nil {
			return err
		}
		if stored != "" && digest(secret) == stored {
			return nil
		}
	}
	return ErrAuthExhausted
}

// checkExpiry lazily applies the active-to-expired transition. The
// transition is persisted immediately; if that write fails the account is
// still treated as expired, because the state is derived from the clock.
func (l *Ledger) checkExpiry(acc *Account) error {
	if acc.Status == StatusExpired {
		return ErrExpired
	}
	if acc.Status == StatusActive && acc.Configured() && Expired(l.now(), acc.ExpiryTime) {
		acc.Status = StatusExpired
		if err := l.persist(); err != nil {
			l.log.Warn("could not persist expiry transition", "phone", acc.Phone, "err", err)
		}
		return ErrExpired
	}
	return nil
}
