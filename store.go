package ledger

import "iter"

// Store holds every registered account, keyed by phone number. Insertion
// order is preserved so listings and the snapshot file stay stable across
// load/save cycles.
type Store struct {
	order    []string
	accounts map[string]*Account
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{accounts: make(map[string]*Account)}
}

// Len returns the number of accounts.
func (s *Store) Len() int { return len(s.order) }

// Get returns the account for an exact phone number, or nil.
func (s *Store) Get(phone string) *Account {
	return s.accounts[phone]
}

// ByTail returns the account whose last four digits match, or nil. Tails
// are unique by construction, so the first match is the only one.
func (s *Store) ByTail(tail string) *Account {
	for _, phone := range s.order {
		if s.accounts[phone].LastFour == tail {
			return s.accounts[phone]
		}
	}
	return nil
}

// Add inserts a new account. It returns ErrDuplicatePhone or
// ErrDuplicateTail when either uniqueness invariant would break.
func (s *Store) Add(a *Account) error {
	if _, ok := s.accounts[a.Phone]; ok {
		return ErrDuplicatePhone
	}
	if s.ByTail(a.LastFour) != nil {
		return ErrDuplicateTail
	}
	s.accounts[a.Phone] = a
	s.order = append(s.order, a.Phone)
	return nil
}

// Remove deletes an account. It only exists to roll back a provisional
// registration; accounts are never deleted otherwise.
func (s *Store) Remove(phone string) {
	if _, ok := s.accounts[phone]; !ok {
		return
	}
	delete(s.accounts, phone)
	for i, p := range s.order {
		if p == phone {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// All iterates over accounts in insertion order.
func (s *Store) All() iter.Seq[*Account] {
	return func(yield func(*Account) bool) {
		for _, phone := range s.order {
			if !yield(s.accounts[phone]) {
				return
			}
		}
	}
}
