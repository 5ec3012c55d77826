package renderer

import (
	"strings"
	"testing"

	"github.com/ezhou/ledger"
)

func TestAccounts(t *testing.T) {
	md := Accounts([]ledger.Summary{
		{Phone: "13800001234", Tail: "1234", Balance: "75.50", Status: "active", Remaining: "28d", Bonus: "50.00", HasPassword: true, HasSecurity: true},
		{Phone: "13900005678", Tail: "5678", Balance: "50.00", Status: "unset"},
	})
	for _, want := range []string{
		"# Registered Accounts",
		"| 13800001234 | 1234 | 75.50 | active | 28d | 50.00 | yes | yes |",
		"| 13900005678 | 5678 | 50.00 | unset | - |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("missing %q in:\n%s", want, md)
		}
	}
}

func TestAccountsEmpty(t *testing.T) {
	md := Accounts(nil)
	if !strings.Contains(md, "No accounts registered yet.") {
		t.Errorf("unexpected output:\n%s", md)
	}
}

func TestExpiryReport(t *testing.T) {
	md := ExpiryReport(&ledger.ExpiryReport{
		Threshold: 3,
		Expired:   []string{"13800001111"},
		Expiring:  []ledger.ExpiryEntry{{Phone: "13800002222", Remaining: "2d"}},
	})
	for _, want := range []string{
		"## Expired",
		"- 13800001111",
		"## Expiring within 3 days",
		"- 13800002222 (2d left)",
		"1 expired, 1 expiring soon.",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("missing %q in:\n%s", want, md)
		}
	}
}

func TestExpiryReportAllClear(t *testing.T) {
	md := ExpiryReport(&ledger.ExpiryReport{Threshold: 3})
	if !strings.Contains(md, "All accounts are inside their validity period.") {
		t.Errorf("unexpected output:\n%s", md)
	}
}

func TestSyncStatus(t *testing.T) {
	md := SyncStatus(ledger.SyncStatus{HasRemote: true, Remote: "git@example.com:me/ledger.git", Dirty: true})
	for _, want := range []string{
		"- Remote configured: yes",
		"- Remote: git@example.com:me/ledger.git",
		"- Unpushed changes: yes",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("missing %q in:\n%s", want, md)
		}
	}

	md = SyncStatus(ledger.SyncStatus{})
	if !strings.Contains(md, "- Remote configured: no") {
		t.Errorf("unexpected output:\n%s", md)
	}
}
