package ledger

import (
	"errors"
	"testing"
)

func TestValidPhone(t *testing.T) {
	tests := []struct {
		phone string
		want  bool
	}{
		{"13800001234", true},
		{"19912345678", true},
		{"12800001234", false}, // second digit out of range
		{"23800001234", false}, // must start with 1
		{"1380000123", false},  // too short
		{"138000012345", false},
		{"13800o01234", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ValidPhone(tt.phone); got != tt.want {
			t.Errorf("ValidPhone(%q) = %v, want %v", tt.phone, got, tt.want)
		}
	}
}

func TestValidPIN(t *testing.T) {
	tests := []struct {
		pin  string
		want bool
	}{
		{"0000", true},
		{"1234", true},
		{"123", false},
		{"12345", false},
		{"12a4", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ValidPIN(tt.pin); got != tt.want {
			t.Errorf("ValidPIN(%q) = %v, want %v", tt.pin, got, tt.want)
		}
	}
}

func TestHashSecret(t *testing.T) {
	// sha256("1234") in hex.
	want := "03ac674216f3e15c761ee1a5e255f067953623c8b388b4459e13f978d7c846f4"
	if got := HashSecret("1234"); got != want {
		t.Errorf("HashSecret(1234) = %s, want %s", got, want)
	}
	if HashSecret("1234") != HashSecret("1234") {
		t.Error("HashSecret is not deterministic")
	}
	if HashSecret("1234") == HashSecret("1235") {
		t.Error("distinct secrets must not collide on trivial inputs")
	}
}

func TestNormalizeAnswer(t *testing.T) {
	tests := []struct{ in, want string }{
		{"  Fluffy  ", "fluffy"},
		{"FLUFFY", "fluffy"},
		{"fluffy", "fluffy"},
		{"  ", ""},
	}
	for _, tt := range tests {
		if got := NormalizeAnswer(tt.in); got != tt.want {
			t.Errorf("NormalizeAnswer(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if HashSecret(NormalizeAnswer(" Fluffy ")) != HashSecret(NormalizeAnswer("fluffy")) {
		t.Error("normalized answers must hash identically")
	}
}

func TestSecuritySetupCheck(t *testing.T) {
	tests := []struct {
		name  string
		setup SecuritySetup
		want  error
	}{
		{"valid", SecuritySetup{PIN: "1234", Question: 1, Answer: "fluffy"}, nil},
		{"bad pin", SecuritySetup{PIN: "123", Question: 1, Answer: "fluffy"}, ErrInvalidPIN},
		{"question too low", SecuritySetup{PIN: "1234", Question: 0, Answer: "fluffy"}, ErrInvalidInput},
		{"question too high", SecuritySetup{PIN: "1234", Question: 9, Answer: "fluffy"}, ErrInvalidInput},
		{"answer too short", SecuritySetup{PIN: "1234", Question: 1, Answer: "a"}, ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.setup.check()
			if tt.want == nil {
				if err != nil {
					t.Fatalf("check() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("check() = %v, want %v", err, tt.want)
			}
		})
	}
}
