package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	phonePattern = regexp.MustCompile(`^1[3-9]\d{9}$`)
	pinPattern   = regexp.MustCompile(`^\d{4}$`)
	tailPattern  = regexp.MustCompile(`^\d{4}$`)
)

// SecurityQuestions is the fixed set of questions an account may choose
// from, selected by 1-based index.
var SecurityQuestions = []string{
	"What is your favorite color?",
	"What city were you born in?",
	"What was the name of your primary school?",
	"What is your pet's name?",
	"What is your mother's family name?",
	"What is your favorite movie?",
	"What was your first school?",
	"What is your best friend's name?",
}

// MinAnswerLength is the minimum accepted security answer length.
const MinAnswerLength = 2

// ValidPhone reports whether s is an acceptable 11-digit mobile number.
func ValidPhone(s string) bool { return phonePattern.MatchString(s) }

// ValidPIN reports whether s is exactly four decimal digits.
func ValidPIN(s string) bool { return pinPattern.MatchString(s) }

// HashSecret returns the hex digest of s. Passwords and security answers
// are hashed identically, a single unsalted round, matching the stored
// snapshot format. Substituting a slower scheme would not change any other
// observable behavior of the ledger.
func HashSecret(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// NormalizeAnswer trims and lower-cases a security answer so comparison is
// insensitive to case and surrounding whitespace.
func NormalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// validate checks input structs carrying `validate` tags. The custom tags
// cover the formats the standard baked-in tags cannot express.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("cnmobile", func(fl validator.FieldLevel) bool {
		return ValidPhone(fl.Field().String())
	})
	v.RegisterValidation("pin", func(fl validator.FieldLevel) bool {
		return ValidPIN(fl.Field().String())
	})
	return v
}

// SecuritySetup carries the credentials collected during registration or a
// password reset. Question is the 1-based index into SecurityQuestions.
type SecuritySetup struct {
	PIN      string `validate:"required,pin"`
	Question int    `validate:"min=1,max=8"`
	Answer   string `validate:"required,min=2"`
}

// check validates the setup and maps field failures onto the ledger's error
// taxonomy.
func (s SecuritySetup) check() error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	for _, fe := range fields {
		switch fe.Field() {
		case "PIN":
			return ErrInvalidPIN
		case "Question":
			return fmt.Errorf("%w: security question must be 1-%d", ErrInvalidInput, len(SecurityQuestions))
		case "Answer":
			return fmt.Errorf("%w: answer needs at least %d characters", ErrInvalidInput, MinAnswerLength)
		}
	}
	return ErrInvalidInput
}
