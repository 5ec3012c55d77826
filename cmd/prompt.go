package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/ezhou/ledger"
)

// All interactive prompts accept "0" to go back, which surfaces as
// ledger.ErrCancelled to the caller.

var stdin = bufio.NewReader(os.Stdin)

// readLine prompts for a single line of input.
func readLine(label string) (string, error) {
	fmt.Printf("%s (0 to go back): ", label)
	line, err := stdin.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("could not read input: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "0" {
		return "", ledger.ErrCancelled
	}
	return line, nil
}

// readSecret prompts for a line of input without echoing it.
func readSecret(label string) (string, error) {
	fmt.Printf("%s (0 to go back): ", label)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("could not read secret: %w", err)
	}
	s := strings.TrimSpace(string(b))
	if s == "0" {
		return "", ledger.ErrCancelled
	}
	return s, nil
}

// readInt prompts for an integer.
func readInt(label string) (int, error) {
	s, err := readLine(label)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ledger.ErrInvalidInput, s)
	}
	return n, nil
}

// askPIN prompts for a new 4-digit PIN, twice, until both entries match.
func askPIN() (string, error) {
	for {
		pin, err := readSecret("New password (4 digits)")
		if err != nil {
			return "", err
		}
		if !ledger.ValidPIN(pin) {
			fmt.Println("The password must be exactly 4 digits.")
			continue
		}
		again, err := readSecret("Confirm password")
		if err != nil {
			return "", err
		}
		if pin != again {
			fmt.Println("The passwords do not match, try again.")
			continue
		}
		return pin, nil
	}
}

// askSecurity prompts for the full security setup: PIN, question, answer.
func askSecurity() (ledger.SecuritySetup, error) {
	pin, err := askPIN()
	if err != nil {
		return ledger.SecuritySetup{}, err
	}

	fmt.Println("Pick a security question:")
	for i, q := range ledger.SecurityQuestions {
		fmt.Printf("  %d. %s\n", i+1, q)
	}
	var question int
	for {
		question, err = readInt("Question number")
		if err != nil {
			return ledger.SecuritySetup{}, err
		}
		if question >= 1 && question <= len(ledger.SecurityQuestions) {
			break
		}
		fmt.Printf("Pick a number between 1 and %d.\n", len(ledger.SecurityQuestions))
	}

	var answer string
	for {
		answer, err = readLine("Answer")
		if err != nil {
			return ledger.SecuritySetup{}, err
		}
		if len(ledger.NormalizeAnswer(answer)) >= ledger.MinAnswerLength {
			break
		}
		fmt.Printf("The answer must be at least %d characters.\n", ledger.MinAnswerLength)
	}

	return ledger.SecuritySetup{PIN: pin, Question: question, Answer: answer}, nil
}

// passwordPrompt returns a credential callback asking for the account password.
func passwordPrompt() ledger.CredentialFunc {
	return func(attempt int) (string, error) {
		label := "Password"
		if attempt > 1 {
			label = fmt.Sprintf("Password (attempt %d)", attempt)
		}
		return readSecret(label)
	}
}

// answerPrompt returns a credential callback asking the account's security question.
func answerPrompt(a *ledger.Account) ledger.CredentialFunc {
	return func(attempt int) (string, error) {
		if attempt == 1 && a.SecurityQuestion != "" {
			fmt.Println(a.SecurityQuestion)
		}
		label := "Answer"
		if attempt > 1 {
			label = fmt.Sprintf("Answer (attempt %d)", attempt)
		}
		return readLine(label)
	}
}
