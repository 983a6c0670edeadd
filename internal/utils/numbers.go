package utils

import (
	"crypto/rand"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

const (
	// ApplicationNumberPrefix starts every application number.
	ApplicationNumberPrefix = "APP-"
	// LoanNumberPrefix starts every loan number.
	LoanNumberPrefix = "LN-"

	numberDigits = 10
)

var (
	applicationNumberRe = regexp.MustCompile(`^APP-\d{10}$`)
	loanNumberRe        = regexp.MustCompile(`^LN-\d{10}$`)
)

// generateNumber produces prefix followed by the given count of random digits
func generateNumber(prefix string, digits int) (string, error) {
	raw := make([]byte, digits)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate random digits: %w", err)
	}

	var builder strings.Builder
	builder.WriteString(prefix)
	for _, b := range raw {
		builder.WriteByte(b%10 + '0')
	}
	return builder.String(), nil
}

// GenerateApplicationNumber allocates a new human-readable application number.
func GenerateApplicationNumber() (string, error) {
	return generateNumber(ApplicationNumberPrefix, numberDigits)
}

// GenerateLoanNumber allocates a new human-readable loan number.
func GenerateLoanNumber() (string, error) {
	return generateNumber(LoanNumberPrefix, numberDigits)
}

// GenerateTransactionID returns a unique id for a payment transaction.
func GenerateTransactionID() string {
	return uuid.New().String()
}

// ValidApplicationNumber reports whether s matches the application number format.
func ValidApplicationNumber(s string) bool {
	return applicationNumberRe.MatchString(s)
}

// ValidLoanNumber reports whether s matches the loan number format.
func ValidLoanNumber(s string) bool {
	return loanNumberRe.MatchString(s)
}
