// Package validation provides input validation utilities
package validation

import (
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode"
)

const (
	PasswordMinLength = 8
	PasswordMaxLength = 128
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)
	digitsOnly    = regexp.MustCompile(`^[0-9]+$`)
)

// ValidatePassword checks if a password meets security requirements
func ValidatePassword(password string) error {
	if len(password) < PasswordMinLength {
		return fmt.Errorf("This password is too short. It must contain at least %d characters.", PasswordMinLength)
	}
	if len(password) > PasswordMaxLength {
		return fmt.Errorf("Ensure this field has no more than %d characters.", PasswordMaxLength)
	}
	if digitsOnly.MatchString(password) {
		return errors.New("This password is entirely numeric.")
	}

	hasLetter := false
	for _, r := range password {
		if unicode.IsLetter(r) {
			hasLetter = true
			break
		}
	}
	if !hasLetter {
		return errors.New("This password must contain at least one letter.")
	}

	if _, common := commonPasswords[strings.ToLower(password)]; common {
		return errors.New("This password is too common.")
	}
	return nil
}

var commonPasswords = map[string]struct{}{
	"password":   {},
	"password1":  {},
	"12345678a":  {},
	"qwertyuiop": {},
	"iloveyou":   {},
	"sunshine":   {},
	"princess":   {},
	"football":   {},
	"baseball":   {},
	"trustno1":   {},
}

// ValidateUsername checks if a username meets requirements. Blank is allowed.
func ValidateUsername(username string) error {
	if username == "" {
		return nil
	}
	if len(username) > MaxCharField {
		return fmt.Errorf(MsgMaxLength, MaxCharField)
	}
	if !usernameRegex.MatchString(username) {
		return errors.New("Enter a valid username. This value may contain only letters, numbers, and ./-/_ characters.")
	}
	return nil
}

// NormalizeEmail trims the address and lowercases its domain part.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + "@" + strings.ToLower(email[at+1:])
}

// ValidateEmail accepts a bare address such as "a@b.com".
func ValidateEmail(email string) error {
	if email == "" {
		return errors.New(MsgRequired)
	}
	if len(email) > MaxCharField {
		return fmt.Errorf(MsgMaxLength, MaxCharField)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@"):], ".") {
		return errors.New(MsgInvalidEmail)
	}
	return nil
}
