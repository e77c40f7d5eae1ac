package validator

import (
	"fmt"
	"net/mail"
	"sort"
	"strings"
	"unicode"
)

const MinPasswordLength = 8

type ValidationErrors map[string]string

func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

func (v ValidationErrors) Add(field, message string) {
	v[field] = message
}

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, v[f]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Err returns v as an error, or nil when there is nothing to report.
func (v ValidationErrors) Err() error {
	if !v.HasErrors() {
		return nil
	}
	return v
}

// ValidateSignUp checks the parent e-mail and password before the identity
// provider is contacted.
func ValidateSignUp(email, password string) ValidationErrors {
	errs := make(ValidationErrors)
	validateEmail(email, errs)
	validatePassword(password, errs)
	return errs
}

func ValidateSignIn(email, password string) ValidationErrors {
	errs := make(ValidationErrors)
	validateEmail(email, errs)
	if password == "" {
		errs.Add("password", "Password is required")
	}
	return errs
}

// ValidateNickname applies the onboarding rule: at least two visible characters.
func ValidateNickname(nickname string) ValidationErrors {
	errs := make(ValidationErrors)
	n := strings.TrimSpace(nickname)
	if len([]rune(n)) < 2 {
		errs.Add("nickname", "Nickname must be at least 2 characters")
	} else if len([]rune(n)) > 30 {
		errs.Add("nickname", "Nickname is too long")
	}
	return errs
}

func validateEmail(email string, errs ValidationErrors) {
	email = strings.TrimSpace(email)
	if email == "" {
		errs.Add("email", "Email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs.Add("email", "Invalid email address")
	}
}

func validatePassword(password string, errs ValidationErrors) {
	if len(password) < MinPasswordLength {
		errs.Add("password", fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
		return
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		errs.Add("password", "Password must contain letters and numbers")
	}
}
