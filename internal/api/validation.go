package api

import "strings"

const (
	msgPasswordTooShort  = "Password must be at least 6 characters long."
	msgPasswordNoDigit   = "Password must contain at least one number."
	msgUsernameNotString = "Username must be a string"
)

func containsDigit(s string) bool {
	return strings.ContainsAny(s, "0123456789")
}

// ValidateWeakPassword checks a submitted sample password against the
// shared submission rules: at least 6 characters and at least one digit.
// Every failing rule is reported, not just the first.
func ValidateWeakPassword(password string) []FieldError {
	var errs []FieldError
	if len(password) < 6 {
		errs = append(errs, FieldError{Field: "password", Message: msgPasswordTooShort})
	}
	if !containsDigit(password) {
		errs = append(errs, FieldError{Field: "password", Message: msgPasswordNoDigit})
	}
	return errs
}
