// email.go validates email address shape for registration, login, profile
// editing, and password recovery.
package validation

import (
	"regexp"
	"strings"
)

// emailPattern accepts an ASCII local part of letters, digits and ._%+-
// followed by dot-separated domain labels and a final label of at least two
// letters. Deliberately simpler than full RFC 5322; it matches what the
// registration form has always accepted.
var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail checks that email is present and shaped like local@domain.tld.
// A blank value reports only the blank violation; the format check runs only
// on non-blank input.
func ValidateEmail(email string) Errors {
	var errs Errors
	if strings.TrimSpace(email) == "" {
		errs.Add(CodeEmptyEmail, "Email cannot be blank.")
	} else if !emailPattern.MatchString(email) {
		errs.Add(CodeInvalidEmailFormat, "Email format is invalid")
	}
	return errs
}
