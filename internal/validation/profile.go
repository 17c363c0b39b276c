// profile.go validates the registration, login, and profile-edit forms.
package validation

import "strings"

// Blank reports whether s is empty or whitespace only. Every required-field
// rule in the package treats such values as missing.
func Blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// ValidateRegistration checks a new-account submission. All blank-field rules
// are evaluated first, then email shape, then the password confirmation.
func ValidateRegistration(name, username, email, password, confirm, country string) Errors {
	var errs Errors
	if Blank(username) {
		errs.Add(CodeBlankUsername, "Username cannot be blank.")
	}
	if Blank(name) {
		errs.Add(CodeBlankName, "Name cannot be blank.")
	}
	if Blank(password) {
		errs.Add(CodeBlankPassword, "Password cannot be blank.")
	}
	if Blank(country) {
		errs.Add(CodeBlankCountry, "Country cannot be blank.")
	}
	errs.Merge(ValidateEmail(email))
	if password != confirm {
		errs.Add(CodePasswordMismatch, "Password do not match.")
	}
	return errs
}

// ValidateLogin checks a login submission. The email format is checked even
// though login only needs a lookup key; a malformed address is rejected before
// any account lookup happens.
func ValidateLogin(email, password string) Errors {
	var errs Errors
	if Blank(email) {
		errs.Add(CodeEmptyEmail, "Email cannot be blank.")
	}
	if Blank(password) {
		errs.Add(CodeBlankPassword, "Password cannot be blank.")
	}
	if !Blank(email) && !emailPattern.MatchString(email) {
		errs.Add(CodeInvalidEmailFormat, "Email format is invalid")
	}
	return errs
}

// ValidateProfileEdit checks a self-edit submission. A blank password together
// with a blank confirmation means "keep the current password" and skips the
// password rules entirely; when a new password is supplied it must be
// confirmed.
func ValidateProfileEdit(name, username, email, password, confirm, country string) Errors {
	var errs Errors
	if Blank(username) {
		errs.Add(CodeBlankUsername, "Username cannot be blank.")
	}
	if Blank(name) {
		errs.Add(CodeBlankName, "Name cannot be blank.")
	}
	if Blank(country) {
		errs.Add(CodeBlankCountry, "Country cannot be blank.")
	}
	// A blank password means "keep the current one"; the confirmation is
	// only compared when a new password was actually supplied.
	if !Blank(password) && password != confirm {
		errs.Add(CodePasswordMismatch, "Passwords do not match.")
	}
	errs.Merge(ValidateEmail(email))
	return errs
}
