// Package validation implements the form validators for every entity managed by
// the inventory admin. Validators are pure functions: they inspect submitted
// field values (plus caller-supplied lookup closures for uniqueness and
// reference checks) and return an ordered list of violations. They never touch
// the database or filesystem themselves, which keeps them trivially testable.
//
// Every validator accumulates all violated rules rather than stopping at the
// first, because the forms display the complete list to the user. Check order
// is fixed (blank-field checks, then format checks, then uniqueness/reference
// checks) so rendered error lists are deterministic.
package validation

// Code identifies a validation rule independently of its display text, so
// tests and handlers can branch on the rule rather than parsing messages.
type Code string

const (
	CodeEmptyEmail         Code = "empty_email"
	CodeInvalidEmailFormat Code = "invalid_email_format"
	CodeBlankUsername      Code = "blank_username"
	CodeBlankName          Code = "blank_name"
	CodeBlankPassword      Code = "blank_password"
	CodeBlankCountry       Code = "blank_country"
	CodePasswordMismatch   Code = "password_mismatch"
	CodeUsernameTaken      Code = "username_taken"
	CodeInvalidCredentials Code = "invalid_credentials"
	CodeEmailNotFound      Code = "email_not_found"
	CodeInvalidToken       Code = "invalid_token"

	CodeBlankType      Code = "blank_type"
	CodeBlankBrand     Code = "blank_brand"
	CodeNameTaken      Code = "name_taken"
	CodeInvalidSeats   Code = "invalid_seats"
	CodeInvalidDate    Code = "invalid_date"
	CodeInvalidPrice   Code = "invalid_price"
	CodePriceNotPositive Code = "price_not_positive"

	CodeBlankDescription Code = "blank_description"
	CodeInvalidAge       Code = "invalid_age"
	CodeAgeNotPositive   Code = "age_not_positive"
	CodeBlankLeaf        Code = "blank_leaf"
	CodeUnknownLeaf      Code = "unknown_leaf"
	CodeBlankSeed        Code = "blank_seed"
	CodeUnknownSeed      Code = "unknown_seed"

	CodeFileMissing     Code = "file_missing"
	CodeUnsupportedType Code = "unsupported_type"
	CodeFileTooLarge    Code = "file_too_large"
	CodeFileTooSmall    Code = "file_too_small"
)

// Error is a single violated rule with its user-facing message.
type Error struct {
	Code    Code
	Message string
}

// Errors is an ordered accumulation of violations. The zero value is ready to
// use; an empty list means the input passed.
type Errors []Error

// Add appends a violation.
func (e *Errors) Add(code Code, message string) {
	*e = append(*e, Error{Code: code, Message: message})
}

// Merge appends all violations from other, preserving order.
func (e *Errors) Merge(other Errors) {
	*e = append(*e, other...)
}

// Has reports whether any violation carries the given code.
func (e Errors) Has(code Code) bool {
	for _, err := range e {
		if err.Code == code {
			return true
		}
	}
	return false
}

// Messages returns the display texts in accumulation order.
func (e Errors) Messages() []string {
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Message)
	}
	return msgs
}

// Empty reports whether the input passed validation.
func (e Errors) Empty() bool {
	return len(e) == 0
}
