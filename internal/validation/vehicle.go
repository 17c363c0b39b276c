// vehicle.go validates the car and motorcycle forms. The two forms share every
// rule except the seat-count ceiling, so both are expressed through a single
// validator parameterised by VehicleLimits.
package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// datePattern is a literal YYYY-MM-DD match. Calendar plausibility is not
	// checked; the forms have always stored the date as submitted.
	datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

	// decimalPattern is an unsigned decimal with at most two fraction digits,
	// shared by vehicle prices and plant ages.
	decimalPattern = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)
)

// NameLookup reports whether a name is already in use. The repository supplies
// it so the validator itself stays free of database access.
type NameLookup func(name string) (bool, error)

// VehicleLimits carries the per-entity seat-count bound.
type VehicleLimits struct {
	Label    string
	MaxSeats int
}

var (
	CarLimits   = VehicleLimits{Label: "car", MaxSeats: 10}
	MotorLimits = VehicleLimits{Label: "motorcycle", MaxSeats: 3}
)

// VehicleForm holds the raw submitted fields of a car or motorcycle form.
type VehicleForm struct {
	Name        string
	Type        string
	Brand       string
	Seats       string
	Country     string
	Manufacture string
	Price       string
}

// ValidateVehicle checks a car or motorcycle submission. Blank checks run
// first, then format checks, then the case-insensitive name-uniqueness lookup.
// The lookup must exclude the row being edited; callers arrange that when they
// build it. A lookup failure is a storage fault, not a validation outcome, and
// is returned as the second value.
func ValidateVehicle(form VehicleForm, limits VehicleLimits, nameTaken NameLookup) (Errors, error) {
	var errs Errors
	if Blank(form.Name) {
		errs.Add(CodeBlankName, "Name cannot be blank.")
	}
	if Blank(form.Type) {
		errs.Add(CodeBlankType, "Type cannot be blank.")
	}
	if Blank(form.Brand) {
		errs.Add(CodeBlankBrand, "Brand cannot be blank.")
	}
	if Blank(form.Country) {
		errs.Add(CodeBlankCountry, "Country cannot be blank.")
	}

	seats, err := strconv.Atoi(strings.TrimSpace(form.Seats))
	if err != nil || seats < 1 || seats > limits.MaxSeats {
		errs.Add(CodeInvalidSeats,
			fmt.Sprintf("Seat count must be a whole number between 1 and %d.", limits.MaxSeats))
	}
	if !datePattern.MatchString(strings.TrimSpace(form.Manufacture)) {
		errs.Add(CodeInvalidDate, "Manufacture date must be in YYYY-MM-DD format.")
	}
	errs.Merge(validatePositiveDecimal(form.Price, CodeInvalidPrice, CodePriceNotPositive, "Price"))

	if !Blank(form.Name) {
		taken, err := nameTaken(strings.TrimSpace(form.Name))
		if err != nil {
			return errs, fmt.Errorf("checking %s name uniqueness: %w", limits.Label, err)
		}
		if taken {
			errs.Add(CodeNameTaken, "Name is already taken.")
		}
	}
	return errs, nil
}

// validatePositiveDecimal checks the shared decimal-with-two-fraction-digits
// pattern and strict positivity. label is the field name used in messages.
func validatePositiveDecimal(value string, formatCode, positiveCode Code, label string) Errors {
	var errs Errors
	trimmed := strings.TrimSpace(value)
	if !decimalPattern.MatchString(trimmed) {
		errs.Add(formatCode, label+" must be a number with at most 2 decimal places.")
		return errs
	}
	parsed, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || parsed <= 0 {
		errs.Add(positiveCode, label+" must be greater than zero.")
	}
	return errs
}
