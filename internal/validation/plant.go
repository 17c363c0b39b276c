// plant.go validates the leaf, seed, and tree forms. Tree submissions carry
// foreign keys to leafs and seeds; their existence is checked through
// caller-supplied lookups so the validator stays pure.
package validation

import (
	"fmt"
	"strconv"
	"strings"
)

// IDLookup reports whether a referenced row exists.
type IDLookup func(id int64) (bool, error)

// ValidateLeaf checks a leaf submission.
func ValidateLeaf(name, leafType, age, description string) Errors {
	var errs Errors
	if Blank(name) {
		errs.Add(CodeBlankName, "Name cannot be blank.")
	}
	if Blank(leafType) {
		errs.Add(CodeBlankType, "Type cannot be blank.")
	}
	if Blank(description) {
		errs.Add(CodeBlankDescription, "Description cannot be blank.")
	}
	errs.Merge(validatePositiveDecimal(age, CodeInvalidAge, CodeAgeNotPositive, "Age"))
	return errs
}

// ValidateSeed checks a seed submission.
func ValidateSeed(name string) Errors {
	var errs Errors
	if Blank(name) {
		errs.Add(CodeBlankName, "Name cannot be blank.")
	}
	return errs
}

// TreeForm holds the raw submitted fields of a tree form.
type TreeForm struct {
	Name        string
	Type        string
	LeafID      string
	SeedID      string
	Age         string
	Description string
}

// ValidateTree checks a tree submission. Blank and format rules run first;
// the leaf/seed existence lookups run last and only for parseable IDs. A
// lookup failure is a storage fault returned as the second value.
func ValidateTree(form TreeForm, leafExists, seedExists IDLookup) (Errors, error) {
	var errs Errors
	if Blank(form.Name) {
		errs.Add(CodeBlankName, "Name cannot be blank.")
	}
	if Blank(form.Type) {
		errs.Add(CodeBlankType, "Type cannot be blank.")
	}
	if Blank(form.LeafID) {
		errs.Add(CodeBlankLeaf, "Leaf cannot be blank.")
	}
	if Blank(form.SeedID) {
		errs.Add(CodeBlankSeed, "Seed cannot be blank.")
	}
	if Blank(form.Description) {
		errs.Add(CodeBlankDescription, "Description cannot be blank.")
	}
	errs.Merge(validatePositiveDecimal(form.Age, CodeInvalidAge, CodeAgeNotPositive, "Age"))

	if !Blank(form.LeafID) {
		ok, err := referencedRowExists(form.LeafID, leafExists)
		if err != nil {
			return errs, fmt.Errorf("checking leaf reference: %w", err)
		}
		if !ok {
			errs.Add(CodeUnknownLeaf, "Selected leaf does not exist.")
		}
	}
	if !Blank(form.SeedID) {
		ok, err := referencedRowExists(form.SeedID, seedExists)
		if err != nil {
			return errs, fmt.Errorf("checking seed reference: %w", err)
		}
		if !ok {
			errs.Add(CodeUnknownSeed, "Selected seed does not exist.")
		}
	}
	return errs, nil
}

// referencedRowExists parses a submitted ID and asks the lookup whether the
// row is present. An unparseable ID counts as a missing reference rather than
// an error; users can only produce one by tampering with the select options.
func referencedRowExists(raw string, exists IDLookup) (bool, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return false, nil
	}
	return exists(id)
}
