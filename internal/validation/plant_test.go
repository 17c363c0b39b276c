package validation

import (
	"errors"
	"testing"
)

func anyID(int64) (bool, error) { return true, nil }
func noID(int64) (bool, error)  { return false, nil }

// ---------------------------------------------------------------------------
// ValidateLeaf / ValidateSeed
// ---------------------------------------------------------------------------

func TestValidateLeaf_Valid(t *testing.T) {
	if errs := ValidateLeaf("Maple", "Deciduous", "2.5", "Broad five-lobed leaf"); !errs.Empty() {
		t.Errorf("errs = %v, want none", errs.Messages())
	}
}

func TestValidateLeaf_Blank(t *testing.T) {
	errs := ValidateLeaf("", "", "", "")
	for _, code := range []Code{CodeBlankName, CodeBlankType, CodeBlankDescription, CodeInvalidAge} {
		if !errs.Has(code) {
			t.Errorf("missing %s in %v", code, errs)
		}
	}
}

func TestValidateLeaf_AgePattern(t *testing.T) {
	for _, age := range []string{"10.5", "10.50", "10"} {
		if errs := ValidateLeaf("Maple", "Deciduous", age, "desc"); !errs.Empty() {
			t.Errorf("age %q rejected: %v", age, errs.Messages())
		}
	}
	for _, age := range []string{"10.555", "-5", "abc"} {
		if errs := ValidateLeaf("Maple", "Deciduous", age, "desc"); !errs.Has(CodeInvalidAge) {
			t.Errorf("age %q accepted", age)
		}
	}
	if errs := ValidateLeaf("Maple", "Deciduous", "0", "desc"); !errs.Has(CodeAgeNotPositive) {
		t.Error("age 0 accepted")
	}
}

func TestValidateSeed(t *testing.T) {
	if errs := ValidateSeed("Acorn"); !errs.Empty() {
		t.Errorf("errs = %v, want none", errs.Messages())
	}
	errs := ValidateSeed("   ")
	if len(errs) != 1 || errs[0].Code != CodeBlankName {
		t.Errorf("errs = %v, want exactly blank_name", errs)
	}
}

// ---------------------------------------------------------------------------
// ValidateTree
// ---------------------------------------------------------------------------

func validTreeForm() TreeForm {
	return TreeForm{
		Name:        "Old Oak",
		Type:        "Oak",
		LeafID:      "3",
		SeedID:      "7",
		Age:         "150",
		Description: "The one by the gate",
	}
}

func TestValidateTree_Valid(t *testing.T) {
	errs, err := ValidateTree(validTreeForm(), anyID, anyID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !errs.Empty() {
		t.Errorf("errs = %v, want none", errs.Messages())
	}
}

func TestValidateTree_BlankReferences(t *testing.T) {
	form := validTreeForm()
	form.LeafID = ""
	form.SeedID = " "
	errs, err := ValidateTree(form, anyID, anyID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !errs.Has(CodeBlankLeaf) || !errs.Has(CodeBlankSeed) {
		t.Errorf("errs = %v, want blank_leaf and blank_seed", errs)
	}
	// Existence is not checked for blank references.
	if errs.Has(CodeUnknownLeaf) || errs.Has(CodeUnknownSeed) {
		t.Errorf("existence reported for blank references: %v", errs)
	}
}

func TestValidateTree_UnknownReferences(t *testing.T) {
	errs, err := ValidateTree(validTreeForm(), noID, noID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !errs.Has(CodeUnknownLeaf) || !errs.Has(CodeUnknownSeed) {
		t.Errorf("errs = %v, want unknown_leaf and unknown_seed", errs)
	}
}

func TestValidateTree_UnparseableReference(t *testing.T) {
	form := validTreeForm()
	form.LeafID = "oak"
	errs, err := ValidateTree(form, anyID, anyID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !errs.Has(CodeUnknownLeaf) {
		t.Errorf("non-numeric leaf reference accepted: %v", errs)
	}
}

func TestValidateTree_LookupError(t *testing.T) {
	boom := errors.New("db down")
	failing := func(int64) (bool, error) { return false, boom }

	_, err := ValidateTree(validTreeForm(), failing, anyID)
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped lookup error", err)
	}
}
