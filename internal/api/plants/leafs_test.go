package plants

import (
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

// ---------------------------------------------------------------------------
// Leaf list
// ---------------------------------------------------------------------------

func TestLeafList_RendersRows(t *testing.T) {
	r, mock := newTestRouter(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).WillReturnRows(leafRows(1, "Pine needle"))

	w := get(r, "/leafs")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{"Pine needle", "/leafs/1/edit", "/leafs/add"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

// ---------------------------------------------------------------------------
// Leaf add
// ---------------------------------------------------------------------------

func TestLeafAdd_BlankFormListsEveryError(t *testing.T) {
	r, _ := newTestRouter(t)

	w := postForm(r, "/leafs/add", url.Values{})

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
	body := w.Body.String()
	for _, msg := range []string{
		"Name cannot be blank.",
		"Type cannot be blank.",
		"Description cannot be blank.",
		"Age must be a number with at most 2 decimal places.",
	} {
		if !strings.Contains(body, msg) {
			t.Errorf("body missing %q", msg)
		}
	}
}

func TestLeafAdd_NonPositiveAgeRejected(t *testing.T) {
	r, _ := newTestRouter(t)

	w := postForm(r, "/leafs/add", url.Values{
		"name":        {"Pine needle"},
		"type":        {"Evergreen"},
		"age":         {"0"},
		"description": {"Thick waxy needles"},
	})

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Age must be greater than zero.") {
		t.Error("positivity message missing")
	}
}

func TestLeafAdd_Success(t *testing.T) {
	r, mock := newTestRouter(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO leafs")).
		WithArgs("Pine needle", "Evergreen", "2.5", "Thick waxy needles",
			sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	w := postForm(r, "/leafs/add", url.Values{
		"name":        {"Pine needle"},
		"type":        {"Evergreen"},
		"age":         {"2.5"},
		"description": {"Thick waxy needles"},
	})

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303; body: %s", w.Code, w.Body.String())
	}
	if loc := w.Header().Get("Location"); loc != "/leafs" {
		t.Errorf("Location = %q, want /leafs", loc)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

// ---------------------------------------------------------------------------
// Leaf edit and delete
// ---------------------------------------------------------------------------

func TestLeafShowEdit_PrefillsStoredRow(t *testing.T) {
	r, mock := newTestRouter(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).
		WithArgs(int64(1)).
		WillReturnRows(leafRows(1, "Pine needle"))

	w := get(r, "/leafs/1/edit")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{`value="Pine needle"`, `value="2.5"`, "Thick waxy needles"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestLeafEdit_PersistsChanges(t *testing.T) {
	r, mock := newTestRouter(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).
		WithArgs(int64(1)).
		WillReturnRows(leafRows(1, "Pine needle"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE leafs")).
		WithArgs(int64(1), "Fir needle", "Evergreen", "3", "Softer flat needles", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := postForm(r, "/leafs/1/edit", url.Values{
		"name":        {"Fir needle"},
		"type":        {"Evergreen"},
		"age":         {"3"},
		"description": {"Softer flat needles"},
	})

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303; body: %s", w.Code, w.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestLeafEdit_FailedValidationBackfillsStoredValues(t *testing.T) {
	r, mock := newTestRouter(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).
		WithArgs(int64(1)).
		WillReturnRows(leafRows(1, "Pine needle"))

	// Only the type was edited; the blank fields re-render with the stored
	// values while the submitted type is kept as typed.
	w := postForm(r, "/leafs/1/edit", url.Values{"type": {"Deciduous"}})

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Name cannot be blank.") {
		t.Error("blank-name message missing")
	}
	for _, want := range []string{`value="Pine needle"`, `value="Deciduous"`, `value="2.5"`, "Thick waxy needles"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
	if strings.Contains(body, `value="Evergreen"`) {
		t.Error("submitted type was overwritten by the stored value")
	}
}

func TestLeafEdit_UnknownRow(t *testing.T) {
	r, mock := newTestRouter(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).
		WithArgs(int64(99)).
		WillReturnRows(emptyLeafList())

	w := postForm(r, "/leafs/99/edit", url.Values{"name": {"Fir needle"}})

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestLeafDelete_RemovesRow(t *testing.T) {
	r, mock := newTestRouter(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM leafs")).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := postForm(r, "/leafs/1/delete", url.Values{})

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", w.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
