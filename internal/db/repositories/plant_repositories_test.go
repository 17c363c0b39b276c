package repositories

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"github.com/inventory-admin/inventory-admin/internal/db/models"
)

func newMock(t *testing.T) (sqlmock.Sqlmock, *LeafRepository, *SeedRepository, *TreeRepository) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return mock, NewLeafRepository(db), NewSeedRepository(db), NewTreeRepository(db)
}

// ---------------------------------------------------------------------------
// Exists lookups (tree reference checks)
// ---------------------------------------------------------------------------

func TestLeafExists(t *testing.T) {
	mock, leafs, _, _ := newMock(t)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM leafs WHERE id`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	ok, err := leafs.Exists(context.Background(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("ok = false, want true")
	}
}

func TestSeedExists_Absent(t *testing.T) {
	mock, _, seeds, _ := newMock(t)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM seeds WHERE id`).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	ok, err := seeds.Exists(context.Background(), 99)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("ok = true for absent seed")
	}
}

// ---------------------------------------------------------------------------
// Leaf CRUD
// ---------------------------------------------------------------------------

func TestLeafCreate(t *testing.T) {
	mock, leafs, _, _ := newMock(t)
	mock.ExpectQuery("INSERT INTO leafs").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))

	l := &models.Leaf{Name: "Maple", Type: "Deciduous", Age: "2.5", Description: "Five lobes"}
	if err := leafs.Create(context.Background(), l); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.ID != 5 {
		t.Errorf("ID = %d, want 5", l.ID)
	}
}

func TestLeafUpdate(t *testing.T) {
	mock, leafs, _, _ := newMock(t)
	mock.ExpectExec("UPDATE leafs").
		WithArgs(int64(5), "Maple", "Deciduous", "3", "Five lobes", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	l := &models.Leaf{Name: "Maple", Type: "Deciduous", Age: "3", Description: "Five lobes"}
	if err := leafs.Update(context.Background(), 5, l); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// ---------------------------------------------------------------------------
// Tree list joins leaf and seed names
// ---------------------------------------------------------------------------

func TestTreeList_WithNames(t *testing.T) {
	mock, _, _, trees := newMock(t)
	cols := []string{
		"id", "name", "type", "leaf_id", "seed_id", "age", "description",
		"created_at", "updated_at", "leaf_name", "seed_name",
	}
	mock.ExpectQuery("SELECT.*FROM trees t.*JOIN leafs l.*JOIN seeds s").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(1, "Old Oak", "Oak", 3, 7, "150", "By the gate", time.Now(), time.Now(), "Oak leaf", "Acorn"))

	list, err := trees.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 1 || list[0].LeafName != "Oak leaf" || list[0].SeedName != "Acorn" {
		t.Errorf("list = %+v", list)
	}
}

func TestTreeCreate(t *testing.T) {
	mock, _, _, trees := newMock(t)
	mock.ExpectQuery("INSERT INTO trees").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	tr := &models.Tree{Name: "Old Oak", Type: "Oak", LeafID: 3, SeedID: 7, Age: "150", Description: "By the gate"}
	if err := trees.Create(context.Background(), tr); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.ID != 1 {
		t.Errorf("ID = %d, want 1", tr.ID)
	}
}
