// vehicle.go defines the car and motorcycle models. Manufacture and Price are
// stored as submitted text; the validators guarantee their shape before any
// row is written.
package models

import "time"

// Car represents a car in the inventory. Photo holds the stored filename of
// the uploaded picture, nil when none has been uploaded yet.
type Car struct {
	ID          int64
	Name        string
	Type        string
	Brand       string
	Chair       int
	Country     string
	Manufacture string
	Price       string
	Photo       *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Motor represents a motorcycle. It mirrors Car with a lower seat bound and an
// additional warranty document.
type Motor struct {
	ID          int64
	Name        string
	Type        string
	Brand       string
	Chair       int
	Country     string
	Manufacture string
	Price       string
	Photo       *string
	Warranty    *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
