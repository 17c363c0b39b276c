// Package repositories implements the data access layer for the inventory
// admin. Each repository type encapsulates all SQL for one entity; handlers
// never issue queries directly. Lookups return (nil, nil) when no row matches
// so callers can distinguish "absent" from a storage fault.
package repositories

import (
	"errors"

	"github.com/lib/pq"
)

// ErrUsernameTaken is returned when an insert loses the race on the username
// uniqueness constraint. Handlers convert it into a form validation message
// instead of surfacing a storage error.
var ErrUsernameTaken = errors.New("username already exists")

// ErrVehicleNameTaken is the vehicle-table counterpart of ErrUsernameTaken,
// raised when two simultaneous submissions pass the advisory name check and
// collide on the unique index.
var ErrVehicleNameTaken = errors.New("vehicle name already exists")

// ErrNoSuchToken is returned when a reset-token redemption matches no row,
// either because the token never existed or because a concurrent redemption
// already cleared it.
var ErrNoSuchToken = errors.New("reset token not found")

// isUniqueViolation reports whether err is the storage layer's
// unique-constraint signal (PostgreSQL class 23505), as opposed to any other
// storage fault.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
