package pagination

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Order is the direction of the creation sequence
type Order int

const (
	// Ascending walks oldest first
	Ascending Order = iota
	// Descending walks newest first
	Descending
)

// String returns the SQL keyword for the order
func (o Order) String() string {
	if o == Descending {
		return "DESC"
	}
	return "ASC"
}

// Reverse returns the opposite order
func (o Order) Reverse() Order {
	if o == Descending {
		return Ascending
	}
	return Descending
}

// ParseOrder accepts asc or desc in any case
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(s) {
	case "asc":
		return Ascending, nil
	case "desc":
		return Descending, nil
	default:
		return Ascending, fmt.Errorf("unknown order %q", s)
	}
}

// Points says which side of the cursor a page is drawn from
type Points int

const (
	// PointsLast pages forward: rows after the cursor
	PointsLast Points = iota
	// PointsFirst pages backward: rows before the cursor
	PointsFirst
)

// String returns the query parameter value for p
func (p Points) String() string {
	if p == PointsFirst {
		return "first"
	}
	return "last"
}

// ParsePoints parses the page[points] value
func ParsePoints(s string) (Points, error) {
	switch s {
	case "", "last":
		return PointsLast, nil
	case "first":
		return PointsFirst, nil
	default:
		return PointsLast, fmt.Errorf("expected first or last, got %q", s)
	}
}

// ValidateCursor checks that a cursor is a canonical UUID row id
func ValidateCursor(cursor string) error {
	id, err := uuid.Parse(cursor)
	if err != nil || id.String() != cursor {
		return &ParamError{
			Parameter: ParamCursor,
			Detail:    fmt.Sprintf("%q is not a valid id", cursor),
			Err:       ErrInvalidCursor,
		}
	}
	return nil
}
