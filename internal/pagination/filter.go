package pagination

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Operator is a filter comparison. Only greater-than is supported.
type Operator string

const (
	// OpGreaterThan keeps rows whose field is strictly greater than the value
	OpGreaterThan Operator = "gt"
)

// Symbol returns the SQL comparison for the operator
func (o Operator) Symbol() string {
	switch o {
	case OpGreaterThan:
		return ">"
	default:
		return ""
	}
}

var gtPattern = regexp.MustCompile(`^gt\((-?[0-9]+)\)$`)

// Filter restricts a page to rows matching field <op> value. It only
// describes the predicate; the row source evaluates it.
type Filter struct {
	Field    string
	Operator Operator
	Value    int64
}

// ParseFilter parses a compact expression such as "gt(10)" for field.
// Whitespace anywhere in the expression is ignored.
func ParseFilter(field, expr string) (*Filter, error) {
	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, expr)

	matches := gtPattern.FindStringSubmatch(compact)
	if matches == nil {
		return nil, fmt.Errorf("expected gt(<integer>), got %q", expr)
	}

	value, err := strconv.ParseInt(matches[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("value out of range: %w", err)
	}

	return &Filter{Field: field, Operator: OpGreaterThan, Value: value}, nil
}

// String returns the normalized expression, e.g. gt(10)
func (f *Filter) String() string {
	return fmt.Sprintf("%s(%d)", f.Operator, f.Value)
}

// Param returns the query parameter name carrying the filter
func (f *Filter) Param() string {
	return "filter[" + f.Field + "]"
}
