package pagination

import (
	"net/url"
	"regexp"
	"slices"
	"sort"
)

// filterPattern matches query parameters like filter[key]
var filterPattern = regexp.MustCompile(`^filter\[([^\]]+)\]$`)

// Options configure how request parameters become a Paginator
type Options struct {
	// Limit is the page size
	Limit int
	// Order is the sequence direction
	Order Order
	// FilterFields lists the fields that accept filter[field]
	FilterFields []string
}

// FromQuery builds a Paginator from page[cursor], page[points] and
// filter[...] parameters. Invalid values are reported as *ParamError naming
// the parameter; a malformed cursor also matches ErrInvalidCursor.
func FromQuery(values url.Values, opts Options) (*Paginator, error) {
	p := &Paginator{
		Limit: opts.Limit,
		Order: opts.Order,
	}

	if cursor := values.Get(ParamCursor); cursor != "" {
		if err := ValidateCursor(cursor); err != nil {
			return nil, err
		}
		p.Cursor = cursor
	}

	points, err := ParsePoints(values.Get(ParamPoints))
	if err != nil {
		return nil, &ParamError{Parameter: ParamPoints, Detail: err.Error()}
	}
	p.Points = points

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		matches := filterPattern.FindStringSubmatch(key)
		if matches == nil {
			continue
		}
		field := matches[1]
		if !slices.Contains(opts.FilterFields, field) {
			return nil, &ParamError{Parameter: key, Detail: "filtering on " + field + " is not supported"}
		}
		if p.Filter != nil {
			return nil, &ParamError{Parameter: key, Detail: "only one filter is supported"}
		}
		filter, err := ParseFilter(field, values.Get(key))
		if err != nil {
			return nil, &ParamError{Parameter: key, Detail: err.Error()}
		}
		p.Filter = filter
	}

	return p, nil
}
