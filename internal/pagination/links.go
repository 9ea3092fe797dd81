package pagination

import "strings"

// Query parameter names understood by the pagination front door
const (
	ParamCursor = "page[cursor]"
	ParamPoints = "page[points]"
)

// Links are the navigation links of a page. Last is always null because the
// sequence keeps growing and its end cannot be addressed without a full scan.
type Links struct {
	First *string `json:"first"`
	Last  *string `json:"last"`
	Prev  *string `json:"prev"`
	Next  *string `json:"next"`
}

// Bounded is a page that exposes its boundary row ids
type Bounded interface {
	Bounds() (first, last string, ok bool)
}

// BuildLinks derives navigation links for page served at basePath. The
// filter is carried verbatim, in normalized form, on every link.
func BuildLinks(basePath string, filter *Filter, page Bounded) Links {
	base := withFilter(basePath, filter)
	links := Links{First: &base}

	firstID, lastID, ok := page.Bounds()
	if !ok {
		return links
	}

	prev := withCursor(base, firstID, PointsFirst)
	next := withCursor(base, lastID, PointsLast)
	links.Prev = &prev
	links.Next = &next
	return links
}

func withFilter(basePath string, filter *Filter) string {
	if filter == nil {
		return basePath
	}
	return appendParam(basePath, filter.Param(), filter.String())
}

func withCursor(base, id string, points Points) string {
	return appendParam(appendParam(base, ParamCursor, id), ParamPoints, points.String())
}

// appendParam adds name=value without escaping brackets or parentheses so
// links stay readable and filters round-trip byte for byte.
func appendParam(uri, name, value string) string {
	sep := "?"
	if strings.Contains(uri, "?") {
		sep = "&"
	}
	return uri + sep + name + "=" + value
}
