// Package sorter parses user-supplied sort expressions such as
// "name:asc,created_at:desc" into ordering options that repositories
// turn into ORDER BY clauses. Fields outside the caller's allow-list
// and malformed pairs are silently skipped, so handlers can feed query
// parameters through without pre-validation.
package sorter

import (
	"slices"
	"strings"
)

// Dir is a sort direction.
type Dir string

const (
	Asc  Dir = "asc"
	Desc Dir = "desc"
)

// Opt is one ordering term: a column and the direction to order it by.
type Opt struct {
	Field string
	Dir   Dir
}

// ToSQL renders the option as an ORDER BY term, e.g. "name asc".
func (o Opt) ToSQL() string {
	return o.Field + " " + string(o.Dir)
}

// SortOpts is an ordered list of sort terms, highest precedence first.
type SortOpts []Opt

// Make builds SortOpts from the given options.
func Make(opts ...Opt) SortOpts {
	return opts
}

// MakeFromStr parses a comma-separated sort expression. Each term must
// be "field:asc" or "field:desc" with field present in allowedFields;
// anything else is dropped rather than reported, keeping the listing
// endpoints tolerant of sloppy clients.
func MakeFromStr(sortString string, allowedFields ...string) SortOpts {
	if sortString == "" {
		return nil
	}

	var opts SortOpts
	for term := range strings.SplitSeq(sortString, ",") {
		field, dir, ok := strings.Cut(term, ":")
		if !ok {
			continue
		}

		field = strings.TrimSpace(field)
		if !slices.Contains(allowedFields, field) {
			continue
		}

		switch d := Dir(strings.ToLower(strings.TrimSpace(dir))); d {
		case Asc, Desc:
			opts = append(opts, Opt{Field: field, Dir: d})
		}
	}

	return opts
}
