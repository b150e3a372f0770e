package core

import (
	"strings"

	"github.com/pkg/errors"
)

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// ParseOrderings parses a comma separated list of fields, each optionally prefixed by "-" for descending order.
// Fields not in allowed are rejected.
func ParseOrderings(s string, allowed ...string) ([]DBOrdering, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	var orderings []DBOrdering
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if !contains(allowed, field) {
			return nil, NewValidationError(
				errors.Errorf("invalid ordering field %q", field),
				FieldError{Field: "ordering", Error: "invalid ordering field: " + field},
			)
		}
		orderings = append(orderings, DBOrdering{Field: field, Ascending: !descending})
	}
	return orderings, nil
}

// OrderBy renders orderings as a SQL ORDER BY clause, or returns def when there is none.
func OrderBy(orderings []DBOrdering, def string) string {
	if len(orderings) == 0 {
		return " ORDER BY " + def
	}
	parts := make([]string, 0, len(orderings))
	for _, ord := range orderings {
		parts = append(parts, ord.String())
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
