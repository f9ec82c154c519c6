package forms

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"dronefleet/internal/fleet/domain"
)

// QueryValues builds the search query of a find operation from the fields the
// user actually filled in. Blank text is dropped; 0 and false are kept as
// filters.
func QueryValues(entityType domain.EntityType, values Values) (url.Values, error) {
	coerced, err := Coerce(entityType, values)
	if err != nil {
		return nil, err
	}

	query := make(url.Values, len(coerced))
	for name, value := range coerced {
		switch v := value.(type) {
		case float64:
			query.Set(name.String(), strconv.FormatFloat(v, 'f', -1, 64))
		case int:
			query.Set(name.String(), strconv.Itoa(v))
		case bool:
			query.Set(name.String(), strconv.FormatBool(v))
		default:
			query.Set(name.String(), fmt.Sprint(v))
		}
	}
	return query, nil
}

var ErrMalformedAssignment = fmt.Errorf("%w: expected name=value", domain.ErrCoercion)

// ParseAssignments reads `name=value` command line arguments. Values may
// contain '='; only the first one separates the name.
func ParseAssignments(args []string) (map[string]string, error) {
	input := make(map[string]string, len(args))
	for _, arg := range args {
		name, value, found := strings.Cut(arg, "=")
		name = strings.TrimSpace(name)
		if !found || name == "" {
			return nil, fmt.Errorf("%w: %q", ErrMalformedAssignment, arg)
		}
		input[name] = value
	}
	return input, nil
}
