package console

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ggoodman/elicit/elicitation"
)

// ErrNotBoolean is returned by ParseBool for unrecognised tokens.
var ErrNotBoolean = errors.New("console: expected true/false, yes/no, y/n or 1/0")

// ParseBool accepts true/false, yes/no, y/n and 1/0, case-insensitively and
// ignoring surrounding whitespace. Anything else fails with ErrNotBoolean.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y", "1":
		return true, nil
	case "false", "no", "n", "0":
		return false, nil
	}
	return false, ErrNotBoolean
}

// ParseValue parses a line of user input as a value of f's kind and checks
// it against f's constraints.
func ParseValue(f elicitation.Field, input string) (any, error) {
	var v any
	switch f.Kind {
	case elicitation.KindText:
		v = input
	case elicitation.KindBoolean:
		b, err := ParseBool(input)
		if err != nil {
			return nil, err
		}
		v = b
	case elicitation.KindInteger:
		n, err := strconv.ParseInt(strings.TrimSpace(input), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("console: %q is not a whole number", strings.TrimSpace(input))
		}
		v = n
	case elicitation.KindDecimal:
		n, err := strconv.ParseFloat(strings.TrimSpace(input), 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, fmt.Errorf("console: %q is not a number", strings.TrimSpace(input))
		}
		v = n
	default:
		return nil, fmt.Errorf("console: unsupported kind %q", f.Kind)
	}
	return f.Check(v)
}
