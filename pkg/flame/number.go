package flame

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Policy selects how non-numeric attribute values are handled.
type Policy string

const (
	// PolicyLenient reads the longest numeric prefix of a value and falls
	// back to 0 when there is none, so "12px" is 12 and "abc" is 0.
	PolicyLenient Policy = "lenient"

	// PolicyStrict requires every value to be a complete, finite number.
	PolicyStrict Policy = "strict"
)

// DefaultPolicy is the policy used when none is configured.
const DefaultPolicy = PolicyLenient

// ParsePolicy parses a policy name. The empty string yields DefaultPolicy.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return DefaultPolicy, nil
	case PolicyLenient:
		return PolicyLenient, nil
	case PolicyStrict:
		return PolicyStrict, nil
	}
	return "", fmt.Errorf("invalid policy %q (must be one of: lenient, strict)", s)
}

// numericPrefix matches a decimal number at the start of a string.
var numericPrefix = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)

// ParseNumber parses a single numeric attribute value under policy.
//
// Under PolicyLenient it never fails. Under PolicyStrict it returns
// ErrNotNumeric for anything but a complete finite number.
func ParseNumber(s string, policy Policy) (float64, error) {
	if policy == PolicyStrict {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, ErrNotNumeric
		}
		return v, nil
	}

	m := numericPrefix.FindString(strings.TrimLeft(s, " \t\n\r\v\f"))
	if m == "" {
		return 0, nil
	}
	// Out-of-range values come back as ±Inf; Params.Validate rejects them.
	v, _ := strconv.ParseFloat(m, 64)
	return v, nil
}
