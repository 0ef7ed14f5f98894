// Package portspec parses textual port expressions into concrete port lists.
// An expression is a comma-separated list of single ports and inclusive
// ranges, for example "22,80,443,8000-8100".
package portspec

import (
	"sort"
	"strconv"
	"strings"

	"portreach/internal/errors"
)

const (
	minPort = 1
	maxPort = 65535
)

// Parse expands a port expression into a sorted, deduplicated slice of port
// numbers. Whitespace around tokens is ignored and empty tokens are skipped.
// Reversed ranges ("100-50") are normalized by swapping the endpoints, and
// values outside 1-65535 are dropped silently. A token that cannot be parsed
// as an integer or integer range is a fatal parse error: no partial result
// is returned.
func Parse(spec string) ([]int, error) {
	seen := make(map[int]struct{})

	for _, token := range strings.Split(spec, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		if strings.Contains(token, "-") {
			lo, hi, err := parseRange(token)
			if err != nil {
				return nil, errors.NewParseError(spec, token, err)
			}
			for p := lo; p <= hi; p++ {
				seen[p] = struct{}{}
			}
			continue
		}

		p, err := strconv.Atoi(token)
		if err != nil {
			return nil, errors.NewParseError(spec, token, err)
		}
		seen[p] = struct{}{}
	}

	ports := make([]int, 0, len(seen))
	for p := range seen {
		if p >= minPort && p <= maxPort {
			ports = append(ports, p)
		}
	}
	sort.Ints(ports)

	if len(ports) == 0 {
		return nil, errors.NewParseError(spec, "", nil)
	}
	return ports, nil
}

// parseRange parses an "a-b" token into normalized endpoints.
func parseRange(token string) (lo, hi int, err error) {
	bounds := strings.SplitN(token, "-", 2)

	lo, err = strconv.Atoi(strings.TrimSpace(bounds[0]))
	if err != nil {
		return 0, 0, err
	}
	hi, err = strconv.Atoi(strings.TrimSpace(bounds[1]))
	if err != nil {
		return 0, 0, err
	}

	if lo > hi {
		lo, hi = hi, lo
	}
	return lo, hi, nil
}
