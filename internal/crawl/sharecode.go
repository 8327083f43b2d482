package crawl

import (
	"fmt"
	"strconv"
	"strings"
)

// ShareCode packs a seed and mark list into a printable string, e.g.
// "v1:42:3x2,17x5". Paste one back through ParseShareCode to rebuild the
// exact same map on any machine.
func ShareCode(seed int64, marks []Mark) string {
	parts := make([]string, len(marks))
	for i, m := range marks {
		parts[i] = fmt.Sprintf("%dx%d", m.CellIndex, m.Label)
	}
	return fmt.Sprintf("v1:%d:%s", seed, strings.Join(parts, ","))
}

// ParseShareCode reverses ShareCode. Unknown versions and malformed
// fields are errors.
func ParseShareCode(s string) (int64, []Mark, error) {
	fields := strings.SplitN(strings.TrimSpace(s), ":", 3)
	if len(fields) != 3 || fields[0] != "v1" {
		return 0, nil, fmt.Errorf("crawl: share code %q is not v1:<seed>:<marks>", s)
	}
	seed, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return 0, nil, fmt.Errorf("crawl: share code seed: %w", err)
	}
	var marks []Mark
	if fields[2] != "" {
		for _, part := range strings.Split(fields[2], ",") {
			idxStr, labelStr, ok := strings.Cut(part, "x")
			if !ok {
				return 0, nil, fmt.Errorf("crawl: share code mark %q is not <idx>x<label>", part)
			}
			idx, err := strconv.Atoi(idxStr)
			if err != nil {
				return 0, nil, fmt.Errorf("crawl: share code mark index: %w", err)
			}
			label, err := strconv.Atoi(labelStr)
			if err != nil {
				return 0, nil, fmt.Errorf("crawl: share code mark label: %w", err)
			}
			marks = append(marks, Mark{CellIndex: idx, Label: label})
		}
	}
	return seed, marks, nil
}
