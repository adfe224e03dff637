// Package gpio drives rig lines through the Linux GPIO character device.
//
// Lines are named either by kernel line name ("GPIO17") or by offset ("17").
// With no chip given, the usual Raspberry Pi header chips are tried first,
// then every /dev/gpiochip*.
package gpio

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

type lineRef struct {
	name   string
	offset int // -1 when the line is looked up by name
}

func (r lineRef) String() string {
	if r.offset >= 0 {
		return strconv.Itoa(r.offset)
	}
	return r.name
}

func parseLineRef(s string) (lineRef, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return lineRef{}, fmt.Errorf("gpio: line is required")
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return lineRef{}, fmt.Errorf("gpio: invalid line offset %d", n)
		}
		return lineRef{offset: n}, nil
	}
	return lineRef{name: s, offset: -1}, nil
}

// chipCandidates returns chip device paths to probe, in order. entries are
// names found under /dev.
func chipCandidates(explicit string, entries []string) []string {
	explicit = strings.TrimSpace(explicit)
	if explicit != "" {
		if !strings.Contains(explicit, "/") {
			explicit = filepath.Join("/dev", explicit)
		}
		return []string{explicit}
	}

	out := []string{"/dev/gpiochip0", "/dev/gpiochip4"}
	seen := map[string]bool{out[0]: true, out[1]: true}
	for _, name := range entries {
		if !strings.HasPrefix(name, "gpiochip") {
			continue
		}
		p := filepath.Join("/dev", name)
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
