package pipeline

import (
	"fmt"
	"strconv"
	"strings"
)

// ApplySelection narrows the conversion to a subset of discovered chapters.
// Exclusion flips the Include flag; records are never removed. Indices are
// 1-based positions in the final discovered order. Empty arguments keep the
// full list.
func (s *Session) ApplySelection(chapter, rng, list string) error {
	if chapter == "" && rng == "" && list == "" {
		return nil
	}

	keep := make(map[int]bool)

	switch {
	case chapter != "":
		idx, err := atoi(chapter)
		if err != nil || idx < 1 || idx > len(s.chapters) {
			return fmt.Errorf("chapter %q not found (1-%d)", chapter, len(s.chapters))
		}
		keep[idx] = true

	case rng != "":
		parts := strings.Split(rng, "-")
		if len(parts) != 2 {
			return fmt.Errorf("invalid range %q (expected start-end)", rng)
		}
		start, err1 := atoi(parts[0])
		end, err2 := atoi(parts[1])
		if err1 != nil || err2 != nil || start < 1 || start > end || end > len(s.chapters) {
			return fmt.Errorf("invalid range %q (1-%d)", rng, len(s.chapters))
		}
		for i := start; i <= end; i++ {
			keep[i] = true
		}

	case list != "":
		for _, part := range strings.Split(list, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			idx, err := atoi(part)
			if err != nil || idx < 1 || idx > len(s.chapters) {
				return fmt.Errorf("invalid chapter index %q (1-%d)", part, len(s.chapters))
			}
			keep[idx] = true
		}
		if len(keep) == 0 {
			return fmt.Errorf("empty chapter list %q", list)
		}
	}

	for i, ch := range s.chapters {
		ch.Include = keep[i+1]
	}
	return nil
}

func atoi(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}
