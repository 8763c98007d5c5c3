package fwversion

import (
	"strconv"
	"strings"
)

// Firmware version strings are not normalized across vendors: some report
// plain dotted versions ("1.6.1"), others report build codes with an embedded
// parenthetical version ("N1CET63W (1.31 )"). Compare uses dotted-numeric
// ordering when both sides parse as dotted decimal, and falls back to raw
// lexicographic comparison of the vendor-reported tokens otherwise. It never
// fails on unparseable input.

func parseDotted(s string) ([]int, bool) {
	var parts = strings.Split(s, ".")
	var nums = make([]int, 0, len(parts))

	for _, part := range parts {
		if part == "" {
			return nil, false
		} else if n, err := strconv.Atoi(part); err != nil || n < 0 {
			// signed components are not dotted decimal
			return nil, false
		} else {
			nums = append(nums, n)
		}
	}

	return nums, true
}

func compareDotted(a []int, b []int) int {
	for i := 0; i < len(a) || i < len(b); i++ {
		var av, bv int

		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}

		if av < bv {
			return -1
		} else if av > bv {
			return 1
		}
	}

	return 0
}

// Compare returns -1, 0 or 1. Equal strings compare equal regardless of parse
// strategy.
func Compare(a string, b string) int {
	if a == b {
		return 0
	}

	if av, aok := parseDotted(a); !aok {

	} else if bv, bok := parseDotted(b); !bok {

	} else {
		return compareDotted(av, bv)
	}

	return strings.Compare(a, b)
}

// IsBelow reports whether the currently installed version orders strictly
// below the rule threshold.
func IsBelow(current string, threshold string) bool {
	return Compare(current, threshold) < 0
}
