// Package numbering formats, parses and allocates contract numbers of the
// form CTR-YYYY-NNN. The sequence is zero padded to at least three digits
// and grows without truncation past 999.
package numbering

import (
	"fmt"
	"regexp"
	"strconv"
)

var pattern = regexp.MustCompile(`^CTR-(\d{4})-(\d{3,})$`)

// Format renders a contract number for year and seq.
func Format(year, seq int) string {
	return fmt.Sprintf("CTR-%04d-%03d", year, seq)
}

// YearPrefix is the literal prefix shared by every number of year.
func YearPrefix(year int) string {
	return fmt.Sprintf("CTR-%04d-", year)
}

// Parse splits a well-formed number into its year and sequence.
func Parse(number string) (year, seq int, ok bool) {
	m := pattern.FindStringSubmatch(number)
	if m == nil {
		return 0, 0, false
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, 0, false
	}
	seq, err = strconv.Atoi(m[2])
	if err != nil || seq < 1 {
		return 0, 0, false
	}
	return year, seq, true
}

// Valid reports whether number matches CTR-YYYY-NNN.
func Valid(number string) bool {
	_, _, ok := Parse(number)
	return ok
}

// NextSequence returns one past the highest sequence among numbers issued in
// year. Rows that do not parse, or belong to another year, are skipped.
func NextSequence(numbers []string, year int) int {
	highest := 0
	for _, n := range numbers {
		y, seq, ok := Parse(n)
		if !ok || y != year {
			continue
		}
		if seq > highest {
			highest = seq
		}
	}
	return highest + 1
}
