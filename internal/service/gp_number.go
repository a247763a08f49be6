package service

import (
	"fmt"
	"strconv"
	"strings"

	"gatepass/internal/errors"
)

const maxSequence = 9999

// FormatGPNumber renders year and sequence as YYYYNNNN.
func FormatGPNumber(year, seq int) string {
	return fmt.Sprintf("%04d%04d", year, seq)
}

// NextGPNumber returns the number following last within year. last is the
// greatest number already issued for that year, or "" when none; a suffix
// that does not parse restarts the sequence at 1.
func NextGPNumber(year int, last string) (string, error) {
	seq := 1
	prefix := fmt.Sprintf("%04d", year)
	if strings.HasPrefix(last, prefix) && len(last) == len(prefix)+4 {
		if n, err := strconv.Atoi(last[len(prefix):]); err == nil && n >= 0 {
			seq = n + 1
		}
	}
	if seq > maxSequence {
		return "", fmt.Errorf("%w %d", errors.ErrSequenceExhausted, year)
	}
	return FormatGPNumber(year, seq), nil
}
