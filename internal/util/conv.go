package util

import (
	"strconv"
)

// ParseUintOrZero returns 0 when s is not a decimal uint32.
func ParseUintOrZero(s string) uint {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0
	}
	return uint(id)
}
