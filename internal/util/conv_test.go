package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseUintOrZero(t *testing.T) {
	tests := []struct {
		in   string
		want uint
	}{
		{"17", 17},
		{"0", 0},
		{"4294967295", 4294967295},
		{"4294967296", 0},
		{"-3", 0},
		{"12abc", 0},
		{"", 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseUintOrZero(tt.in))
		})
	}
}
