package utils

import (
	"math"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var timestampPattern = regexp.MustCompile(`^\d{2}:\d{2}:\d{2} \d{4}-\d{2}-\d{2}$`)

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		name string
		ms   int64
		want string
	}{
		{"zero is the missing-value sentinel", 0, NotAvailable},
		{"negative values are invalid", -1, InvalidDate},
		{"known value shifted five hours", 1700000000000, "03:13:20 2023-11-15"},
		{"spec scenario conversion time", 1700000500000, "03:21:40 2023-11-15"},
		{"epoch plus one millisecond", 1, "05:00:00 1970-01-01"},
		{"beyond the calendar range", math.MaxInt64, InvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatTimestamp(tt.ms))
		})
	}
}

func TestFormatTimestampLayout(t *testing.T) {
	got := FormatTimestamp(1700000000000)
	assert.Regexp(t, timestampPattern, got)
}
