package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthRange(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		want       []string
	}{
		{"single month", "2024-01", "2024-01", []string{"2024-01"}},
		{"across year end", "2023-11", "2024-02", []string{"2023-11", "2023-12", "2024-01", "2024-02"}},
		{"end before start", "2024-03", "2024-01", []string{}},
		{"malformed start", "2024-1", "2024-03", []string{}},
		{"malformed end", "2024-01", "", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MonthRange(tt.start, tt.end)
			assert.Equal(t, tt.want, got)
			assert.NotNil(t, got)
		})
	}
}

func TestMonthRangeIdempotent(t *testing.T) {
	a := MonthRange("2022-06", "2024-05")
	b := MonthRange("2022-06", "2024-05")
	assert.Equal(t, a, b)
	assert.Len(t, a, 24)
	assert.IsIncreasing(t, a)
}

func TestMonthKeyOf(t *testing.T) {
	_, ok := MonthKeyOf(time.Time{})
	assert.False(t, ok)

	k, ok := MonthKeyOf(time.Date(2024, time.February, 29, 23, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, "2024-02", k)
}

func TestMonthOfUsesEngineLocation(t *testing.T) {
	e, err := New(&Config{Timezone: "Europe/London"})
	require.NoError(t, err)

	// 23:30 UTC on 31 May is 00:30 BST on 1 June
	m, ok := e.monthOf(time.Date(2024, time.May, 31, 23, 30, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, "2024-06", m)
}

func TestParseRange(t *testing.T) {
	r, err := ParseRange("2024-01", "")
	require.NoError(t, err)
	assert.Equal(t, Range{Start: "2024-01"}, r)

	_, err = ParseRange("2024-13", "2024-01")
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestDurationHours(t *testing.T) {
	h, ok := DurationHours(at("2024-01-05T10:00"), at("2024-01-05T11:30"))
	require.True(t, ok)
	assert.Equal(t, 1.5, h)

	_, ok = DurationHours(at("2024-01-05T10:00"), at("2024-01-05T10:00"))
	assert.False(t, ok, "zero length")

	_, ok = DurationHours(at("2024-01-05T11:00"), at("2024-01-05T10:00"))
	assert.False(t, ok, "finish before start")

	_, ok = DurationHours(at("2024-01-05T10:00"), time.Time{})
	assert.False(t, ok, "missing finish")
}
