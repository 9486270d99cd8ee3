package tui

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// TestFormatPrice verifies fixed two-decimal formatting with thousands separators.
func TestFormatPrice(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"123.4", "123.40"},
		{"0", "0.00"},
		{"0.005", "0.01"},
		{"191.3", "191.30"},
		{"1234.5", "1,234.50"},
		{"1000000", "1,000,000.00"},
		{"-12.345", "-12.35"},
		{"999.999", "1,000.00"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatPrice(dec(tt.in)))
		})
	}
}

// TestFormatChange verifies percentage changes keep their sign and two decimals.
func TestFormatChange(t *testing.T) {
	assert.Equal(t, "-0.50", FormatChange(dec("-0.5")))
	assert.Equal(t, "0.68", FormatChange(dec("0.68")))
	assert.Equal(t, "0.00", FormatChange(dec("0")))
	assert.Equal(t, "2.41", FormatChange(dec("2.4111")))
	assert.Equal(t, "0.00", FormatChange(dec("-0.001")), "rounds to zero without a minus sign")
}

// TestIsNonNegative verifies that zero takes the non-negative treatment.
func TestIsNonNegative(t *testing.T) {
	assert.True(t, IsNonNegative(dec("0")))
	assert.True(t, IsNonNegative(dec("0.01")))
	assert.True(t, IsNonNegative(dec("-0.001")))
	assert.False(t, IsNonNegative(dec("-0.5")))
}

// TestChangeStyle verifies the colour treatment boundary.
func TestChangeStyle(t *testing.T) {
	assert.Equal(t, PositiveStyle.GetForeground(), ChangeStyle(dec("0")).GetForeground())
	assert.Equal(t, PositiveStyle.GetForeground(), ChangeStyle(dec("1.2")).GetForeground())
	assert.Equal(t, NegativeStyle.GetForeground(), ChangeStyle(dec("-0.5")).GetForeground())
	// The colour follows the displayed text: -0.001 shows as "0.00".
	assert.Equal(t, PositiveStyle.GetForeground(), ChangeStyle(dec("-0.001")).GetForeground())
	assert.Equal(t, NegativeStyle.GetForeground(), ChangeStyle(dec("-0.005")).GetForeground())
}

// TestFormatTimestamp verifies the absolute and relative parts.
func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2025, 5, 15, 9, 30, 0, 0, time.UTC)

	t.Run("with relative age", func(t *testing.T) {
		got := FormatTimestamp(ts, ts.Add(2*time.Hour), time.UTC)
		assert.Equal(t, "May 15, 2025 9:30:00 AM UTC (2 hours ago)", got)
	})

	t.Run("without now", func(t *testing.T) {
		assert.Equal(t, "May 15, 2025 9:30:00 AM UTC", FormatTimestamp(ts, time.Time{}, time.UTC))
	})

	t.Run("converts to location", func(t *testing.T) {
		loc := time.FixedZone("EST", -5*60*60)
		assert.Equal(t, "May 15, 2025 4:30:00 AM EST", FormatTimestamp(ts, time.Time{}, loc))
	})

	t.Run("zero time", func(t *testing.T) {
		assert.Equal(t, "unknown", FormatTimestamp(time.Time{}, ts, time.UTC))
	})
}
