package tui

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// displayDecimals is the fixed precision for prices and percentages.
const displayDecimals = 2

// timestampLayout is the human-readable form of the analysis timestamp.
const timestampLayout = "Jan 2, 2006 3:04:05 PM MST"

// printer adds thousands separators to the integer part of prices and changes.
//
//nolint:gochecknoglobals // Global printer is idiomatic for x/text/message usage.
var printer = message.NewPrinter(language.English)

// FormatPrice formats d with exactly two decimals, e.g. 123.4 -> "123.40"
// and 1234.5 -> "1,234.50".
func FormatPrice(d decimal.Decimal) string {
	return formatFixed(d)
}

// FormatChange formats a percentage change with exactly two decimals and no
// percent sign, e.g. -0.5 -> "-0.50".
func FormatChange(d decimal.Decimal) string {
	return formatFixed(d)
}

// IsNonNegative reports whether a change gets the positive treatment. The
// test runs on the two-decimal value that is displayed, so -0.001 ("0.00")
// is non-negative.
func IsNonNegative(d decimal.Decimal) bool {
	return !d.Round(displayDecimals).IsNegative()
}

// ChangeStyle returns the colour treatment for a percentage change.
func ChangeStyle(d decimal.Decimal) lipgloss.Style {
	if IsNonNegative(d) {
		return PositiveStyle
	}
	return NegativeStyle
}

func formatFixed(d decimal.Decimal) string {
	rounded := d.Round(displayDecimals)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
	}

	fixed := rounded.Abs().StringFixed(displayDecimals)
	intPart, frac, found := strings.Cut(fixed, ".")
	if !found {
		return sign + fixed
	}
	n, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return sign + fixed
	}
	return sign + printer.Sprintf("%d", n) + "." + frac
}

// FormatTimestamp renders t in loc with a relative age against now, e.g.
// "May 15, 2025 9:30:00 AM UTC (2 hours ago)".
func FormatTimestamp(t, now time.Time, loc *time.Location) string {
	if t.IsZero() {
		return "unknown"
	}
	if loc == nil {
		loc = time.Local
	}
	abs := t.In(loc).Format(timestampLayout)
	if now.IsZero() {
		return abs
	}
	return abs + " (" + humanize.RelTime(t, now, "ago", "from now") + ")"
}
