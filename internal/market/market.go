// Package market defines the stock and analysis snapshots shown on the
// dashboard and the Source capability that fetches them.
package market

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrFetch is the single failure kind of a Source: transport errors,
// non-success statuses and undecodable payloads all wrap it.
var ErrFetch = errors.New("fetch failed")

// StockQuote is one ticker in a stock snapshot.
type StockQuote struct {
	Symbol        string          `json:"symbol"`
	PreviousClose decimal.Decimal `json:"previousClose"`
	CurrentPrice  decimal.Decimal `json:"currentPrice"`
	ChangePercent decimal.Decimal `json:"changePercent"`
}

// MarketAnalysis is the latest textual market summary.
//
//nolint:revive // MarketAnalysis reads better than market.Analysis at call sites in tui.
type MarketAnalysis struct {
	Summary   string    `json:"summary"`
	Timestamp Timestamp `json:"timestamp"`
}

// Source fetches the two dashboard snapshots. Implementations must be safe
// for concurrent use: both methods are called at the same time.
type Source interface {
	// FetchStocks returns the stock snapshot in server order.
	FetchStocks(ctx context.Context) ([]StockQuote, error)
	// FetchAnalysis returns the latest analysis, or nil when none exists yet.
	FetchAnalysis(ctx context.Context) (*MarketAnalysis, error)
}

// Timestamp is an ISO-8601 date-time that tolerates a missing zone offset.
// A value without an offset is kept as a wall-clock reading (Floating) and
// only becomes an instant once In is given the display location.
type Timestamp struct {
	time.Time
	// Floating is set when the source text carried no zone offset. Time then
	// holds the wall clock in UTC.
	Floating bool
}

// timestampLayouts are tried in order; the last two have no zone and are
// what a LocalDateTime serialiser writes.
//
//nolint:gochecknoglobals // Read-only parse table.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
}

// floatingLayout writes a Floating timestamp back without a zone.
const floatingLayout = "2006-01-02T15:04:05.999999999"

// ParseTimestamp parses s using the accepted layouts. Values without a zone
// offset are read in loc; a nil loc means UTC.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	t, _, err := parseTimestamp(s, loc)
	return t, err
}

func parseTimestamp(s string, loc *time.Location) (time.Time, bool, error) {
	if loc == nil {
		loc = time.UTC
	}
	s = strings.TrimSpace(s)
	if t, err := time.Parse(timestampLayouts[0], s); err == nil {
		return t, false, nil
	}
	for _, layout := range timestampLayouts[1:] {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true, nil
		}
	}
	return time.Time{}, false, fmt.Errorf("unrecognised timestamp %q", s)
}

// In returns the instant in loc. A Floating value is read as a wall clock in
// loc; any other value is converted. A nil loc means UTC.
func (t Timestamp) In(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	if t.IsZero() {
		return time.Time{}
	}
	if !t.Floating {
		return t.Time.In(loc)
	}
	w := t.Time
	return time.Date(w.Year(), w.Month(), w.Day(), w.Hour(), w.Minute(), w.Second(), w.Nanosecond(), loc)
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*t = Timestamp{}
		return nil
	}
	if len(raw) < 2 || raw[0] != '"' || raw[len(raw)-1] != '"' {
		return fmt.Errorf("timestamp must be a string, got %s", raw)
	}
	parsed, floating, err := parseTimestamp(raw[1:len(raw)-1], time.UTC)
	if err != nil {
		return err
	}
	*t = Timestamp{Time: parsed, Floating: floating}
	return nil
}

// MarshalJSON implements json.Marshaler using RFC 3339, or the zone-less
// form for a Floating value.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	if t.Floating {
		return []byte(`"` + t.Time.Format(floatingLayout) + `"`), nil
	}
	return []byte(`"` + t.Format(time.RFC3339Nano) + `"`), nil
}

// CloneQuotes returns a copy of quotes; nil stays nil.
func CloneQuotes(quotes []StockQuote) []StockQuote {
	if quotes == nil {
		return nil
	}
	out := make([]StockQuote, len(quotes))
	copy(out, quotes)
	return out
}

// Clone returns a copy of a; nil stays nil.
func (a *MarketAnalysis) Clone() *MarketAnalysis {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}
