// Package dashboard coordinates fetching the two dashboard snapshots and owns
// the view state the presentation layer renders.
package dashboard

import (
	"time"

	"github.com/rshade/marketdash/internal/market"
)

// Status is the coordinator's lifecycle state.
type Status int

const (
	// StatusIdle means no refresh is outstanding and the last one (if any) succeeded.
	StatusIdle Status = iota
	// StatusLoading means the newest refresh has been dispatched and not settled.
	StatusLoading
	// StatusError means the newest refresh failed; data is the last-known-good.
	StatusError
)

// String returns a lowercase name for logs.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// ViewState is a read-only snapshot of what the dashboard should show.
type ViewState struct {
	Stocks     []market.StockQuote
	Analysis   *market.MarketAnalysis
	Status     Status
	Err        error     // set only when Status is StatusError
	Generation uint64    // newest generation dispatched
	UpdatedAt  time.Time // settlement time of the last successful refresh
}

// Loading reports whether the newest refresh is still in flight.
func (v ViewState) Loading() bool {
	return v.Status == StatusLoading
}

// HasData reports whether any refresh has ever succeeded.
func (v ViewState) HasData() bool {
	return !v.UpdatedAt.IsZero()
}

func (v ViewState) clone() ViewState {
	v.Stocks = market.CloneQuotes(v.Stocks)
	v.Analysis = v.Analysis.Clone()
	return v
}
