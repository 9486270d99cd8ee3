package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rshade/marketdash/internal/logging"
	"github.com/rshade/marketdash/internal/market"
)

// Ticket identifies one dispatched refresh.
type Ticket struct {
	Generation uint64
	TraceID    string
}

// Result is the settled outcome of one refresh. On success Err is nil and
// Stocks/Analysis hold the fresh snapshots.
type Result struct {
	Ticket
	Stocks   []market.StockQuote
	Analysis *market.MarketAnalysis
	Err      error
	Elapsed  time.Duration
}

// Coordinator owns the dashboard ViewState. Every refresh gets a new
// generation; only the newest generation's result is ever applied.
//
// Typical use is Begin, then Fetch off the UI goroutine, then Settle back on
// it. Refresh does all three for non-interactive callers.
type Coordinator struct {
	source market.Source
	logger zerolog.Logger
	now    func() time.Time

	mu    sync.Mutex
	state ViewState
}

// Option customises a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the logger (default: disabled).
func WithLogger(l zerolog.Logger) Option {
	return func(c *Coordinator) { c.logger = logging.ComponentLogger(l, "dashboard") }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// NewCoordinator builds a Coordinator over source.
func NewCoordinator(source market.Source, opts ...Option) *Coordinator {
	c := &Coordinator{
		source: source,
		logger: zerolog.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns a copy of the current state.
func (c *Coordinator) Snapshot() ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Begin starts a new generation and enters StatusLoading.
func (c *Coordinator) Begin() Ticket {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.Generation++
	c.state.Status = StatusLoading
	c.state.Err = nil

	t := Ticket{Generation: c.state.Generation, TraceID: logging.NewTraceID()}
	c.logger.Debug().
		Uint64("generation", t.Generation).
		Str("trace_id", t.TraceID).
		Msg("refresh dispatched")
	return t
}

// Fetch issues both requests concurrently and waits for both to settle. It
// does not touch the coordinator state.
func (c *Coordinator) Fetch(ctx context.Context, t Ticket) Result {
	ctx = logging.ContextWithTraceID(ctx, t.TraceID)
	start := c.now()

	var (
		stocks      []market.StockQuote
		analysis    *market.MarketAnalysis
		stocksErr   error
		analysisErr error
	)

	var g errgroup.Group
	g.Go(func() error {
		stocks, stocksErr = c.source.FetchStocks(ctx)
		if stocksErr != nil {
			stocksErr = fmt.Errorf("stocks: %w", stocksErr)
		}
		return stocksErr
	})
	g.Go(func() error {
		analysis, analysisErr = c.source.FetchAnalysis(ctx)
		if analysisErr != nil {
			analysisErr = fmt.Errorf("analysis: %w", analysisErr)
		}
		return analysisErr
	})
	_ = g.Wait()

	res := Result{Ticket: t, Elapsed: c.now().Sub(start)}
	if err := errors.Join(stocksErr, analysisErr); err != nil {
		if !errors.Is(err, market.ErrFetch) {
			err = fmt.Errorf("%w: %w", market.ErrFetch, err)
		}
		res.Err = err
		return res
	}
	res.Stocks = stocks
	if res.Stocks == nil {
		res.Stocks = []market.StockQuote{}
	}
	res.Analysis = analysis
	return res
}

// Settle applies r if it belongs to the newest generation and reports
// whether it did. Failures keep the previous stocks and analysis and move to
// StatusError; successes replace both together and move to StatusIdle.
func (c *Coordinator) Settle(r Result) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	log := c.logger.With().
		Uint64("generation", r.Generation).
		Str("trace_id", r.TraceID).
		Dur("elapsed", r.Elapsed).
		Logger()

	if r.Generation != c.state.Generation {
		log.Debug().
			Uint64("newest_generation", c.state.Generation).
			Msg("discarding stale refresh")
		return false
	}

	if r.Err != nil {
		c.state.Status = StatusError
		c.state.Err = r.Err
		log.Warn().Err(r.Err).Msg("refresh failed, keeping last-known-good data")
		return true
	}

	c.state.Stocks = market.CloneQuotes(r.Stocks)
	c.state.Analysis = r.Analysis.Clone()
	c.state.Status = StatusIdle
	c.state.Err = nil
	c.state.UpdatedAt = c.now()
	log.Info().
		Int("stocks", len(r.Stocks)).
		Bool("analysis", r.Analysis != nil).
		Msg("refresh settled")
	return true
}

// Refresh runs Begin, Fetch and Settle and returns the resulting state. The
// returned error is the fetch failure of this refresh when it was applied;
// a result discarded as stale returns nil. State is valid either way.
func (c *Coordinator) Refresh(ctx context.Context) (ViewState, error) {
	res := c.Fetch(ctx, c.Begin())
	if !c.Settle(res) {
		return c.Snapshot(), nil
	}
	return c.Snapshot(), res.Err
}
