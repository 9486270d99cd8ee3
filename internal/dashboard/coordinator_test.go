package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/marketdash/internal/market"
)

// fakeSource is a market.Source test double. Each call pops the next
// response; gate, when set, blocks both calls until closed.
type fakeSource struct {
	mu        sync.Mutex
	stocks    [][]market.StockQuote
	analyses  []*market.MarketAnalysis
	stocksErr error
	analysErr error
	gate      chan struct{}
}

func (f *fakeSource) FetchStocks(ctx context.Context) ([]market.StockQuote, error) {
	f.wait(ctx)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stocksErr != nil {
		return nil, f.stocksErr
	}
	if len(f.stocks) == 0 {
		return []market.StockQuote{}, nil
	}
	next := f.stocks[0]
	if len(f.stocks) > 1 {
		f.stocks = f.stocks[1:]
	}
	return next, nil
}

func (f *fakeSource) FetchAnalysis(ctx context.Context) (*market.MarketAnalysis, error) {
	f.wait(ctx)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.analysErr != nil {
		return nil, f.analysErr
	}
	if len(f.analyses) == 0 {
		return nil, nil
	}
	next := f.analyses[0]
	if len(f.analyses) > 1 {
		f.analyses = f.analyses[1:]
	}
	return next, nil
}

func (f *fakeSource) wait(ctx context.Context) {
	if f.gate == nil {
		return
	}
	select {
	case <-f.gate:
	case <-ctx.Done():
	}
}

func quote(symbol, prev, cur, change string) market.StockQuote {
	return market.StockQuote{
		Symbol:        symbol,
		PreviousClose: decimal.RequireFromString(prev),
		CurrentPrice:  decimal.RequireFromString(cur),
		ChangePercent: decimal.RequireFromString(change),
	}
}

func analysis(summary string) *market.MarketAnalysis {
	return &market.MarketAnalysis{
		Summary:   summary,
		Timestamp: market.Timestamp{Time: time.Date(2025, 5, 15, 9, 30, 0, 0, time.UTC)},
	}
}

func fetchErr(msg string) error {
	return errors.Join(market.ErrFetch, errors.New(msg))
}

func TestCoordinator_InitialState(t *testing.T) {
	c := NewCoordinator(&fakeSource{})
	s := c.Snapshot()

	assert.Equal(t, StatusIdle, s.Status)
	assert.False(t, s.Loading())
	assert.False(t, s.HasData())
	assert.Empty(t, s.Stocks)
	assert.Nil(t, s.Analysis)
	assert.NoError(t, s.Err)
}

func TestCoordinator_SuccessReplacesBoth(t *testing.T) {
	stocks := []market.StockQuote{
		quote("AAPL", "190", "191.3", "0.68"),
		quote("MSFT", "415.5", "413.25", "-0.54"),
	}
	src := &fakeSource{
		stocks:   [][]market.StockQuote{stocks},
		analyses: []*market.MarketAnalysis{analysis("Tech led.")},
	}
	fixed := time.Date(2025, 5, 15, 10, 0, 0, 0, time.UTC)
	c := NewCoordinator(src, WithClock(func() time.Time { return fixed }))

	state, err := c.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StatusIdle, state.Status)
	assert.False(t, state.Loading())
	assert.Equal(t, stocks, state.Stocks)
	assert.Equal(t, analysis("Tech led."), state.Analysis)
	assert.Equal(t, fixed, state.UpdatedAt)
	assert.Equal(t, uint64(1), state.Generation)
}

func TestCoordinator_LoadingBetweenBeginAndSettle(t *testing.T) {
	c := NewCoordinator(&fakeSource{})

	ticket := c.Begin()
	assert.True(t, c.Snapshot().Loading())

	res := c.Fetch(context.Background(), ticket)
	assert.True(t, c.Snapshot().Loading(), "Fetch must not touch state")

	assert.True(t, c.Settle(res))
	assert.False(t, c.Snapshot().Loading())
}

func TestCoordinator_FailureKeepsPreviousData(t *testing.T) {
	first := []market.StockQuote{quote("NVDA", "120.5", "123.4", "2.41")}
	src := &fakeSource{
		stocks:   [][]market.StockQuote{first},
		analyses: []*market.MarketAnalysis{analysis("first")},
	}
	c := NewCoordinator(src)

	before, err := c.Refresh(context.Background())
	require.NoError(t, err)

	tests := []struct {
		name        string
		stocksErr   error
		analysisErr error
	}{
		{name: "stocks fail", stocksErr: fetchErr("stocks down")},
		{name: "analysis fail", analysisErr: fetchErr("analysis down")},
		{name: "both fail", stocksErr: fetchErr("a"), analysisErr: fetchErr("b")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src.stocksErr = tt.stocksErr
			src.analysErr = tt.analysisErr

			after, err := c.Refresh(context.Background())
			require.Error(t, err)
			require.ErrorIs(t, err, market.ErrFetch)

			assert.False(t, after.Loading())
			assert.Equal(t, StatusError, after.Status)
			assert.Equal(t, err, after.Err)
			assert.Equal(t, before.Stocks, after.Stocks)
			assert.Equal(t, before.Analysis, after.Analysis)
			assert.Equal(t, before.UpdatedAt, after.UpdatedAt)
		})
	}
}

func TestCoordinator_FailureWithNoPriorData(t *testing.T) {
	c := NewCoordinator(&fakeSource{stocksErr: errors.New("dial tcp: refused")})

	state, err := c.Refresh(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, market.ErrFetch, "plain source errors are wrapped as fetch failures")
	assert.Contains(t, err.Error(), "stocks:")

	assert.Equal(t, StatusError, state.Status)
	assert.Empty(t, state.Stocks)
	assert.Nil(t, state.Analysis)
	assert.False(t, state.HasData())
}

func TestCoordinator_ErrorClearsOnNextSuccess(t *testing.T) {
	src := &fakeSource{stocksErr: fetchErr("down")}
	c := NewCoordinator(src)

	_, err := c.Refresh(context.Background())
	require.Error(t, err)

	ticket := c.Begin()
	assert.NoError(t, c.Snapshot().Err, "error slot clears on dispatch")

	src.stocksErr = nil
	c.Settle(c.Fetch(context.Background(), ticket))
	s := c.Snapshot()
	assert.Equal(t, StatusIdle, s.Status)
	assert.NoError(t, s.Err)
}

func TestCoordinator_AbsentAnalysis(t *testing.T) {
	src := &fakeSource{stocks: [][]market.StockQuote{{quote("AAPL", "1", "1", "0")}}}
	c := NewCoordinator(src)

	state, err := c.Refresh(context.Background())
	require.NoError(t, err)
	assert.Nil(t, state.Analysis)
	assert.Len(t, state.Stocks, 1)
}

func TestCoordinator_StaleGenerationDiscarded(t *testing.T) {
	older := []market.StockQuote{quote("OLD", "1", "1", "0")}
	newer := []market.StockQuote{quote("NEW", "2", "2", "0")}
	c := NewCoordinator(&fakeSource{})

	first := c.Begin()
	second := c.Begin()

	newest := Result{Ticket: second, Stocks: newer, Analysis: analysis("new")}
	stale := Result{Ticket: first, Stocks: older, Analysis: analysis("old")}

	// The newer pair settles first; the older one arrives last and must lose.
	assert.True(t, c.Settle(newest))
	assert.False(t, c.Settle(stale))

	s := c.Snapshot()
	assert.Equal(t, newer, s.Stocks)
	assert.Equal(t, "new", s.Analysis.Summary)
	assert.Equal(t, StatusIdle, s.Status)
}

func TestCoordinator_StaleSettleDoesNotEndLoading(t *testing.T) {
	c := NewCoordinator(&fakeSource{})

	first := c.Begin()
	c.Begin()

	assert.False(t, c.Settle(Result{Ticket: first, Stocks: []market.StockQuote{}}))
	assert.True(t, c.Snapshot().Loading(), "newest generation is still in flight")

	assert.False(t, c.Settle(Result{Ticket: first, Err: fetchErr("late failure")}))
	assert.Equal(t, StatusLoading, c.Snapshot().Status)
}

func TestCoordinator_RefreshStaleFailureReturnsNil(t *testing.T) {
	src := &fakeSource{stocksErr: fetchErr("late failure"), gate: make(chan struct{})}
	c := NewCoordinator(src)

	type outcome struct {
		state ViewState
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		s, err := c.Refresh(context.Background())
		done <- outcome{state: s, err: err}
	}()

	require.Eventually(t, func() bool { return c.Snapshot().Generation == 1 },
		time.Second, time.Millisecond)
	c.Begin()
	close(src.gate)

	got := <-done
	require.NoError(t, got.err, "a discarded result reports no error")
	assert.Equal(t, StatusLoading, got.state.Status)
	assert.NoError(t, got.state.Err)
}

func TestCoordinator_Idempotent(t *testing.T) {
	stocks := []market.StockQuote{quote("AAPL", "190", "191.3", "0.68")}
	newSrc := func() *fakeSource {
		return &fakeSource{
			stocks:   [][]market.StockQuote{stocks},
			analyses: []*market.MarketAnalysis{analysis("same")},
		}
	}

	once := NewCoordinator(newSrc())
	_, err := once.Refresh(context.Background())
	require.NoError(t, err)

	twice := NewCoordinator(newSrc())
	t1, t2 := twice.Begin(), twice.Begin()
	r1 := twice.Fetch(context.Background(), t1)
	r2 := twice.Fetch(context.Background(), t2)
	twice.Settle(r1)
	twice.Settle(r2)

	a, b := once.Snapshot(), twice.Snapshot()
	assert.Equal(t, a.Stocks, b.Stocks)
	assert.Equal(t, a.Analysis, b.Analysis)
	assert.Equal(t, a.Status, b.Status)
}

func TestCoordinator_FetchJoinsBoth(t *testing.T) {
	gate := make(chan struct{})
	src := &fakeSource{gate: gate, analyses: []*market.MarketAnalysis{analysis("x")}}
	c := NewCoordinator(src)
	ticket := c.Begin()

	done := make(chan Result, 1)
	go func() { done <- c.Fetch(context.Background(), ticket) }()

	select {
	case <-done:
		t.Fatal("Fetch returned before requests settled")
	case <-time.After(50 * time.Millisecond):
	}

	close(gate)
	select {
	case res := <-done:
		require.NoError(t, res.Err)
		assert.Equal(t, ticket, res.Ticket)
		assert.NotNil(t, res.Analysis)
	case <-time.After(2 * time.Second):
		t.Fatal("Fetch did not return after both requests settled")
	}
}

func TestCoordinator_SnapshotIsCopy(t *testing.T) {
	src := &fakeSource{
		stocks:   [][]market.StockQuote{{quote("AAPL", "1", "1", "0")}},
		analyses: []*market.MarketAnalysis{analysis("orig")},
	}
	c := NewCoordinator(src)
	_, err := c.Refresh(context.Background())
	require.NoError(t, err)

	s := c.Snapshot()
	s.Stocks[0].Symbol = "MUTATED"
	s.Analysis.Summary = "mutated"

	again := c.Snapshot()
	assert.Equal(t, "AAPL", again.Stocks[0].Symbol)
	assert.Equal(t, "orig", again.Analysis.Summary)
}

func TestCoordinator_DuplicateSymbolsKept(t *testing.T) {
	dupes := []market.StockQuote{quote("AAPL", "1", "1", "0"), quote("AAPL", "2", "2", "0")}
	c := NewCoordinator(&fakeSource{stocks: [][]market.StockQuote{dupes}})

	state, err := c.Refresh(context.Background())
	require.NoError(t, err)
	assert.Len(t, state.Stocks, 2)
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "idle", StatusIdle.String())
	assert.Equal(t, "loading", StatusLoading.String())
	assert.Equal(t, "error", StatusError.String())
	assert.Equal(t, "unknown", Status(42).String())
}
