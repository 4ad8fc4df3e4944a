package scanner

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/kalshiscan/internal/domain"
)

// fakeExchange serves canned pages and event details, with optional injected
// failures keyed by page index or event ticker.
type fakeExchange struct {
	pages       []domain.EventsPage
	details     map[string]domain.EventDetail
	failPage    map[int]error
	failEvent   map[string]error
	pagesServed int
}

func (f *fakeExchange) ListOpenEvents(ctx context.Context, cursor string) (domain.EventsPage, error) {
	idx := f.pagesServed
	f.pagesServed++
	if err := f.failPage[idx]; err != nil {
		return domain.EventsPage{}, err
	}
	if idx >= len(f.pages) {
		return domain.EventsPage{}, nil
	}
	return f.pages[idx], nil
}

func (f *fakeExchange) GetEventDetail(ctx context.Context, eventTicker string) (domain.EventDetail, error) {
	if err := f.failEvent[eventTicker]; err != nil {
		return domain.EventDetail{}, err
	}
	d, ok := f.details[eventTicker]
	if !ok {
		return domain.EventDetail{}, domain.ErrNotFound
	}
	return d, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fixedNow is the reference scan time used across the tests.
var fixedNow = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func newTestScanner(ex Exchange) *Scanner {
	s := New(ex, Config{MinPrice: 88, MaxPrice: 98}, testLogger())
	s.now = func() time.Time { return fixedNow }
	return s
}

func quote(ticker string, yesAsk, noAsk float64, close string) domain.MarketQuote {
	return domain.MarketQuote{
		Ticker:    ticker,
		Title:     "Will " + ticker + " settle yes?",
		YesAsk:    yesAsk,
		NoAsk:     noAsk,
		CloseTime: close,
	}
}

func singleEventExchange(markets ...domain.MarketQuote) *fakeExchange {
	return &fakeExchange{
		pages: []domain.EventsPage{{
			Events: []domain.EventSummary{{EventTicker: "EV1", Title: "Event one", Category: "Crypto"}},
		}},
		details: map[string]domain.EventDetail{
			"EV1": {
				Event:   domain.EventInfo{EventTicker: "EV1", Category: "Crypto", SettlementSource: "Coinbase"},
				Markets: markets,
			},
		},
	}
}

func TestScan_SideSelectionPrefersYes(t *testing.T) {
	later := fixedNow.Add(48 * time.Hour).Format(time.RFC3339)
	// Both sides in band; YES must win.
	ex := singleEventExchange(quote("M1", 90, 92, later))
	s := newTestScanner(ex)

	result, err := s.Scan(context.Background(), Params{Categories: []string{"Crypto"}, Bankroll: 1000, MaxRiskPct: 0.02})
	require.NoError(t, err)
	require.Len(t, result.Trades, 1)

	tr := result.Trades[0]
	assert.Equal(t, domain.SideYes, tr.Side)
	assert.Equal(t, 90, tr.EntryPrice)
	assert.Equal(t, 100, tr.ExitPrice)
}

func TestScan_FallsBackToNoSide(t *testing.T) {
	later := fixedNow.Add(48 * time.Hour).Format(time.RFC3339)
	ex := singleEventExchange(quote("M1", 12, 91, later))
	s := newTestScanner(ex)

	result, err := s.Scan(context.Background(), Params{Categories: []string{"Crypto"}, Bankroll: 1000, MaxRiskPct: 0.02})
	require.NoError(t, err)
	require.Len(t, result.Trades, 1)
	assert.Equal(t, domain.SideNo, result.Trades[0].Side)
	assert.Equal(t, 91, result.Trades[0].EntryPrice)
}

func TestScan_NormalizesFractionalAsks(t *testing.T) {
	later := fixedNow.Add(48 * time.Hour).Format(time.RFC3339)
	// 0.90 must be treated as 90 cents.
	ex := singleEventExchange(quote("M1", 0.90, 0.05, later))
	s := newTestScanner(ex)

	result, err := s.Scan(context.Background(), Params{Categories: []string{"Crypto"}, Bankroll: 1000, MaxRiskPct: 0.02})
	require.NoError(t, err)
	require.Len(t, result.Trades, 1)
	assert.Equal(t, 90, result.Trades[0].EntryPrice)
}

func TestScan_OutOfBandMarketsSkipped(t *testing.T) {
	later := fixedNow.Add(48 * time.Hour).Format(time.RFC3339)
	ex := singleEventExchange(
		quote("LOW", 50, 45, later),
		quote("HIGH", 99, 2, later),
		quote("OK", 95, 4, later),
	)
	s := newTestScanner(ex)

	result, err := s.Scan(context.Background(), Params{Categories: []string{"Crypto"}, Bankroll: 1000, MaxRiskPct: 0.02})
	require.NoError(t, err)
	require.Len(t, result.Trades, 1)
	assert.Equal(t, "OK", result.Trades[0].MarketID)
	assert.Equal(t, 1, result.TotalFound)
}

func TestScan_CandidateParameters(t *testing.T) {
	expiry := fixedNow.Add(6 * time.Hour).Format(time.RFC3339) // same UTC day
	ex := singleEventExchange(quote("M1", 90, 5, expiry))
	s := newTestScanner(ex)

	result, err := s.Scan(context.Background(), Params{Categories: []string{"Crypto"}, Bankroll: 1000, MaxRiskPct: 0.02})
	require.NoError(t, err)
	require.Len(t, result.Trades, 1)

	tr := result.Trades[0]
	assert.True(t, tr.SameDay)
	assert.InDelta(t, 6.0, tr.HoursToExpiry, 0.01)
	assert.Equal(t, 45, tr.StopLoss) // same-day stop is half the entry
	assert.Equal(t, 10, tr.PotentialProfitCents)
	assert.Equal(t, 45, tr.PotentialLossCents)
	assert.InDelta(t, 0.22, tr.RiskRewardRatio, 1e-9)
	assert.InDelta(t, 0.63, tr.FeePerContract, 1e-9)
	assert.InDelta(t, 9.37, tr.NetProfitAfterFees, 1e-9)
	assert.InDelta(t, 90, tr.ImpliedWinRate, 1e-9)
	assert.Equal(t, 44, tr.SuggestedContracts)
	assert.InDelta(t, 19.80, tr.MaxRiskDollars, 1e-9)
	assert.Equal(t, "Coinbase", tr.SettlementSource)
}

func TestScan_MultiDayStopLoss(t *testing.T) {
	expiry := fixedNow.Add(72 * time.Hour).Format(time.RFC3339)
	ex := singleEventExchange(quote("M1", 90, 5, expiry))
	s := newTestScanner(ex)

	result, err := s.Scan(context.Background(), Params{Categories: []string{"Crypto"}, Bankroll: 1000, MaxRiskPct: 0.02})
	require.NoError(t, err)
	require.Len(t, result.Trades, 1)

	tr := result.Trades[0]
	assert.False(t, tr.SameDay)
	assert.Equal(t, 36, tr.StopLoss) // 40% of entry beyond same-day
}

func TestScan_SameDayOnlyFilter(t *testing.T) {
	today := fixedNow.Add(4 * time.Hour).Format(time.RFC3339)
	nextWeek := fixedNow.Add(7 * 24 * time.Hour).Format(time.RFC3339)
	ex := singleEventExchange(
		quote("TODAY", 92, 5, today),
		quote("LATER", 93, 5, nextWeek),
	)
	s := newTestScanner(ex)

	result, err := s.Scan(context.Background(), Params{
		Categories: []string{"Crypto"}, SameDayOnly: true, Bankroll: 1000, MaxRiskPct: 0.02,
	})
	require.NoError(t, err)
	require.Len(t, result.Trades, 1)
	assert.Equal(t, "TODAY", result.Trades[0].MarketID)
}

func TestScan_UnparseableExpiryFailsSoft(t *testing.T) {
	ex := singleEventExchange(quote("M1", 92, 5, "not-a-timestamp"))
	s := newTestScanner(ex)

	result, err := s.Scan(context.Background(), Params{Categories: []string{"Crypto"}, Bankroll: 1000, MaxRiskPct: 0.02})
	require.NoError(t, err)
	require.Len(t, result.Trades, 1)
	assert.InDelta(t, 24, result.Trades[0].HoursToExpiry, 1e-9)
	assert.False(t, result.Trades[0].SameDay)
}

func TestScan_SortsByUrgencyThenProfit(t *testing.T) {
	soon := fixedNow.Add(2 * time.Hour).Format(time.RFC3339)
	later := fixedNow.Add(30 * time.Hour).Format(time.RFC3339)
	ex := singleEventExchange(
		quote("SLOW", 90, 5, later),
		quote("FAST_RICH", 90, 5, soon),  // same expiry as FAST_POOR, higher net profit
		quote("FAST_POOR", 97, 5, soon),
	)
	s := newTestScanner(ex)

	result, err := s.Scan(context.Background(), Params{Categories: []string{"Crypto"}, Bankroll: 1000, MaxRiskPct: 0.02})
	require.NoError(t, err)
	require.Len(t, result.Trades, 3)
	assert.Equal(t, "FAST_RICH", result.Trades[0].MarketID)
	assert.Equal(t, "FAST_POOR", result.Trades[1].MarketID)
	assert.Equal(t, "SLOW", result.Trades[2].MarketID)
}

func TestScan_CategoryAliasesAndFiltering(t *testing.T) {
	later := fixedNow.Add(48 * time.Hour).Format(time.RFC3339)
	ex := &fakeExchange{
		pages: []domain.EventsPage{{
			Events: []domain.EventSummary{
				{EventTicker: "C1", Category: "Cryptocurrency"},
				{EventTicker: "F1", Category: "Finance"},
				{EventTicker: "S1", Category: "Sports"},
			},
		}},
		details: map[string]domain.EventDetail{
			"C1": {Event: domain.EventInfo{EventTicker: "C1"}, Markets: []domain.MarketQuote{quote("C1-M", 90, 5, later)}},
			"F1": {Event: domain.EventInfo{EventTicker: "F1"}, Markets: []domain.MarketQuote{quote("F1-M", 91, 5, later)}},
			"S1": {Event: domain.EventInfo{EventTicker: "S1"}, Markets: []domain.MarketQuote{quote("S1-M", 92, 5, later)}},
		},
	}
	s := newTestScanner(ex)

	result, err := s.Scan(context.Background(), Params{
		Categories: []string{"Crypto", "financial"}, Bankroll: 1000, MaxRiskPct: 0.02,
	})
	require.NoError(t, err)
	require.Len(t, result.Trades, 2)
	for _, tr := range result.Trades {
		assert.NotEqual(t, "S1-M", tr.MarketID)
	}
}

func TestScan_Pagination(t *testing.T) {
	later := fixedNow.Add(48 * time.Hour).Format(time.RFC3339)
	ex := &fakeExchange{
		pages: []domain.EventsPage{
			{Events: []domain.EventSummary{{EventTicker: "A", Category: "Crypto"}}, Cursor: "next"},
			{Events: []domain.EventSummary{{EventTicker: "B", Category: "Crypto"}}},
		},
		details: map[string]domain.EventDetail{
			"A": {Event: domain.EventInfo{EventTicker: "A"}, Markets: []domain.MarketQuote{quote("A-M", 90, 5, later)}},
			"B": {Event: domain.EventInfo{EventTicker: "B"}, Markets: []domain.MarketQuote{quote("B-M", 91, 5, later)}},
		},
	}
	s := newTestScanner(ex)

	result, err := s.Scan(context.Background(), Params{Categories: []string{"Crypto"}, Bankroll: 1000, MaxRiskPct: 0.02})
	require.NoError(t, err)
	assert.Len(t, result.Trades, 2)
	assert.Equal(t, 2, ex.pagesServed)
}

func TestScan_PageFailureKeepsPartialResults(t *testing.T) {
	later := fixedNow.Add(48 * time.Hour).Format(time.RFC3339)
	ex := &fakeExchange{
		pages: []domain.EventsPage{
			{Events: []domain.EventSummary{{EventTicker: "A", Category: "Crypto"}}, Cursor: "next"},
		},
		failPage: map[int]error{1: errors.New("boom")},
		details: map[string]domain.EventDetail{
			"A": {Event: domain.EventInfo{EventTicker: "A"}, Markets: []domain.MarketQuote{quote("A-M", 90, 5, later)}},
		},
	}
	s := newTestScanner(ex)

	result, err := s.Scan(context.Background(), Params{Categories: []string{"Crypto"}, Bankroll: 1000, MaxRiskPct: 0.02})
	require.NoError(t, err)
	assert.Len(t, result.Trades, 1)
}

func TestScan_EventFailureSkipsEvent(t *testing.T) {
	later := fixedNow.Add(48 * time.Hour).Format(time.RFC3339)
	ex := &fakeExchange{
		pages: []domain.EventsPage{{
			Events: []domain.EventSummary{
				{EventTicker: "BAD", Category: "Crypto"},
				{EventTicker: "GOOD", Category: "Crypto"},
			},
		}},
		failEvent: map[string]error{"BAD": errors.New("boom")},
		details: map[string]domain.EventDetail{
			"GOOD": {Event: domain.EventInfo{EventTicker: "GOOD"}, Markets: []domain.MarketQuote{quote("G-M", 90, 5, later)}},
		},
	}
	s := newTestScanner(ex)

	result, err := s.Scan(context.Background(), Params{Categories: []string{"Crypto"}, Bankroll: 1000, MaxRiskPct: 0.02})
	require.NoError(t, err)
	require.Len(t, result.Trades, 1)
	assert.Equal(t, "G-M", result.Trades[0].MarketID)
}

func TestScan_EmptyResult(t *testing.T) {
	ex := &fakeExchange{}
	s := newTestScanner(ex)

	result, err := s.Scan(context.Background(), Params{Categories: []string{"Crypto"}, Bankroll: 1000, MaxRiskPct: 0.02})
	require.NoError(t, err)
	assert.Zero(t, result.TotalFound)
	assert.Empty(t, result.Trades)
	assert.NotEmpty(t, result.ScanID)
	assert.Equal(t, "88-98¢", result.PriceRange)
}
