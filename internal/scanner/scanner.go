// Package scanner walks the exchange's open events, filters them by category
// and price band, and turns in-band markets into fully parameterized trade
// candidates: stop loss, fee-adjusted net profit, risk/reward, time to
// expiry, and a suggested position size.
package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alanyoungcy/kalshiscan/internal/domain"
)

// Exchange is the read-only exchange surface the scanner consumes.
type Exchange interface {
	ListOpenEvents(ctx context.Context, cursor string) (domain.EventsPage, error)
	GetEventDetail(ctx context.Context, eventTicker string) (domain.EventDetail, error)
}

// Config holds the immutable scan policy. It is passed in at construction and
// never read from package globals.
type Config struct {
	MinPrice        int // lower bound of the entry band, cents
	MaxPrice        int // upper bound of the entry band, cents
	CategoryAliases map[string][]string
}

// Params are the per-request scan inputs.
type Params struct {
	Categories  []string
	SameDayOnly bool
	Bankroll    float64
	MaxRiskPct  float64
}

// Scanner produces trade candidates from the exchange's open events.
type Scanner struct {
	exchange Exchange
	cfg      Config
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a Scanner. If cfg.CategoryAliases is nil the default alias
// table is used.
func New(exchange Exchange, cfg Config, logger *slog.Logger) *Scanner {
	if cfg.CategoryAliases == nil {
		cfg.CategoryAliases = DefaultCategoryAliases()
	}
	return &Scanner{
		exchange: exchange,
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "scanner")),
		now:      time.Now,
	}
}

// skipReason explains why a market was not turned into a candidate. Skips are
// expected in bulk; they are logged at debug level, never surfaced as errors.
type skipReason string

const (
	skipOutOfBand  skipReason = "no side in price band"
	skipNotSameDay skipReason = "expires beyond today"
)

// Scan runs one full scan cycle: paginate, filter, fetch details,
// parameterize, and sort. Transport failures degrade to partial results; Scan
// only returns an error when the context is cancelled before any page is
// fetched.
func (s *Scanner) Scan(ctx context.Context, params Params) (domain.ScanResult, error) {
	allowed := expandCategories(s.cfg.CategoryAliases, params.Categories)
	now := s.now().UTC()

	events := s.collectEvents(ctx, allowed)

	var trades []domain.TradeCandidate
	for _, ev := range events {
		detail, err := s.exchange.GetEventDetail(ctx, ev.EventTicker)
		if err != nil {
			if ctx.Err() != nil {
				return domain.ScanResult{}, fmt.Errorf("scanner: %w", ctx.Err())
			}
			// One bad event must not abort the scan.
			s.logger.DebugContext(ctx, "event detail fetch failed, skipping",
				slog.String("event_ticker", ev.EventTicker),
				slog.String("error", err.Error()),
			)
			continue
		}

		for _, m := range detail.Markets {
			candidate, skip := s.evaluateMarket(ev, detail.Event, m, params, now)
			if skip != "" {
				s.logger.DebugContext(ctx, "market skipped",
					slog.String("market", m.Ticker),
					slog.String("reason", string(skip)),
				)
				continue
			}
			trades = append(trades, candidate)
		}
	}

	// Urgency first, profitability as tiebreak.
	sort.SliceStable(trades, func(i, j int) bool {
		if trades[i].HoursToExpiry != trades[j].HoursToExpiry {
			return trades[i].HoursToExpiry < trades[j].HoursToExpiry
		}
		return trades[i].NetProfitAfterFees > trades[j].NetProfitAfterFees
	})

	return domain.ScanResult{
		ScanID:     uuid.NewString(),
		ScanTime:   now,
		PriceRange: fmt.Sprintf("%d-%d¢", s.cfg.MinPrice, s.cfg.MaxPrice),
		Categories: sortedSet(allowed),
		TotalFound: len(trades),
		Trades:     trades,
	}, nil
}

// collectEvents paginates the open-events listing, keeping only events in the
// allowed category set. A page failure abandons further pagination but keeps
// everything collected so far.
func (s *Scanner) collectEvents(ctx context.Context, allowed map[string]bool) []domain.EventSummary {
	var out []domain.EventSummary
	cursor := ""
	for {
		page, err := s.exchange.ListOpenEvents(ctx, cursor)
		if err != nil {
			s.logger.WarnContext(ctx, "events page fetch failed, continuing with partial results",
				slog.Int("events_collected", len(out)),
				slog.String("error", err.Error()),
			)
			break
		}
		for _, ev := range page.Events {
			if ev.EventTicker == "" {
				continue
			}
			if allowed[normalizeCategory(ev.Category)] {
				out = append(out, ev)
			}
		}
		if page.Cursor == "" {
			break
		}
		cursor = page.Cursor
	}
	return out
}

// evaluateMarket applies the side-selection, expiry, stop-loss, fee, and
// sizing policies to one market. It returns either a candidate or a non-empty
// skip reason.
func (s *Scanner) evaluateMarket(
	ev domain.EventSummary,
	info domain.EventInfo,
	m domain.MarketQuote,
	params Params,
	now time.Time,
) (domain.TradeCandidate, skipReason) {
	yesAsk := normalizeAsk(m.YesAsk)
	noAsk := normalizeAsk(m.NoAsk)

	// YES is checked first; ties break toward YES.
	var side domain.Side
	var entry int
	switch {
	case s.inBand(yesAsk):
		side, entry = domain.SideYes, yesAsk
	case s.inBand(noAsk):
		side, entry = domain.SideNo, noAsk
	default:
		return domain.TradeCandidate{}, skipOutOfBand
	}

	expiryStr := m.CloseTime
	if expiryStr == "" {
		expiryStr = m.ExpirationTime
	}
	hoursToExpiry, sameDay := parseExpiry(expiryStr, now)

	if params.SameDayOnly && !sameDay {
		return domain.TradeCandidate{}, skipNotSameDay
	}

	stop := stopLoss(entry, sameDay)
	profit := 100 - entry
	loss := entry - stop
	riskReward := 0.0
	if loss > 0 {
		riskReward = round2(float64(profit) / float64(loss))
	}

	fee := TakerFee(float64(entry))
	netProfit := round2(float64(profit) - fee)

	contracts, maxRisk := SuggestPosition(entry, stop, params.Bankroll, params.MaxRiskPct)

	settlement := info.SettlementSource
	if settlement == "" {
		settlement = "Kalshi"
	}

	return domain.TradeCandidate{
		MarketID:             m.Ticker,
		EventTicker:          ev.EventTicker,
		Title:                m.Title,
		Category:             ev.Category,
		Side:                 side,
		EntryPrice:           entry,
		ExitPrice:            100,
		StopLoss:             stop,
		PotentialProfitCents: profit,
		PotentialLossCents:   loss,
		RiskRewardRatio:      riskReward,
		ExpiryTime:           expiryStr,
		HoursToExpiry:        hoursToExpiry,
		SameDay:              sameDay,
		FeePerContract:       fee,
		NetProfitAfterFees:   netProfit,
		SettlementSource:     settlement,
		ImpliedWinRate:       float64(entry),
		SuggestedContracts:   contracts,
		MaxRiskDollars:       maxRisk,
	}, ""
}

func (s *Scanner) inBand(priceCents int) bool {
	return priceCents >= s.cfg.MinPrice && priceCents <= s.cfg.MaxPrice
}

// normalizeAsk converts an ask that may arrive as a 0-1 fraction or a 0-100
// integer to whole cents. Values in (0,1] are treated as fractions.
func normalizeAsk(v float64) int {
	if v > 0 && v <= 1 {
		return int(math.Round(v * 100))
	}
	return int(math.Round(v))
}

// stopLoss derives the stop price from the entry: half the entry for
// same-day contracts, 40% otherwise, floored at 1 cent.
func stopLoss(entryCents int, sameDay bool) int {
	factor := 0.4
	if sameDay {
		factor = 0.5
	}
	stop := int(math.Round(float64(entryCents) * factor))
	if stop < 1 {
		stop = 1
	}
	return stop
}

// parseExpiry returns the clamped hours until expiry (2-decimal) and whether
// the expiry falls on today's UTC calendar date. An unparseable or missing
// timestamp fails soft: 24 hours remaining, not same-day.
func parseExpiry(raw string, now time.Time) (float64, bool) {
	expiry, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return 24, false
	}
	hours := expiry.Sub(now).Hours()
	if hours < 0 {
		hours = 0
	}
	ey, em, ed := expiry.UTC().Date()
	ny, nm, nd := now.UTC().Date()
	return round2(hours), ey == ny && em == nm && ed == nd
}

func normalizeCategory(cat string) string {
	return strings.ToUpper(strings.TrimSpace(cat))
}
