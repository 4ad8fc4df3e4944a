// Package domain defines the pure data types shared across the scanner,
// verification, and ranking pipeline, along with the interfaces that
// infrastructure packages (cache, rate limiting) implement.
package domain

import "time"

// Side is the binary outcome a candidate position is taken on.
type Side string

const (
	SideYes Side = "YES"
	SideNo  Side = "NO"
)

// TradeCandidate is a single mispriced-contract candidate produced by the
// market scanner. Prices are integer cents (1-99); a winning contract settles
// at 100. Candidates are immutable once emitted.
type TradeCandidate struct {
	MarketID             string  `json:"market_id"`
	EventTicker          string  `json:"event_ticker"`
	Title                string  `json:"title"`
	Category             string  `json:"category"`
	Side                 Side    `json:"side"`
	EntryPrice           int     `json:"entry_price"`
	ExitPrice            int     `json:"exit_price"` // always 100
	StopLoss             int     `json:"stop_loss"`
	PotentialProfitCents int     `json:"potential_profit_cents"`
	PotentialLossCents   int     `json:"potential_loss_cents"`
	RiskRewardRatio      float64 `json:"risk_reward_ratio"`
	ExpiryTime           string  `json:"expiry_time,omitempty"`
	HoursToExpiry        float64 `json:"hours_to_expiry"`
	SameDay              bool    `json:"is_0dte"`
	FeePerContract       float64 `json:"fee_per_contract"`
	NetProfitAfterFees   float64 `json:"net_profit_after_fees"`
	SettlementSource     string  `json:"settlement_source"`
	ImpliedWinRate       float64 `json:"implied_win_rate"`
	SuggestedContracts   int     `json:"suggested_contracts"`
	MaxRiskDollars       float64 `json:"max_risk_dollars"`
}

// ScanResult is the output surface of a single scan cycle.
type ScanResult struct {
	ScanID     string           `json:"scan_id"`
	ScanTime   time.Time        `json:"scan_time"`
	PriceRange string           `json:"price_range"`
	Categories []string         `json:"categories"`
	TotalFound int              `json:"total_found"`
	Trades     []TradeCandidate `json:"trades"`
}

// VerifyResult is the output surface of a scan-and-verify cycle. The
// opportunity list is ordered best-first.
type VerifyResult struct {
	ScanID           string              `json:"scan_id"`
	ScanTime         time.Time           `json:"scan_time"`
	TotalScanned     int                 `json:"total_scanned"`
	TopOpportunities []VerifiedCandidate `json:"top_opportunities"`
	Summary          string              `json:"summary"`
}
