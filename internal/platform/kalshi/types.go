package kalshi

import "github.com/alanyoungcy/kalshiscan/internal/domain"

// --------------------------------------------------------------------------
// Kalshi API DTOs
// --------------------------------------------------------------------------

// apiEvent is an event as returned by the Kalshi REST API, reduced to the
// fields the scanner consumes.
type apiEvent struct {
	EventTicker         string `json:"event_ticker"`
	Title               string `json:"title"`
	Category            string `json:"category"`
	SettlementSourceURL string `json:"settlement_source_url"`
}

// apiMarket is a market as returned by the Kalshi REST API. Ask prices are
// passed through untouched; the exchange has served both cent integers and
// 0-1 fractions depending on endpoint version, and normalization is the
// scanner's job.
type apiMarket struct {
	Ticker         string  `json:"ticker"`
	EventTicker    string  `json:"event_ticker"`
	Title          string  `json:"title"`
	Status         string  `json:"status"`
	YesAsk         float64 `json:"yes_ask"`
	NoAsk          float64 `json:"no_ask"`
	CloseTime      string  `json:"close_time"`
	ExpirationTime string  `json:"expiration_time"`
	Category       string  `json:"category"`
}

// apiErrorResponse is a Kalshi API error body.
type apiErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// --------------------------------------------------------------------------
// Conversion helpers
// --------------------------------------------------------------------------

func (e apiEvent) toSummary() domain.EventSummary {
	return domain.EventSummary{
		EventTicker: e.EventTicker,
		Title:       e.Title,
		Category:    e.Category,
	}
}

func (e apiEvent) toInfo() domain.EventInfo {
	return domain.EventInfo{
		EventTicker:      e.EventTicker,
		Title:            e.Title,
		Category:         e.Category,
		SettlementSource: e.SettlementSourceURL,
	}
}

func (m apiMarket) toQuote() domain.MarketQuote {
	return domain.MarketQuote{
		Ticker:         m.Ticker,
		Title:          m.Title,
		YesAsk:         m.YesAsk,
		NoAsk:          m.NoAsk,
		CloseTime:      m.CloseTime,
		ExpirationTime: m.ExpirationTime,
	}
}
