package domain

// EventSummary is an exchange event as it appears in the paginated open-events
// listing: just enough to decide whether the event is worth a detail fetch.
type EventSummary struct {
	EventTicker string
	Title       string
	Category    string
}

// EventsPage is one page of the open-events listing. An empty Cursor means
// the listing is exhausted.
type EventsPage struct {
	Events []EventSummary
	Cursor string
}

// EventInfo carries the event-level fields the scanner needs from a detail
// fetch, including the settlement source used to build verification prompts.
type EventInfo struct {
	EventTicker      string
	Title            string
	Category         string
	SettlementSource string
}

// MarketQuote is a single market's quote within an event detail. Ask prices
// arrive in whatever unit the exchange used (0-1 fraction or 0-100 cents);
// the scanner normalizes them. Timestamps are the raw RFC 3339 strings from
// the exchange, possibly empty.
type MarketQuote struct {
	Ticker         string
	Title          string
	YesAsk         float64
	NoAsk          float64
	CloseTime      string
	ExpirationTime string
}

// EventDetail is the full detail response for one event.
type EventDetail struct {
	Event   EventInfo
	Markets []MarketQuote
}
