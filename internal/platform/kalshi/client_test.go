package kalshi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/kalshiscan/internal/domain"
)

func TestListOpenEvents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/events", r.URL.Path)
		assert.Equal(t, "open", r.URL.Query().Get("status"))
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		assert.Empty(t, r.URL.Query().Get("cursor"))
		assert.Empty(t, r.Header.Get("KALSHI-ACCESS-KEY"), "unauthenticated requests must not be signed")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"events": [
				{"event_ticker": "BTC-24H", "title": "Bitcoin daily", "category": "Crypto"},
				{"event_ticker": "CPI-MAR", "title": "March CPI", "category": "Economics"}
			],
			"cursor": "next-page"
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", 100, 5*time.Second)

	page, err := client.ListOpenEvents(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, page.Events, 2)
	assert.Equal(t, "BTC-24H", page.Events[0].EventTicker)
	assert.Equal(t, "Crypto", page.Events[0].Category)
	assert.Equal(t, "next-page", page.Cursor)
}

func TestListOpenEvents_PassesCursor(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "abc", r.URL.Query().Get("cursor"))
		w.Write([]byte(`{"events": [], "cursor": ""}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", 0, 0)
	page, err := client.ListOpenEvents(context.Background(), "abc")
	require.NoError(t, err)
	assert.Empty(t, page.Events)
	assert.Empty(t, page.Cursor)
}

func TestGetEventDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/events/BTC-24H", r.URL.Path)
		w.Write([]byte(`{
			"event": {"event_ticker": "BTC-24H", "title": "Bitcoin daily", "category": "Crypto", "settlement_source_url": "https://coinbase.com"},
			"markets": [
				{"ticker": "BTC-24H-T95", "title": "Above 95k", "status": "open", "yes_ask": 92, "no_ask": 10, "close_time": "2026-03-14T22:00:00Z"}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", 200, 5*time.Second)

	detail, err := client.GetEventDetail(context.Background(), "BTC-24H")
	require.NoError(t, err)
	assert.Equal(t, "https://coinbase.com", detail.Event.SettlementSource)
	require.Len(t, detail.Markets, 1)
	assert.Equal(t, "BTC-24H-T95", detail.Markets[0].Ticker)
	assert.InDelta(t, 92, detail.Markets[0].YesAsk, 1e-9)
	assert.Equal(t, "2026-03-14T22:00:00Z", detail.Markets[0].CloseTime)
}

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, domain.ErrNotFound},
		{http.StatusUnauthorized, domain.ErrUnauthorized},
		{http.StatusForbidden, domain.ErrUnauthorized},
		{http.StatusTooManyRequests, domain.ErrRateLimited},
	}

	for _, tc := range cases {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			w.Write([]byte(`{"code": "some_code", "message": "nope"}`))
		}))

		client := NewClient(server.URL, "", 200, 5*time.Second)
		_, err := client.GetEventDetail(context.Background(), "X")
		require.ErrorIs(t, err, tc.want, "status %d", tc.status)
		server.Close()
	}
}
