package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/alanyoungcy/kalshiscan/internal/domain"
	"github.com/alanyoungcy/kalshiscan/internal/scanner"
)

// ScanService defines the methods the scan handler requires from the service
// layer. It is declared locally so the handler package does not depend on the
// concrete service implementation.
type ScanService interface {
	Scan(ctx context.Context, params scanner.Params) (domain.ScanResult, error)
}

// ScanDefaults holds the configured fallback values for scan query
// parameters.
type ScanDefaults struct {
	Categories  []string
	SameDayOnly bool
	Bankroll    float64
	MaxRiskPct  float64
}

// ScanHandler serves the market scan endpoint.
type ScanHandler struct {
	scans    ScanService
	defaults ScanDefaults
	logger   *slog.Logger
}

// NewScanHandler creates a ScanHandler with the given service and defaults.
func NewScanHandler(scans ScanService, defaults ScanDefaults, logger *slog.Logger) *ScanHandler {
	return &ScanHandler{
		scans:    scans,
		defaults: defaults,
		logger:   logger,
	}
}

// scanParams builds scanner.Params from the request query, falling back to
// the configured defaults.
func (h *ScanHandler) scanParams(r *http.Request) scanner.Params {
	return scanner.Params{
		Categories:  queryCSV(r, "categories", h.defaults.Categories),
		SameDayOnly: queryBool(r, "same_day_only", h.defaults.SameDayOnly),
		Bankroll:    queryFloat(r, "bankroll", h.defaults.Bankroll),
		MaxRiskPct:  h.defaults.MaxRiskPct,
	}
}

// Scan runs a market scan and returns the candidate list.
// GET /api/scan?categories=Crypto,Financial&same_day_only=false&bankroll=1000
func (h *ScanHandler) Scan(w http.ResponseWriter, r *http.Request) {
	result, err := h.scans.Scan(r.Context(), h.scanParams(r))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: scan failed",
			slog.String("error", err.Error()),
		)
		switch {
		case errors.Is(err, domain.ErrRateLimited):
			writeError(w, http.StatusTooManyRequests, "exchange rate limit reached")
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			writeError(w, http.StatusGatewayTimeout, "scan cancelled")
		default:
			writeError(w, http.StatusBadGateway, "scan failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}
