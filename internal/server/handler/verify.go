package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/alanyoungcy/kalshiscan/internal/domain"
	"github.com/alanyoungcy/kalshiscan/internal/scanner"
)

// VerifyService defines the methods the verify handler requires from the
// service layer.
type VerifyService interface {
	VerifyTop(ctx context.Context, params scanner.Params) (domain.VerifyResult, error)
}

// VerifyHandler serves the scan-and-verify endpoint.
type VerifyHandler struct {
	verifies VerifyService
	defaults ScanDefaults
	logger   *slog.Logger
}

// NewVerifyHandler creates a VerifyHandler with the given service and
// defaults.
func NewVerifyHandler(verifies VerifyService, defaults ScanDefaults, logger *slog.Logger) *VerifyHandler {
	return &VerifyHandler{
		verifies: verifies,
		defaults: defaults,
		logger:   logger,
	}
}

// VerifyTop scans, verifies the leading candidates against live data, and
// returns them ranked.
// GET /api/verify?categories=Crypto,Financial&same_day_only=true&bankroll=1000
func (h *VerifyHandler) VerifyTop(w http.ResponseWriter, r *http.Request) {
	params := scanner.Params{
		Categories:  queryCSV(r, "categories", h.defaults.Categories),
		SameDayOnly: queryBool(r, "same_day_only", h.defaults.SameDayOnly),
		Bankroll:    queryFloat(r, "bankroll", h.defaults.Bankroll),
		MaxRiskPct:  h.defaults.MaxRiskPct,
	}

	result, err := h.verifies.VerifyTop(r.Context(), params)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: verify failed",
			slog.String("error", err.Error()),
		)

		var parseErr *domain.VerificationParseError
		switch {
		case errors.As(err, &parseErr):
			writeError(w, http.StatusBadGateway, parseErr.Error())
		case errors.Is(err, domain.ErrRateLimited):
			writeError(w, http.StatusTooManyRequests, "upstream rate limit reached")
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			writeError(w, http.StatusGatewayTimeout, "verification cancelled")
		default:
			writeError(w, http.StatusBadGateway, "verification failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}
