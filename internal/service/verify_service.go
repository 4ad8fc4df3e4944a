package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alanyoungcy/kalshiscan/internal/domain"
	"github.com/alanyoungcy/kalshiscan/internal/notify"
	"github.com/alanyoungcy/kalshiscan/internal/rank"
	"github.com/alanyoungcy/kalshiscan/internal/scanner"
	"github.com/alanyoungcy/kalshiscan/internal/verify"
)

// VerifyService runs the full scan-verify-rank pipeline and forwards EXECUTE
// recommendations to the notifier.
type VerifyService struct {
	scans    *ScanService
	verifier *verify.Orchestrator
	notifier *notify.Notifier // may be nil
	topN     int
	logger   *slog.Logger
}

// NewVerifyService creates a VerifyService. The notifier may be nil, in which
// case EXECUTE alerts are skipped.
func NewVerifyService(
	scans *ScanService,
	verifier *verify.Orchestrator,
	notifier *notify.Notifier,
	topN int,
	logger *slog.Logger,
) *VerifyService {
	if topN <= 0 {
		topN = 3
	}
	return &VerifyService{
		scans:    scans,
		verifier: verifier,
		notifier: notifier,
		topN:     topN,
		logger:   logger.With(slog.String("component", "verify_service")),
	}
}

// VerifyTop scans with the given parameters, verifies the leading candidates,
// ranks the outcomes, and returns the final result. An empty scan
// short-circuits without touching the reasoning API.
func (s *VerifyService) VerifyTop(ctx context.Context, params scanner.Params) (domain.VerifyResult, error) {
	scan, err := s.scans.Scan(ctx, params)
	if err != nil {
		return domain.VerifyResult{}, fmt.Errorf("verify_service: scan: %w", err)
	}

	if len(scan.Trades) == 0 {
		return domain.VerifyResult{
			ScanID:           scan.ScanID,
			ScanTime:         time.Now().UTC(),
			TotalScanned:     0,
			TopOpportunities: []domain.VerifiedCandidate{},
			Summary:          "No opportunities found in the current scan.",
		}, nil
	}

	verified, err := s.verifier.VerifyTop(ctx, scan.Trades)
	if err != nil {
		return domain.VerifyResult{}, fmt.Errorf("verify_service: %w", err)
	}

	ranked := rank.Rank(verified, s.topN)

	s.alertExecutes(ctx, ranked.Candidates)

	return domain.VerifyResult{
		ScanID:           scan.ScanID,
		ScanTime:         time.Now().UTC(),
		TotalScanned:     len(scan.Trades),
		TopOpportunities: ranked.Candidates,
		Summary:          ranked.Summary,
	}, nil
}

// alertExecutes notifies on every candidate that resolved to EXECUTE.
// Delivery failures are logged and never fail the pipeline.
func (s *VerifyService) alertExecutes(ctx context.Context, candidates []domain.VerifiedCandidate) {
	if s.notifier == nil {
		return
	}
	for _, vc := range candidates {
		if vc.Recommendation != domain.RecommendExecute {
			continue
		}
		title, message := notify.ExecuteAlert(vc)
		if err := s.notifier.Notify(ctx, notify.EventExecute, title, message); err != nil {
			s.logger.WarnContext(ctx, "execute alert failed",
				slog.String("market", vc.Trade.MarketID),
				slog.String("error", err.Error()),
			)
		}
	}
}
