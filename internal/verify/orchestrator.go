// Package verify escalates scanned trade candidates to the external
// reasoning collaborator for probability re-estimation, reconciles the result
// against the deterministic edge policy, and re-sizes the position from the
// collaborator's confidence. Verification calls are strictly sequential and
// throttled to a minimum inter-call interval.
package verify

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"golang.org/x/time/rate"

	"github.com/alanyoungcy/kalshiscan/internal/domain"
)

// Reasoner is the external reasoning collaborator. It accepts a
// natural-language verification request and returns its raw JSON answer.
type Reasoner interface {
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}

// Config holds the verification policy knobs.
type Config struct {
	// TopN bounds how many of the scanner's candidates are verified per run.
	TopN int
	// MinInterval is the minimum spacing between successive reasoning calls.
	MinInterval time.Duration
}

// Orchestrator verifies a bounded prefix of a candidate list, one candidate
// at a time.
type Orchestrator struct {
	reasoner Reasoner
	limiter  *rate.Limiter
	cfg      Config
	logger   *slog.Logger
}

// New creates an Orchestrator. The inter-call throttle is a token limiter
// with burst 1, so the first call proceeds immediately and each subsequent
// call waits out the configured interval.
func New(reasoner Reasoner, cfg Config, logger *slog.Logger) *Orchestrator {
	if cfg.TopN <= 0 {
		cfg.TopN = 3
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = time.Second
	}
	return &Orchestrator{
		reasoner: reasoner,
		limiter:  rate.NewLimiter(rate.Every(cfg.MinInterval), 1),
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "verifier")),
	}
}

// VerifyTop verifies up to cfg.TopN candidates from the front of the list,
// in order. A reasoning failure or unparseable payload is fatal for the run:
// verification is an explicit, bounded, user-requested operation and a
// silently missing candidate would be worse than a definitive error.
func (o *Orchestrator) VerifyTop(ctx context.Context, trades []domain.TradeCandidate) ([]domain.VerifiedCandidate, error) {
	n := o.cfg.TopN
	if n > len(trades) {
		n = len(trades)
	}

	verified := make([]domain.VerifiedCandidate, 0, n)
	for i := 0; i < n; i++ {
		if err := o.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("verify: throttle wait: %w", err)
		}

		t := trades[i]
		o.logger.InfoContext(ctx, "verifying candidate",
			slog.Int("position", i+1),
			slog.Int("of", n),
			slog.String("market", t.MarketID),
		)

		vc, err := o.verifyOne(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("verify: candidate %s: %w", t.MarketID, err)
		}
		verified = append(verified, vc)
	}

	return verified, nil
}

// verifyOne runs the full per-candidate sequence: build query, reason
// externally, parse strictly, reconcile against the edge policy, and resize.
func (o *Orchestrator) verifyOne(ctx context.Context, t domain.TradeCandidate) (domain.VerifiedCandidate, error) {
	raw, err := o.reasoner.GenerateJSON(ctx, buildPrompt(t))
	if err != nil {
		return domain.VerifiedCandidate{}, err
	}

	finding, err := parseFinding(t.MarketID, raw)
	if err != nil {
		return domain.VerifiedCandidate{}, err
	}

	// Edge is always re-derived from the collaborator's probability estimate;
	// the collaborator is a probability oracle, not the policy authority.
	edge := finding.TrueProbability - t.ImpliedWinRate
	recommendation := reconcile(edge, finding.Recommendation)
	if recommendation != finding.Recommendation {
		o.logger.InfoContext(ctx, "recommendation corrected by edge policy",
			slog.String("market", t.MarketID),
			slog.Float64("edge", edge),
			slog.String("proposed", string(finding.Recommendation)),
			slog.String("forced", string(recommendation)),
		)
	}

	contracts, risk := resize(t, finding.Confidence, edge)

	settlementRule := finding.SettlementRule
	if settlementRule == "" {
		settlementRule = t.SettlementSource
	}

	return domain.VerifiedCandidate{
		Trade:               t,
		SourceName:          finding.SourceName,
		SourceURL:           finding.SourceURL,
		SourceData:          finding.SourceData,
		SettlementRule:      settlementRule,
		CurrentValue:        finding.CurrentValue,
		Threshold:           finding.Threshold,
		DistanceToThreshold: finding.DistanceToThreshold,
		TrueProbability:     finding.TrueProbability,
		ImpliedProbability:  t.ImpliedWinRate,
		Edge:                edge,
		Recommendation:      recommendation,
		Confidence:          finding.Confidence,
		Reasoning:           finding.Reasoning,
		RiskFactors:         finding.RiskFactors,
		TimeSensitivity:     finding.TimeSensitivity,
		AdjustedContracts:   contracts,
		AdjustedRiskDollars: risk,
	}, nil
}

// reconcile applies the authoritative edge policy: a five-point edge forces
// EXECUTE, a negative edge forces SKIP, anything between keeps the
// collaborator's own recommendation.
func reconcile(edge float64, proposed domain.Recommendation) domain.Recommendation {
	switch {
	case edge >= 5:
		return domain.RecommendExecute
	case edge < 0:
		return domain.RecommendSkip
	default:
		return proposed
	}
}

// resize scales the base position by the collaborator's confidence: up 1.5x
// on high confidence with a double-digit edge, down to half on low confidence
// or a sub-3-point edge, otherwise unchanged. Dollar risk scales
// proportionally with the contract count.
func resize(t domain.TradeCandidate, conf domain.Confidence, edge float64) (int, float64) {
	base := t.SuggestedContracts
	adjusted := base
	switch {
	case conf == domain.ConfidenceHigh && edge >= 10:
		adjusted = int(float64(base) * 1.5)
	case conf == domain.ConfidenceLow || edge < 3:
		adjusted = int(float64(base) * 0.5)
	}

	if base == 0 {
		return adjusted, 0
	}
	risk := float64(adjusted) * t.MaxRiskDollars / float64(base)
	return adjusted, math.Round(risk*100) / 100
}
