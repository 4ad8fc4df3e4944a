package verify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/kalshiscan/internal/domain"
)

// fakeReasoner returns canned answers in call order and records the prompts
// it received.
type fakeReasoner struct {
	answers []string
	errs    []error
	prompts []string
}

func (f *fakeReasoner) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	i := len(f.prompts)
	f.prompts = append(f.prompts, prompt)
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	return f.answers[i], nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func answer(trueProb float64, rec domain.Recommendation, conf domain.Confidence) string {
	return fmt.Sprintf(`{
		"source_name": "Coinbase",
		"source_url": "https://example.com",
		"source_data": "live quote",
		"settlement_rule": "closes above threshold",
		"true_probability": %g,
		"recommendation": %q,
		"confidence": %q,
		"reasoning": "test",
		"risk_factors": [],
		"time_sensitivity": "low"
	}`, trueProb, rec, conf)
}

func candidate(marketID string, implied float64, contracts int, maxRisk float64) domain.TradeCandidate {
	return domain.TradeCandidate{
		MarketID:           marketID,
		Title:              "Test market " + marketID,
		Side:               domain.SideYes,
		EntryPrice:         int(implied),
		ImpliedWinRate:     implied,
		SuggestedContracts: contracts,
		MaxRiskDollars:     maxRisk,
	}
}

func newTestOrchestrator(r Reasoner, topN int) *Orchestrator {
	return New(r, Config{TopN: topN, MinInterval: time.Millisecond}, testLogger())
}

func TestVerifyTop_EdgeForcesExecute(t *testing.T) {
	// True 97 vs implied 90 is a 7-point edge; the collaborator's WAIT is
	// overridden.
	r := &fakeReasoner{answers: []string{answer(97, domain.RecommendWait, domain.ConfidenceMedium)}}
	o := newTestOrchestrator(r, 1)

	verified, err := o.VerifyTop(context.Background(), []domain.TradeCandidate{candidate("M1", 90, 40, 18)})
	require.NoError(t, err)
	require.Len(t, verified, 1)
	assert.InDelta(t, 7, verified[0].Edge, 1e-9)
	assert.Equal(t, domain.RecommendExecute, verified[0].Recommendation)
}

func TestVerifyTop_NegativeEdgeForcesSkip(t *testing.T) {
	r := &fakeReasoner{answers: []string{answer(85, domain.RecommendExecute, domain.ConfidenceHigh)}}
	o := newTestOrchestrator(r, 1)

	verified, err := o.VerifyTop(context.Background(), []domain.TradeCandidate{candidate("M1", 90, 40, 18)})
	require.NoError(t, err)
	require.Len(t, verified, 1)
	assert.InDelta(t, -5, verified[0].Edge, 1e-9)
	assert.Equal(t, domain.RecommendSkip, verified[0].Recommendation)
}

func TestVerifyTop_MiddlingEdgeKeepsRecommendation(t *testing.T) {
	// 3-point edge keeps the collaborator's WAIT.
	r := &fakeReasoner{answers: []string{answer(93, domain.RecommendWait, domain.ConfidenceMedium)}}
	o := newTestOrchestrator(r, 1)

	verified, err := o.VerifyTop(context.Background(), []domain.TradeCandidate{candidate("M1", 90, 40, 18)})
	require.NoError(t, err)
	assert.Equal(t, domain.RecommendWait, verified[0].Recommendation)
}

func TestVerifyTop_ResizeUpOnHighConfidenceBigEdge(t *testing.T) {
	// True 92 vs implied 80 is a 12-point edge at HIGH confidence: 1.5x.
	r := &fakeReasoner{answers: []string{answer(92, domain.RecommendExecute, domain.ConfidenceHigh)}}
	o := newTestOrchestrator(r, 1)

	verified, err := o.VerifyTop(context.Background(), []domain.TradeCandidate{candidate("M1", 80, 40, 18)})
	require.NoError(t, err)
	assert.Equal(t, 60, verified[0].AdjustedContracts)
	assert.InDelta(t, 27.0, verified[0].AdjustedRiskDollars, 1e-9)
}

func TestVerifyTop_ResizeDownOnLowConfidence(t *testing.T) {
	r := &fakeReasoner{answers: []string{answer(97, domain.RecommendWait, domain.ConfidenceLow)}}
	o := newTestOrchestrator(r, 1)

	verified, err := o.VerifyTop(context.Background(), []domain.TradeCandidate{candidate("M1", 90, 41, 18.45)})
	require.NoError(t, err)
	assert.Equal(t, 20, verified[0].AdjustedContracts) // truncated, not rounded
	assert.InDelta(t, 9.0, verified[0].AdjustedRiskDollars, 1e-9)
}

func TestVerifyTop_ResizeDownOnSmallEdge(t *testing.T) {
	// 2-point edge halves the position even at HIGH confidence.
	r := &fakeReasoner{answers: []string{answer(92, domain.RecommendWait, domain.ConfidenceHigh)}}
	o := newTestOrchestrator(r, 1)

	verified, err := o.VerifyTop(context.Background(), []domain.TradeCandidate{candidate("M1", 90, 40, 18)})
	require.NoError(t, err)
	assert.Equal(t, 20, verified[0].AdjustedContracts)
	assert.InDelta(t, 9.0, verified[0].AdjustedRiskDollars, 1e-9)
}

func TestVerifyTop_ZeroBasePosition(t *testing.T) {
	r := &fakeReasoner{answers: []string{answer(97, domain.RecommendExecute, domain.ConfidenceHigh)}}
	o := newTestOrchestrator(r, 1)

	verified, err := o.VerifyTop(context.Background(), []domain.TradeCandidate{candidate("M1", 90, 0, 0)})
	require.NoError(t, err)
	assert.Zero(t, verified[0].AdjustedContracts)
	assert.Zero(t, verified[0].AdjustedRiskDollars)
}

func TestVerifyTop_BoundsToTopN(t *testing.T) {
	r := &fakeReasoner{answers: []string{
		answer(95, domain.RecommendExecute, domain.ConfidenceHigh),
		answer(94, domain.RecommendWait, domain.ConfidenceMedium),
	}}
	o := newTestOrchestrator(r, 2)

	trades := []domain.TradeCandidate{
		candidate("M1", 90, 40, 18),
		candidate("M2", 89, 40, 18),
		candidate("M3", 88, 40, 18),
	}
	verified, err := o.VerifyTop(context.Background(), trades)
	require.NoError(t, err)
	require.Len(t, verified, 2)
	assert.Equal(t, "M1", verified[0].Trade.MarketID)
	assert.Equal(t, "M2", verified[1].Trade.MarketID)

	// Prompts were issued in candidate order.
	require.Len(t, r.prompts, 2)
	assert.Contains(t, r.prompts[0], "M1")
	assert.Contains(t, r.prompts[1], "M2")
}

func TestVerifyTop_FewerCandidatesThanTopN(t *testing.T) {
	r := &fakeReasoner{answers: []string{answer(95, domain.RecommendExecute, domain.ConfidenceHigh)}}
	o := newTestOrchestrator(r, 3)

	verified, err := o.VerifyTop(context.Background(), []domain.TradeCandidate{candidate("M1", 90, 40, 18)})
	require.NoError(t, err)
	assert.Len(t, verified, 1)
}

func TestVerifyTop_ReasonerFailureIsFatal(t *testing.T) {
	r := &fakeReasoner{
		answers: []string{answer(95, domain.RecommendExecute, domain.ConfidenceHigh), ""},
		errs:    []error{nil, errors.New("upstream down")},
	}
	o := newTestOrchestrator(r, 2)

	trades := []domain.TradeCandidate{candidate("M1", 90, 40, 18), candidate("M2", 89, 40, 18)}
	_, err := o.VerifyTop(context.Background(), trades)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "M2")
}

func TestVerifyTop_ParseFailureIsFatal(t *testing.T) {
	r := &fakeReasoner{answers: []string{"no json here"}}
	o := newTestOrchestrator(r, 1)

	_, err := o.VerifyTop(context.Background(), []domain.TradeCandidate{candidate("M1", 90, 40, 18)})
	var parseErr *domain.VerificationParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "M1", parseErr.MarketID)
}

func TestVerifyTop_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &fakeReasoner{answers: []string{answer(95, domain.RecommendExecute, domain.ConfidenceHigh)}}
	o := New(r, Config{TopN: 1, MinInterval: time.Hour}, testLogger())

	_, err := o.VerifyTop(ctx, []domain.TradeCandidate{candidate("M1", 90, 40, 18)})
	require.Error(t, err)
}
