// Package rank orders verified candidates by a composite opportunity score
// and produces the human-readable run summary.
package rank

import (
	"fmt"
	"sort"

	"github.com/alanyoungcy/kalshiscan/internal/domain"
)

// Score is the composite opportunity score for a verified candidate. Edge
// dominates, confidence and recommendation add fixed bonuses, expected profit
// contributes at half weight, and same-day expiry earns a flat kicker.
func Score(vc domain.VerifiedCandidate) float64 {
	score := vc.Edge * 3

	switch vc.Confidence {
	case domain.ConfidenceHigh:
		score += 20
	case domain.ConfidenceMedium:
		score += 10
	}

	switch vc.Recommendation {
	case domain.RecommendExecute:
		score += 30
	case domain.RecommendWait:
		score += 5
	}

	score += vc.Trade.NetProfitAfterFees * 0.5

	if vc.Trade.SameDay {
		score += 10
	}

	return score
}

// Rank sorts candidates by descending score, keeps the top n, and attaches
// the summary digest. The input slice is not modified.
func Rank(candidates []domain.VerifiedCandidate, n int) domain.RankedResult {
	ranked := make([]domain.VerifiedCandidate, len(candidates))
	copy(ranked, candidates)

	sort.SliceStable(ranked, func(i, j int) bool {
		return Score(ranked[i]) > Score(ranked[j])
	})

	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}

	return domain.RankedResult{
		Candidates: ranked,
		Summary:    buildSummary(len(candidates), ranked),
	}
}

// buildSummary renders the aggregate digest: how many candidates were
// analyzed in total, the average edge over the kept top set, how many of
// those resolved to EXECUTE, and the single best opportunity when one exists.
func buildSummary(analyzed int, ranked []domain.VerifiedCandidate) string {
	if len(ranked) == 0 {
		return "No opportunities found in the current scan."
	}

	var edgeSum float64
	execute := 0
	for _, vc := range ranked {
		edgeSum += vc.Edge
		if vc.Recommendation == domain.RecommendExecute {
			execute++
		}
	}
	avgEdge := edgeSum / float64(len(ranked))

	summary := fmt.Sprintf("Analyzed %d trades. Top 3 have avg edge of %.1f%%. %d/3 recommended for execution.",
		analyzed, avgEdge, execute)

	best := ranked[0]
	if best.Recommendation == domain.RecommendExecute {
		title := best.Trade.Title
		if len(title) > 40 {
			title = title[:40]
		}
		summary += fmt.Sprintf(" Best opportunity: %s... with %.1f%% edge.", title, best.Edge)
	}

	return summary
}
