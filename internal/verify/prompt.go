package verify

import (
	"fmt"
	"strings"

	"github.com/alanyoungcy/kalshiscan/internal/domain"
)

// buildPrompt renders the per-candidate verification request. The
// collaborator is told to search out the live settlement source, compare the
// current value to the settlement threshold, and answer with a single JSON
// object whose keys match domain.VerificationFinding exactly.
func buildPrompt(t domain.TradeCandidate) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are verifying a prediction market trade on Kalshi.\n\n")
	fmt.Fprintf(&b, "MARKET: %s\n", t.Title)
	fmt.Fprintf(&b, "TICKER: %s\n", t.MarketID)
	fmt.Fprintf(&b, "SIDE: %s at %d cents (implied win probability %.1f%%)\n", t.Side, t.EntryPrice, t.ImpliedWinRate)
	fmt.Fprintf(&b, "HOURS TO EXPIRY: %.2f\n", t.HoursToExpiry)
	if t.SettlementSource != "" {
		fmt.Fprintf(&b, "STATED SETTLEMENT SOURCE: %s\n", t.SettlementSource)
	}

	b.WriteString(`
Work step by step:
1. Identify the authoritative data source this market settles against.
2. Search for the CURRENT live value of that source right now.
3. State the exact settlement rule and threshold.
4. Compute how far the current value is from the threshold.
5. Estimate the TRUE probability (0-100) that this side settles as a win,
   given the current value, remaining time, and realistic volatility.
6. Recommend EXECUTE, WAIT, or SKIP and rate your confidence HIGH, MEDIUM,
   or LOW.

Respond with ONLY a single JSON object, no prose and no markdown, with
exactly these keys:
{
  "source_name": "",
  "source_url": "",
  "source_data": "",
  "settlement_rule": "",
  "current_value": "",
  "threshold": "",
  "distance_to_threshold": "",
  "true_probability": 0,
  "recommendation": "EXECUTE|WAIT|SKIP",
  "confidence": "HIGH|MEDIUM|LOW",
  "reasoning": "",
  "risk_factors": [],
  "time_sensitivity": ""
}
`)

	return b.String()
}
