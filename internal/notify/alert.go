package notify

import (
	"fmt"
	"strings"

	"github.com/alanyoungcy/kalshiscan/internal/domain"
)

// EventExecute is the event type emitted when a verified candidate resolves
// to an EXECUTE recommendation.
const EventExecute = "execute_candidate"

// EventError is the event type for operational failures worth paging on.
const EventError = "error"

// ExecuteAlert formats a verified EXECUTE candidate into a notification title
// and body.
func ExecuteAlert(vc domain.VerifiedCandidate) (title, message string) {
	title = fmt.Sprintf("EXECUTE: %s", vc.Trade.Title)

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s at %d¢\n", vc.Trade.Side, vc.Trade.MarketID, vc.Trade.EntryPrice)
	fmt.Fprintf(&b, "Edge: %.1f%% (true %.1f%% vs implied %.1f%%)\n", vc.Edge, vc.TrueProbability, vc.ImpliedProbability)
	fmt.Fprintf(&b, "Confidence: %s\n", vc.Confidence)
	fmt.Fprintf(&b, "Size: %d contracts ($%.2f at risk)\n", vc.AdjustedContracts, vc.AdjustedRiskDollars)
	fmt.Fprintf(&b, "Expires in %.1fh", vc.Trade.HoursToExpiry)
	if vc.SourceName != "" {
		fmt.Fprintf(&b, "\nSource: %s", vc.SourceName)
	}

	return title, b.String()
}
