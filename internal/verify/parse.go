package verify

import (
	"encoding/json"
	"strings"

	"github.com/alanyoungcy/kalshiscan/internal/domain"
)

// parseFinding decodes the collaborator's raw answer into a
// VerificationFinding and validates it against the expected schema. Any
// violation is reported as a *domain.VerificationParseError so callers can
// distinguish a malformed answer from a transport failure.
func parseFinding(marketID, raw string) (domain.VerificationFinding, error) {
	cleaned := stripFences(raw)

	var f domain.VerificationFinding
	if err := json.Unmarshal([]byte(cleaned), &f); err != nil {
		return domain.VerificationFinding{}, &domain.VerificationParseError{
			MarketID: marketID,
			Reason:   "not valid JSON: " + err.Error(),
		}
	}

	if f.TrueProbability < 0 || f.TrueProbability > 100 {
		return domain.VerificationFinding{}, &domain.VerificationParseError{
			MarketID: marketID,
			Reason:   "true_probability out of range [0,100]",
		}
	}
	switch f.Recommendation {
	case domain.RecommendExecute, domain.RecommendWait, domain.RecommendSkip:
	default:
		return domain.VerificationFinding{}, &domain.VerificationParseError{
			MarketID: marketID,
			Reason:   "unknown recommendation " + quoted(f.Recommendation),
		}
	}
	switch f.Confidence {
	case domain.ConfidenceHigh, domain.ConfidenceMedium, domain.ConfidenceLow:
	default:
		return domain.VerificationFinding{}, &domain.VerificationParseError{
			MarketID: marketID,
			Reason:   "unknown confidence " + quoted(f.Confidence),
		}
	}

	return f, nil
}

// stripFences removes a surrounding markdown code fence, with or without a
// language tag, that some model responses wrap around the JSON body.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func quoted[T ~string](v T) string {
	return `"` + string(v) + `"`
}
