package domain

// Recommendation is the action a verified candidate resolves to. The
// reconciliation policy in internal/verify is authoritative: the reasoning
// collaborator's own recommendation is overridden whenever it conflicts with
// the computed edge.
type Recommendation string

const (
	RecommendExecute Recommendation = "EXECUTE"
	RecommendWait    Recommendation = "WAIT"
	RecommendSkip    Recommendation = "SKIP"
)

// Confidence is the reasoning collaborator's self-reported confidence tier.
type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)

// VerificationFinding is the strict-schema payload expected from the
// reasoning collaborator, after boundary validation but before the edge
// policy has been applied. TrueProbability is a percentage in [0,100].
type VerificationFinding struct {
	SourceName          string         `json:"source_name"`
	SourceURL           string         `json:"source_url"`
	SourceData          string         `json:"source_data"`
	SettlementRule      string         `json:"settlement_rule"`
	CurrentValue        string         `json:"current_value"`
	Threshold           string         `json:"threshold"`
	DistanceToThreshold string         `json:"distance_to_threshold"`
	TrueProbability     float64        `json:"true_probability"`
	Recommendation      Recommendation `json:"recommendation"`
	Confidence          Confidence     `json:"confidence"`
	Reasoning           string         `json:"reasoning"`
	RiskFactors         []string       `json:"risk_factors"`
	TimeSensitivity     string         `json:"time_sensitivity"`
}

// VerifiedCandidate wraps a TradeCandidate with the reconciled verification
// outcome and the confidence-adjusted position size. Never mutated after
// creation.
type VerifiedCandidate struct {
	Trade               TradeCandidate `json:"trade"`
	SourceName          string         `json:"source_name"`
	SourceURL           string         `json:"source_url"`
	SourceData          string         `json:"source_data"`
	SettlementRule      string         `json:"settlement_rule"`
	CurrentValue        string         `json:"current_value,omitempty"`
	Threshold           string         `json:"threshold,omitempty"`
	DistanceToThreshold string         `json:"distance_to_threshold,omitempty"`
	TrueProbability     float64        `json:"ai_true_probability"`
	ImpliedProbability  float64        `json:"market_implied_probability"`
	Edge                float64        `json:"edge"`
	Recommendation      Recommendation `json:"recommendation"`
	Confidence          Confidence     `json:"confidence"`
	Reasoning           string         `json:"reasoning"`
	RiskFactors         []string       `json:"risk_factors"`
	TimeSensitivity     string         `json:"time_sensitivity"`
	AdjustedContracts   int            `json:"adjusted_contracts"`
	AdjustedRiskDollars float64        `json:"adjusted_risk_dollars"`
}

// RankedResult is an ordered sequence of verified candidates (insertion order
// is rank order, highest score first) plus the aggregate summary digest.
type RankedResult struct {
	Candidates []VerifiedCandidate `json:"candidates"`
	Summary    string              `json:"summary"`
}
