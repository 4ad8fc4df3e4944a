package verify

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/kalshiscan/internal/domain"
)

const validPayload = `{
	"source_name": "Coinbase",
	"source_url": "https://www.coinbase.com/price/bitcoin",
	"source_data": "BTC at $97,400",
	"settlement_rule": "Settles YES if BTC closes above $95,000",
	"current_value": "97400",
	"threshold": "95000",
	"distance_to_threshold": "2.5% above",
	"true_probability": 93.5,
	"recommendation": "EXECUTE",
	"confidence": "HIGH",
	"reasoning": "Price is comfortably above the threshold with hours left.",
	"risk_factors": ["sudden volatility"],
	"time_sensitivity": "low"
}`

func TestParseFinding(t *testing.T) {
	f, err := parseFinding("M1", validPayload)
	require.NoError(t, err)
	assert.Equal(t, "Coinbase", f.SourceName)
	assert.InDelta(t, 93.5, f.TrueProbability, 1e-9)
	assert.Equal(t, domain.RecommendExecute, f.Recommendation)
	assert.Equal(t, domain.ConfidenceHigh, f.Confidence)
	assert.Equal(t, []string{"sudden volatility"}, f.RiskFactors)
}

func TestParseFinding_StripsMarkdownFences(t *testing.T) {
	fenced := "```json\n" + validPayload + "\n```"
	f, err := parseFinding("M1", fenced)
	require.NoError(t, err)
	assert.Equal(t, domain.RecommendExecute, f.Recommendation)

	plainFence := "```\n" + validPayload + "\n```"
	f, err = parseFinding("M1", plainFence)
	require.NoError(t, err)
	assert.Equal(t, domain.ConfidenceHigh, f.Confidence)
}

func TestParseFinding_RejectsInvalidJSON(t *testing.T) {
	_, err := parseFinding("M1", "the market looks fine to me")
	var parseErr *domain.VerificationParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "M1", parseErr.MarketID)
}

func TestParseFinding_RejectsOutOfRangeProbability(t *testing.T) {
	_, err := parseFinding("M1", `{"true_probability": 120, "recommendation": "EXECUTE", "confidence": "HIGH"}`)
	var parseErr *domain.VerificationParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Contains(t, parseErr.Reason, "true_probability")
}

func TestParseFinding_RejectsUnknownEnums(t *testing.T) {
	_, err := parseFinding("M1", `{"true_probability": 90, "recommendation": "YOLO", "confidence": "HIGH"}`)
	var parseErr *domain.VerificationParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Contains(t, parseErr.Reason, "recommendation")

	_, err = parseFinding("M1", `{"true_probability": 90, "recommendation": "WAIT", "confidence": "SHAKY"}`)
	require.True(t, errors.As(err, &parseErr))
	assert.Contains(t, parseErr.Reason, "confidence")
}
