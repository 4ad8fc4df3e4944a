package scanner

// MaxContracts is the hard position-limit ceiling applied to every suggested
// size regardless of bankroll.
const MaxContracts = 50

// SuggestPosition sizes a position from the entry and stop prices (cents),
// the bankroll, and the maximum fraction of bankroll to risk. It returns the
// suggested contract count and the actual dollar risk at that size, rounded
// to two decimals.
//
// A stop at or above the entry means the risk per contract is not positive,
// so no position is suggested.
func SuggestPosition(entryCents, stopCents int, bankroll, maxRiskPct float64) (int, float64) {
	riskPerContract := float64(entryCents-stopCents) / 100
	if riskPerContract <= 0 {
		return 0, 0
	}

	maxRisk := bankroll * maxRiskPct
	contracts := int(maxRisk / riskPerContract)
	if contracts < 0 {
		contracts = 0
	}
	if contracts > MaxContracts {
		contracts = MaxContracts
	}

	return contracts, round2(float64(contracts) * riskPerContract)
}
