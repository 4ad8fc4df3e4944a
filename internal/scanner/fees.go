package scanner

import "math"

// TakerFee returns the exchange taker fee per contract, in cents, for a
// contract priced at priceCents. Kalshi's published schedule is
// 0.07 * P * (1-P) with P the price as a probability; the result is rounded
// to two decimals. The fee is symmetric around 50 cents and zero at the
// extremes. Callers must clamp inputs to [0,100].
func TakerFee(priceCents float64) float64 {
	p := priceCents / 100
	return round2(0.07 * p * (1 - p) * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
