package pricing

import "math"

// Profit is the per-unit net: marketplace price minus estimated fees minus
// the supplier's wholesale cost, rounded to cents.
func Profit(cost, price, fees float64) float64 {
	return round2(price - fees - cost)
}

// ROI is profit over cost. Zero-cost rows report zero rather than blowing up
// on free inventory.
func ROI(profit, cost float64) float64 {
	if cost <= 0 {
		return 0
	}
	return math.Round(profit/cost*10000) / 10000
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
