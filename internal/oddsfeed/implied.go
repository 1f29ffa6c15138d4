// Package oddsfeed provides the client for the external betting-odds
// collaborator and the moneyline probability conversions used everywhere a
// market price becomes a model input.
package oddsfeed

import "math"

// MoneylineToProbability converts an American moneyline price to a raw
// implied probability (vig included). This is the single conversion formula
// used across the engine:
//
//	negative price: p = -ml / (-ml + 100)
//	positive price: p = 100 / (ml + 100)
func MoneylineToProbability(moneyline float64) float64 {
	if moneyline == 0 {
		return 0.5
	}
	if moneyline < 0 {
		return -moneyline / (-moneyline + 100)
	}
	return 100 / (moneyline + 100)
}

// RemoveVig2 converts two raw implied probabilities to fair probabilities by
// stripping the bookmaker's overround.
func RemoveVig2(a, b float64) (float64, float64) {
	total := a + b
	if total <= 0 {
		return 0.5, 0.5
	}
	return a / total, b / total
}

// Overround returns the bookmaker margin: the excess of the summed raw
// implied probabilities over 1. Zero or negative means an arbitrage exists.
func Overround(a, b float64) float64 {
	return a + b - 1
}

// ArbitrageMargin returns the guaranteed margin of backing both sides at the
// given raw implied probabilities, or 0 when the book holds an edge.
func ArbitrageMargin(a, b float64) float64 {
	margin := 1 - (a + b)
	return math.Max(0, margin)
}
