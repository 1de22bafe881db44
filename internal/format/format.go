// Package format turns raw magnitudes from the backend into display strings.
// Every function here is pure and deterministic.
package format

import (
	"fmt"
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Money renders a USD amount in millions at or above one million and in
// thousands otherwise. Amounts under 1000 still render in K form ("$0.5K").
func Money(amount float64) string {
	if amount >= 1_000_000 {
		return "$" + oneDecimal(amount/1_000_000) + "M"
	}
	return "$" + oneDecimal(amount/1_000) + "K"
}

// Count renders a follower-style count with a "+" suffix once abbreviated
func Count(n int) string {
	switch {
	case n >= 1_000_000:
		return oneDecimal(float64(n)/1_000_000) + "M+"
	case n >= 1_000:
		return oneDecimal(float64(n)/1_000) + "K+"
	default:
		return strconv.Itoa(n)
	}
}

// Abbrev renders a count in M/K form without the "+" suffix, as the
// leaderboard's follower column does
func Abbrev(n int) string {
	switch {
	case n >= 1_000_000:
		return oneDecimal(float64(n)/1_000_000) + "M"
	case n >= 1_000:
		return oneDecimal(float64(n)/1_000) + "K"
	default:
		return strconv.Itoa(n)
	}
}

// TrustScorePercent maps a 0..1 score to a whole percentage. NaN maps to 0.
func TrustScorePercent(score float64) int {
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0
	}
	return int(math.Round(score * 100))
}

// Percent renders a 0..1 score as "NN%"
func Percent(score float64) string {
	return strconv.Itoa(TrustScorePercent(score)) + "%"
}

var printer = message.NewPrinter(language.English)

// Total renders an integer with thousands separators, e.g. 12,345
func Total(n int) string {
	return printer.Sprintf("%d", n)
}

// oneDecimal rounds half away from zero before printing so that 0.999
// becomes "1.0" regardless of the float's binary representation.
func oneDecimal(v float64) string {
	return fmt.Sprintf("%.1f", math.Round(v*10)/10)
}
