package format

// Band is the color class of a trust percentage. It never drives ordering.
type Band string

const (
	BandHigh Band = "high"
	BandMid  Band = "mid"
	BandLow  Band = "low"
)

// TrendBand classifies a trust percentage: >=90 high, >=80 mid, else low
func TrendBand(percent int) Band {
	switch {
	case percent >= 90:
		return BandHigh
	case percent >= 80:
		return BandMid
	default:
		return BandLow
	}
}
