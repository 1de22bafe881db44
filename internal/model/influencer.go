package model

import "time"

// LeaderboardStats is the aggregate snapshot shown above the leaderboard
type LeaderboardStats struct {
	TotalInfluencers  int     `json:"totalInfluencers"`
	TotalClaims       int     `json:"totalClaims"`
	AverageTrustScore float64 `json:"averageTrustScore"` // 0..1
}

// Trend is the direction of an influencer's trust score
type Trend string

const (
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
)

// InfluencerListItem is one ranked row of the leaderboard.
// Rank is not stored: it is the row's position in the list, starting at 1.
type InfluencerListItem struct {
	ID             int      `json:"id"`
	MainName       string   `json:"mainName"`
	Description    string   `json:"description"`
	ContentTags    []string `json:"contentTags"`
	TrustScore     float64  `json:"trustScore"` // 0..1
	Trend          Trend    `json:"trend"`
	TotalFollowers int      `json:"totalFollowers"`
	VerifiedClaims int      `json:"verifiedClaims"`
}

// InfluencerDetail is the full record behind the detail view
type InfluencerDetail struct {
	InfluencerListItem
	Handle           string    `json:"handle"`
	Aliases          []string  `json:"aliases"`
	YearlyRevenueUSD float64   `json:"yearlyRevenueUsd"`
	LastVerified     time.Time `json:"lastVerified"`
	Claims           []Claim   `json:"claims"`
}

// VerifiedClaimCount counts claims whose status is Verified
func (d *InfluencerDetail) VerifiedClaimCount() int {
	n := 0
	for _, c := range d.Claims {
		if c.VerificationStatus == StatusVerified {
			n++
		}
	}
	return n
}

// InfluencerVerifyResponse confirms a handle resolves to a tracked influencer
type InfluencerVerifyResponse struct {
	ID               int      `json:"id"`
	Handle           string   `json:"handle"`
	MainName         string   `json:"mainName"`
	Description      string   `json:"description"`
	Aliases          []string `json:"aliases"`
	ContentTags      []string `json:"contentTags"`
	YearlyRevenueUSD float64  `json:"yearlyRevenueUsd"`
	TotalFollowers   int      `json:"totalFollowers"`
	// LastVerified is kept in whatever format the backend sends
	LastVerified string `json:"lastVerified"`
}

// TopTags returns at most n leading content tags
func TopTags(tags []string, n int) []string {
	if len(tags) <= n {
		return tags
	}
	return tags[:n]
}
