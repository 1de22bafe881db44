package dashboard

import (
	"time"

	"github.com/ppiankov/trustboard/internal/badge"
	"github.com/ppiankov/trustboard/internal/cache"
	"github.com/ppiankov/trustboard/internal/format"
	"github.com/ppiankov/trustboard/internal/model"
)

// Tab is a section of the detail view
type Tab string

const (
	TabClaims       Tab = "claims"
	TabProducts     Tab = "products"
	TabMonetization Tab = "monetization"
)

// Tabs lists the detail sections in display order
var Tabs = []Tab{TabClaims, TabProducts, TabMonetization}

// Label is the tab's heading
func (t Tab) Label() string {
	switch t {
	case TabProducts:
		return "Recommended Products"
	case TabMonetization:
		return "Monetization"
	default:
		return "Claims Analysis"
	}
}

// Placeholder is the text shown for tabs that have no data source yet
func (t Tab) Placeholder() string {
	switch t {
	case TabProducts:
		return "No recommended products available"
	case TabMonetization:
		return "Monetization data is not available"
	default:
		return ""
	}
}

// Tone is the color class of a claim's verification status
type Tone string

const (
	ToneGood Tone = "good"
	ToneWarn Tone = "warn"
	ToneBad  Tone = "bad"
)

// ToneFor maps a verification status to its tone
func ToneFor(status model.VerificationStatus) Tone {
	switch status {
	case model.StatusVerified:
		return ToneGood
	case model.StatusQuestionable:
		return ToneWarn
	default:
		return ToneBad
	}
}

// DetailPage is the composed view of one influencer
type DetailPage struct {
	Status         Status
	ID             int
	Name           string
	Handle         string
	Description    string
	Tags           []string
	TrustScore     string
	TrustPercent   int
	Band           format.Band
	YearlyRevenue  string
	VerifiedClaims int
	Followers      string
	LastVerified   time.Time
	Claims         []ClaimView
}

// ClaimView is one claim with its derived display fields
type ClaimView struct {
	ID           int
	Text         string
	Category     string
	Source       string
	Status       model.VerificationStatus
	Tone         Tone
	DetectedAt   time.Time
	ScorePercent int
	Badges       []badge.Badge
}

// ComposeDetail turns the detail query state for id into a page
func ComposeDetail(id int, state cache.State[model.InfluencerDetail]) DetailPage {
	if state.IsLoading {
		return DetailPage{Status: StatusLoading, ID: id}
	}
	if state.Err != nil || !state.HasData {
		return DetailPage{Status: StatusError, ID: id}
	}

	d := state.Data
	percent := format.TrustScorePercent(d.TrustScore)
	page := DetailPage{
		Status:         StatusReady,
		ID:             d.ID,
		Name:           d.MainName,
		Handle:         d.Handle,
		Description:    d.Description,
		Tags:           d.ContentTags,
		TrustScore:     format.Percent(d.TrustScore),
		TrustPercent:   percent,
		Band:           format.TrendBand(percent),
		YearlyRevenue:  format.Money(d.YearlyRevenueUSD),
		VerifiedClaims: d.VerifiedClaimCount(),
		Followers:      format.Count(d.TotalFollowers),
		LastVerified:   d.LastVerified,
		Claims:         make([]ClaimView, 0, len(d.Claims)),
	}
	for _, c := range d.Claims {
		page.Claims = append(page.Claims, ClaimView{
			ID:           c.ID,
			Text:         c.Text,
			Category:     c.Category,
			Source:       c.Source,
			Status:       c.VerificationStatus,
			Tone:         ToneFor(c.VerificationStatus),
			DetectedAt:   c.FirstDetectedAt,
			ScorePercent: format.TrustScorePercent(c.Score),
			Badges:       badge.ForClaim(c),
		})
	}
	return page
}
