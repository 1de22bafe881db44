package wizard

import (
	"slices"
	"strings"

	"github.com/ppiankov/trustboard/internal/model"
)

// Draft is the research configuration being edited. Every setter keeps it
// within the task limits, so a Draft is always submittable once at least
// one journal is selected.
type Draft struct {
	TimeRange        model.TimeRange
	ClaimsCount      int
	MaxTokens        int
	SelectedJournals []string
	Notes            string
}

// DefaultDraft is the configuration offered right after verification
func DefaultDraft() Draft {
	return Draft{
		TimeRange:        model.TimeRangeLastMonth,
		ClaimsCount:      50,
		MaxTokens:        2048,
		SelectedJournals: []string{"PubMed Central", "Nature"},
	}
}

// Request builds the task request for influencer id
func (d Draft) Request(influencerID int) model.ResearchTaskRequest {
	return model.ResearchTaskRequest{
		InfluencerID:     influencerID,
		TimeRange:        d.TimeRange,
		ClaimsCount:      d.ClaimsCount,
		MaxTokens:        d.MaxTokens,
		SelectedJournals: slices.Clone(d.SelectedJournals),
		Notes:            d.Notes,
	}
}

// HasJournal reports whether journal is selected
func (d Draft) HasJournal(journal string) bool {
	return slices.Contains(d.SelectedJournals, journal)
}

func (d Draft) clone() Draft {
	d.SelectedJournals = slices.Clone(d.SelectedJournals)
	return d
}

// ClampClaimsCount bounds n to [1,100]
func ClampClaimsCount(n int) int {
	return min(model.MaxClaimsCount, max(model.MinClaimsCount, n))
}

// ClampMaxTokens floors n at 1024
func ClampMaxTokens(n int) int {
	return max(model.MinMaxTokens, n)
}

// ParseClaimsCount reads a typed claims count. Input without a leading
// integer, or with a zero one, becomes 1.
func ParseClaimsCount(s string) int {
	n, ok := leadingInt(s)
	if !ok || n == 0 {
		n = model.MinClaimsCount
	}
	return ClampClaimsCount(n)
}

// ParseMaxTokens reads a typed token limit. Input without a leading
// integer, or with a zero one, becomes 1024.
func ParseMaxTokens(s string) int {
	n, ok := leadingInt(s)
	if !ok || n == 0 {
		n = model.MinMaxTokens
	}
	return ClampMaxTokens(n)
}

// leadingInt parses an optional sign followed by digits at the start of s,
// ignoring anything after them ("12abc" is 12).
func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}

	n, digits := 0, 0
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		if n > 1_000_000_000 {
			// Far past any limit; stop before overflowing
			digits++
			continue
		}
		n = n*10 + int(r-'0')
		digits++
	}
	if digits == 0 {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}
