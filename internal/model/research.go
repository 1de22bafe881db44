package model

import (
	"encoding/json"
	"fmt"
)

// TimeRange bounds the window a research task looks back over
type TimeRange string

const (
	TimeRangeLastWeek  TimeRange = "last-week"
	TimeRangeLastMonth TimeRange = "last-month"
	TimeRangeLastYear  TimeRange = "last-year"
	TimeRangeAll       TimeRange = "all"
)

// TimeRanges lists the accepted ranges in display order
var TimeRanges = []TimeRange{TimeRangeLastWeek, TimeRangeLastMonth, TimeRangeLastYear, TimeRangeAll}

// Label returns the human label for the range
func (r TimeRange) Label() string {
	switch r {
	case TimeRangeLastWeek:
		return "Last Week"
	case TimeRangeLastMonth:
		return "Last Month"
	case TimeRangeLastYear:
		return "Last Year"
	case TimeRangeAll:
		return "All Time"
	default:
		return string(r)
	}
}

// ParseTimeRange accepts one of the wire values
func ParseTimeRange(s string) (TimeRange, error) {
	for _, r := range TimeRanges {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown time range %q", s)
}

// Journals is the catalogue a research task can be checked against
var Journals = []string{
	"PubMed Central",
	"Nature",
	"Science",
	"Cell",
	"The Lancet",
	"JAMA Network",
	"New England Journal of Medicine",
}

// Research task limits
const (
	MinClaimsCount = 1
	MaxClaimsCount = 100
	MinMaxTokens   = 1024
	MaxTokensStep  = 1024
)

// ResearchTaskRequest is the body posted to create a research task
type ResearchTaskRequest struct {
	InfluencerID     int       `json:"influencerId"`
	TimeRange        TimeRange `json:"timeRange"`
	ClaimsCount      int       `json:"claimsCount"`
	MaxTokens        int       `json:"max_tokens"`
	SelectedJournals []string  `json:"selectedJournals"`
	Notes            string    `json:"notes"`
}

// Validate checks the request against the task limits
func (r *ResearchTaskRequest) Validate() error {
	if r.InfluencerID <= 0 {
		return fmt.Errorf("influencer id must be positive")
	}
	if _, err := ParseTimeRange(string(r.TimeRange)); err != nil {
		return err
	}
	if r.ClaimsCount < MinClaimsCount || r.ClaimsCount > MaxClaimsCount {
		return fmt.Errorf("claims count %d outside [%d,%d]", r.ClaimsCount, MinClaimsCount, MaxClaimsCount)
	}
	if r.MaxTokens < MinMaxTokens {
		return fmt.Errorf("max tokens %d below %d", r.MaxTokens, MinMaxTokens)
	}
	if len(r.SelectedJournals) == 0 {
		return fmt.Errorf("at least one journal must be selected")
	}
	return nil
}

// ResearchTask is the reference the backend returns for a created task.
// ID holds the id as text whether it arrived as a JSON string or number.
type ResearchTask struct {
	ID           string `json:"id,omitempty"`
	InfluencerID int    `json:"influencerId,omitempty"`
	Status       string `json:"status,omitempty"`
}

// UnmarshalJSON decodes a string or numeric id; a null or missing id is ""
func (t *ResearchTask) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID           json.RawMessage `json:"id"`
		InfluencerID int             `json:"influencerId"`
		Status       string          `json:"status"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	t.InfluencerID = raw.InfluencerID
	t.Status = raw.Status
	t.ID = ""
	if len(raw.ID) == 0 || string(raw.ID) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw.ID, &t.ID); err == nil {
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(raw.ID, &n); err != nil {
		return fmt.Errorf("decode task id: %w", err)
	}
	t.ID = n.String()
	return nil
}
