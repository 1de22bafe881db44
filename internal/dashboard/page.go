// Package dashboard composes query states into the leaderboard and detail
// pages. Every display field is derived here from canonical data and is
// never cached on its own.
package dashboard

import (
	"strconv"
	"strings"
)

// Status is the page-level readiness signal
type Status int

const (
	StatusLoading Status = iota
	StatusReady
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	default:
		return "loading"
	}
}

// Messages shown in place of a page that failed to load
const (
	LeaderboardErrorTitle = "Unable to load influencer data"
	LeaderboardErrorBody  = "There was an error loading the leaderboard. Please try again later or contact support if the problem persists."
	DetailErrorTitle      = "Error loading influencer data"
	DetailErrorBody       = "Unable to load influencer details. Please try again later."
)

// Route returns the detail route of an influencer
func Route(id int) string {
	return "/influencers/" + strconv.Itoa(id)
}

// ParseRoute returns the influencer id of a detail route
func ParseRoute(route string) (int, bool) {
	rest, ok := strings.CutPrefix(route, "/influencers/")
	if !ok {
		return 0, false
	}
	id, err := strconv.Atoi(rest)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
