package dashboard

import (
	"strconv"

	"github.com/ppiankov/trustboard/internal/cache"
	"github.com/ppiankov/trustboard/internal/format"
	"github.com/ppiankov/trustboard/internal/model"
)

// maxRowTags is how many content tags a leaderboard row shows
const maxRowTags = 3

// LeaderboardPage is the composed leaderboard view
type LeaderboardPage struct {
	Status Status
	Stats  StatsBlock
	Rows   []Row
}

// StatsBlock is the summary above the table. When stats failed to load it
// renders zeroed with Available false; that never fails the page.
type StatsBlock struct {
	Available         bool
	TotalInfluencers  string
	TotalClaims       string
	AverageTrustScore string
}

// Row is one ranked influencer. Rank is the list position, starting at 1.
type Row struct {
	Rank           int
	ID             int
	Name           string
	Description    string
	Tags           []string
	TrustPercent   int
	Band           format.Band
	Trend          model.Trend
	Followers      string
	VerifiedClaims int
	Route          string
}

// ComposeLeaderboard folds the stats and list states into one page.
// The page is loading until both settle and fails only if the list failed.
func ComposeLeaderboard(stats cache.State[model.LeaderboardStats], list cache.State[[]model.InfluencerListItem]) LeaderboardPage {
	if stats.IsLoading || list.IsLoading {
		return LeaderboardPage{Status: StatusLoading}
	}
	if list.Err != nil {
		return LeaderboardPage{Status: StatusError}
	}

	page := LeaderboardPage{
		Status: StatusReady,
		Stats:  statsBlock(stats),
		Rows:   make([]Row, 0, len(list.Data)),
	}
	for i, item := range list.Data {
		page.Rows = append(page.Rows, rowFor(i+1, item))
	}
	return page
}

func statsBlock(state cache.State[model.LeaderboardStats]) StatsBlock {
	var s model.LeaderboardStats
	available := state.Err == nil && state.HasData
	if available {
		s = state.Data
	}
	return StatsBlock{
		Available:         available,
		TotalInfluencers:  format.Total(s.TotalInfluencers),
		TotalClaims:       format.Total(s.TotalClaims),
		AverageTrustScore: format.Percent(s.AverageTrustScore),
	}
}

func rowFor(rank int, item model.InfluencerListItem) Row {
	percent := format.TrustScorePercent(item.TrustScore)
	return Row{
		Rank:           rank,
		ID:             item.ID,
		Name:           item.MainName,
		Description:    item.Description,
		Tags:           model.TopTags(item.ContentTags, maxRowTags),
		TrustPercent:   percent,
		Band:           format.TrendBand(percent),
		Trend:          item.Trend,
		Followers:      format.Abbrev(item.TotalFollowers),
		VerifiedClaims: item.VerifiedClaims,
		Route:          Route(item.ID),
	}
}

// RankLabel renders a rank as "#N"
func (r Row) RankLabel() string {
	return "#" + strconv.Itoa(r.Rank)
}
