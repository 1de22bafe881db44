package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"golang.org/x/net/html"

	"github.com/ppiankov/trustboard/internal/cache"
	"github.com/ppiankov/trustboard/internal/dashboard"
	"github.com/ppiankov/trustboard/internal/model"
)

func readyLeaderboard(statsOK bool) dashboard.LeaderboardPage {
	stats := cache.State[model.LeaderboardStats]{
		Data:    model.LeaderboardStats{TotalInfluencers: 1234, TotalClaims: 56789, AverageTrustScore: 0.857},
		HasData: statsOK,
	}
	if !statsOK {
		stats.Err = &testError{}
	}
	list := cache.State[[]model.InfluencerListItem]{
		HasData: true,
		Data: []model.InfluencerListItem{
			{ID: 7, MainName: "Andrew Huberman", Description: "Neuroscientist", ContentTags: []string{"Neuroscience", "Sleep", "Performance", "Hormones"}, TrustScore: 0.89, Trend: model.TrendUp, TotalFollowers: 5_200_000, VerifiedClaims: 127},
			{ID: 9, MainName: "Peter Attia", ContentTags: []string{"Longevity"}, TrustScore: 0.94, Trend: model.TrendDown, TotalFollowers: 950_000, VerifiedClaims: 85},
		},
	}
	return dashboard.ComposeLeaderboard(stats, list)
}

type testError struct{}

func (*testError) Error() string { return "stats down" }

func detailPage() dashboard.DetailPage {
	state := cache.State[model.InfluencerDetail]{
		HasData: true,
		Data: model.InfluencerDetail{
			InfluencerListItem: model.InfluencerListItem{
				ID: 7, MainName: "Andrew Huberman", Description: "Neuroscientist",
				ContentTags: []string{"Neuroscience", "Sleep"}, TrustScore: 0.89, TotalFollowers: 5_200_000,
			},
			Handle:           "hubermanlab",
			YearlyRevenueUSD: 5_000_000,
			Claims: []model.Claim{
				{
					ID: 1, Text: "Morning sunlight improves sleep", Category: "Sleep",
					Source: "https://example.com/ep1", VerificationStatus: model.StatusVerified, Score: 0.92,
					JournalsVerified:   []string{"Nature"},
					JournalsQuestioned: []string{"Science", "Nature"},
					FirstDetectedAt:    time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC),
				},
				{ID: 2, Text: "Cold plunges double dopamine", VerificationStatus: model.StatusQuestionable, Score: 0.6},
			},
		},
	}
	return dashboard.ComposeDetail(7, state)
}

func plainStyles(buf *bytes.Buffer) Styles {
	return NewStyles(buf, true)
}

func TestLeaderboardTerminal(t *testing.T) {
	var buf bytes.Buffer
	out := plainStyles(&buf).Leaderboard(readyLeaderboard(true))

	for _, want := range []string{
		"Influencer Trust Leaderboard",
		"1,234", "56,789", "86%",
		"#1", "#2",
		"Andrew Huberman", "Neuroscience, Sleep, Performance",
		"89%", "94%", "5.2M", "950.0K", "↑", "↓",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("leaderboard missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Hormones") {
		t.Error("leaderboard should show at most three tags per row")
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("no-color output contains ANSI escapes")
	}
}

func TestLeaderboardTerminalStatsUnavailable(t *testing.T) {
	var buf bytes.Buffer
	out := plainStyles(&buf).Leaderboard(readyLeaderboard(false))

	if !strings.Contains(out, "Statistics are temporarily unavailable.") {
		t.Errorf("missing stats notice:\n%s", out)
	}
	if !strings.Contains(out, "#2") {
		t.Errorf("rows should still render:\n%s", out)
	}
}

func TestLeaderboardTerminalStates(t *testing.T) {
	var buf bytes.Buffer
	s := plainStyles(&buf)

	if out := s.Leaderboard(dashboard.LeaderboardPage{Status: dashboard.StatusLoading}); !strings.Contains(out, "Loading") {
		t.Errorf("loading page = %q", out)
	}
	out := s.Leaderboard(dashboard.LeaderboardPage{Status: dashboard.StatusError})
	if !strings.Contains(out, dashboard.LeaderboardErrorTitle) || !strings.Contains(out, dashboard.LeaderboardErrorBody) {
		t.Errorf("error page = %q", out)
	}
}

func TestDetailTerminal(t *testing.T) {
	var buf bytes.Buffer
	s := plainStyles(&buf)
	page := detailPage()

	out := s.Detail(page, dashboard.TabClaims)
	for _, want := range []string{
		"Andrew Huberman", "@hubermanlab", "#Neuroscience",
		"89%", "$5.0M", "5.2M+",
		"[Claims Analysis]",
		"Morning sunlight improves sleep", "Mar 14, 2024", "score 92%",
		"✓ Nature", "? Science",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("detail missing %q:\n%s", want, out)
		}
	}
	if strings.Count(out, "Nature") != 1 {
		t.Errorf("Nature should appear once:\n%s", out)
	}

	products := s.Detail(page, dashboard.TabProducts)
	if !strings.Contains(products, "No recommended products available") || strings.Contains(products, "Morning sunlight") {
		t.Errorf("products tab:\n%s", products)
	}
}

func TestDetailTerminalError(t *testing.T) {
	var buf bytes.Buffer
	out := plainStyles(&buf).Detail(dashboard.DetailPage{Status: dashboard.StatusError}, dashboard.TabClaims)
	if !strings.Contains(out, dashboard.DetailErrorTitle) {
		t.Errorf("error page = %q", out)
	}
}

func TestIdentityCard(t *testing.T) {
	var buf bytes.Buffer
	out := plainStyles(&buf).Identity(model.InfluencerVerifyResponse{
		MainName: "Andrew Huberman", Handle: "hubermanlab",
		ContentTags: []string{"a", "b", "c", "d"},
	})
	if !strings.Contains(out, "@hubermanlab") || !strings.Contains(out, "#c") || strings.Contains(out, "#d") {
		t.Errorf("identity card:\n%s", out)
	}
}

func TestWriteLeaderboardHTML(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteLeaderboardHTML(&buf, readyLeaderboard(true)); err != nil {
		t.Fatalf("WriteLeaderboardHTML: %v", err)
	}

	doc, err := html.Parse(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	links := collect(doc, "a")
	if len(links) != 2 {
		t.Fatalf("expected 2 links, got %d", len(links))
	}
	if got := attrOf(links[0], "href"); got != "/influencers/7" {
		t.Errorf("first link = %q, want /influencers/7", got)
	}
	if rows := collect(doc, "tr"); len(rows) != 3 {
		t.Errorf("expected header + 2 rows, got %d", len(rows))
	}
	if !strings.HasPrefix(buf.String(), "<!DOCTYPE html>") {
		t.Errorf("missing doctype: %.40s", buf.String())
	}
}

func TestWriteLeaderboardHTMLError(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteLeaderboardHTML(&buf, dashboard.LeaderboardPage{Status: dashboard.StatusError}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), dashboard.LeaderboardErrorTitle) {
		t.Errorf("error document:\n%s", buf.String())
	}
}

func TestWriteDetailHTML(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteDetailHTML(&buf, detailPage()); err != nil {
		t.Fatalf("WriteDetailHTML: %v", err)
	}

	doc, err := html.Parse(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	sections := 0
	for _, s := range collect(doc, "section") {
		if attrOf(s, "id") != "" {
			sections++
		}
	}
	if sections != len(dashboard.Tabs) {
		t.Errorf("expected %d tab sections, got %d", len(dashboard.Tabs), sections)
	}
	badges := 0
	for _, s := range collect(doc, "span") {
		if strings.HasPrefix(attrOf(s, "class"), "badge ") {
			badges++
		}
	}
	if badges != 2 {
		t.Errorf("expected 2 badges, got %d", badges)
	}
	if !strings.Contains(buf.String(), "Monetization data is not available") {
		t.Error("monetization placeholder missing")
	}
}

func collect(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func attrOf(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
