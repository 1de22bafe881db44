package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/ppiankov/trustboard/internal/dashboard"
	"github.com/ppiankov/trustboard/internal/model"
)

const dateLayout = "Jan 2, 2006"

// Leaderboard draws the leaderboard page
func (s Styles) Leaderboard(page dashboard.LeaderboardPage) string {
	switch page.Status {
	case dashboard.StatusLoading:
		return s.Subtle.Render("Loading leaderboard...") + "\n"
	case dashboard.StatusError:
		return s.errorBlock(dashboard.LeaderboardErrorTitle, dashboard.LeaderboardErrorBody)
	}

	var b strings.Builder
	b.WriteString(s.Title.Render("Influencer Trust Leaderboard"))
	b.WriteString("\n\n")
	b.WriteString(s.statsBlock(page.Stats))
	b.WriteString("\n\n")

	if len(page.Rows) == 0 {
		b.WriteString(s.Subtle.Render("No influencers tracked yet."))
		b.WriteString("\n")
		return b.String()
	}

	rows := make([][]string, 0, len(page.Rows))
	for _, r := range page.Rows {
		rows = append(rows, []string{
			r.RankLabel(),
			strconv.Itoa(r.ID),
			r.Name,
			strings.Join(r.Tags, ", "),
			s.Band(r.Band, strconv.Itoa(r.TrustPercent)+"%"),
			s.Trend(r.Trend),
			r.Followers,
			strconv.Itoa(r.VerifiedClaims),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(s.Border).
		Headers("RANK", "ID", "INFLUENCER", "CATEGORY", "TRUST", "TREND", "FOLLOWERS", "VERIFIED").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return s.Heading.Padding(0, 1)
			}
			return s.renderer.NewStyle().Padding(0, 1)
		})

	b.WriteString(t.String())
	b.WriteString("\n")
	return b.String()
}

func (s Styles) statsBlock(stats dashboard.StatsBlock) string {
	cell := func(label, value string) string {
		return s.Card.Render(s.Subtle.Render(label) + "\n" + s.Title.Render(value))
	}
	block := lipgloss.JoinHorizontal(lipgloss.Top,
		cell("Active Influencers", stats.TotalInfluencers),
		" ",
		cell("Claims Verified", stats.TotalClaims),
		" ",
		cell("Average Trust Score", stats.AverageTrustScore),
	)
	if !stats.Available {
		block += "\n" + s.Subtle.Render("Statistics are temporarily unavailable.")
	}
	return block
}

// Detail draws one influencer on the selected tab
func (s Styles) Detail(page dashboard.DetailPage, tab dashboard.Tab) string {
	switch page.Status {
	case dashboard.StatusLoading:
		return s.Subtle.Render("Loading influencer...") + "\n"
	case dashboard.StatusError:
		return s.errorBlock(dashboard.DetailErrorTitle, dashboard.DetailErrorBody)
	}

	var b strings.Builder
	header := s.Title.Render(page.Name)
	if page.Handle != "" {
		header += " " + s.Subtle.Render("@"+page.Handle)
	}
	b.WriteString(header)
	b.WriteString("\n")
	if len(page.Tags) > 0 {
		b.WriteString(s.tags(page.Tags))
		b.WriteString("\n")
	}
	if page.Description != "" {
		b.WriteString(page.Description)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	metric := func(label, value string) string {
		return s.Card.Render(s.Subtle.Render(label) + "\n" + value)
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		metric("Trust Score", s.Band(page.Band, page.TrustScore)),
		" ",
		metric("Yearly Revenue", page.YearlyRevenue),
		" ",
		metric("Verified Claims", strconv.Itoa(page.VerifiedClaims)),
		" ",
		metric("Followers", page.Followers),
	))
	b.WriteString("\n\n")

	b.WriteString(s.tabBar(tab))
	b.WriteString("\n\n")

	if tab != dashboard.TabClaims {
		b.WriteString(s.Subtle.Render(tab.Placeholder()))
		b.WriteString("\n")
		return b.String()
	}
	if len(page.Claims) == 0 {
		b.WriteString(s.Subtle.Render("No claims analyzed yet."))
		b.WriteString("\n")
		return b.String()
	}
	for i, c := range page.Claims {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(s.claim(c))
	}
	return b.String()
}

func (s Styles) claim(c dashboard.ClaimView) string {
	var b strings.Builder
	b.WriteString(s.Tone(c.Tone, "● "+string(c.Status)))
	b.WriteString("  ")
	b.WriteString(c.Text)
	b.WriteString("\n")

	meta := []string{}
	if c.Category != "" {
		meta = append(meta, c.Category)
	}
	if !c.DetectedAt.IsZero() {
		meta = append(meta, c.DetectedAt.Format(dateLayout))
	}
	meta = append(meta, fmt.Sprintf("score %d%%", c.ScorePercent))
	b.WriteString("   ")
	b.WriteString(s.Subtle.Render(strings.Join(meta, " · ")))
	b.WriteString("\n")

	if c.Source != "" {
		b.WriteString("   ")
		b.WriteString(s.Subtle.Render("source: " + c.Source))
		b.WriteString("\n")
	}
	if len(c.Badges) > 0 {
		marks := make([]string, len(c.Badges))
		for i, bg := range c.Badges {
			marks[i] = s.Badge(bg)
		}
		b.WriteString("   ")
		b.WriteString(strings.Join(marks, "  "))
		b.WriteString("\n")
	}
	return b.String()
}

func (s Styles) tabBar(active dashboard.Tab) string {
	parts := make([]string, len(dashboard.Tabs))
	for i, t := range dashboard.Tabs {
		if t == active {
			parts[i] = s.Heading.Render("[" + t.Label() + "]")
			continue
		}
		parts[i] = s.Subtle.Render(" " + t.Label() + " ")
	}
	return strings.Join(parts, "  ")
}

func (s Styles) tags(tags []string) string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = s.Tag.Render("#" + t)
	}
	return strings.Join(out, " ")
}

// Identity draws the verified-influencer card shown while configuring research
func (s Styles) Identity(id model.InfluencerVerifyResponse) string {
	body := s.Title.Render(id.MainName)
	if id.Handle != "" {
		body += " " + s.Subtle.Render("@"+id.Handle)
	}
	if id.Description != "" {
		body += "\n" + id.Description
	}
	if tags := model.TopTags(id.ContentTags, 3); len(tags) > 0 {
		body += "\n" + s.tags(tags)
	}
	return s.Card.Render(body)
}

func (s Styles) errorBlock(title, body string) string {
	return s.Error.Render(title) + "\n" + body + "\n"
}
