package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/ppiankov/trustboard/internal/dashboard"
	"github.com/ppiankov/trustboard/internal/model"
)

const stylesheet = `body{font-family:system-ui,sans-serif;margin:2rem;background:#141d2b;color:#f2f2f2}
table{border-collapse:collapse;width:100%}th,td{padding:.5rem;border-bottom:1px solid #2a3850;text-align:left}
a{color:#2196F3}.stats{display:flex;gap:1rem;margin-bottom:1.5rem}.card{border:1px solid #2a3850;border-radius:.5rem;padding:.75rem 1rem}
.muted{color:#7f8c9d}.high,.good,.verified{color:#8BC34A}.mid,.warn,.questioned{color:#FFC107}.low,.bad,.debunked{color:#e53935}
.tag{color:#2196F3;margin-right:.5rem}.badge{margin-right:.75rem}.claim{margin-bottom:1rem}`

// WriteLeaderboardHTML writes the leaderboard page as a standalone HTML document
func WriteLeaderboardHTML(w io.Writer, page dashboard.LeaderboardPage) error {
	body := element(atom.Body)

	switch page.Status {
	case dashboard.StatusLoading:
		body.AppendChild(element(atom.P, text("Loading leaderboard...")))
	case dashboard.StatusError:
		appendError(body, dashboard.LeaderboardErrorTitle, dashboard.LeaderboardErrorBody)
	default:
		body.AppendChild(element(atom.H1, text("Influencer Trust Leaderboard")))
		body.AppendChild(statsSection(page.Stats))
		body.AppendChild(leaderboardTable(page.Rows))
	}

	return writeDocument(w, "Influencer Trust Leaderboard", body)
}

func statsSection(stats dashboard.StatsBlock) *html.Node {
	section := element(atom.Section, attr("class", "stats"))
	for _, s := range [][2]string{
		{"Active Influencers", stats.TotalInfluencers},
		{"Claims Verified", stats.TotalClaims},
		{"Average Trust Score", stats.AverageTrustScore},
	} {
		section.AppendChild(element(atom.Div, attr("class", "card"),
			element(atom.Div, attr("class", "muted"), text(s[0])),
			element(atom.Strong, text(s[1])),
		))
	}
	if !stats.Available {
		section.AppendChild(element(atom.P, attr("class", "muted"), text("Statistics are temporarily unavailable.")))
	}
	return section
}

func leaderboardTable(rows []dashboard.Row) *html.Node {
	head := element(atom.Tr)
	for _, h := range []string{"Rank", "Influencer", "Category", "Trust Score", "Trend", "Followers", "Verified Claims"} {
		head.AppendChild(element(atom.Th, text(h)))
	}
	tbody := element(atom.Tbody)
	for _, r := range rows {
		trend := "↓"
		if r.Trend == model.TrendUp {
			trend = "↑"
		}
		tbody.AppendChild(element(atom.Tr,
			element(atom.Td, text(r.RankLabel())),
			element(atom.Td,
				element(atom.A, attr("href", r.Route), text(r.Name)),
				element(atom.Div, attr("class", "muted"), text(r.Description)),
			),
			element(atom.Td, text(strings.Join(r.Tags, ", "))),
			element(atom.Td, attr("class", string(r.Band)), text(strconv.Itoa(r.TrustPercent)+"%")),
			element(atom.Td, text(trend)),
			element(atom.Td, text(r.Followers)),
			element(atom.Td, text(strconv.Itoa(r.VerifiedClaims))),
		))
	}
	return element(atom.Table, element(atom.Thead, head), tbody)
}

// WriteDetailHTML writes an influencer's page, all tabs stacked, as a
// standalone HTML document
func WriteDetailHTML(w io.Writer, page dashboard.DetailPage) error {
	body := element(atom.Body)
	title := "Influencer"

	switch page.Status {
	case dashboard.StatusLoading:
		body.AppendChild(element(atom.P, text("Loading influencer...")))
	case dashboard.StatusError:
		appendError(body, dashboard.DetailErrorTitle, dashboard.DetailErrorBody)
	default:
		title = page.Name
		body.AppendChild(element(atom.P, element(atom.A, attr("href", "/"), text("← Back to leaderboard"))))
		body.AppendChild(element(atom.H1, text(page.Name)))
		if page.Handle != "" {
			body.AppendChild(element(atom.P, attr("class", "muted"), text("@"+page.Handle)))
		}
		tags := element(atom.P)
		for _, t := range page.Tags {
			tags.AppendChild(element(atom.Span, attr("class", "tag"), text(t)))
		}
		body.AppendChild(tags)
		body.AppendChild(element(atom.P, text(page.Description)))

		metrics := element(atom.Section, attr("class", "stats"))
		for _, m := range []struct{ label, value, class string }{
			{"Trust Score", page.TrustScore, string(page.Band)},
			{"Yearly Revenue", page.YearlyRevenue, ""},
			{"Verified Claims", strconv.Itoa(page.VerifiedClaims), ""},
			{"Followers", page.Followers, ""},
		} {
			value := element(atom.Strong, text(m.value))
			if m.class != "" {
				value.Attr = append(value.Attr, html.Attribute{Key: "class", Val: m.class})
			}
			metrics.AppendChild(element(atom.Div, attr("class", "card"),
				element(atom.Div, attr("class", "muted"), text(m.label)),
				value,
			))
		}
		body.AppendChild(metrics)

		for _, tab := range dashboard.Tabs {
			body.AppendChild(tabSection(page, tab))
		}
	}

	return writeDocument(w, title, body)
}

func tabSection(page dashboard.DetailPage, tab dashboard.Tab) *html.Node {
	section := element(atom.Section, attr("id", string(tab)), element(atom.H2, text(tab.Label())))
	if tab != dashboard.TabClaims {
		section.AppendChild(element(atom.P, attr("class", "muted"), text(tab.Placeholder())))
		return section
	}

	for _, c := range page.Claims {
		meta := []string{}
		if c.Category != "" {
			meta = append(meta, c.Category)
		}
		if !c.DetectedAt.IsZero() {
			meta = append(meta, c.DetectedAt.Format(dateLayout))
		}
		meta = append(meta, fmt.Sprintf("score %d%%", c.ScorePercent))

		div := element(atom.Div, attr("class", "claim"),
			element(atom.Span, attr("class", string(c.Tone)), text(string(c.Status))),
			element(atom.P, text(c.Text)),
			element(atom.Div, attr("class", "muted"), text(strings.Join(meta, " · "))),
		)
		if c.Source != "" {
			div.AppendChild(element(atom.A, attr("href", c.Source), text(c.Source)))
		}
		badges := element(atom.Div)
		for _, b := range c.Badges {
			badges.AppendChild(element(atom.Span,
				attr("class", "badge "+string(b.Kind)),
				text(badgeMark(b.Kind)+" "+b.Journal),
			))
		}
		div.AppendChild(badges)
		section.AppendChild(div)
	}
	return section
}

func appendError(body *html.Node, title, msg string) {
	body.AppendChild(element(atom.H1, attr("class", "bad"), text(title)))
	body.AppendChild(element(atom.P, text(msg)))
}

func writeDocument(w io.Writer, title string, body *html.Node) error {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	head := element(atom.Head,
		element(atom.Meta, attr("charset", "utf-8")),
		element(atom.Title, text(title)),
		element(atom.Style, text(stylesheet)),
	)
	doc.AppendChild(element(atom.Html, attr("lang", "en"), head, body))

	if err := html.Render(w, doc); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

// element builds a node from its atom. Children are attributes or nodes.
func element(a atom.Atom, children ...any) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	for _, c := range children {
		switch c := c.(type) {
		case html.Attribute:
			n.Attr = append(n.Attr, c)
		case *html.Node:
			n.AppendChild(c)
		}
	}
	return n
}

func attr(key, val string) html.Attribute {
	return html.Attribute{Key: key, Val: val}
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}
