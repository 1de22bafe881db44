// Package badge classifies the journals cited on a claim.
package badge

import "github.com/ppiankov/trustboard/internal/model"

// Kind is the display category of a journal badge
type Kind string

const (
	KindVerified   Kind = "verified"
	KindQuestioned Kind = "questioned"
	KindDebunked   Kind = "debunked"
	KindNone       Kind = "none"
)

// Badge is one journal and how it judged the claim
type Badge struct {
	Journal string
	Kind    Kind
}

// Classifier resolves a journal's kind from a claim's three membership sets.
// Verified wins over questioned, which wins over debunked.
type Classifier struct {
	verified   map[string]bool
	questioned map[string]bool
	debunked   map[string]bool
}

// NewClassifier builds the membership sets for one claim
func NewClassifier(claim model.Claim) *Classifier {
	return &Classifier{
		verified:   toSet(claim.JournalsVerified),
		questioned: toSet(claim.JournalsQuestioned),
		debunked:   toSet(claim.JournalsDebunked),
	}
}

// Classify returns the kind of a single journal
func (c *Classifier) Classify(journal string) Kind {
	switch {
	case c.verified[journal]:
		return KindVerified
	case c.questioned[journal]:
		return KindQuestioned
	case c.debunked[journal]:
		return KindDebunked
	default:
		return KindNone
	}
}

// ForClaim returns one badge per distinct journal on the claim, in
// first-seen order across verified, questioned, then debunked.
func ForClaim(claim model.Claim) []Badge {
	c := NewClassifier(claim)

	total := len(claim.JournalsVerified) + len(claim.JournalsQuestioned) + len(claim.JournalsDebunked)
	badges := make([]Badge, 0, total)
	seen := make(map[string]bool, total)

	for _, set := range [][]string{claim.JournalsVerified, claim.JournalsQuestioned, claim.JournalsDebunked} {
		for _, journal := range set {
			if seen[journal] {
				continue
			}
			seen[journal] = true
			badges = append(badges, Badge{Journal: journal, Kind: c.Classify(journal)})
		}
	}

	return badges
}

// Overlaps reports journals listed in more than one set on the claim.
// These are resolved by precedence but usually point at bad upstream data.
func Overlaps(claim model.Claim) []string {
	counts := make(map[string]int)
	var order []string
	for _, set := range [][]string{claim.JournalsVerified, claim.JournalsQuestioned, claim.JournalsDebunked} {
		inSet := make(map[string]bool, len(set))
		for _, journal := range set {
			if inSet[journal] {
				continue
			}
			inSet[journal] = true
			if counts[journal] == 0 {
				order = append(order, journal)
			}
			counts[journal]++
		}
	}

	var overlaps []string
	for _, journal := range order {
		if counts[journal] > 1 {
			overlaps = append(overlaps, journal)
		}
	}
	return overlaps
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}
