// Package view maps search results to what the results page shows.
package view

import (
	"fmt"
	"strconv"

	"github.com/kailas-cloud/prodlens/internal/domain/search/match"
)

// Card is the display model of one match.
type Card struct {
	Position int      `json:"position"`
	Title    string   `json:"title"`
	Category string   `json:"category"`
	Score    string   `json:"score"`
	Badges   []string `json:"badges"`
}

// CategoryLine renders "Category: <category>".
func (c Card) CategoryLine() string { return "Category: " + c.Category }

// ScoreLine renders "Match Score: <score>".
func (c Card) ScoreLine() string { return "Match Score: " + c.Score }

// Cards maps every match, in order, to a card. Positions are 1-based.
func Cards(resp match.Response) []Card {
	matches := resp.Matches()
	cards := make([]Card, len(matches))
	for i := range matches {
		m := &matches[i]
		p := m.Product()

		labels := p.Labels()
		badges := make([]string, len(labels))
		for j, l := range labels {
			badges[j] = l.Key + ": " + l.Value
		}

		cards[i] = Card{
			Position: i + 1,
			Title:    Title(p.DisplayName(), i+1),
			Category: p.Category(),
			Score:    Percent(m.Score()),
			Badges:   badges,
		}
	}
	return cards
}

// Title returns displayName, or "Product N" when it is empty.
func Title(displayName string, position int) string {
	if displayName != "" {
		return displayName
	}
	return "Product " + strconv.Itoa(position)
}

// Percent formats a [0,1] score as a percentage with one decimal place.
func Percent(score float64) string {
	return fmt.Sprintf("%.1f%%", score*100)
}
