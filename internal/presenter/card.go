package presenter

import (
	"fmt"

	"github.com/user/roleta-service/internal/entity"
)

const (
	ColorLost     = "#ff0000"
	ColorSurvived = "#00ff00"

	LabelLost     = "💀 You lost!"
	LabelSurvived = "🎉 You survived!"

	titlePrefix = "🎯 "
)

// Card is the display form of a Selection.
type Card struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	URL     string `json:"url"`
	Color   string `json:"color"`
	Outcome string `json:"outcome"`
	Lost    bool   `json:"lost"`
	Summary string `json:"summary"`
	Image   string `json:"image,omitempty"`
}

// NewCard builds the card for a selection. The image is left empty when the
// film has no poster.
func NewCard(sel *entity.Selection) Card {
	card := Card{
		ID:      sel.ID,
		Title:   titlePrefix + sel.Film.Title,
		URL:     sel.Film.URL,
		Lost:    sel.Lost,
		Summary: fmt.Sprintf("Configuration: %d bad | %d good", sel.BadCount, sel.GoodCount),
		Image:   sel.Film.Poster,
	}
	if sel.Lost {
		card.Color, card.Outcome = ColorLost, LabelLost
	} else {
		card.Color, card.Outcome = ColorSurvived, LabelSurvived
	}
	return card
}
