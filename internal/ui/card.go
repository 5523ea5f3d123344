package ui

import (
	"net/url"

	"github.com/ecuevas97/PartyPal/internal/model"
)

// Card модель отображения одной карточки события
type Card struct {
	ID          string
	Title       string
	Date        string
	Location    string
	Description string
	Image       string
	IsAttending bool
	EditURL     string
	DeleteURL   string
}

// NewCard строит карточку из события
func NewCard(e model.Event) Card {
	id := url.PathEscape(e.ID)
	return Card{
		ID:          e.ID,
		Title:       e.Title,
		Date:        e.Date,
		Location:    e.Location,
		Description: e.Description,
		Image:       e.Image,
		IsAttending: e.IsAttending,
		EditURL:     "/edit/" + id,
		DeleteURL:   "/events/" + id + "/delete",
	}
}

// Cards строит карточки в порядке коллекции
func Cards(events []model.Event) []Card {
	cards := make([]Card, 0, len(events))
	for _, e := range events {
		cards = append(cards, NewCard(e))
	}
	return cards
}

// HasImage картинка показывается только если URL задан
func (c Card) HasImage() bool {
	return c.Image != ""
}

// Subtitle строка "date • location", без локации только дата
func (c Card) Subtitle() string {
	if c.Location == "" {
		return c.Date
	}
	return c.Date + " • " + c.Location
}
