package domain

import "time"

// Game is a title that products (credit packs) are sold for
type Game struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Publisher   string    `json:"publisher,omitempty"`
	Category    string    `json:"category,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	Description string    `json:"description,omitempty"`
	Active      bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type GameInput struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Publisher   string `json:"publisher,omitempty"`
	Category    string `json:"category,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
	Description string `json:"description,omitempty"`
	Active      bool   `json:"isActive"`
}
