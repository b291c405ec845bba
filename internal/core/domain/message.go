package domain

import "time"

// Message is a support conversation entry from a customer
type Message struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId,omitempty"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Read      bool      `json:"isRead"`
	Replies   []Reply   `json:"replies,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type Reply struct {
	ID        string    `json:"id"`
	Body      string    `json:"body"`
	AuthorID  string    `json:"authorId"`
	CreatedAt time.Time `json:"createdAt"`
}
