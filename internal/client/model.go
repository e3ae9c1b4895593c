package client

import "time"

type Client struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        *string   `json:"phone,omitempty"`
	Address      *string   `json:"address,omitempty"`
	SubjectID    string    `json:"-"`
	RegisteredAt time.Time `json:"registeredAt"`
}

type ClientInput struct {
	Name     string  `json:"name"`
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Phone    *string `json:"phone,omitempty"`
	Address  *string `json:"address,omitempty"`
}

// Summary is the trimmed projection embedded in order responses.
type Summary struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (c *Client) Summary() Summary {
	return Summary{ID: c.ID, Name: c.Name, Email: c.Email}
}
