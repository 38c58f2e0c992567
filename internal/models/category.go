package models

import "time"

// Category represents a row in the PostgreSQL categories table.
type Category struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}
