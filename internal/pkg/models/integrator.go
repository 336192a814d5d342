package models

import "time"

// Integrator is the partner that owns transactions and receives webhook
// notifications. Only the fields the notification path needs live here.
type Integrator struct {
	ID            string    `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	WebhookURL    string    `json:"webhook_url" db:"webhook_url"`
	WebhookSecret string    `json:"-" db:"webhook_secret"`
	Active        bool      `json:"active" db:"active"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}
