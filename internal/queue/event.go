// Package queue defines message payloads exchanged over the message broker
// and the background consumer that drains them.
package queue

// RegistrationConfirmedEvent is published after a cart item registers
// successfully during checkout.  It carries enough for downstream
// consumers to log, notify, or feed analytics without querying the
// primary store.
type RegistrationConfirmedEvent struct {
	UserID       string `json:"user_id"`
	EventID      string `json:"event_id"`
	EventTitle   string `json:"event_title"`
	Category     string `json:"category"`
	PaymentID    string `json:"payment_id"`
	Amount       int64  `json:"amount"`
	Quantity     int    `json:"quantity"`
	RegisteredAt string `json:"registered_at"`
}
