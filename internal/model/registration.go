package model

import "time"

// RegistrationStatus is the lifecycle state of a registration.  The
// admission flow always creates registrations as StatusRegistered;
// StatusConfirmed marks a verified payment and feeds the stats counter.
type RegistrationStatus string

const (
	StatusRegistered RegistrationStatus = "registered"
	StatusConfirmed  RegistrationStatus = "confirmed"
)

// Registration records that a user holds a ticket for an event.  It is
// stored at registrations/{userId}/{eventId}; the pair is the storage key,
// which is what enforces at-most-one registration per user per event.
// A registration is only ever created through the ledger's admission
// check and is never deleted; bans are a separate overlay.
//
// Fields:
//  EventID      – event the registration belongs to.
//  EventName    – event title snapshot taken at checkout time.
//  EventDate    – event date as shown to the user.
//  EventTime    – event time as shown to the user.
//  Venue        – venue as shown to the user.
//  PaymentID    – synthesized payment reference (TXN...).
//  Amount       – amount paid.
//  Quantity     – ticket count; always 1 in this system.
//  RegisteredAt – when the admission succeeded.
//  Status       – lifecycle status.
//  Attended     – whether the user was marked present.
//  AttendedAt   – when attendance was marked; nil when not attended.
type Registration struct {
	EventID      string             `json:"eventId"`
	EventName    string             `json:"eventName"`
	EventDate    string             `json:"eventDate"`
	EventTime    string             `json:"eventTime"`
	Venue        string             `json:"venue"`
	PaymentID    string             `json:"paymentId"`
	Amount       int64              `json:"amount"`
	Quantity     int                `json:"quantity"`
	RegisteredAt time.Time          `json:"registeredAt"`
	Status       RegistrationStatus `json:"status"`
	Attended     bool               `json:"attended"`
	AttendedAt   *time.Time         `json:"attendedAt,omitempty"`
}
