package entity

import "time"

// PaymentEntry is a payment received against a booking
type PaymentEntry struct {
	ID         string     `json:"id" bson:"-"`
	CustomerID string     `json:"customerId" bson:"customerId"`
	BookingID  string     `json:"bookingId,omitempty" bson:"bookingId,omitempty"`
	Amount     Amount     `json:"amount" bson:"amount"`
	Method     string     `json:"method" bson:"method"`
	Status     string     `json:"status" bson:"status"`
	PaidAt     *time.Time `json:"paidAt,omitempty" bson:"paidAt,omitempty"`
}

// Payment statuses
const (
	PaymentPaid     = "paid"
	PaymentPending  = "pending"
	PaymentRefunded = "refunded"
)
