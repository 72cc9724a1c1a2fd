package entity

import (
	"time"
)

// EntityType tags which booking domain a Record came from
type EntityType string

const (
	EntityFlight EntityType = "flight"
	EntityHotel  EntityType = "hotel"
	EntityVisa   EntityType = "visa"
	EntityTour   EntityType = "tour"
)

// BookingEntityTypes lists every booking entity type in report order
var BookingEntityTypes = []EntityType{EntityFlight, EntityHotel, EntityVisa, EntityTour}

// Valid reports whether t is one of the booking entity types
func (t EntityType) Valid() bool {
	for _, known := range BookingEntityTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Booking statuses written by the CRUD services
const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCompleted = "completed"
	BookingCancelled = "cancelled"
)

// Payment is the price/cost pair carried by every booking
type Payment struct {
	Price Amount `json:"price" bson:"price"`
	Cost  Amount `json:"cost" bson:"cost"`
}

// Profit may be negative; it is reported, never rejected.
func (p Payment) Profit() float64 {
	return p.Price.Float() - p.Cost.Float()
}

// Record is the common envelope of a flight, hotel, visa or tour booking.
// Entity-specific fields are kept in Extra and never inspected by reports.
type Record struct {
	ID         string                 `json:"id" bson:"-"`
	EntityType EntityType             `json:"entityType" bson:"-"`
	CustomerID string                 `json:"customerId" bson:"customerId"`
	EmployeeID string                 `json:"employeeId,omitempty" bson:"employeeId,omitempty"`
	CreatedAt  *time.Time             `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
	Status     string                 `json:"status" bson:"status"`
	Payment    Payment                `json:"payment" bson:"payment"`
	Extra      map[string]interface{} `json:"extra,omitempty" bson:",inline"`
}

// TotalAmount is the amount charged to the customer for this booking
func (r Record) TotalAmount() float64 {
	return r.Payment.Price.Float()
}
