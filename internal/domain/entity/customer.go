package entity

import "time"

// Customer is resolved against bookings by customerId at read time
type Customer struct {
	ID        string     `json:"id" bson:"-"`
	Name      string     `json:"name" bson:"name"`
	Email     string     `json:"email,omitempty" bson:"email,omitempty"`
	Phone     string     `json:"phone,omitempty" bson:"phone,omitempty"`
	Country   string     `json:"country,omitempty" bson:"country,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
}
