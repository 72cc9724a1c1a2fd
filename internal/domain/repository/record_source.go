package repository

import (
	"context"

	"agency-report-service/internal/domain/entity"
)

// RecordPage is one page of bookings. NextCursor is empty once the source is exhausted.
type RecordPage struct {
	Items      []entity.Record
	NextCursor string
}

// RecordSource reads bookings of a single entity type
type RecordSource interface {
	FetchRecords(ctx context.Context, q Query) (*RecordPage, error)
}

// CustomerPage is one page of customers
type CustomerPage struct {
	Items      []entity.Customer
	NextCursor string
}

// CustomerSource reads customer records
type CustomerSource interface {
	FetchCustomers(ctx context.Context, q Query) (*CustomerPage, error)
}

// PaymentPage is one page of payments
type PaymentPage struct {
	Items      []entity.PaymentEntry
	NextCursor string
}

// PaymentSource reads received payments
type PaymentSource interface {
	FetchPayments(ctx context.Context, q Query) (*PaymentPage, error)
}
