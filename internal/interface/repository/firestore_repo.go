package repository

import (
	"context"

	"agency-report-service/internal/domain"
	"agency-report-service/internal/domain/entity"
	"agency-report-service/internal/domain/repository"
	"agency-report-service/pkg/pagination"

	"cloud.google.com/go/firestore"
)

// firestorePager runs keyset-paginated queries against one Firestore collection
type firestorePager struct {
	client      *firestore.Client
	collection  string
	defaultSort repository.Sort
}

type firestorePage struct {
	docs       []*firestore.DocumentSnapshot
	nextCursor string
}

func (p *firestorePager) find(ctx context.Context, q repository.Query) (*firestorePage, error) {
	s := normalizeSort(q.Sort, p.defaultSort)
	fingerprint := pagination.Fingerprint(q.Filters, s)

	fq := p.client.Collection(p.collection).Query
	for _, pred := range q.Filters {
		path := pred.Field
		if path == "id" || path == idField {
			path = firestore.DocumentID
		}
		fq = fq.Where(path, string(pred.Op), pred.Value)
	}

	dir := firestore.Asc
	if s.Desc() {
		dir = firestore.Desc
	}
	if s.Field == idField {
		fq = fq.OrderBy(firestore.DocumentID, dir)
	} else {
		fq = fq.OrderBy(s.Field, dir).OrderBy(firestore.DocumentID, dir)
	}

	if q.Cursor != "" {
		c, err := pagination.Decode(q.Cursor, fingerprint)
		if err != nil {
			return nil, err
		}
		if s.Field == idField {
			fq = fq.StartAfter(c.ID)
		} else {
			value, _ := c.SortValue()
			fq = fq.StartAfter(value, c.ID)
		}
	}

	limit := q.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	docs, err := fq.Limit(limit + 1).Documents(ctx).GetAll()
	if err != nil {
		return nil, domain.NewSourceUnavailableError(p.collection, err)
	}

	page := &firestorePage{docs: docs}
	if len(docs) > limit {
		page.docs = docs[:limit]
		last := page.docs[limit-1]
		var value interface{} = last.Ref.ID
		if s.Field != idField {
			value = last.Data()[s.Field]
		}
		page.nextCursor = pagination.Encode(fingerprint, value, last.Ref.ID)
	}
	return page, nil
}

// FirestoreRecordRepository reads one booking collection from Firestore
type FirestoreRecordRepository struct {
	pager      firestorePager
	entityType entity.EntityType
}

// NewFirestoreRecordRepository creates a Firestore record source for entityType
func NewFirestoreRecordRepository(client *firestore.Client, entityType entity.EntityType) *FirestoreRecordRepository {
	return &FirestoreRecordRepository{
		pager: firestorePager{
			client:      client,
			collection:  BookingCollections[entityType],
			defaultSort: repository.Sort{Field: idField, Direction: repository.SortAsc},
		},
		entityType: entityType,
	}
}

// FetchRecords returns one page of bookings tagged with the entity type
func (r *FirestoreRecordRepository) FetchRecords(ctx context.Context, q repository.Query) (*repository.RecordPage, error) {
	page, err := r.pager.find(ctx, q)
	if err != nil {
		return nil, err
	}
	items := make([]entity.Record, 0, len(page.docs))
	for _, doc := range page.docs {
		items = append(items, recordFromMap(doc.Ref.ID, r.entityType, doc.Data()))
	}
	return &repository.RecordPage{Items: items, NextCursor: page.nextCursor}, nil
}

// FirestoreCustomerRepository reads customers from Firestore
type FirestoreCustomerRepository struct {
	pager firestorePager
}

// NewFirestoreCustomerRepository creates a Firestore customer source
func NewFirestoreCustomerRepository(client *firestore.Client) *FirestoreCustomerRepository {
	return &FirestoreCustomerRepository{
		pager: firestorePager{
			client:      client,
			collection:  "customers",
			defaultSort: repository.Sort{Field: idField, Direction: repository.SortAsc},
		},
	}
}

// FetchCustomers returns one page of customers
func (r *FirestoreCustomerRepository) FetchCustomers(ctx context.Context, q repository.Query) (*repository.CustomerPage, error) {
	page, err := r.pager.find(ctx, q)
	if err != nil {
		return nil, err
	}
	items := make([]entity.Customer, 0, len(page.docs))
	for _, doc := range page.docs {
		items = append(items, customerFromMap(doc.Ref.ID, doc.Data()))
	}
	return &repository.CustomerPage{Items: items, NextCursor: page.nextCursor}, nil
}

// FirestorePaymentRepository reads payments from Firestore
type FirestorePaymentRepository struct {
	pager firestorePager
}

// NewFirestorePaymentRepository creates a Firestore payment source
func NewFirestorePaymentRepository(client *firestore.Client) *FirestorePaymentRepository {
	return &FirestorePaymentRepository{
		pager: firestorePager{
			client:      client,
			collection:  "payments",
			defaultSort: repository.Sort{Field: idField, Direction: repository.SortAsc},
		},
	}
}

// FetchPayments returns one page of payments
func (r *FirestorePaymentRepository) FetchPayments(ctx context.Context, q repository.Query) (*repository.PaymentPage, error) {
	page, err := r.pager.find(ctx, q)
	if err != nil {
		return nil, err
	}
	items := make([]entity.PaymentEntry, 0, len(page.docs))
	for _, doc := range page.docs {
		items = append(items, paymentFromMap(doc.Ref.ID, doc.Data()))
	}
	return &repository.PaymentPage{Items: items, NextCursor: page.nextCursor}, nil
}

// FirestoreActivityLogRepository reads the activity log from Firestore
type FirestoreActivityLogRepository struct {
	pager firestorePager
}

// NewFirestoreActivityLogRepository creates a Firestore activity log source
func NewFirestoreActivityLogRepository(client *firestore.Client) *FirestoreActivityLogRepository {
	return &FirestoreActivityLogRepository{
		pager: firestorePager{
			client:      client,
			collection:  "activity_logs",
			defaultSort: repository.Sort{Field: "actionTime", Direction: repository.SortDesc},
		},
	}
}

// FetchLogs returns one page of log entries
func (r *FirestoreActivityLogRepository) FetchLogs(ctx context.Context, q repository.Query) (*repository.ActivityLogPage, error) {
	page, err := r.pager.find(ctx, q)
	if err != nil {
		return nil, err
	}
	items := make([]entity.ActivityLogEntry, 0, len(page.docs))
	for _, doc := range page.docs {
		items = append(items, logFromMap(doc.Ref.ID, doc.Data()))
	}
	return &repository.ActivityLogPage{Items: items, NextCursor: page.nextCursor}, nil
}
