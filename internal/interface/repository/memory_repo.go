package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"agency-report-service/internal/domain/entity"
	"agency-report-service/internal/domain/repository"
	"agency-report-service/pkg/pagination"
)

// memoryCollection keeps documents in memory and answers the same keyset
// queries as the store adapters.
type memoryCollection[T any] struct {
	mu          sync.RWMutex
	items       []T
	id          func(T) string
	field       func(T, string) interface{}
	defaultSort repository.Sort
}

func (c *memoryCollection[T]) insert(items ...T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, items...)
}

func (c *memoryCollection[T]) value(item T, field string) interface{} {
	if field == idField || field == "id" {
		return c.id(item)
	}
	return c.field(item, field)
}

func (c *memoryCollection[T]) find(q repository.Query) ([]T, string, error) {
	s := normalizeSort(q.Sort, c.defaultSort)
	fingerprint := pagination.Fingerprint(q.Filters, s)

	var after *pagination.Cursor
	if q.Cursor != "" {
		cur, err := pagination.Decode(q.Cursor, fingerprint)
		if err != nil {
			return nil, "", err
		}
		after = cur
	}

	c.mu.RLock()
	matched := make([]T, 0, len(c.items))
	for _, item := range c.items {
		if c.matches(item, q.Filters) {
			matched = append(matched, item)
		}
	}
	c.mu.RUnlock()

	sortKey := func(item T) interface{} {
		if s.Field == idField {
			return c.id(item)
		}
		return normalizeValue(c.value(item, s.Field))
	}
	less := func(av interface{}, aid string, bv interface{}, bid string) bool {
		cmp := compareValues(av, bv)
		if cmp == 0 {
			cmp = strings.Compare(aid, bid)
		}
		if s.Desc() {
			return cmp > 0
		}
		return cmp < 0
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return less(sortKey(matched[i]), c.id(matched[i]), sortKey(matched[j]), c.id(matched[j]))
	})

	if after != nil {
		cursorValue, _ := after.SortValue()
		if s.Field == idField {
			cursorValue = after.ID
		}
		start := len(matched)
		for i, item := range matched {
			if less(cursorValue, after.ID, sortKey(item), c.id(item)) {
				start = i
				break
			}
		}
		matched = matched[start:]
	}

	limit := q.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if len(matched) <= limit {
		return matched, "", nil
	}
	page := matched[:limit]
	last := page[limit-1]
	return page, pagination.Encode(fingerprint, sortKey(last), c.id(last)), nil
}

func (c *memoryCollection[T]) matches(item T, preds []repository.Predicate) bool {
	for _, p := range preds {
		v := normalizeValue(c.value(item, p.Field))
		want := normalizeValue(p.Value)
		if v == nil {
			return false
		}
		cmp := compareValues(v, want)
		switch p.Op {
		case repository.OpEq:
			if cmp != 0 {
				return false
			}
		case repository.OpGt:
			if cmp <= 0 {
				return false
			}
		case repository.OpGte:
			if cmp < 0 {
				return false
			}
		case repository.OpLt:
			if cmp >= 0 {
				return false
			}
		case repository.OpLte:
			if cmp > 0 {
				return false
			}
		}
	}
	return true
}

// normalizeValue reduces field values to nil, time.Time, float64 or string
func normalizeValue(v interface{}) interface{} {
	switch x := v.(type) {
	case nil:
		return nil
	case *time.Time:
		if x == nil {
			return nil
		}
		return *x
	case time.Time:
		return x
	case entity.Amount:
		return float64(x)
	case float64:
		return x
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case entity.EntityType:
		return string(x)
	case string:
		return x
	default:
		return asString(x)
	}
}

// compareValues orders nil first, then by type-specific comparison
func compareValues(a, b interface{}) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}
	switch x := a.(type) {
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y)
		}
	case float64:
		if y, ok := b.(float64); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	}
	return strings.Compare(asString(a), asString(b))
}

// MemoryRecordRepository is an in-memory booking source
type MemoryRecordRepository struct {
	coll       *memoryCollection[entity.Record]
	entityType entity.EntityType
	// Err, when set, is returned by every fetch.
	Err error
}

// NewMemoryRecordRepository creates an in-memory source for entityType
func NewMemoryRecordRepository(entityType entity.EntityType, records ...entity.Record) *MemoryRecordRepository {
	r := &MemoryRecordRepository{
		coll: &memoryCollection[entity.Record]{
			id: func(r entity.Record) string { return r.ID },
			field: func(r entity.Record, field string) interface{} {
				switch field {
				case "customerId":
					return r.CustomerID
				case "employeeId":
					return r.EmployeeID
				case "createdAt":
					return r.CreatedAt
				case "status":
					return r.Status
				default:
					return r.Extra[field]
				}
			},
			defaultSort: repository.Sort{Field: idField, Direction: repository.SortAsc},
		},
		entityType: entityType,
	}
	r.Insert(records...)
	return r
}

// Insert adds bookings, tagging them with the source's entity type
func (r *MemoryRecordRepository) Insert(records ...entity.Record) {
	for i := range records {
		records[i].EntityType = r.entityType
	}
	r.coll.insert(records...)
}

// FetchRecords returns one page of bookings
func (r *MemoryRecordRepository) FetchRecords(ctx context.Context, q repository.Query) (*repository.RecordPage, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	items, next, err := r.coll.find(q)
	if err != nil {
		return nil, err
	}
	return &repository.RecordPage{Items: items, NextCursor: next}, nil
}

// MemoryCustomerRepository is an in-memory customer source
type MemoryCustomerRepository struct {
	coll *memoryCollection[entity.Customer]
	Err  error
}

// NewMemoryCustomerRepository creates an in-memory customer source
func NewMemoryCustomerRepository(customers ...entity.Customer) *MemoryCustomerRepository {
	r := &MemoryCustomerRepository{
		coll: &memoryCollection[entity.Customer]{
			id: func(c entity.Customer) string { return c.ID },
			field: func(c entity.Customer, field string) interface{} {
				switch field {
				case "name":
					return c.Name
				case "country":
					return c.Country
				case "createdAt":
					return c.CreatedAt
				default:
					return nil
				}
			},
			defaultSort: repository.Sort{Field: idField, Direction: repository.SortAsc},
		},
	}
	r.coll.insert(customers...)
	return r
}

// Insert adds customers
func (r *MemoryCustomerRepository) Insert(customers ...entity.Customer) {
	r.coll.insert(customers...)
}

// FetchCustomers returns one page of customers
func (r *MemoryCustomerRepository) FetchCustomers(ctx context.Context, q repository.Query) (*repository.CustomerPage, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	items, next, err := r.coll.find(q)
	if err != nil {
		return nil, err
	}
	return &repository.CustomerPage{Items: items, NextCursor: next}, nil
}

// MemoryPaymentRepository is an in-memory payment source
type MemoryPaymentRepository struct {
	coll *memoryCollection[entity.PaymentEntry]
	Err  error
}

// NewMemoryPaymentRepository creates an in-memory payment source
func NewMemoryPaymentRepository(payments ...entity.PaymentEntry) *MemoryPaymentRepository {
	r := &MemoryPaymentRepository{
		coll: &memoryCollection[entity.PaymentEntry]{
			id: func(p entity.PaymentEntry) string { return p.ID },
			field: func(p entity.PaymentEntry, field string) interface{} {
				switch field {
				case "customerId":
					return p.CustomerID
				case "bookingId":
					return p.BookingID
				case "method":
					return p.Method
				case "status":
					return p.Status
				case "paidAt":
					return p.PaidAt
				default:
					return nil
				}
			},
			defaultSort: repository.Sort{Field: idField, Direction: repository.SortAsc},
		},
	}
	r.coll.insert(payments...)
	return r
}

// Insert adds payments
func (r *MemoryPaymentRepository) Insert(payments ...entity.PaymentEntry) {
	r.coll.insert(payments...)
}

// FetchPayments returns one page of payments
func (r *MemoryPaymentRepository) FetchPayments(ctx context.Context, q repository.Query) (*repository.PaymentPage, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	items, next, err := r.coll.find(q)
	if err != nil {
		return nil, err
	}
	return &repository.PaymentPage{Items: items, NextCursor: next}, nil
}

// MemoryActivityLogRepository is an in-memory activity log
type MemoryActivityLogRepository struct {
	coll *memoryCollection[entity.ActivityLogEntry]
	Err  error
	// Fetches counts FetchLogs calls.
	Fetches int
}

// NewMemoryActivityLogRepository creates an in-memory activity log
func NewMemoryActivityLogRepository(entries ...entity.ActivityLogEntry) *MemoryActivityLogRepository {
	r := &MemoryActivityLogRepository{
		coll: &memoryCollection[entity.ActivityLogEntry]{
			id: func(e entity.ActivityLogEntry) string { return e.ID },
			field: func(e entity.ActivityLogEntry, field string) interface{} {
				switch field {
				case "actionTime":
					return e.ActionTime
				case "actionType":
					return e.ActionType
				case "category":
					return e.Category
				case "employeeId":
					return e.EmployeeID
				case "employeeName":
					return e.EmployeeName
				default:
					return nil
				}
			},
			defaultSort: repository.Sort{Field: "actionTime", Direction: repository.SortDesc},
		},
	}
	r.coll.insert(entries...)
	return r
}

// Insert appends log entries
func (r *MemoryActivityLogRepository) Insert(entries ...entity.ActivityLogEntry) {
	r.coll.insert(entries...)
}

// FetchLogs returns one page of log entries
func (r *MemoryActivityLogRepository) FetchLogs(ctx context.Context, q repository.Query) (*repository.ActivityLogPage, error) {
	r.Fetches++
	if r.Err != nil {
		return nil, r.Err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	items, next, err := r.coll.find(q)
	if err != nil {
		return nil, err
	}
	return &repository.ActivityLogPage{Items: items, NextCursor: next}, nil
}
