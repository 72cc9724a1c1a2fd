package repository

import (
	"fmt"
	"time"

	"agency-report-service/internal/domain/entity"
)

// Loose decoding of schemaless documents (Firestore maps, in-memory fixtures).
// Anything that cannot be read as the wanted type becomes the zero value.

func asString(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

func asAmount(v interface{}) entity.Amount {
	switch x := v.(type) {
	case float64:
		return entity.Amount(x)
	case float32:
		return entity.Amount(x)
	case int:
		return entity.Amount(x)
	case int32:
		return entity.Amount(x)
	case int64:
		return entity.Amount(x)
	case string:
		return entity.ParseAmount(x)
	default:
		return 0
	}
}

func asTime(v interface{}) *time.Time {
	var t time.Time
	switch x := v.(type) {
	case time.Time:
		t = x
	case *time.Time:
		if x == nil {
			return nil
		}
		t = *x
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, x)
		if err != nil {
			return nil
		}
		t = parsed
	case int64:
		t = time.UnixMilli(x)
	case float64:
		t = time.UnixMilli(int64(x))
	default:
		return nil
	}
	if t.IsZero() {
		return nil
	}
	return &t
}

func asMap(v interface{}) map[string]interface{} {
	if m, ok := v.(map[string]interface{}); ok {
		return m
	}
	return nil
}

func recordFromMap(id string, et entity.EntityType, data map[string]interface{}) entity.Record {
	rec := entity.Record{
		ID:         id,
		EntityType: et,
		CustomerID: asString(data["customerId"]),
		EmployeeID: asString(data["employeeId"]),
		CreatedAt:  asTime(data["createdAt"]),
		Status:     asString(data["status"]),
	}
	if p := asMap(data["payment"]); p != nil {
		rec.Payment = entity.Payment{Price: asAmount(p["price"]), Cost: asAmount(p["cost"])}
	}
	for k, v := range data {
		switch k {
		case "customerId", "employeeId", "createdAt", "status", "payment":
			continue
		}
		if rec.Extra == nil {
			rec.Extra = make(map[string]interface{})
		}
		rec.Extra[k] = v
	}
	return rec
}

func customerFromMap(id string, data map[string]interface{}) entity.Customer {
	return entity.Customer{
		ID:        id,
		Name:      asString(data["name"]),
		Email:     asString(data["email"]),
		Phone:     asString(data["phone"]),
		Country:   asString(data["country"]),
		CreatedAt: asTime(data["createdAt"]),
	}
}

func paymentFromMap(id string, data map[string]interface{}) entity.PaymentEntry {
	return entity.PaymentEntry{
		ID:         id,
		CustomerID: asString(data["customerId"]),
		BookingID:  asString(data["bookingId"]),
		Amount:     asAmount(data["amount"]),
		Method:     asString(data["method"]),
		Status:     asString(data["status"]),
		PaidAt:     asTime(data["paidAt"]),
	}
}

func logFromMap(id string, data map[string]interface{}) entity.ActivityLogEntry {
	entry := entity.ActivityLogEntry{
		ID:           id,
		ActionType:   asString(data["actionType"]),
		Category:     asString(data["category"]),
		EmployeeID:   asString(data["employeeId"]),
		EmployeeName: asString(data["employeeName"]),
		Description:  asString(data["description"]),
		ClientInfo:   asMap(data["clientInfo"]),
		Metadata:     asMap(data["metadata"]),
	}
	if t := asTime(data["actionTime"]); t != nil {
		entry.ActionTime = *t
	}
	return entry
}
