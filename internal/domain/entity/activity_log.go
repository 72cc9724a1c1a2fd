package entity

import "time"

// Action types written to the activity log
const (
	ActionLogin  = "login"
	ActionLogout = "logout"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionView   = "view"
	ActionExport = "export"
)

// Activity log categories
const (
	CategoryAuth     = "auth"
	CategoryCustomer = "customer"
	CategoryFlight   = "flight"
	CategoryHotel    = "hotel"
	CategoryVisa     = "visa"
	CategoryTour     = "tour"
	CategoryPayment  = "payment"
	CategoryReport   = "report"
	CategorySystem   = "system"
)

// KnownActionTypes is the action type domain reported even when empty
var KnownActionTypes = []string{
	ActionLogin, ActionLogout, ActionCreate, ActionUpdate, ActionDelete, ActionView, ActionExport,
}

// KnownCategories is the category domain reported even when empty
var KnownCategories = []string{
	CategoryAuth, CategoryCustomer, CategoryFlight, CategoryHotel, CategoryVisa,
	CategoryTour, CategoryPayment, CategoryReport, CategorySystem,
}

// ActivityLogEntry is an append-only audit entry keyed by ActionTime
type ActivityLogEntry struct {
	ID           string                 `json:"id" bson:"-"`
	ActionTime   time.Time              `json:"actionTime" bson:"actionTime"`
	ActionType   string                 `json:"actionType" bson:"actionType"`
	Category     string                 `json:"category" bson:"category"`
	EmployeeID   string                 `json:"employeeId" bson:"employeeId"`
	EmployeeName string                 `json:"employeeName" bson:"employeeName"`
	Description  string                 `json:"description,omitempty" bson:"description,omitempty"`
	ClientInfo   map[string]interface{} `json:"clientInfo,omitempty" bson:"clientInfo,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty" bson:"metadata,omitempty"`
}
