package repository

import "fmt"

// Operator is a comparison applied to one top-level document field
type Operator string

const (
	OpEq  Operator = "=="
	OpGt  Operator = ">"
	OpGte Operator = ">="
	OpLt  Operator = "<"
	OpLte Operator = "<="
)

// SortDirection orders query results
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Predicate is one conjunct of a query filter. Only top-level fields are
// supported; stores cannot filter inside nested arrays or free-form bags.
type Predicate struct {
	Field string
	Op    Operator
	Value interface{}
}

func (p Predicate) String() string {
	return fmt.Sprintf("%s%s%v", p.Field, p.Op, p.Value)
}

// Eq builds an equality predicate
func Eq(field string, value interface{}) Predicate {
	return Predicate{Field: field, Op: OpEq, Value: value}
}

// Gte builds an inclusive lower bound
func Gte(field string, value interface{}) Predicate {
	return Predicate{Field: field, Op: OpGte, Value: value}
}

// Lte builds an inclusive upper bound
func Lte(field string, value interface{}) Predicate {
	return Predicate{Field: field, Op: OpLte, Value: value}
}

// Sort is the single ordering key of a query. Ties are broken by document id
// in the same direction.
type Sort struct {
	Field     string
	Direction SortDirection
}

// Desc reports whether the sort is descending
func (s Sort) Desc() bool {
	return s.Direction == SortDesc
}

// Query is a filtered, sorted, limited read from one collection. Cursor is an
// opaque token from a previous page of the same Filters and Sort.
type Query struct {
	Filters []Predicate
	Sort    Sort
	Limit   int
	Cursor  string
}
