package entity

import (
	"math"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"
)

// Amount is a monetary value in the agency's single currency. Values that are
// absent, null or not numeric decode to zero instead of failing the document.
type Amount float64

// Float returns the amount as float64
func (a Amount) Float() float64 {
	return float64(a)
}

// UnmarshalBSONValue accepts doubles, integers, decimals and numeric strings.
func (a *Amount) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	v := bsoncore.Value{Type: t, Data: data}
	switch t {
	case bsontype.Double:
		*a = Amount(v.Double())
	case bsontype.Int32:
		*a = Amount(v.Int32())
	case bsontype.Int64:
		*a = Amount(v.Int64())
	case bsontype.Decimal128:
		f, err := strconv.ParseFloat(v.Decimal128().String(), 64)
		if err != nil {
			f = 0
		}
		*a = Amount(f)
	case bsontype.String:
		*a = ParseAmount(v.StringValue())
	default:
		*a = 0
	}
	*a = a.finite()
	return nil
}

func (a Amount) finite() Amount {
	f := float64(a)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return a
}

// ParseAmount parses a numeric string, returning zero when it is not a number.
func ParseAmount(s string) Amount {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return Amount(f).finite()
}
