// Package pagination issues and verifies the opaque keyset cursors shared by
// every store adapter.
package pagination

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"agency-report-service/internal/domain"
	"agency-report-service/internal/domain/repository"
)

// Sort value kinds carried inside a cursor
const (
	KindNull   = "null"
	KindTime   = "time"
	KindString = "string"
	KindNumber = "number"
)

// Cursor is the decoded form of a page token: the sort value and id of the
// last item returned, bound to the fingerprint of the issuing query.
type Cursor struct {
	Fingerprint string `json:"f"`
	Kind        string `json:"k"`
	Value       string `json:"v,omitempty"`
	ID          string `json:"id"`
}

// Fingerprint identifies a filter+sort configuration. Limit is excluded so a
// caller may change the page size while paginating.
func Fingerprint(filters []repository.Predicate, s repository.Sort) string {
	parts := make([]string, 0, len(filters)+1)
	for _, p := range filters {
		kind, value := encodeValue(p.Value)
		parts = append(parts, fmt.Sprintf("%s|%s|%s|%s", p.Field, p.Op, kind, value))
	}
	sort.Strings(parts)
	dir := s.Direction
	if dir == "" {
		dir = repository.SortAsc
	}
	parts = append(parts, fmt.Sprintf("sort|%s|%s", s.Field, dir))

	sum := sha256.Sum256([]byte(strings.Join(parts, "\n")))
	return hex.EncodeToString(sum[:8])
}

// Encode builds the token for the item with the given sort value and id.
func Encode(fingerprint string, sortValue interface{}, id string) string {
	kind, value := encodeValue(sortValue)
	c := Cursor{Fingerprint: fingerprint, Kind: kind, Value: value, ID: id}
	raw, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(raw)
}

// Decode parses a token and checks that it was issued for fingerprint.
func Decode(token, fingerprint string) (*Cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedCursor, err)
	}
	var c Cursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedCursor, err)
	}
	if c.Fingerprint == "" || c.ID == "" {
		return nil, fmt.Errorf("%w: missing fields", domain.ErrMalformedCursor)
	}
	if c.Fingerprint != fingerprint {
		return nil, &domain.CursorMismatchError{Expected: fingerprint, Got: c.Fingerprint}
	}
	if _, err := c.SortValue(); err != nil {
		return nil, err
	}
	return &c, nil
}

// SortValue restores the typed sort value; nil for KindNull.
func (c *Cursor) SortValue() (interface{}, error) {
	switch c.Kind {
	case KindNull:
		return nil, nil
	case KindTime:
		t, err := time.Parse(time.RFC3339Nano, c.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrMalformedCursor, err)
		}
		return t, nil
	case KindString:
		return c.Value, nil
	case KindNumber:
		f, err := strconv.ParseFloat(c.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrMalformedCursor, err)
		}
		return f, nil
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", domain.ErrMalformedCursor, c.Kind)
	}
}

func encodeValue(v interface{}) (string, string) {
	switch x := v.(type) {
	case nil:
		return KindNull, ""
	case time.Time:
		return KindTime, x.UTC().Format(time.RFC3339Nano)
	case *time.Time:
		if x == nil {
			return KindNull, ""
		}
		return KindTime, x.UTC().Format(time.RFC3339Nano)
	case string:
		return KindString, x
	case float64:
		return KindNumber, strconv.FormatFloat(x, 'g', -1, 64)
	case float32:
		return KindNumber, strconv.FormatFloat(float64(x), 'g', -1, 64)
	case int:
		return KindNumber, strconv.Itoa(x)
	case int32:
		return KindNumber, strconv.FormatInt(int64(x), 10)
	case int64:
		return KindNumber, strconv.FormatInt(x, 10)
	case fmt.Stringer:
		return KindString, x.String()
	default:
		return KindString, fmt.Sprint(x)
	}
}
