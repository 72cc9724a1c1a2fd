package repository

import (
	"context"
	"strings"

	"agency-report-service/internal/domain"
	"agency-report-service/internal/domain/repository"
	"agency-report-service/pkg/pagination"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultPageSize = 100
	idField         = "_id"
	objectIDPrefix  = "oid:"
)

// mongoPager runs keyset-paginated finds against one collection
type mongoPager struct {
	collection  *mongo.Collection
	defaultSort repository.Sort
}

// mongoPage is a page of raw documents plus the token for the next one
type mongoPage struct {
	docs       []bson.Raw
	nextCursor string
}

func (p *mongoPager) find(ctx context.Context, q repository.Query) (*mongoPage, error) {
	s := normalizeSort(q.Sort, p.defaultSort)
	fingerprint := pagination.Fingerprint(q.Filters, s)

	filter := buildMongoFilter(q.Filters)
	if q.Cursor != "" {
		c, err := pagination.Decode(q.Cursor, fingerprint)
		if err != nil {
			return nil, err
		}
		value, _ := c.SortValue()
		filter = bson.M{"$and": bson.A{filter, continuationFilter(s, value, c.ID)}}
	}

	limit := q.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}

	// One extra document tells whether another page exists
	opts := options.Find().
		SetSort(mongoSort(s)).
		SetLimit(int64(limit + 1))

	cursor, err := p.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, domain.NewSourceUnavailableError(p.collection.Name(), err)
	}
	defer cursor.Close(ctx)

	docs := make([]bson.Raw, 0, limit+1)
	for cursor.Next(ctx) {
		raw := make(bson.Raw, len(cursor.Current))
		copy(raw, cursor.Current)
		docs = append(docs, raw)
	}
	if err := cursor.Err(); err != nil {
		return nil, domain.NewSourceUnavailableError(p.collection.Name(), err)
	}

	page := &mongoPage{docs: docs}
	if len(docs) > limit {
		page.docs = docs[:limit]
		last := page.docs[limit-1]
		page.nextCursor = pagination.Encode(fingerprint, rawSortValue(last, s.Field), rawID(last))
	}
	return page, nil
}

// ensureIndexes creates the given indexes, ignoring failures the way a
// read-only deployment would report them.
func ensureIndexes(ctx context.Context, collection *mongo.Collection, models []mongo.IndexModel) error {
	if len(models) == 0 {
		return nil
	}
	_, err := collection.Indexes().CreateMany(ctx, models)
	return err
}

func normalizeSort(s, fallback repository.Sort) repository.Sort {
	if s.Field == "" {
		s = fallback
	}
	if s.Field == "" || s.Field == "id" {
		s.Field = idField
	}
	if s.Direction != repository.SortDesc {
		s.Direction = repository.SortAsc
	}
	return s
}

func mongoSort(s repository.Sort) bson.D {
	dir := 1
	if s.Desc() {
		dir = -1
	}
	if s.Field == idField {
		return bson.D{{Key: idField, Value: dir}}
	}
	return bson.D{{Key: s.Field, Value: dir}, {Key: idField, Value: dir}}
}

var mongoOperators = map[repository.Operator]string{
	repository.OpEq:  "$eq",
	repository.OpGt:  "$gt",
	repository.OpGte: "$gte",
	repository.OpLt:  "$lt",
	repository.OpLte: "$lte",
}

// buildMongoFilter compiles a conjunction of top-level predicates. Several
// predicates on one field merge into one operator document.
func buildMongoFilter(preds []repository.Predicate) bson.M {
	byField := make(map[string]bson.M)
	order := make([]string, 0, len(preds))
	for _, p := range preds {
		op, ok := mongoOperators[p.Op]
		if !ok {
			op = "$eq"
		}
		field := p.Field
		if field == "id" {
			field = idField
		}
		ops, seen := byField[field]
		if !seen {
			ops = bson.M{}
			byField[field] = ops
			order = append(order, field)
		}
		ops[op] = p.Value
	}

	filter := bson.M{}
	for _, field := range order {
		ops := byField[field]
		if eq, only := ops["$eq"]; only && len(ops) == 1 {
			filter[field] = eq
			continue
		}
		filter[field] = ops
	}
	return filter
}

// continuationFilter selects documents strictly after (value, id) in sort order.
func continuationFilter(s repository.Sort, value interface{}, id string) bson.M {
	after := "$gt"
	if s.Desc() {
		after = "$lt"
	}
	idValue := cursorIDValue(id)
	if s.Field == idField {
		return bson.M{idField: bson.M{after: idValue}}
	}

	// Missing and null values sort before everything else
	if value == nil {
		sameValue := bson.M{s.Field: nil, idField: bson.M{after: idValue}}
		if s.Desc() {
			return sameValue
		}
		return bson.M{"$or": bson.A{sameValue, bson.M{s.Field: bson.M{"$ne": nil}}}}
	}
	branches := bson.A{
		bson.M{s.Field: bson.M{after: value}},
		bson.M{s.Field: value, idField: bson.M{after: idValue}},
	}
	// $lt never matches across types, and null or missing values come last when descending
	if s.Desc() {
		branches = append(branches, bson.M{s.Field: nil})
	}
	return bson.M{"$or": branches}
}

func rawSortValue(doc bson.Raw, field string) interface{} {
	if field == idField {
		return rawID(doc)
	}
	rv, err := doc.LookupErr(field)
	if err != nil {
		return nil
	}
	switch rv.Type {
	case bsontype.DateTime:
		return rv.Time()
	case bsontype.String:
		return rv.StringValue()
	case bsontype.Double:
		return rv.Double()
	case bsontype.Int32:
		return float64(rv.Int32())
	case bsontype.Int64:
		return float64(rv.Int64())
	case bsontype.Boolean:
		if rv.Boolean() {
			return "true"
		}
		return "false"
	default:
		return nil
	}
}

func rawID(doc bson.Raw) string {
	rv, err := doc.LookupErr(idField)
	if err != nil {
		return ""
	}
	if oid, ok := rv.ObjectIDOK(); ok {
		return objectIDPrefix + oid.Hex()
	}
	if s, ok := rv.StringValueOK(); ok {
		return s
	}
	return rv.String()
}

func cursorIDValue(id string) interface{} {
	if strings.HasPrefix(id, objectIDPrefix) {
		if oid, err := primitive.ObjectIDFromHex(strings.TrimPrefix(id, objectIDPrefix)); err == nil {
			return oid
		}
	}
	return id
}

func decodeID(doc bson.Raw) string {
	return strings.TrimPrefix(rawID(doc), objectIDPrefix)
}
