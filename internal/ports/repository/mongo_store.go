package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const mongoIDField = "_id"

// MongoStore is a DocumentStore backed by a MongoDB collection. The storage
// identity is kept both as _id and as the id attribute.
type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(db *mongo.Database, collection string) *MongoStore {
	return &MongoStore{coll: db.Collection(collection)}
}

func (s *MongoStore) Get(ctx context.Context, id string) (Document, error) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.documentId", id))

	var raw bson.M
	err := s.coll.FindOne(ctx, bson.D{{Key: mongoIDField, Value: id}}).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return fromBSON(raw)
}

func (s *MongoStore) Query(ctx context.Context, filter Filter) ([]Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "$natural", Value: 1}})

	cursor, err := s.coll.Find(ctx, buildMongoFilter(filter), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var raws []bson.M
	if err := cursor.All(ctx, &raws); err != nil {
		return nil, err
	}

	docs := make([]Document, 0, len(raws))
	for _, raw := range raws {
		doc, err := fromBSON(raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *MongoStore) Create(ctx context.Context, doc Document) error {
	id := doc.ID()
	if id == "" {
		return fmt.Errorf("document has no %q attribute", IDField)
	}
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.documentId", id))

	_, err := s.coll.InsertOne(ctx, toBSON(id, doc))
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("create %q: %w", id, ErrConflict)
	}
	return err
}

func (s *MongoStore) Replace(ctx context.Context, id string, doc Document) error {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.documentId", id))

	res, err := s.coll.ReplaceOne(ctx, bson.D{{Key: mongoIDField, Value: id}}, toBSON(id, doc))
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.documentId", id))

	res, err := s.coll.DeleteOne(ctx, bson.D{{Key: mongoIDField, Value: id}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// buildMongoFilter compiles filter into a BSON query. Substring and prefix
// matches use anchored, quoted regular expressions.
func buildMongoFilter(filter Filter) bson.D {
	if len(filter.Conditions) == 0 {
		return bson.D{}
	}

	clauses := make(bson.A, 0, len(filter.Conditions))
	for _, c := range filter.Conditions {
		var match any
		switch c.Op {
		case OpContains:
			s, _ := c.Value.(string)
			match = primitive.Regex{Pattern: regexp.QuoteMeta(s)}
		case OpPrefix:
			s, _ := c.Value.(string)
			match = primitive.Regex{Pattern: "^" + regexp.QuoteMeta(s)}
		default:
			match = c.Value
		}
		clauses = append(clauses, bson.D{{Key: c.Field, Value: match}})
	}
	return bson.D{{Key: "$and", Value: clauses}}
}

func toBSON(id string, doc Document) bson.M {
	out := make(bson.M, len(doc)+1)
	for k, v := range doc {
		out[k] = v
	}
	out[IDField] = id
	out[mongoIDField] = id
	return out
}

func fromBSON(raw bson.M) (Document, error) {
	delete(raw, mongoIDField)
	b, err := bson.MarshalExtJSON(raw, false, false)
	if err != nil {
		return nil, fmt.Errorf("failed to convert document: %w", err)
	}
	return parseDocument(b)
}
