package db

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Document is one raw record from the document store: the assigned id plus the
// loosely-typed field map. Nothing beyond the mapping layer should touch Data.
type Document struct {
	ID   string
	Data map[string]any
}

// Filter is a single field constraint. A zero Filter matches every document.
// Equality against an array-valued field doubles as "array contains" (the
// store evaluates element membership for array fields).
type Filter struct {
	Field string
	Value any
}

// Source is the narrow read surface this service needs from the document
// store. Implementations must be safe for concurrent use. Get returns
// (nil, nil) when no document has the given id.
type Source interface {
	Find(ctx context.Context, collection string, filter Filter, limit int) ([]Document, error)
	Get(ctx context.Context, collection, id string) (*Document, error)
	GetAll(ctx context.Context, collection string, ids []string) ([]Document, error)
	IncrementField(ctx context.Context, collection, id, field string, delta int) error
}

type mongoSource struct {
	db *mongo.Database
}

// Connect opens a client against the configured store and verifies it with a
// ping before returning a Source over the named database.
func Connect(ctx context.Context, uri, database string) (Source, error) {
	// DefaultDocumentM keeps nested documents as maps so the normalizers see
	// the same shapes the fakes use in tests.
	opts := options.Client().ApplyURI(uri).SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("error connecting to document store: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("error pinging document store: %w", err)
	}

	return &mongoSource{db: client.Database(database)}, nil
}

func (s *mongoSource) Find(ctx context.Context, collection string, filter Filter, limit int) ([]Document, error) {
	query := bson.M{}
	if filter.Field != "" {
		query[filter.Field] = filter.Value
	}

	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := s.db.Collection(collection).Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []Document
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, err
		}
		docs = append(docs, toDocument(raw))
	}
	return docs, cursor.Err()
}

func (s *mongoSource) Get(ctx context.Context, collection, id string) (*Document, error) {
	var raw bson.M
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&raw)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	doc := toDocument(raw)
	return &doc, nil
}

func (s *mongoSource) GetAll(ctx context.Context, collection string, ids []string) ([]Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	cursor, err := s.db.Collection(collection).Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []Document
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, err
		}
		docs = append(docs, toDocument(raw))
	}
	return docs, cursor.Err()
}

func (s *mongoSource) IncrementField(ctx context.Context, collection, id, field string, delta int) error {
	_, err := s.db.Collection(collection).UpdateByID(ctx, id, bson.M{"$inc": bson.M{field: delta}})
	return err
}

func toDocument(raw bson.M) Document {
	doc := Document{Data: map[string]any(raw)}
	if id, ok := raw["_id"].(string); ok {
		doc.ID = id
	} else if raw["_id"] != nil {
		doc.ID = fmt.Sprint(raw["_id"])
	}
	delete(doc.Data, "_id")
	return doc
}
