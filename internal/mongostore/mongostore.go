// Package mongostore implements docstore.Store on a MongoDB database.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"sebot/internal/docstore"
)

// Store is a read-only view of one MongoDB database.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	logger *slog.Logger
}

// Open connects to uri, verifies the connection and selects database.
func Open(ctx context.Context, uri, database string, timeout time.Duration, logger *slog.Logger) (*Store, error) {
	if database == "" {
		return nil, errors.New("mongo database name is required")
	}

	opts := options.Client().ApplyURI(uri)
	if timeout > 0 {
		opts.SetTimeout(timeout).SetServerSelectionTimeout(timeout)
	}

	logger.Info("Connecting to MongoDB",
		"server", Redact(uri),
		"database", database,
	)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to reach mongo: %w", err)
	}

	return &Store{
		client: client,
		db:     client.Database(database),
		logger: logger,
	}, nil
}

// CollectionNames lists the database's collections.
func (s *Store) CollectionNames(ctx context.Context) ([]string, error) {
	return s.db.ListCollectionNames(ctx, bson.D{})
}

// FindOne returns the first document matching filter in natural order.
func (s *Store) FindOne(ctx context.Context, collection string, filter docstore.Filter) (docstore.Document, bool, error) {
	var doc bson.D
	err := s.db.Collection(collection).FindOne(ctx, Translate(filter)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return docstore.DocumentFromBSON(doc), true, nil
}

// Find returns matching documents in natural order.
func (s *Store) Find(ctx context.Context, collection string, filter docstore.Filter, opts docstore.FindOptions) ([]docstore.Document, error) {
	findOpts := options.Find()
	if opts.Skip > 0 {
		findOpts.SetSkip(opts.Skip)
	}
	if opts.Limit > 0 {
		findOpts.SetLimit(opts.Limit)
	}
	if len(opts.Projection) > 0 {
		projection := bson.D{}
		for _, f := range opts.Projection {
			projection = append(projection, bson.E{Key: f, Value: 1})
		}
		findOpts.SetProjection(projection)
	}

	cursor, err := s.db.Collection(collection).Find(ctx, Translate(filter), findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var raw []bson.D
	if err := cursor.All(ctx, &raw); err != nil {
		return nil, err
	}
	docs := make([]docstore.Document, len(raw))
	for i, d := range raw {
		docs[i] = docstore.DocumentFromBSON(d)
	}
	return docs, nil
}

// Count returns the number of matching documents.
func (s *Store) Count(ctx context.Context, collection string, filter docstore.Filter) (int64, error) {
	return s.db.Collection(collection).CountDocuments(ctx, Translate(filter))
}

// Distinct returns the distinct values of field across matching documents.
func (s *Store) Distinct(ctx context.Context, collection, field string, filter docstore.Filter) ([]docstore.Value, error) {
	raw, err := s.db.Collection(collection).Distinct(ctx, field, Translate(filter))
	if err != nil {
		return nil, err
	}
	values := make([]docstore.Value, len(raw))
	for i, v := range raw {
		values[i] = docstore.FromBSON(v)
	}
	return values, nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Translate converts a docstore filter into a MongoDB query document.
func Translate(f docstore.Filter) bson.D {
	switch x := f.(type) {
	case nil, docstore.All:
		return bson.D{}
	case docstore.Eq:
		return bson.D{{Key: x.Field, Value: docstore.ToBSON(x.Value)}}
	case docstore.In:
		values := make(bson.A, len(x.Values))
		for i, v := range x.Values {
			values[i] = docstore.ToBSON(v)
		}
		return bson.D{{Key: x.Field, Value: bson.D{{Key: "$in", Value: values}}}}
	case docstore.Contains:
		return bson.D{{Key: x.Field, Value: bson.D{
			{Key: "$regex", Value: regexp.QuoteMeta(x.Text)},
			{Key: "$options", Value: "i"},
		}}}
	case docstore.Exists:
		return bson.D{{Key: x.Field, Value: bson.D{{Key: "$exists", Value: true}}}}
	case docstore.And:
		if len(x) == 0 {
			return bson.D{}
		}
		return bson.D{{Key: "$and", Value: translateAll(x)}}
	case docstore.Or:
		if len(x) == 0 {
			// $or rejects an empty array; an empty $in never matches.
			return bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: bson.A{}}}}}
		}
		return bson.D{{Key: "$or", Value: translateAll(x)}}
	case docstore.Not:
		return bson.D{{Key: "$nor", Value: bson.A{Translate(x.Filter)}}}
	}
	return bson.D{}
}

func translateAll(clauses []docstore.Filter) bson.A {
	out := make(bson.A, len(clauses))
	for i, c := range clauses {
		out[i] = Translate(c)
	}
	return out
}

// Redact strips credentials from a connection string for logs and
// manifests.
func Redact(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return "mongodb://(unparseable)"
	}
	u.User = nil
	return u.String()
}
