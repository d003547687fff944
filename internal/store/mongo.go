package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// MongoStore maps each collection name onto a MongoDB collection. Documents
// carry their own uuid in the "id" field so identifiers look the same across
// backends; Mongo's _id stays internal.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongoStore connects to MongoDB and selects the given database.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}
	return &MongoStore{client: client, db: client.Database(database)}, nil
}

func (s *MongoStore) List(ctx context.Context, collection string, order OrderSpec, limit int) ([]Document, error) {
	return s.Find(ctx, collection, nil, order, limit)
}

func (s *MongoStore) Find(ctx context.Context, collection string, filter Filter, order OrderSpec, limit int) ([]Document, error) {
	field := order.Field
	if field == "" {
		field = CreatedDateField
	}
	dir := 1
	if order.Desc {
		dir = -1
	}

	opts := options.Find().SetSort(bson.M{field: dir})
	if limit > 0 {
		opts = opts.SetLimit(int64(limit))
	}

	cursor, err := s.db.Collection(collection).Find(ctx, toBSON(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer cursor.Close(ctx)

	docs := make([]Document, 0)
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, fmt.Errorf("failed to decode document: %w", err)
		}
		docs = append(docs, fromBSON(raw))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("error iterating documents: %w", err)
	}
	return docs, nil
}

func (s *MongoStore) Get(ctx context.Context, collection, id string) (Document, error) {
	var raw bson.M
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"id": id}).Decode(&raw)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return fromBSON(raw), nil
}

func (s *MongoStore) Create(ctx context.Context, collection string, data map[string]any) (Document, error) {
	doc := stamped(data)
	if _, err := s.db.Collection(collection).InsertOne(ctx, toBSON(map[string]any(doc))); err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}
	return doc, nil
}

func (s *MongoStore) Update(ctx context.Context, collection, id string, patch map[string]any) (Document, error) {
	update := bson.M{"$set": toBSON(withoutID(patch))}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var raw bson.M
	err := s.db.Collection(collection).
		FindOneAndUpdate(ctx, bson.M{"id": id}, update, opts).
		Decode(&raw)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update document: %w", err)
	}
	return fromBSON(raw), nil
}

func (s *MongoStore) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"id": id}); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

func (s *MongoStore) Upsert(ctx context.Context, collection string, filter Filter, data map[string]any) (Document, error) {
	onInsert := stamped(nil)
	update := bson.M{
		"$setOnInsert": bson.M{
			"id":             onInsert.ID(),
			CreatedDateField: onInsert[CreatedDateField],
		},
	}
	// Mongo rejects an empty $set document.
	if set := toBSON(withoutID(data)); len(set) > 0 {
		update["$set"] = set
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var raw bson.M
	err := s.db.Collection(collection).
		FindOneAndUpdate(ctx, toBSON(filter), update, opts).
		Decode(&raw)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert document: %w", err)
	}
	return fromBSON(raw), nil
}

func (s *MongoStore) CreateExclusive(ctx context.Context, collection, flagField string, data map[string]any) (Document, error) {
	withFlag := make(map[string]any, len(data)+1)
	for k, v := range data {
		withFlag[k] = v
	}
	withFlag[flagField] = true
	doc := stamped(withFlag)

	// Clear and insert must not interleave with a concurrent call, or two
	// documents end up flagged. A session transaction serializes them.
	sess, err := s.client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(ctx context.Context) (any, error) {
		coll := s.db.Collection(collection)
		if _, err := coll.UpdateMany(ctx,
			bson.M{flagField: true},
			bson.M{"$set": bson.M{flagField: false}},
		); err != nil {
			return nil, fmt.Errorf("failed to clear active flag: %w", err)
		}
		if _, err := coll.InsertOne(ctx, toBSON(map[string]any(doc))); err != nil {
			return nil, fmt.Errorf("failed to create document: %w", err)
		}
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *MongoStore) Close() {
	_ = s.client.Disconnect(context.Background())
}

func toBSON(m map[string]any) bson.M {
	out := bson.M{}
	for k, v := range m {
		out[k] = v
	}
	return out
}

func fromBSON(raw bson.M) Document {
	doc := make(Document, len(raw))
	for k, v := range raw {
		if k == "_id" {
			continue
		}
		doc[k] = v
	}
	return doc
}
