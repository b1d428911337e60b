package docstore

import (
	"context"
	"encoding/json"
	"fmt"

	custom_error "itinventory/pkg/errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Bookkeeping fields stored next to the document data. They never leave
// this file.
const (
	mongoFieldID        = "_id"
	mongoFieldPrincipal = "_principal"
	mongoFieldOrder     = "_order"
)

// MongoStore keeps each collection in a mongo collection of the same name.
// Batches need a replica set because they run in a transaction.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewMongoStore(client *mongo.Client, database string) *MongoStore {
	return &MongoStore{client: client, db: client.Database(database)}
}

func (s *MongoStore) List(ctx context.Context, namespace string, collection Collection) ([]Document, error) {
	cursor, err := s.db.Collection(string(collection)).Find(
		ctx,
		bson.M{mongoFieldPrincipal: namespace},
		options.Find().SetSort(bson.D{{Key: mongoFieldOrder, Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	defer cursor.Close(ctx)

	var docs []Document
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode %s: %w", collection, err)
		}
		doc, err := fromBSON(raw)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", collection, err)
		}
		docs = append(docs, doc)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	return docs, nil
}

func (s *MongoStore) Add(ctx context.Context, namespace string, collection Collection, data json.RawMessage) (string, error) {
	id := primitive.NewObjectID().Hex()
	if err := s.insert(ctx, namespace, collection, id, data); err != nil {
		return "", err
	}
	return id, nil
}

func (s *MongoStore) Update(ctx context.Context, namespace string, collection Collection, id string, patch json.RawMessage) error {
	set, err := toBSON(patch)
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	for key := range set {
		if key == mongoFieldID || key == mongoFieldPrincipal || key == mongoFieldOrder {
			delete(set, key)
		}
	}

	result, err := s.db.Collection(string(collection)).UpdateOne(
		ctx,
		bson.M{mongoFieldID: id, mongoFieldPrincipal: namespace},
		bson.M{"$set": set},
	)
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, namespace string, collection Collection, id string) error {
	result, err := s.db.Collection(string(collection)).DeleteOne(ctx, bson.M{mongoFieldID: id, mongoFieldPrincipal: namespace})
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	return nil
}

func (s *MongoStore) Commit(ctx context.Context, namespace string, batch *Batch) error {
	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		for _, op := range batch.ops {
			var err error
			switch op.Kind {
			case OpInsert:
				err = s.insert(sc, namespace, op.Collection, op.ID, op.Data)
			case OpUpdate:
				err = s.Update(sc, namespace, op.Collection, op.ID, op.Data)
			case OpDelete:
				err = s.Delete(sc, namespace, op.Collection, op.ID)
			case OpDeleteAll:
				_, err = s.db.Collection(string(op.Collection)).DeleteMany(sc, bson.M{mongoFieldPrincipal: namespace})
			}
			if err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) insert(ctx context.Context, namespace string, collection Collection, id string, data json.RawMessage) error {
	doc, err := toBSON(data)
	if err != nil {
		return fmt.Errorf("add %s: %w", collection, err)
	}
	doc[mongoFieldID] = id
	doc[mongoFieldPrincipal] = namespace
	doc[mongoFieldOrder] = primitive.NewObjectID()

	if _, err := s.db.Collection(string(collection)).InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return custom_error.Wrap(custom_error.CodeConflict, err, "document id already used")
		}
		return fmt.Errorf("add %s: %w", collection, err)
	}
	return nil
}

func toBSON(data json.RawMessage) (bson.M, error) {
	doc := bson.M{}
	if err := bson.UnmarshalExtJSON(data, false, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func fromBSON(raw bson.M) (Document, error) {
	id, _ := raw[mongoFieldID].(string)
	delete(raw, mongoFieldID)
	delete(raw, mongoFieldPrincipal)
	delete(raw, mongoFieldOrder)

	data, err := bson.MarshalExtJSON(raw, false, false)
	if err != nil {
		return Document{}, err
	}
	return Document{ID: id, Data: data}, nil
}
