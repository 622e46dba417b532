// Package docstore streams sampled documents out of a MongoDB deployment.
// Documents decode into bson.M so the merge engine observes the driver's
// runtime types (primitive.ObjectID, primitive.DateTime, ...) directly.
package docstore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/docsift/docsift/scanner"
)

var ErrNoDatabase = errors.New("docstore: no database selected")

type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ scanner.Source = (*Store)(nil)

// Connect opens and pings a deployment. The caller owns the context deadline.
func Connect(ctx context.Context, uri string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", uri, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping %s: %w", uri, err)
	}
	return &Store{client: client}, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Use selects the database every later call operates on.
func (s *Store) Use(name string) error {
	if name == "" {
		return ErrNoDatabase
	}
	s.db = s.client.Database(name)
	return nil
}

func (s *Store) Collections(ctx context.Context) ([]string, error) {
	if s.db == nil {
		return nil, ErrNoDatabase
	}
	return s.db.ListCollectionNames(ctx, bson.D{})
}

// Documents walks one collection's cursor in natural order, applying the
// sampling limit on the cursor itself and the stride on delivery.
func (s *Store) Documents(ctx context.Context, collection string, sampling scanner.Sampling, fn func(doc map[string]any) error) error {
	if s.db == nil {
		return ErrNoDatabase
	}

	findOpts := options.Find()
	if sampling.Limit > 0 {
		findOpts.SetLimit(int64(sampling.Limit))
	}

	cur, err := s.db.Collection(collection).Find(ctx, bson.D{}, findOpts)
	if err != nil {
		return fmt.Errorf("find: %w", err)
	}
	defer cur.Close(ctx)

	for i := 0; cur.Next(ctx); i++ {
		if !sampling.Keep(i) {
			continue
		}
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return fmt.Errorf("decode document: %w", err)
		}
		if err := fn(map[string]any(doc)); err != nil {
			return err
		}
	}
	if err := cur.Err(); err != nil {
		return fmt.Errorf("cursor: %w", err)
	}
	return nil
}
