package db

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"blog-api/config"
)

// DB is the process-scoped store handle. It is created once at startup and
// handed to whatever needs it.
type DB struct {
	client   *mongo.Client
	database *mongo.Database
	posts    string
}

// Connect dials MongoDB, verifies the connection and ensures indexes.
func Connect(ctx context.Context, cfg config.MongoConfig) (*DB, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	cl, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := cl.Ping(ctx, readpref.Primary()); err != nil {
		_ = cl.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	d := &DB{client: cl, database: cl.Database(cfg.Database), posts: cfg.Collection}
	if err := EnsureIndexes(ctx, d.Posts()); err != nil {
		_ = cl.Disconnect(context.Background())
		return nil, fmt.Errorf("ensure indexes: %w", err)
	}
	return d, nil
}

func (d *DB) Client() *mongo.Client     { return d.client }
func (d *DB) Database() *mongo.Database { return d.database }

// Posts returns the blog post collection.
func (d *DB) Posts() *mongo.Collection { return d.database.Collection(d.posts) }

// Ping runs the ping command against the configured database.
func (d *DB) Ping(ctx context.Context) error {
	return d.database.RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
}

func (d *DB) Close(ctx context.Context) error {
	return d.client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes the post queries rely on.
// uniq_slug is the source of truth for slug uniqueness.
func EnsureIndexes(ctx context.Context, posts *mongo.Collection) error {
	_, err := posts.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetName("uniq_slug").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_created_at_desc"),
		},
	})
	return err
}
