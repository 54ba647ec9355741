package repositories

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"blog-api/models"
)

// ErrNotFound is returned when no post matches the query.
var ErrNotFound = errors.New("post not found")

// DuplicateKeyError reports a unique index violation on Field.
type DuplicateKeyError struct {
	Field string
	Err   error
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate %s: %v", e.Field, e.Err)
}

func (e *DuplicateKeyError) Unwrap() error { return e.Err }

var dupKeyField = regexp.MustCompile(`dup key: \{ ?"?([A-Za-z0-9_.]+)"?\s*:`)

// wrapWriteErr converts driver errors into repository errors.
func wrapWriteErr(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		field := "slug"
		if m := dupKeyField.FindStringSubmatch(err.Error()); m != nil {
			field = m[1]
		}
		return &DuplicateKeyError{Field: field, Err: err}
	}
	return err
}

type PostRepository struct {
	col *mongo.Collection
}

func NewPostRepository(col *mongo.Collection) *PostRepository {
	return &PostRepository{col: col}
}

// now is truncated to what BSON datetimes can hold so that values returned
// from a write equal the values read back later.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// SearchFilter matches posts whose title or author contains search,
// case-insensitively. An empty search matches everything.
func SearchFilter(search string) bson.M {
	if search == "" {
		return bson.M{}
	}
	re := primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
	return bson.M{
		"$or": []bson.M{
			{"title": re},
			{"author": re},
		},
	}
}

// Insert stores p and sets its ID and timestamps.
func (r *PostRepository) Insert(ctx context.Context, p *models.Post) error {
	ts := now()
	p.ID = primitive.NilObjectID
	p.CreatedAt = ts
	p.UpdatedAt = ts

	res, err := r.col.InsertOne(ctx, p)
	if err != nil {
		return wrapWriteErr(err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		p.ID = oid
	}
	return nil
}

// FindByID returns a post by its ObjectID
func (r *PostRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindBySlug returns a post by its unique slug
func (r *PostRepository) FindBySlug(ctx context.Context, slug string) (*models.Post, error) {
	return r.findOne(ctx, bson.M{"slug": slug})
}

func (r *PostRepository) findOne(ctx context.Context, filter bson.M) (*models.Post, error) {
	var p models.Post
	if err := r.col.FindOne(ctx, filter).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// SlugExists reports whether another post already uses slug.
// A zero excludeID disables the exclusion.
func (r *PostRepository) SlugExists(ctx context.Context, slug string, excludeID primitive.ObjectID) (bool, error) {
	filter := bson.M{"slug": slug}
	if !excludeID.IsZero() {
		filter["_id"] = bson.M{"$ne": excludeID}
	}
	err := r.col.FindOne(ctx, filter, options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

type ListPostsOptions struct {
	Page   int64
	Limit  int64
	Search string
}

// List returns matching posts newest first. Page is 1-based.
func (r *PostRepository) List(ctx context.Context, opt ListPostsOptions) ([]models.Post, error) {
	findOpts := options.Find().SetSort(bson.D{
		{Key: "created_at", Value: -1},
		{Key: "_id", Value: -1},
	})
	if opt.Limit > 0 {
		findOpts.SetLimit(opt.Limit)
		if opt.Page > 1 {
			findOpts.SetSkip((opt.Page - 1) * opt.Limit)
		}
	}

	cur, err := r.col.Find(ctx, SearchFilter(opt.Search), findOpts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	results := make([]models.Post, 0)
	for cur.Next(ctx) {
		var p models.Post
		if err := cur.Decode(&p); err != nil {
			return nil, err
		}
		results = append(results, p)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// Count returns the number of posts List would page through for search.
func (r *PostRepository) Count(ctx context.Context, search string) (int64, error) {
	return r.col.CountDocuments(ctx, SearchFilter(search))
}

// UpdateFields sets the given fields plus updated_at and returns the post
// as it is after the update.
func (r *PostRepository) UpdateFields(ctx context.Context, id primitive.ObjectID, updates map[string]any) (*models.Post, error) {
	set := bson.M{"updated_at": now()}
	for k, v := range updates {
		if strings.HasPrefix(k, "$") || k == "_id" || k == "created_at" {
			continue
		}
		set[k] = v
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p models.Post
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, wrapWriteErr(err)
	}
	return &p, nil
}

// Delete removes a post by id.
func (r *PostRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
