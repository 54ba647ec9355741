package services

import (
	"context"
	"errors"
	"time"

	"github.com/araddon/dateparse"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"blog-api/dto"
	"blog-api/models"
	"blog-api/repositories"
	"blog-api/slug"
	"blog-api/validation"
)

// DefaultLimit is the page size used when the caller gives none.
const DefaultLimit = 6

// PostStore is the persistence surface PostService needs.
// repositories.PostRepository is the MongoDB implementation.
type PostStore interface {
	Insert(ctx context.Context, p *models.Post) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	FindBySlug(ctx context.Context, slug string) (*models.Post, error)
	SlugExists(ctx context.Context, slug string, excludeID primitive.ObjectID) (bool, error)
	List(ctx context.Context, opt repositories.ListPostsOptions) ([]models.Post, error)
	Count(ctx context.Context, search string) (int64, error)
	UpdateFields(ctx context.Context, id primitive.ObjectID, updates map[string]any) (*models.Post, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// PostService encapsulates business logic for posts and DTO mapping
type PostService struct {
	store    PostStore
	validate *validation.Validator
	now      func() time.Time
}

func NewPostService(store PostStore) *PostService {
	return &PostService{
		store:    store,
		validate: validation.New(),
		now:      time.Now,
	}
}

type ListPostsInput struct {
	Page   int
	Limit  int
	Search string
}

// List returns one page of posts matching in.Search, newest first.
func (s *PostService) List(ctx context.Context, in ListPostsInput) ([]dto.PostDTO, error) {
	if in.Page < 1 {
		in.Page = 1
	}
	if in.Limit < 1 {
		in.Limit = DefaultLimit
	}
	items, err := s.store.List(ctx, repositories.ListPostsOptions{
		Page:   int64(in.Page),
		Limit:  int64(in.Limit),
		Search: in.Search,
	})
	if err != nil {
		return nil, storeErr("list posts", err)
	}
	out := make([]dto.PostDTO, 0, len(items))
	for _, p := range items {
		out = append(out, dto.NewPostDTO(p))
	}
	return out, nil
}

// Count uses the same filter as List.
func (s *PostService) Count(ctx context.Context, search string) (int64, error) {
	n, err := s.store.Count(ctx, search)
	if err != nil {
		return 0, storeErr("count posts", err)
	}
	return n, nil
}

// GetByID loads a post by its ObjectID hex and returns a DTO
func (s *PostService) GetByID(ctx context.Context, hexID string) (*dto.PostDTO, error) {
	id, err := primitive.ObjectIDFromHex(hexID)
	if err != nil {
		return nil, ErrNotFound
	}
	p, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr("find post", err)
	}
	d := dto.NewPostDTO(*p)
	return &d, nil
}

func (s *PostService) GetBySlug(ctx context.Context, slugStr string) (*dto.PostDTO, error) {
	p, err := s.store.FindBySlug(ctx, slugStr)
	if err != nil {
		return nil, storeErr("find post by slug", err)
	}
	d := dto.NewPostDTO(*p)
	return &d, nil
}

// Create validates req, fills in date and slug, and stores the post.
func (s *PostService) Create(ctx context.Context, req dto.CreatePostRequest) (*dto.PostDTO, error) {
	var errs validation.Errors
	if err := s.validate.Struct(req); err != nil {
		if !errors.As(err, &errs) {
			return nil, err
		}
	}

	date := s.now().UTC().Truncate(time.Millisecond)
	if req.Date != "" {
		d, err := parseDate(req.Date)
		if err != nil {
			errs = append(errs, dateError()...)
		} else {
			date = d
		}
	}

	postSlug := ""
	if req.Slug != "" {
		postSlug = slug.Slugify(req.Slug)
		if postSlug == "" {
			errs = append(errs, slugError()...)
		}
	}
	if err := validation.Merge(errs); err != nil {
		return nil, err
	}

	if postSlug == "" {
		var err error
		postSlug, err = slug.Unique(ctx, req.Title, s.slugProbe(primitive.NilObjectID))
		if err != nil {
			return nil, storeErr("generate slug", err)
		}
	}

	p := &models.Post{
		Title:   req.Title,
		Slug:    postSlug,
		Author:  req.Author,
		Date:    date,
		Image:   req.Image,
		Summary: req.Summary,
		Content: req.Content,
	}
	if err := s.store.Insert(ctx, p); err != nil {
		return nil, storeErr("insert post", err)
	}
	d := dto.NewPostDTO(*p)
	return &d, nil
}

// Update applies the non-nil fields of req. A new title always regenerates
// the slug; without a title the stored slug is kept unless req.Slug is set.
func (s *PostService) Update(ctx context.Context, hexID string, req dto.UpdatePostRequest) (*dto.PostDTO, error) {
	id, err := primitive.ObjectIDFromHex(hexID)
	if err != nil {
		return nil, ErrNotFound
	}

	var errs validation.Errors
	if err := s.validate.Struct(req); err != nil {
		if !errors.As(err, &errs) {
			return nil, err
		}
	}

	updates := map[string]any{}
	if req.Date != nil {
		d, err := parseDate(*req.Date)
		if err != nil {
			errs = append(errs, dateError()...)
		} else {
			updates["date"] = d
		}
	}
	if req.Slug != nil && req.Title == nil && *req.Slug != "" {
		normalized := slug.Slugify(*req.Slug)
		if normalized == "" {
			errs = append(errs, slugError()...)
		} else {
			updates["slug"] = normalized
		}
	}
	if err := validation.Merge(errs); err != nil {
		return nil, err
	}

	setString(updates, "author", req.Author)
	setString(updates, "image", req.Image)
	setString(updates, "summary", req.Summary)
	setString(updates, "content", req.Content)
	if req.Title != nil {
		updates["title"] = *req.Title
		newSlug, err := slug.Unique(ctx, *req.Title, s.slugProbe(id))
		if err != nil {
			return nil, storeErr("generate slug", err)
		}
		updates["slug"] = newSlug
	}

	p, err := s.store.UpdateFields(ctx, id, updates)
	if err != nil {
		return nil, storeErr("update post", err)
	}
	d := dto.NewPostDTO(*p)
	return &d, nil
}

func (s *PostService) Delete(ctx context.Context, hexID string) error {
	id, err := primitive.ObjectIDFromHex(hexID)
	if err != nil {
		return ErrNotFound
	}
	return storeErr("delete post", s.store.Delete(ctx, id))
}

// slugProbe binds the post being updated so that it never collides with itself.
func (s *PostService) slugProbe(excludeID primitive.ObjectID) slug.ExistsFunc {
	return func(ctx context.Context, candidate string) (bool, error) {
		return s.store.SlugExists(ctx, candidate, excludeID)
	}
}

func setString(updates map[string]any, key string, v *string) {
	if v != nil {
		updates[key] = *v
	}
}

// parseDate accepts the date formats a browser or JSON client commonly sends.
// Strings without a zone are read as UTC.
func parseDate(s string) (time.Time, error) {
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC().Truncate(time.Millisecond), nil
}

func dateError() validation.Errors {
	return validation.Field("date", "date is not a valid date")
}

func slugError() validation.Errors {
	return validation.Field("slug", "slug must contain at least one letter or digit")
}
