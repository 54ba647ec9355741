// Package memstore is an in-memory services.PostStore used by tests.
// It enforces slug uniqueness the way the uniq_slug index does.
package memstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"blog-api/models"
	"blog-api/repositories"
)

type Store struct {
	mu    sync.Mutex
	posts map[primitive.ObjectID]models.Post
	clock time.Time

	// Err, when set, is returned by every call.
	Err error
}

func New() *Store {
	return &Store{
		posts: map[primitive.ObjectID]models.Post{},
		clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// tick advances a fake clock so every write gets a distinct timestamp.
func (s *Store) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *Store) slugTaken(slug string, except primitive.ObjectID) bool {
	for id, p := range s.posts {
		if p.Slug == slug && id != except {
			return true
		}
	}
	return false
}

func duplicate(slug string) error {
	return &repositories.DuplicateKeyError{
		Field: "slug",
		Err:   fmt.Errorf("E11000 duplicate key error index: uniq_slug dup key: { slug: %q }", slug),
	}
}

func (s *Store) Insert(_ context.Context, p *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if s.slugTaken(p.Slug, primitive.NilObjectID) {
		return duplicate(p.Slug)
	}
	ts := s.tick()
	p.ID = primitive.NewObjectID()
	p.CreatedAt = ts
	p.UpdatedAt = ts
	s.posts[p.ID] = *p
	return nil
}

func (s *Store) FindByID(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	p, ok := s.posts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &p, nil
}

func (s *Store) FindBySlug(_ context.Context, slug string) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for _, p := range s.posts {
		if p.Slug == slug {
			return &p, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *Store) SlugExists(_ context.Context, slug string, excludeID primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}
	return s.slugTaken(slug, excludeID), nil
}

func (s *Store) matching(search string) []models.Post {
	needle := strings.ToLower(search)
	out := make([]models.Post, 0, len(s.posts))
	for _, p := range s.posts {
		if search == "" ||
			strings.Contains(strings.ToLower(p.Title), needle) ||
			strings.Contains(strings.ToLower(p.Author), needle) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return bytes.Compare(out[i].ID[:], out[j].ID[:]) > 0
	})
	return out
}

func (s *Store) List(_ context.Context, opt repositories.ListPostsOptions) ([]models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	all := s.matching(opt.Search)
	if opt.Limit <= 0 {
		return all, nil
	}
	start := int64(0)
	if opt.Page > 1 {
		start = (opt.Page - 1) * opt.Limit
	}
	if start >= int64(len(all)) {
		return []models.Post{}, nil
	}
	end := start + opt.Limit
	if end > int64(len(all)) {
		end = int64(len(all))
	}
	return all[start:end], nil
}

func (s *Store) Count(_ context.Context, search string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	return int64(len(s.matching(search))), nil
}

func (s *Store) UpdateFields(_ context.Context, id primitive.ObjectID, updates map[string]any) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	p, ok := s.posts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	for k, v := range updates {
		switch k {
		case "title":
			p.Title = v.(string)
		case "slug":
			p.Slug = v.(string)
		case "author":
			p.Author = v.(string)
		case "date":
			p.Date = v.(time.Time)
		case "image":
			p.Image = v.(string)
		case "summary":
			p.Summary = v.(string)
		case "content":
			p.Content = v.(string)
		default:
			return nil, errors.New("memstore: unknown field " + k)
		}
	}
	if s.slugTaken(p.Slug, id) {
		return nil, duplicate(p.Slug)
	}
	p.UpdatedAt = s.tick()
	s.posts[id] = p
	return &p, nil
}

func (s *Store) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.posts[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.posts, id)
	return nil
}

// Len reports how many posts are stored.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.posts)
}
