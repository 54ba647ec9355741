package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-api/dto"
	"blog-api/internal/memstore"
	"blog-api/validation"
)

func strPtr(s string) *string { return &s }

func newTestService(t *testing.T) (*PostService, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	svc := NewPostService(store)
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 9, 30, 0, 123456789, time.UTC) }
	return svc, store
}

func createReq(title string) dto.CreatePostRequest {
	return dto.CreatePostRequest{
		Title:   title,
		Author:  "Ann Writer",
		Image:   "/images/cover.png",
		Summary: "summary",
		Content: "content",
	}
}

func TestCreateGeneratesSequentialSlugs(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	var got []string
	for i := 0; i < 3; i++ {
		p, err := svc.Create(ctx, createReq("Hello World"))
		require.NoError(t, err)
		got = append(got, p.Slug)
	}
	assert.Equal(t, []string{"hello-world", "hello-world-1", "hello-world-2"}, got)
}

func TestCreateDefaultsDateToNow(t *testing.T) {
	svc, _ := newTestService(t)

	p, err := svc.Create(context.Background(), createReq("Dated"))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 1, 9, 30, 0, 123000000, time.UTC), p.Date)
	assert.NotEmpty(t, p.ID)
	assert.False(t, p.CreatedAt.IsZero())
}

func TestCreateParsesDateText(t *testing.T) {
	svc, _ := newTestService(t)

	testCases := []struct {
		name string
		in   string
		want time.Time
	}{
		{name: "iso with zone", in: "2023-03-04T10:00:00Z", want: time.Date(2023, 3, 4, 10, 0, 0, 0, time.UTC)},
		{name: "date only", in: "2023-03-04", want: time.Date(2023, 3, 4, 0, 0, 0, 0, time.UTC)},
		{name: "offset", in: "2023-03-04T10:00:00+02:00", want: time.Date(2023, 3, 4, 8, 0, 0, 0, time.UTC)},
	}

	for i, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			req := createReq(fmt.Sprintf("Post %d", i))
			req.Date = testCase.in
			p, err := svc.Create(context.Background(), req)
			require.NoError(t, err)
			assert.True(t, testCase.want.Equal(p.Date), "got %s", p.Date)
		})
	}
}

func TestCreateValidation(t *testing.T) {
	svc, store := newTestService(t)

	req := createReq("")
	req.Content = ""
	req.Date = "2023-13-45"

	_, err := svc.Create(context.Background(), req)
	var verrs validation.Errors
	require.True(t, errors.As(err, &verrs), "got %v", err)

	fields := map[string]bool{}
	for _, fe := range verrs {
		fields[fe.Field] = true
	}
	assert.Equal(t, map[string]bool{"title": true, "content": true, "date": true}, fields)
	assert.Contains(t, err.Error(), "title is required")
	assert.Equal(t, 0, store.Len())
}

func TestCreateWithExplicitSlug(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	req := createReq("Anything")
	req.Slug = "My Custom Slug"
	p, err := svc.Create(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "my-custom-slug", p.Slug)

	// an explicit slug is not disambiguated; the unique index rejects it
	_, err = svc.Create(ctx, req)
	var conflict *ConflictError
	require.True(t, errors.As(err, &conflict), "got %v", err)
	assert.Equal(t, "slug", conflict.Field)

	req.Slug = "!!!"
	_, err = svc.Create(ctx, req)
	var verrs validation.Errors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "slug", verrs[0].Field)
}

func TestCreateTitleWithoutAlphanumerics(t *testing.T) {
	svc, _ := newTestService(t)

	p, err := svc.Create(context.Background(), createReq("???"))
	require.NoError(t, err)
	assert.Equal(t, "post", p.Slug)
}

func TestUpdateContentKeepsSlug(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, createReq("Stable Title"))
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, dto.UpdatePostRequest{Content: strPtr("new content")})
	require.NoError(t, err)
	assert.Equal(t, "stable-title", updated.Slug)
	assert.Equal(t, "new content", updated.Content)
	assert.Equal(t, created.Title, updated.Title)
	assert.Equal(t, created.Author, updated.Author)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
}

func TestUpdateTitleToTakenTitleGetsSuffix(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, createReq("Taken"))
	require.NoError(t, err)
	other, err := svc.Create(ctx, createReq("Other"))
	require.NoError(t, err)

	updated, err := svc.Update(ctx, other.ID, dto.UpdatePostRequest{Title: strPtr("Taken")})
	require.NoError(t, err)
	assert.Equal(t, "Taken", updated.Title)
	assert.Equal(t, "taken-1", updated.Slug)
}

func TestUpdateSameTitleDoesNotCollideWithItself(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, createReq("Mine"))
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, dto.UpdatePostRequest{Title: strPtr("MINE")})
	require.NoError(t, err)
	assert.Equal(t, "mine", updated.Slug)
}

func TestUpdateErrors(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, createReq("Target"))
	require.NoError(t, err)

	t.Run("malformed id", func(t *testing.T) {
		_, err := svc.Update(ctx, "not-an-id", dto.UpdatePostRequest{Content: strPtr("x")})
		assert.ErrorIs(t, err, ErrNotFound)
	})
	t.Run("unknown id", func(t *testing.T) {
		_, err := svc.Update(ctx, "665f1f77bcf86cd799439011", dto.UpdatePostRequest{Content: strPtr("x")})
		assert.ErrorIs(t, err, ErrNotFound)
	})
	t.Run("empty title", func(t *testing.T) {
		_, err := svc.Update(ctx, created.ID, dto.UpdatePostRequest{Title: strPtr("")})
		var verrs validation.Errors
		require.True(t, errors.As(err, &verrs))
		assert.Equal(t, "title", verrs[0].Field)
	})
	t.Run("bad date", func(t *testing.T) {
		_, err := svc.Update(ctx, created.ID, dto.UpdatePostRequest{Date: strPtr("2023-13-45")})
		var verrs validation.Errors
		require.True(t, errors.As(err, &verrs))
		assert.Equal(t, "date", verrs[0].Field)
	})
}

func TestDeleteTwice(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, createReq("Short Lived"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.ErrorIs(t, svc.Delete(ctx, created.ID), ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "garbage"), ErrNotFound)

	_, err = svc.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListPaginationAndSearch(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for i := 1; i <= 14; i++ {
		_, err := svc.Create(ctx, createReq(fmt.Sprintf("Post %02d", i)))
		require.NoError(t, err)
	}
	req := createReq("Hello World")
	req.Author = "Someone Else"
	_, err := svc.Create(ctx, req)
	require.NoError(t, err)

	t.Run("page two newest first", func(t *testing.T) {
		page, err := svc.List(ctx, ListPostsInput{Page: 2, Limit: 6})
		require.NoError(t, err)
		require.Len(t, page, 6)
		// newest first: Hello World, Post 14 ... Post 10 fill page one
		var titles []string
		for _, p := range page {
			titles = append(titles, p.Title)
		}
		assert.Equal(t, []string{"Post 09", "Post 08", "Post 07", "Post 06", "Post 05", "Post 04"}, titles)
	})

	t.Run("defaults", func(t *testing.T) {
		page, err := svc.List(ctx, ListPostsInput{})
		require.NoError(t, err)
		assert.Len(t, page, DefaultLimit)
		assert.Equal(t, "Hello World", page[0].Title)
	})

	t.Run("search is case insensitive substring", func(t *testing.T) {
		page, err := svc.List(ctx, ListPostsInput{Page: 1, Limit: 6, Search: "hello"})
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, "Hello World", page[0].Title)

		n, err := svc.Count(ctx, "hello")
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("search matches author", func(t *testing.T) {
		n, err := svc.Count(ctx, "ann WRITER")
		require.NoError(t, err)
		assert.Equal(t, int64(14), n)
	})

	t.Run("count all", func(t *testing.T) {
		n, err := svc.Count(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, int64(15), n)
	})
}

func TestGetBySlugMatchesCreateResponse(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, createReq("Round Trip"))
	require.NoError(t, err)

	bySlug, err := svc.GetBySlug(ctx, created.Slug)
	require.NoError(t, err)
	assert.Equal(t, *created, *bySlug)

	byID, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, *created, *byID)

	_, err = svc.GetBySlug(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreFailureIsWrapped(t *testing.T) {
	svc, store := newTestService(t)
	boom := errors.New("connection refused")
	store.Err = boom

	_, err := svc.List(context.Background(), ListPostsInput{})
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrNotFound)

	_, err = svc.Create(context.Background(), createReq("Any"))
	assert.ErrorIs(t, err, boom)
}
