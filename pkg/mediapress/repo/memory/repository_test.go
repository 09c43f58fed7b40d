package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediapress/mediapress/pkg/mediapress"
)

func newPost(title string, createdAt time.Time) *mediapress.Post {
	return &mediapress.Post{
		ID:        uuid.New(),
		Image:     "img.png",
		Title:     title,
		Content:   "body",
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestPostCRUD(t *testing.T) {
	repo := New()
	ctx := context.Background()

	post := newPost("First", time.Now())
	require.NoError(t, repo.CreatePost(ctx, post))

	got, err := repo.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.Title, got.Title)

	// The stored record is isolated from caller mutations.
	got.Title = "mutated"
	again, err := repo.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "First", again.Title)

	post.Title = "Renamed"
	require.NoError(t, repo.UpdatePost(ctx, post))
	renamed, err := repo.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", renamed.Title)

	require.NoError(t, repo.DeletePost(ctx, post.ID))
	_, err = repo.GetPost(ctx, post.ID)
	assert.ErrorIs(t, err, mediapress.ErrPostNotFound)
}

func TestPostNotFound(t *testing.T) {
	repo := New()
	ctx := context.Background()

	_, err := repo.GetPost(ctx, uuid.New())
	assert.ErrorIs(t, err, mediapress.ErrPostNotFound)

	err = repo.UpdatePost(ctx, newPost("ghost", time.Now()))
	assert.ErrorIs(t, err, mediapress.ErrPostNotFound)

	err = repo.DeletePost(ctx, uuid.New())
	assert.ErrorIs(t, err, mediapress.ErrPostNotFound)
}

func TestListPosts_OrderAndPaging(t *testing.T) {
	repo := New()
	ctx := context.Background()

	base := time.Now()
	for i := 0; i < 7; i++ {
		require.NoError(t, repo.CreatePost(ctx, newPost(fmt.Sprintf("Post %d", i), base.Add(time.Duration(i)*time.Second))))
	}

	total, err := repo.CountPosts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, total)

	first, err := repo.ListPosts(ctx, 0, 5)
	require.NoError(t, err)
	require.Len(t, first, 5)
	assert.Equal(t, "Post 6", first[0].Title, "newest first")
	assert.Equal(t, "Post 2", first[4].Title)

	second, err := repo.ListPosts(ctx, 5, 5)
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Equal(t, "Post 0", second[1].Title)

	empty, err := repo.ListPosts(ctx, 10, 5)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestProductCRUD(t *testing.T) {
	repo := New()
	ctx := context.Background()

	product := &mediapress.Product{
		ID:        uuid.New(),
		Image:     "img.png",
		Title:     "Ceramic mug",
		Desc:      "A handmade ceramic mug",
		Price:     19.99,
		Stock:     42,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, repo.CreateProduct(ctx, product))

	got, err := repo.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 19.99, got.Price)

	product.Stock = 0
	require.NoError(t, repo.UpdateProduct(ctx, product))
	updated, err := repo.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.Stock)

	require.NoError(t, repo.DeleteProduct(ctx, product.ID))
	_, err = repo.GetProduct(ctx, product.ID)
	assert.ErrorIs(t, err, mediapress.ErrProductNotFound)
}

func TestUsers(t *testing.T) {
	repo := New()
	ctx := context.Background()

	user := &mediapress.User{
		ID:           uuid.New(),
		Name:         "Alex",
		Email:        "Alex@Example.com",
		PasswordHash: "hash",
		AccessLevel:  1,
		CreatedAt:    time.Now(),
	}
	require.NoError(t, repo.CreateUser(ctx, user))

	got, err := repo.GetUserByEmail(ctx, "alex@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID, "lookup is case-insensitive")

	dup := &mediapress.User{ID: uuid.New(), Name: "Other", Email: "ALEX@example.com"}
	assert.ErrorIs(t, repo.CreateUser(ctx, dup), mediapress.ErrEmailTaken)

	_, err = repo.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, mediapress.ErrUserNotFound)
}
