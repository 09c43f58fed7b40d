package mediapress_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediapress/mediapress/pkg/mediapress"
	"github.com/mediapress/mediapress/pkg/mediapress/imagename"
	memoryrepo "github.com/mediapress/mediapress/pkg/mediapress/repo/memory"
	memorystorage "github.com/mediapress/mediapress/pkg/mediapress/storage/memory"
)

func setupTestService(t *testing.T) (mediapress.Service, *memorystorage.Backend) {
	t.Helper()

	blobs := memorystorage.New()
	svc, err := mediapress.New(
		mediapress.WithRepository(memoryrepo.New()),
		mediapress.WithBlobStore(blobs),
	)
	require.NoError(t, err)
	return svc, blobs
}

// pngImage returns a valid PNG encoding of a 1x1 image.
func pngImage(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1, 1))))
	return buf.Bytes()
}

func pngUpload(t *testing.T) *mediapress.ImageUpload {
	t.Helper()
	return &mediapress.ImageUpload{FileName: "photo.png", Data: pngImage(t)}
}

func TestNew_RequiresStores(t *testing.T) {
	_, err := mediapress.New()
	assert.Error(t, err)

	_, err = mediapress.New(mediapress.WithRepository(memoryrepo.New()))
	assert.Error(t, err)

	_, err = mediapress.New(mediapress.WithBlobStore(memorystorage.New()))
	assert.Error(t, err)
}

func TestCreatePost(t *testing.T) {
	svc, blobs := setupTestService(t)
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, mediapress.CreatePostRequest{
		Title:   "First post",
		Content: "Hello world",
		Image:   pngUpload(t),
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, post.ID)
	assert.Equal(t, "First post", post.Title)
	assert.Equal(t, "Hello world", post.Content)
	assert.NotEmpty(t, post.Image)
	assert.False(t, post.CreatedAt.IsZero())

	exists, err := blobs.Exists(ctx, "posts/"+post.Image)
	require.NoError(t, err)
	assert.True(t, exists, "uploaded image should be stored under the posts namespace")

	got, err := svc.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.ID, got.ID)
}

func TestCreatePost_ValidationErrors(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		req    mediapress.CreatePostRequest
		fields []string
	}{
		{
			name:   "all fields missing",
			req:    mediapress.CreatePostRequest{},
			fields: []string{"title", "content", "image"},
		},
		{
			name: "missing title",
			req: mediapress.CreatePostRequest{
				Content: "body",
				Image:   pngUpload(t),
			},
			fields: []string{"title"},
		},
		{
			name: "image is not an image",
			req: mediapress.CreatePostRequest{
				Title:   "title",
				Content: "body",
				Image:   &mediapress.ImageUpload{FileName: "notes.txt", Data: []byte("plain text")},
			},
			fields: []string{"image"},
		},
		{
			name: "image too large",
			req: mediapress.CreatePostRequest{
				Title:   "title",
				Content: "body",
				Image:   &mediapress.ImageUpload{FileName: "big.png", Data: make([]byte, mediapress.MaxImageBytes+1)},
			},
			fields: []string{"image"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreatePost(ctx, tt.req)
			require.Error(t, err)

			ve, ok := mediapress.AsValidationError(err)
			require.True(t, ok, "expected a validation error, got %v", err)
			for _, field := range tt.fields {
				assert.NotEmpty(t, ve.Fields[field], "expected an error for field %q", field)
			}
			assert.Len(t, ve.Fields, len(tt.fields))
		})
	}
}

func TestUpdatePost_WithoutImage(t *testing.T) {
	svc, blobs := setupTestService(t)
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, mediapress.CreatePostRequest{
		Title:   "Original",
		Content: "Original body",
		Image:   pngUpload(t),
	})
	require.NoError(t, err)

	updated, err := svc.UpdatePost(ctx, post.ID, mediapress.UpdatePostRequest{
		Title:   "Updated",
		Content: "Updated body",
	})
	require.NoError(t, err)
	assert.Equal(t, "Updated", updated.Title)
	assert.Equal(t, post.Image, updated.Image, "stored image must be untouched when no new image is sent")

	exists, err := blobs.Exists(ctx, "posts/"+post.Image)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestUpdatePost_WithImage(t *testing.T) {
	svc, blobs := setupTestService(t)
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, mediapress.CreatePostRequest{
		Title:   "Original",
		Content: "Original body",
		Image:   pngUpload(t),
	})
	require.NoError(t, err)
	oldImage := post.Image

	updated, err := svc.UpdatePost(ctx, post.ID, mediapress.UpdatePostRequest{
		Title:   "Updated",
		Content: "Updated body",
		Image:   pngUpload(t),
	})
	require.NoError(t, err)
	assert.NotEqual(t, oldImage, updated.Image)

	oldExists, err := blobs.Exists(ctx, "posts/"+oldImage)
	require.NoError(t, err)
	assert.False(t, oldExists, "the replaced image must be deleted")

	newExists, err := blobs.Exists(ctx, "posts/"+updated.Image)
	require.NoError(t, err)
	assert.True(t, newExists)
}

func TestUpdatePost_NotFound(t *testing.T) {
	svc, _ := setupTestService(t)

	_, err := svc.UpdatePost(context.Background(), uuid.New(), mediapress.UpdatePostRequest{
		Title:   "Updated",
		Content: "Updated body",
	})
	assert.ErrorIs(t, err, mediapress.ErrPostNotFound)
}

func TestDeletePost(t *testing.T) {
	svc, blobs := setupTestService(t)
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, mediapress.CreatePostRequest{
		Title:   "Doomed",
		Content: "Short lived",
		Image:   pngUpload(t),
	})
	require.NoError(t, err)

	deleted, err := svc.DeletePost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.Title, deleted.Title, "delete returns the record's last-known values")

	exists, err := blobs.Exists(ctx, "posts/"+post.Image)
	require.NoError(t, err)
	assert.False(t, exists, "the owned image must be deleted with the record")

	_, err = svc.GetPost(ctx, post.ID)
	assert.ErrorIs(t, err, mediapress.ErrPostNotFound)
}

func TestDeletePost_NotFound(t *testing.T) {
	svc, _ := setupTestService(t)

	_, err := svc.DeletePost(context.Background(), uuid.New())
	assert.ErrorIs(t, err, mediapress.ErrPostNotFound)
}

func TestListPosts_Pagination(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		_, err := svc.CreatePost(ctx, mediapress.CreatePostRequest{
			Title:   fmt.Sprintf("Post %d", i),
			Content: "body",
			Image:   pngUpload(t),
		})
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
	}

	page1, err := svc.ListPosts(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, page1.Items, 5)
	assert.Equal(t, 1, page1.Page)
	assert.Equal(t, 5, page1.PerPage)
	assert.Equal(t, 7, page1.Total)
	assert.Equal(t, 2, page1.LastPage)
	assert.Equal(t, "Post 6", page1.Items[0].Title, "newest first")

	page2, err := svc.ListPosts(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, page2.Items, 2)
	assert.Equal(t, "Post 0", page2.Items[1].Title)

	// Pages beyond the last are empty, not an error.
	page3, err := svc.ListPosts(ctx, 3)
	require.NoError(t, err)
	assert.Empty(t, page3.Items)

	// Page numbers below one clamp to the first page.
	clamped, err := svc.ListPosts(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, clamped.Page)
}

func TestCreateProduct(t *testing.T) {
	svc, blobs := setupTestService(t)
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, mediapress.CreateProductRequest{
		Title: "Ceramic mug",
		Desc:  "A handmade ceramic mug",
		Price: "19.99",
		Stock: "42",
		Image: pngUpload(t),
	})
	require.NoError(t, err)
	assert.Equal(t, 19.99, product.Price)
	assert.Equal(t, 42, product.Stock)

	exists, err := blobs.Exists(ctx, "products/"+product.Image)
	require.NoError(t, err)
	assert.True(t, exists, "uploaded image should be stored under the products namespace")
}

func TestCreateProduct_ValidationErrors(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		req    mediapress.CreateProductRequest
		fields []string
	}{
		{
			name: "title too short",
			req: mediapress.CreateProductRequest{
				Title: "Mug",
				Desc:  "A handmade ceramic mug",
				Price: "19.99",
				Stock: "42",
				Image: pngUpload(t),
			},
			fields: []string{"title"},
		},
		{
			name: "desc too short",
			req: mediapress.CreateProductRequest{
				Title: "Ceramic mug",
				Desc:  "short",
				Price: "19.99",
				Stock: "42",
				Image: pngUpload(t),
			},
			fields: []string{"desc"},
		},
		{
			name: "price and stock not numeric",
			req: mediapress.CreateProductRequest{
				Title: "Ceramic mug",
				Desc:  "A handmade ceramic mug",
				Price: "cheap",
				Stock: "lots",
				Image: pngUpload(t),
			},
			fields: []string{"price", "stock"},
		},
		{
			name:   "everything missing",
			req:    mediapress.CreateProductRequest{},
			fields: []string{"title", "desc", "price", "stock", "image"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateProduct(ctx, tt.req)
			require.Error(t, err)

			ve, ok := mediapress.AsValidationError(err)
			require.True(t, ok, "expected a validation error, got %v", err)
			for _, field := range tt.fields {
				assert.NotEmpty(t, ve.Fields[field], "expected an error for field %q", field)
			}
			assert.Len(t, ve.Fields, len(tt.fields))
		})
	}
}

func TestUpdateProduct_WithImage(t *testing.T) {
	svc, blobs := setupTestService(t)
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, mediapress.CreateProductRequest{
		Title: "Ceramic mug",
		Desc:  "A handmade ceramic mug",
		Price: "19.99",
		Stock: "42",
		Image: pngUpload(t),
	})
	require.NoError(t, err)
	oldImage := product.Image

	updated, err := svc.UpdateProduct(ctx, product.ID, mediapress.UpdateProductRequest{
		Title: "Ceramic mug v2",
		Desc:  "A handmade ceramic mug, improved",
		Price: "24.50",
		Stock: "10",
		Image: pngUpload(t),
	})
	require.NoError(t, err)
	assert.Equal(t, 24.50, updated.Price)
	assert.Equal(t, 10, updated.Stock)

	oldExists, err := blobs.Exists(ctx, "products/"+oldImage)
	require.NoError(t, err)
	assert.False(t, oldExists)

	newExists, err := blobs.Exists(ctx, "products/"+updated.Image)
	require.NoError(t, err)
	assert.True(t, newExists)
}

func TestDeleteProduct(t *testing.T) {
	svc, blobs := setupTestService(t)
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, mediapress.CreateProductRequest{
		Title: "Ceramic mug",
		Desc:  "A handmade ceramic mug",
		Price: "19.99",
		Stock: "42",
		Image: pngUpload(t),
	})
	require.NoError(t, err)

	_, err = svc.DeleteProduct(ctx, product.ID)
	require.NoError(t, err)

	exists, err := blobs.Exists(ctx, "products/"+product.Image)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = svc.GetProduct(ctx, product.ID)
	assert.ErrorIs(t, err, mediapress.ErrProductNotFound)
}

func TestListProducts_PageSize(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		_, err := svc.CreateProduct(ctx, mediapress.CreateProductRequest{
			Title: fmt.Sprintf("Product %02d", i),
			Desc:  "A description long enough",
			Price: "1.00",
			Stock: "1",
			Image: pngUpload(t),
		})
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
	}

	page1, err := svc.ListProducts(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, page1.Items, 10)
	assert.Equal(t, 10, page1.PerPage)
	assert.Equal(t, 12, page1.Total)
	assert.Equal(t, 2, page1.LastPage)

	page2, err := svc.ListProducts(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, page2.Items, 2)
}

// failingPostRepo rejects every post insert.
type failingPostRepo struct {
	*memoryrepo.Repository
}

func (r *failingPostRepo) CreatePost(ctx context.Context, post *mediapress.Post) error {
	return errors.New("insert failed")
}

func TestCreatePost_CompensatesFailedInsert(t *testing.T) {
	blobs := memorystorage.New()
	svc, err := mediapress.New(
		mediapress.WithRepository(&failingPostRepo{memoryrepo.New()}),
		mediapress.WithBlobStore(blobs),
		mediapress.WithImageNamer(imagename.NewCustomFuncGenerator(func(string) string {
			return "fixed.png"
		})),
	)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = svc.CreatePost(ctx, mediapress.CreatePostRequest{
		Title:   "Doomed",
		Content: "body",
		Image:   pngUpload(t),
	})
	require.Error(t, err)
	_, ok := mediapress.AsValidationError(err)
	assert.False(t, ok)

	exists, err := blobs.Exists(ctx, "posts/fixed.png")
	require.NoError(t, err)
	assert.False(t, exists, "the freshly written blob must be removed when the insert fails")
}

// flakyDeleteStore fails every delete.
type flakyDeleteStore struct {
	*memorystorage.Backend
}

func (s *flakyDeleteStore) Delete(ctx context.Context, key string) error {
	return errors.New("delete failed")
}

func TestDeletePost_BlobDeleteFailure(t *testing.T) {
	newService := func(t *testing.T, strict bool) (mediapress.Service, *flakyDeleteStore) {
		t.Helper()
		blobs := &flakyDeleteStore{memorystorage.New()}
		opts := []mediapress.Option{
			mediapress.WithRepository(memoryrepo.New()),
			mediapress.WithBlobStore(blobs),
		}
		if strict {
			opts = append(opts, mediapress.WithStrictBlobDeletes())
		}
		svc, err := mediapress.New(opts...)
		require.NoError(t, err)
		return svc, blobs
	}

	t.Run("default mode logs and proceeds", func(t *testing.T) {
		svc, _ := newService(t, false)
		ctx := context.Background()

		post, err := svc.CreatePost(ctx, mediapress.CreatePostRequest{
			Title:   "Post",
			Content: "body",
			Image:   pngUpload(t),
		})
		require.NoError(t, err)

		_, err = svc.DeletePost(ctx, post.ID)
		require.NoError(t, err)

		_, err = svc.GetPost(ctx, post.ID)
		assert.ErrorIs(t, err, mediapress.ErrPostNotFound, "record delete proceeds despite the blob failure")
	})

	t.Run("strict mode fails the operation", func(t *testing.T) {
		svc, _ := newService(t, true)
		ctx := context.Background()

		post, err := svc.CreatePost(ctx, mediapress.CreatePostRequest{
			Title:   "Post",
			Content: "body",
			Image:   pngUpload(t),
		})
		require.NoError(t, err)

		_, err = svc.DeletePost(ctx, post.ID)
		require.Error(t, err)

		var serr *mediapress.StorageError
		assert.ErrorAs(t, err, &serr)

		_, err = svc.GetPost(ctx, post.ID)
		assert.NoError(t, err, "the record must survive a strict-mode blob failure")
	})
}

func TestOpenImage(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, mediapress.CreatePostRequest{
		Title:   "Post",
		Content: "body",
		Image:   pngUpload(t),
	})
	require.NoError(t, err)

	rc, err := svc.OpenImage(ctx, "posts", post.Image)
	require.NoError(t, err)
	rc.Close()

	_, err = svc.OpenImage(ctx, "posts", "nope.png")
	assert.ErrorIs(t, err, mediapress.ErrImageNotFound)

	_, err = svc.OpenImage(ctx, "secrets", post.Image)
	assert.ErrorIs(t, err, mediapress.ErrImageNotFound, "unknown namespaces are not served")
}

func TestRegisterUser(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	user, err := svc.RegisterUser(ctx, mediapress.RegisterUserRequest{
		Name:     "Alex",
		Email:    "alex@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, user.AccessLevel)
	assert.NotEqual(t, "correct-horse", user.PasswordHash)

	_, err = svc.RegisterUser(ctx, mediapress.RegisterUserRequest{
		Name:     "Other",
		Email:    "Alex@Example.com",
		Password: "another-pass",
	})
	assert.ErrorIs(t, err, mediapress.ErrEmailTaken, "email comparison is case-insensitive")
}

func TestRegisterUser_Validation(t *testing.T) {
	svc, _ := setupTestService(t)

	_, err := svc.RegisterUser(context.Background(), mediapress.RegisterUserRequest{
		Name:     "Alex",
		Email:    "not-an-email",
		Password: "short",
	})
	require.Error(t, err)

	ve, ok := mediapress.AsValidationError(err)
	require.True(t, ok)
	assert.NotEmpty(t, ve.Fields["email"])
	assert.NotEmpty(t, ve.Fields["password"])
}

func TestAuthenticateUser(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	_, err := svc.RegisterUser(ctx, mediapress.RegisterUserRequest{
		Name:     "Alex",
		Email:    "alex@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	user, err := svc.AuthenticateUser(ctx, "alex@example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "Alex", user.Name)

	_, err = svc.AuthenticateUser(ctx, "alex@example.com", "wrong")
	assert.ErrorIs(t, err, mediapress.ErrInvalidCredentials)

	_, err = svc.AuthenticateUser(ctx, "nobody@example.com", "correct-horse")
	assert.ErrorIs(t, err, mediapress.ErrInvalidCredentials, "unknown accounts are indistinguishable from bad passwords")
}
