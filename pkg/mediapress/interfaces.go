package mediapress

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// BlobStore defines the interface for image storage backends. Keys are
// namespace-qualified ("posts/<name>", "products/<name>"). Implementations
// serialize individual put/delete operations; nothing coordinates a blob
// operation with a record operation.
type BlobStore interface {
	// Upload stores the blob under key, replacing any existing blob.
	Upload(ctx context.Context, key string, reader io.Reader) error

	// Download returns the blob for key, or an error if it does not exist.
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the blob for key. Deleting a missing blob is an error;
	// callers decide whether that is fatal.
	Delete(ctx context.Context, key string) error

	// Exists reports whether a blob is stored under key.
	Exists(ctx context.Context, key string) (bool, error)
}

// Repository defines the interface for record persistence. List operations
// return records ordered by creation time descending.
type Repository interface {
	// Post operations
	CreatePost(ctx context.Context, post *Post) error
	GetPost(ctx context.Context, id uuid.UUID) (*Post, error)
	UpdatePost(ctx context.Context, post *Post) error
	DeletePost(ctx context.Context, id uuid.UUID) error
	ListPosts(ctx context.Context, offset, limit int) ([]*Post, error)
	CountPosts(ctx context.Context) (int, error)

	// Product operations
	CreateProduct(ctx context.Context, product *Product) error
	GetProduct(ctx context.Context, id uuid.UUID) (*Product, error)
	UpdateProduct(ctx context.Context, product *Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	ListProducts(ctx context.Context, offset, limit int) ([]*Product, error)
	CountProducts(ctx context.Context) (int, error)

	// User operations
	CreateUser(ctx context.Context, user *User) error
	GetUserByEmail(ctx context.Context, email string) (*User, error)
}
