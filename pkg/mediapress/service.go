package mediapress

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// Service defines the main interface for the mediapress library. All mutating
// operations validate their input before touching the blob store or the
// repository; the two stores are never mutated transactionally as a pair.
type Service interface {
	// Post operations
	ListPosts(ctx context.Context, page int) (*PostPage, error)
	CreatePost(ctx context.Context, req CreatePostRequest) (*Post, error)
	GetPost(ctx context.Context, id uuid.UUID) (*Post, error)
	UpdatePost(ctx context.Context, id uuid.UUID, req UpdatePostRequest) (*Post, error)
	DeletePost(ctx context.Context, id uuid.UUID) (*Post, error)

	// Product operations
	ListProducts(ctx context.Context, page int) (*ProductPage, error)
	CreateProduct(ctx context.Context, req CreateProductRequest) (*Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) (*Product, error)

	// OpenImage streams a stored image from a resource namespace.
	OpenImage(ctx context.Context, namespace, name string) (io.ReadCloser, error)

	// Account operations
	RegisterUser(ctx context.Context, req RegisterUserRequest) (*User, error)
	AuthenticateUser(ctx context.Context, email, password string) (*User, error)
}
