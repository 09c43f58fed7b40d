package mediapress

import (
	"time"

	"github.com/google/uuid"
)

// Blob namespaces. Every image belongs to exactly one namespace and every
// record owns exactly one image within it.
const (
	NamespacePosts    = "posts"
	NamespaceProducts = "products"
)

// Fixed page sizes for list operations.
const (
	PostPageSize    = 5
	ProductPageSize = 10
)

// MaxImageBytes is the upload size ceiling for images (2048 KB).
const MaxImageBytes = 2048 * 1024

// Post is a blog-style record backed by an image in the "posts" namespace.
type Post struct {
	ID        uuid.UUID `json:"id"`
	Image     string    `json:"image"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Product is a catalog record backed by an image in the "products" namespace.
type Product struct {
	ID        uuid.UUID `json:"id"`
	Image     string    `json:"image"`
	Title     string    `json:"title"`
	Desc      string    `json:"desc"`
	Price     float64   `json:"price"`
	Stock     int       `json:"stock"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// User is an API account. PasswordHash is a bcrypt hash and never serialized.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	AccessLevel  int       `json:"access_level"`
	CreatedAt    time.Time `json:"created_at"`
}

// PostPage is one page of posts, most recently created first.
type PostPage struct {
	Items    []*Post `json:"items"`
	Page     int     `json:"page"`
	PerPage  int     `json:"per_page"`
	Total    int     `json:"total"`
	LastPage int     `json:"last_page"`
}

// ProductPage is one page of products, most recently created first.
type ProductPage struct {
	Items    []*Product `json:"items"`
	Page     int        `json:"page"`
	PerPage  int        `json:"per_page"`
	Total    int        `json:"total"`
	LastPage int        `json:"last_page"`
}
