package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/mediapress/mediapress/pkg/mediapress"
)

// Repository implements mediapress.Repository using in-memory storage
type Repository struct {
	mu           sync.RWMutex
	posts        map[uuid.UUID]*mediapress.Post
	products     map[uuid.UUID]*mediapress.Product
	users        map[uuid.UUID]*mediapress.User
	usersByEmail map[string]uuid.UUID
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{
		posts:        make(map[uuid.UUID]*mediapress.Post),
		products:     make(map[uuid.UUID]*mediapress.Product),
		users:        make(map[uuid.UUID]*mediapress.User),
		usersByEmail: make(map[string]uuid.UUID),
	}
}

// Post operations

func (r *Repository) CreatePost(ctx context.Context, post *mediapress.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Store a copy to avoid external modifications
	postCopy := *post
	r.posts[post.ID] = &postCopy
	return nil
}

func (r *Repository) GetPost(ctx context.Context, id uuid.UUID) (*mediapress.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	post, exists := r.posts[id]
	if !exists {
		return nil, mediapress.ErrPostNotFound
	}
	postCopy := *post
	return &postCopy, nil
}

func (r *Repository) UpdatePost(ctx context.Context, post *mediapress.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.posts[post.ID]; !exists {
		return mediapress.ErrPostNotFound
	}
	postCopy := *post
	r.posts[post.ID] = &postCopy
	return nil
}

func (r *Repository) DeletePost(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.posts[id]; !exists {
		return mediapress.ErrPostNotFound
	}
	delete(r.posts, id)
	return nil
}

func (r *Repository) ListPosts(ctx context.Context, offset, limit int) ([]*mediapress.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*mediapress.Post, 0, len(r.posts))
	for _, post := range r.posts {
		postCopy := *post
		all = append(all, &postCopy)
	}

	// Sort by created_at descending
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	return pageSlice(all, offset, limit), nil
}

func (r *Repository) CountPosts(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.posts), nil
}

// Product operations

func (r *Repository) CreateProduct(ctx context.Context, product *mediapress.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	productCopy := *product
	r.products[product.ID] = &productCopy
	return nil
}

func (r *Repository) GetProduct(ctx context.Context, id uuid.UUID) (*mediapress.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, exists := r.products[id]
	if !exists {
		return nil, mediapress.ErrProductNotFound
	}
	productCopy := *product
	return &productCopy, nil
}

func (r *Repository) UpdateProduct(ctx context.Context, product *mediapress.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.products[product.ID]; !exists {
		return mediapress.ErrProductNotFound
	}
	productCopy := *product
	r.products[product.ID] = &productCopy
	return nil
}

func (r *Repository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.products[id]; !exists {
		return mediapress.ErrProductNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *Repository) ListProducts(ctx context.Context, offset, limit int) ([]*mediapress.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*mediapress.Product, 0, len(r.products))
	for _, product := range r.products {
		productCopy := *product
		all = append(all, &productCopy)
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	return pageSlice(all, offset, limit), nil
}

func (r *Repository) CountProducts(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.products), nil
}

// User operations

func (r *Repository) CreateUser(ctx context.Context, user *mediapress.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := normalizeEmail(user.Email)
	if _, exists := r.usersByEmail[email]; exists {
		return mediapress.ErrEmailTaken
	}

	userCopy := *user
	r.users[user.ID] = &userCopy
	r.usersByEmail[email] = user.ID
	return nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*mediapress.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, exists := r.usersByEmail[normalizeEmail(email)]
	if !exists {
		return nil, mediapress.ErrUserNotFound
	}
	userCopy := *r.users[id]
	return &userCopy, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func pageSlice[T any](all []T, offset, limit int) []T {
	if offset >= len(all) {
		return []T{}
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}
