package mediapress

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mediapress/mediapress/pkg/mediapress/imagename"
)

const bcryptCost = 12

// service implements the Service interface
type service struct {
	repository    Repository
	blobs         BlobStore
	namer         imagename.Generator
	strictDeletes bool
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the record store for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithBlobStore sets the image blob store for the service
func WithBlobStore(store BlobStore) Option {
	return func(s *service) {
		s.blobs = store
	}
}

// WithImageNamer sets the generator used for uploaded image names
func WithImageNamer(namer imagename.Generator) Option {
	return func(s *service) {
		s.namer = namer
	}
}

// WithStrictBlobDeletes makes blob delete failures fatal instead of the
// default logged no-op.
func WithStrictBlobDeletes() Option {
	return func(s *service) {
		s.strictDeletes = true
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		namer: imagename.NewRandomGenerator(),
	}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if s.blobs == nil {
		return nil, fmt.Errorf("blob store is required")
	}

	return s, nil
}

func blobKey(namespace, name string) string {
	return path.Join(namespace, name)
}

// storeImage writes an uploaded image into namespace under a freshly
// generated name and returns that name.
func (s *service) storeImage(ctx context.Context, namespace string, upload *ImageUpload) (string, error) {
	name := s.namer.Generate(upload.FileName)
	key := blobKey(namespace, name)
	if err := s.blobs.Upload(ctx, key, bytes.NewReader(upload.Data)); err != nil {
		return "", &StorageError{Op: "upload", Key: key, Err: err}
	}
	return name, nil
}

// removeImage deletes a stored image. Failures are logged and swallowed
// unless strict deletes were requested.
func (s *service) removeImage(ctx context.Context, namespace, name string) error {
	key := blobKey(namespace, name)
	if err := s.blobs.Delete(ctx, key); err != nil {
		if s.strictDeletes {
			return &StorageError{Op: "delete", Key: key, Err: err}
		}
		slog.Warn("image delete failed", "key", key, "error", err)
	}
	return nil
}

// Post operations

func (s *service) ListPosts(ctx context.Context, page int) (*PostPage, error) {
	if page < 1 {
		page = 1
	}

	total, err := s.repository.CountPosts(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.repository.ListPosts(ctx, (page-1)*PostPageSize, PostPageSize)
	if err != nil {
		return nil, err
	}

	return &PostPage{
		Items:    items,
		Page:     page,
		PerPage:  PostPageSize,
		Total:    total,
		LastPage: lastPage(total, PostPageSize),
	}, nil
}

func (s *service) CreatePost(ctx context.Context, req CreatePostRequest) (*Post, error) {
	if err := validateRequest(req, req.Image); err != nil {
		return nil, err
	}

	name, err := s.storeImage(ctx, NamespacePosts, req.Image)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	post := &Post{
		ID:        uuid.New(),
		Image:     name,
		Title:     req.Title,
		Content:   req.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repository.CreatePost(ctx, post); err != nil {
		// Remove the freshly written blob so a failed insert leaves no orphan.
		if derr := s.blobs.Delete(ctx, blobKey(NamespacePosts, name)); derr != nil {
			slog.Warn("orphan image cleanup failed", "key", blobKey(NamespacePosts, name), "error", derr)
		}
		return nil, err
	}

	return post, nil
}

func (s *service) GetPost(ctx context.Context, id uuid.UUID) (*Post, error) {
	return s.repository.GetPost(ctx, id)
}

func (s *service) UpdatePost(ctx context.Context, id uuid.UUID, req UpdatePostRequest) (*Post, error) {
	if err := validateRequest(req, req.Image); err != nil {
		return nil, err
	}

	post, err := s.repository.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Image != nil {
		// The new blob is written before the old one is deleted and before
		// the record is persisted; a failed record update leaves the new
		// blob orphaned and the old one gone.
		name, err := s.storeImage(ctx, NamespacePosts, req.Image)
		if err != nil {
			return nil, err
		}
		if err := s.removeImage(ctx, NamespacePosts, post.Image); err != nil {
			return nil, err
		}
		post.Image = name
	}

	post.Title = req.Title
	post.Content = req.Content
	post.UpdatedAt = time.Now().UTC()

	if err := s.repository.UpdatePost(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *service) DeletePost(ctx context.Context, id uuid.UUID) (*Post, error) {
	post, err := s.repository.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.removeImage(ctx, NamespacePosts, post.Image); err != nil {
		return nil, err
	}
	if err := s.repository.DeletePost(ctx, id); err != nil {
		return nil, err
	}

	return post, nil
}

// Product operations

func (s *service) ListProducts(ctx context.Context, page int) (*ProductPage, error) {
	if page < 1 {
		page = 1
	}

	total, err := s.repository.CountProducts(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.repository.ListProducts(ctx, (page-1)*ProductPageSize, ProductPageSize)
	if err != nil {
		return nil, err
	}

	return &ProductPage{
		Items:    items,
		Page:     page,
		PerPage:  ProductPageSize,
		Total:    total,
		LastPage: lastPage(total, ProductPageSize),
	}, nil
}

func (s *service) CreateProduct(ctx context.Context, req CreateProductRequest) (*Product, error) {
	if err := validateRequest(req, req.Image); err != nil {
		return nil, err
	}

	name, err := s.storeImage(ctx, NamespaceProducts, req.Image)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	product := &Product{
		ID:        uuid.New(),
		Image:     name,
		Title:     req.Title,
		Desc:      req.Desc,
		Price:     parsePrice(req.Price),
		Stock:     parseStock(req.Stock),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repository.CreateProduct(ctx, product); err != nil {
		if derr := s.blobs.Delete(ctx, blobKey(NamespaceProducts, name)); derr != nil {
			slog.Warn("orphan image cleanup failed", "key", blobKey(NamespaceProducts, name), "error", derr)
		}
		return nil, err
	}

	return product, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*Product, error) {
	return s.repository.GetProduct(ctx, id)
}

func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*Product, error) {
	if err := validateRequest(req, req.Image); err != nil {
		return nil, err
	}

	product, err := s.repository.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Image != nil {
		name, err := s.storeImage(ctx, NamespaceProducts, req.Image)
		if err != nil {
			return nil, err
		}
		if err := s.removeImage(ctx, NamespaceProducts, product.Image); err != nil {
			return nil, err
		}
		product.Image = name
	}

	product.Title = req.Title
	product.Desc = req.Desc
	product.Price = parsePrice(req.Price)
	product.Stock = parseStock(req.Stock)
	product.UpdatedAt = time.Now().UTC()

	if err := s.repository.UpdateProduct(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) (*Product, error) {
	product, err := s.repository.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.removeImage(ctx, NamespaceProducts, product.Image); err != nil {
		return nil, err
	}
	if err := s.repository.DeleteProduct(ctx, id); err != nil {
		return nil, err
	}

	return product, nil
}

// Image serving

func (s *service) OpenImage(ctx context.Context, namespace, name string) (io.ReadCloser, error) {
	if namespace != NamespacePosts && namespace != NamespaceProducts {
		return nil, ErrImageNotFound
	}

	key := blobKey(namespace, name)
	exists, err := s.blobs.Exists(ctx, key)
	if err != nil {
		return nil, &StorageError{Op: "stat", Key: key, Err: err}
	}
	if !exists {
		return nil, ErrImageNotFound
	}

	reader, err := s.blobs.Download(ctx, key)
	if err != nil {
		return nil, &StorageError{Op: "download", Key: key, Err: err}
	}
	return reader, nil
}

// Account operations

func (s *service) RegisterUser(ctx context.Context, req RegisterUserRequest) (*User, error) {
	if err := validateRequest(req, nil); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &User{
		ID:           uuid.New(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		AccessLevel:  1,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repository.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *service) AuthenticateUser(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repository.GetUserByEmail(ctx, email)
	if err != nil {
		if IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Helpers

func lastPage(total, perPage int) int {
	if total <= 0 {
		return 1
	}
	return (total + perPage - 1) / perPage
}

// parsePrice converts an already numeric-validated form value.
func parsePrice(v string) float64 {
	f, _ := strconv.ParseFloat(v, 64)
	return f
}

func parseStock(v string) int {
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	f, _ := strconv.ParseFloat(v, 64)
	return int(f)
}
