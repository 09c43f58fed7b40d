package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mediapress/mediapress/pkg/mediapress"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements mediapress.Repository using PostgreSQL
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			if pgErr.ConstraintName == "users_email_key" {
				return mediapress.ErrEmailTaken
			}
			return fmt.Errorf("duplicate entry")
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}
	return fmt.Errorf("database error in %s: %w", operation, err)
}

// Post operations

func (r *Repository) CreatePost(ctx context.Context, post *mediapress.Post) error {
	query := `
		INSERT INTO posts (id, image, title, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(ctx, query,
		post.ID, post.Image, post.Title, post.Content, post.CreatedAt, post.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("create post", err)
	}
	return nil
}

func (r *Repository) GetPost(ctx context.Context, id uuid.UUID) (*mediapress.Post, error) {
	query := `
		SELECT id, image, title, content, created_at, updated_at
		FROM posts WHERE id = $1`

	var post mediapress.Post
	err := r.db.QueryRow(ctx, query, id).Scan(
		&post.ID, &post.Image, &post.Title, &post.Content, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, mediapress.ErrPostNotFound
		}
		return nil, r.handlePostgresError("get post", err)
	}
	return &post, nil
}

func (r *Repository) UpdatePost(ctx context.Context, post *mediapress.Post) error {
	query := `
		UPDATE posts
		SET image = $2, title = $3, content = $4, updated_at = $5
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		post.ID, post.Image, post.Title, post.Content, post.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("update post", err)
	}
	if tag.RowsAffected() == 0 {
		return mediapress.ErrPostNotFound
	}
	return nil
}

func (r *Repository) DeletePost(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return r.handlePostgresError("delete post", err)
	}
	if tag.RowsAffected() == 0 {
		return mediapress.ErrPostNotFound
	}
	return nil
}

func (r *Repository) ListPosts(ctx context.Context, offset, limit int) ([]*mediapress.Post, error) {
	query := `
		SELECT id, image, title, content, created_at, updated_at
		FROM posts
		ORDER BY created_at DESC
		OFFSET $1 LIMIT $2`

	rows, err := r.db.Query(ctx, query, offset, limit)
	if err != nil {
		return nil, r.handlePostgresError("list posts", err)
	}
	defer rows.Close()

	posts := make([]*mediapress.Post, 0, limit)
	for rows.Next() {
		var post mediapress.Post
		if err := rows.Scan(&post.ID, &post.Image, &post.Title, &post.Content,
			&post.CreatedAt, &post.UpdatedAt); err != nil {
			return nil, r.handlePostgresError("list posts", err)
		}
		posts = append(posts, &post)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("list posts", err)
	}
	return posts, nil
}

func (r *Repository) CountPosts(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM posts`).Scan(&count); err != nil {
		return 0, r.handlePostgresError("count posts", err)
	}
	return count, nil
}

// Product operations

func (r *Repository) CreateProduct(ctx context.Context, product *mediapress.Product) error {
	query := `
		INSERT INTO products (id, image, title, description, price, stock, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(ctx, query,
		product.ID, product.Image, product.Title, product.Desc,
		product.Price, product.Stock, product.CreatedAt, product.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("create product", err)
	}
	return nil
}

func (r *Repository) GetProduct(ctx context.Context, id uuid.UUID) (*mediapress.Product, error) {
	query := `
		SELECT id, image, title, description, price, stock, created_at, updated_at
		FROM products WHERE id = $1`

	var product mediapress.Product
	err := r.db.QueryRow(ctx, query, id).Scan(
		&product.ID, &product.Image, &product.Title, &product.Desc,
		&product.Price, &product.Stock, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, mediapress.ErrProductNotFound
		}
		return nil, r.handlePostgresError("get product", err)
	}
	return &product, nil
}

func (r *Repository) UpdateProduct(ctx context.Context, product *mediapress.Product) error {
	query := `
		UPDATE products
		SET image = $2, title = $3, description = $4, price = $5, stock = $6, updated_at = $7
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		product.ID, product.Image, product.Title, product.Desc,
		product.Price, product.Stock, product.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("update product", err)
	}
	if tag.RowsAffected() == 0 {
		return mediapress.ErrProductNotFound
	}
	return nil
}

func (r *Repository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return r.handlePostgresError("delete product", err)
	}
	if tag.RowsAffected() == 0 {
		return mediapress.ErrProductNotFound
	}
	return nil
}

func (r *Repository) ListProducts(ctx context.Context, offset, limit int) ([]*mediapress.Product, error) {
	query := `
		SELECT id, image, title, description, price, stock, created_at, updated_at
		FROM products
		ORDER BY created_at DESC
		OFFSET $1 LIMIT $2`

	rows, err := r.db.Query(ctx, query, offset, limit)
	if err != nil {
		return nil, r.handlePostgresError("list products", err)
	}
	defer rows.Close()

	products := make([]*mediapress.Product, 0, limit)
	for rows.Next() {
		var product mediapress.Product
		if err := rows.Scan(&product.ID, &product.Image, &product.Title, &product.Desc,
			&product.Price, &product.Stock, &product.CreatedAt, &product.UpdatedAt); err != nil {
			return nil, r.handlePostgresError("list products", err)
		}
		products = append(products, &product)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("list products", err)
	}
	return products, nil
}

func (r *Repository) CountProducts(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		return 0, r.handlePostgresError("count products", err)
	}
	return count, nil
}

// User operations

func (r *Repository) CreateUser(ctx context.Context, user *mediapress.User) error {
	query := `
		INSERT INTO users (id, name, email, password_hash, access_level, created_at)
		VALUES ($1, $2, lower($3), $4, $5, $6)`

	_, err := r.db.Exec(ctx, query,
		user.ID, user.Name, user.Email, user.PasswordHash, user.AccessLevel, user.CreatedAt)
	if err != nil {
		return r.handlePostgresError("create user", err)
	}
	return nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*mediapress.User, error) {
	query := `
		SELECT id, name, email, password_hash, access_level, created_at
		FROM users WHERE email = lower($1)`

	var user mediapress.User
	err := r.db.QueryRow(ctx, query, email).Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash,
		&user.AccessLevel, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, mediapress.ErrUserNotFound
		}
		return nil, r.handlePostgresError("get user", err)
	}
	return &user, nil
}
