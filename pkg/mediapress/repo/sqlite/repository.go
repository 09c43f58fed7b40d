// Package sqlite provides a mediapress.Repository backed by an embedded
// SQLite database (modernc.org/sqlite, no cgo). The schema is applied when
// the store is opened.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mediapress/mediapress/pkg/mediapress"
)

const schema = `
CREATE TABLE IF NOT EXISTS posts (
    id          TEXT PRIMARY KEY,
    image       TEXT NOT NULL,
    title       TEXT NOT NULL,
    content     TEXT NOT NULL,
    created_at  TEXT NOT NULL,
    updated_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS posts_created_at_idx ON posts (created_at DESC);

CREATE TABLE IF NOT EXISTS products (
    id          TEXT PRIMARY KEY,
    image       TEXT NOT NULL,
    title       TEXT NOT NULL,
    description TEXT NOT NULL,
    price       REAL NOT NULL,
    stock       INTEGER NOT NULL,
    created_at  TEXT NOT NULL,
    updated_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS products_created_at_idx ON products (created_at DESC);

CREATE TABLE IF NOT EXISTS users (
    id            TEXT PRIMARY KEY,
    name          TEXT NOT NULL,
    email         TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    access_level  INTEGER NOT NULL DEFAULT 0,
    created_at    TEXT NOT NULL
);
`

// Repository implements mediapress.Repository on SQLite.
type Repository struct {
	db *sql.DB
}

// Open opens (creating if necessary) the database at path and applies the
// schema. Use ":memory:" for an ephemeral store.
func Open(path string) (*Repository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// The modernc driver does not serialize writers across connections.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func encodeTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func decodeTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

// Post operations

func (r *Repository) CreatePost(ctx context.Context, post *mediapress.Post) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO posts (id, image, title, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		post.ID.String(), post.Image, post.Title, post.Content,
		encodeTime(post.CreatedAt), encodeTime(post.UpdatedAt))
	if err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	return nil
}

func (r *Repository) GetPost(ctx context.Context, id uuid.UUID) (*mediapress.Post, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, image, title, content, created_at, updated_at
		FROM posts WHERE id = ?`, id.String())
	return scanPost(row)
}

func (r *Repository) UpdatePost(ctx context.Context, post *mediapress.Post) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE posts SET image = ?, title = ?, content = ?, updated_at = ?
		WHERE id = ?`,
		post.Image, post.Title, post.Content, encodeTime(post.UpdatedAt), post.ID.String())
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	return affectedOr(res, mediapress.ErrPostNotFound)
}

func (r *Repository) DeletePost(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return affectedOr(res, mediapress.ErrPostNotFound)
}

func (r *Repository) ListPosts(ctx context.Context, offset, limit int) ([]*mediapress.Post, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, image, title, content, created_at, updated_at
		FROM posts ORDER BY created_at DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := make([]*mediapress.Post, 0, limit)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func (r *Repository) CountPosts(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&count)
	return count, err
}

// Product operations

func (r *Repository) CreateProduct(ctx context.Context, product *mediapress.Product) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (id, image, title, description, price, stock, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		product.ID.String(), product.Image, product.Title, product.Desc,
		product.Price, product.Stock,
		encodeTime(product.CreatedAt), encodeTime(product.UpdatedAt))
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (r *Repository) GetProduct(ctx context.Context, id uuid.UUID) (*mediapress.Product, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, image, title, description, price, stock, created_at, updated_at
		FROM products WHERE id = ?`, id.String())
	return scanProduct(row)
}

func (r *Repository) UpdateProduct(ctx context.Context, product *mediapress.Product) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE products SET image = ?, title = ?, description = ?, price = ?, stock = ?, updated_at = ?
		WHERE id = ?`,
		product.Image, product.Title, product.Desc, product.Price, product.Stock,
		encodeTime(product.UpdatedAt), product.ID.String())
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return affectedOr(res, mediapress.ErrProductNotFound)
}

func (r *Repository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return affectedOr(res, mediapress.ErrProductNotFound)
}

func (r *Repository) ListProducts(ctx context.Context, offset, limit int) ([]*mediapress.Product, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, image, title, description, price, stock, created_at, updated_at
		FROM products ORDER BY created_at DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := make([]*mediapress.Product, 0, limit)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

func (r *Repository) CountProducts(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&count)
	return count, err
}

// User operations

func (r *Repository) CreateUser(ctx context.Context, user *mediapress.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, password_hash, access_level, created_at)
		VALUES (?, ?, lower(?), ?, ?, ?)`,
		user.ID.String(), user.Name, user.Email, user.PasswordHash,
		user.AccessLevel, encodeTime(user.CreatedAt))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return mediapress.ErrEmailTaken
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*mediapress.User, error) {
	var (
		user      mediapress.User
		id        string
		createdAt string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, access_level, created_at
		FROM users WHERE email = lower(?)`, email).Scan(
		&id, &user.Name, &user.Email, &user.PasswordHash, &user.AccessLevel, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, mediapress.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	user.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse user id: %w", err)
	}
	user.CreatedAt = decodeTime(createdAt)
	return &user, nil
}

// Scan helpers

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPost(row rowScanner) (*mediapress.Post, error) {
	var (
		post      mediapress.Post
		id        string
		createdAt string
		updatedAt string
	)
	err := row.Scan(&id, &post.Image, &post.Title, &post.Content, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, mediapress.ErrPostNotFound
		}
		return nil, fmt.Errorf("scan post: %w", err)
	}

	post.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse post id: %w", err)
	}
	post.CreatedAt = decodeTime(createdAt)
	post.UpdatedAt = decodeTime(updatedAt)
	return &post, nil
}

func scanProduct(row rowScanner) (*mediapress.Product, error) {
	var (
		product   mediapress.Product
		id        string
		createdAt string
		updatedAt string
	)
	err := row.Scan(&id, &product.Image, &product.Title, &product.Desc,
		&product.Price, &product.Stock, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, mediapress.ErrProductNotFound
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}

	product.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse product id: %w", err)
	}
	product.CreatedAt = decodeTime(createdAt)
	product.UpdatedAt = decodeTime(updatedAt)
	return &product, nil
}

func affectedOr(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
