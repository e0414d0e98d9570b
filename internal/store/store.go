package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"craftstore/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

//go:embed schema.sql
var schemaSQL string

// Sentinel errors translated into the service-level taxonomy by callers.
var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("constraint violation")
)

type Store struct {
	db *sqlx.DB
}

// NewStore connects to PostgreSQL and verifies the connection.
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// EnsureSchema applies the embedded schema. Used by the seed tool.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schemaSQL)
	return err
}

// GetProducts retrieves all products
func (s *Store) GetProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := s.db.SelectContext(ctx, &products, "SELECT * FROM products ORDER BY id")
	return products, err
}

// GetProductByID retrieves a product by ID
func (s *Store) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product, "SELECT * FROM products WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetProductBySlug retrieves a product by its URL slug
func (s *Store) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product, "SELECT * FROM products WHERE slug = $1", slug)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: product %q", ErrNotFound, slug)
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// CreateProduct inserts a product and fills in its generated fields.
func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	query := `
		INSERT INTO products (title, slug, description, price, category, images,
			is_customizable, customization_schema, inventory_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`

	err := s.db.QueryRowxContext(ctx, query,
		p.Title, p.Slug, p.Description, p.Price, p.Category, p.Images,
		p.IsCustomizable, p.CustomizationSchema, p.InventoryCount,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: slug %q already exists", ErrConflict, p.Slug)
	}
	return err
}

// UpdateProduct replaces a product's mutable fields.
func (s *Store) UpdateProduct(ctx context.Context, p *models.Product) error {
	query := `
		UPDATE products
		SET title = $1, slug = $2, description = $3, price = $4, category = $5,
			images = $6, is_customizable = $7, customization_schema = $8,
			inventory_count = $9, updated_at = NOW()
		WHERE id = $10
		RETURNING created_at, updated_at`

	err := s.db.QueryRowxContext(ctx, query,
		p.Title, p.Slug, p.Description, p.Price, p.Category, p.Images,
		p.IsCustomizable, p.CustomizationSchema, p.InventoryCount, p.ID,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: product %d", ErrNotFound, p.ID)
	}
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: slug %q already exists", ErrConflict, p.Slug)
	}
	return err
}

// ReplaceProducts wipes the catalog and inserts the given products in one
// transaction. Used only by the seed tool.
func (s *Store) ReplaceProducts(ctx context.Context, products []models.Product) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM products"); err != nil {
		return fmt.Errorf("failed to clear products: %w", err)
	}

	query := `
		INSERT INTO products (title, slug, description, price, category, images,
			is_customizable, customization_schema, inventory_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	for _, p := range products {
		if _, err := tx.ExecContext(ctx, query,
			p.Title, p.Slug, p.Description, p.Price, p.Category, p.Images,
			p.IsCustomizable, p.CustomizationSchema, p.InventoryCount,
		); err != nil {
			return fmt.Errorf("failed to insert product %q: %w", p.Slug, err)
		}
	}

	return tx.Commit()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
