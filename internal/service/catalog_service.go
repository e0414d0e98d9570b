package service

import (
	"context"
	"errors"
	"fmt"

	"craftstore/internal/models"
	"craftstore/internal/store"
	"craftstore/internal/util"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductStore is the slice of the catalog store the service needs.
type ProductStore interface {
	ProductFinder
	GetProducts(ctx context.Context) ([]models.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*models.Product, error)
	CreateProduct(ctx context.Context, p *models.Product) error
	UpdateProduct(ctx context.Context, p *models.Product) error
}

// CatalogService handles catalog reads and admin product mutations.
type CatalogService struct {
	store  ProductStore
	logger *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(productStore ProductStore) *CatalogService {
	return &CatalogService{
		store:  productStore,
		logger: util.GetLogger(),
	}
}

// ProductInput is the explicit admin-facing product body. Unknown JSON fields
// are rejected at the API boundary.
type ProductInput struct {
	Title               string                     `json:"title"`
	Slug                string                     `json:"slug"`
	Description         string                     `json:"description,omitempty"`
	Price               decimal.Decimal            `json:"price"`
	Category            string                     `json:"category,omitempty"`
	Images              []string                   `json:"images,omitempty"`
	IsCustomizable      bool                       `json:"is_customizable,omitempty"`
	CustomizationSchema models.CustomizationSchema `json:"customization_schema,omitempty"`
	InventoryCount      int                        `json:"inventory_count,omitempty"`
}

func (in *ProductInput) validate() error {
	if in.Title == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if in.Slug == "" {
		return fmt.Errorf("%w: slug is required", ErrValidation)
	}
	if in.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	for name, field := range in.CustomizationSchema {
		if !models.ValidFieldKind(field.Kind) {
			return fmt.Errorf("%w: customization field %q has unknown kind %q", ErrValidation, name, field.Kind)
		}
	}
	return nil
}

func (in *ProductInput) toModel() *models.Product {
	return &models.Product{
		Title:               in.Title,
		Slug:                in.Slug,
		Description:         in.Description,
		Price:               in.Price,
		Category:            in.Category,
		Images:              pq.StringArray(in.Images),
		IsCustomizable:      in.IsCustomizable,
		CustomizationSchema: in.CustomizationSchema,
		InventoryCount:      in.InventoryCount,
	}
}

// ListProducts retrieves the full catalog.
func (s *CatalogService) ListProducts(ctx context.Context) ([]models.Product, error) {
	sctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	products, err := s.store.GetProducts(sctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return products, nil
}

// GetProductBySlug retrieves one product by its URL slug.
func (s *CatalogService) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	sctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	product, err := s.store.GetProductBySlug(sctx, slug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: product %q", ErrNotFound, slug)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return product, nil
}

// CreateProduct creates a catalog entry from an admin request.
func (s *CatalogService) CreateProduct(ctx context.Context, in *ProductInput) (*models.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	product := in.toModel()

	sctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	if err := s.store.CreateProduct(sctx, product); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	s.logger.Info("Product created",
		zap.Int64("product_id", product.ID),
		zap.String("slug", product.Slug))
	return product, nil
}

// UpdateProduct replaces a catalog entry from an admin request.
func (s *CatalogService) UpdateProduct(ctx context.Context, id int64, in *ProductInput) (*models.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	product := in.toModel()
	product.ID = id

	sctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	if err := s.store.UpdateProduct(sctx, product); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
		case errors.Is(err, store.ErrConflict):
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	s.logger.Info("Product updated",
		zap.Int64("product_id", id),
		zap.String("slug", product.Slug))
	return product, nil
}
