package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/an-furnish/furnish-api/apperrors"
	"github.com/an-furnish/furnish-api/logger"
	"github.com/an-furnish/furnish-api/models"
)

// NewCategoryInput is an admin's new catalog category. Slug defaults to the slugified name.
type NewCategoryInput struct {
	Name           string `validate:"required,max=128"`
	Slug           string `validate:"max=128"`
	Image          string
	AllowedFilters models.CategoryFilters
}

// NewProductInput is an admin's new catalog product. Published defaults to true.
type NewProductInput struct {
	Title       string `validate:"required,max=256"`
	Category    string `validate:"required,max=128"`
	Tagline     string
	Description string
	Materials   []string
	Dimensions  models.ProductDimensions
	Image       string
	PriceRange  string
	Tags        []string
	Published   *bool
}

// CatalogServiceOptions wires a CatalogService
type CatalogServiceOptions struct {
	Store  CatalogStore
	Logger *logger.Logger
	Now    func() time.Time
}

// CatalogService manages the categories and products shown on the storefront.
// Orders copy product references as-is and never consult it.
type CatalogService struct {
	store    CatalogStore
	log      *logger.Logger
	now      func() time.Time
	validate *validator.Validate
}

var catalogServiceInstance *CatalogService

func NewCatalogService(opts CatalogServiceOptions) *CatalogService {
	s := &CatalogService{
		store:    opts.Store,
		log:      opts.Logger,
		now:      opts.Now,
		validate: validator.New(),
	}
	if s.log == nil {
		s.log = logger.Nop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// InitCatalogService builds the process-wide CatalogService
func InitCatalogService(opts CatalogServiceOptions) *CatalogService {
	catalogServiceInstance = NewCatalogService(opts)
	return catalogServiceInstance
}

// GetCatalogService returns the initialized catalog service
func GetCatalogService() *CatalogService {
	return catalogServiceInstance
}

// SetCatalogService sets the catalog service instance (primarily for testing)
func SetCatalogService(service *CatalogService) {
	catalogServiceInstance = service
}

// Categories lists every category by name
func (s *CatalogService) Categories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		s.log.Error(ctx, "failed to list categories", err)
		return nil, apperrors.Storage(err, "failed to list categories")
	}
	return categories, nil
}

// CreateCategory stores a new category; a slug already in use is a conflict
func (s *CatalogService) CreateCategory(ctx context.Context, in NewCategoryInput) (*models.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validate.Struct(in); err != nil {
		return nil, apperrors.Validation("Category name is required")
	}

	slug := models.Slugify(firstNonBlank(in.Slug, in.Name))
	if slug == "" {
		return nil, apperrors.Validation("Category slug must contain letters or digits")
	}

	now := s.now().UTC()
	category := &models.Category{
		Name:           in.Name,
		Slug:           slug,
		Image:          strings.TrimSpace(in.Image),
		AllowedFilters: normalizeFilters(in.AllowedFilters),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.InsertCategory(ctx, category); err != nil {
		if errors.Is(err, ErrDuplicateCategory) {
			return nil, apperrors.Conflict("A category with this slug already exists")
		}
		s.log.Error(ctx, "failed to store category", err)
		return nil, apperrors.Storage(err, "failed to create category")
	}

	s.log.Info(s.log.WithFields(ctx, map[string]any{"category_id": category.ID, "slug": slug}), "category created")
	return category, nil
}

// DeleteCategory removes a category. Products keep their category name.
func (s *CatalogService) DeleteCategory(ctx context.Context, id string) error {
	if err := s.store.DeleteCategory(ctx, strings.TrimSpace(id)); err != nil {
		if errors.Is(err, ErrCategoryNotFound) {
			return apperrors.NotFound("Category not found")
		}
		s.log.Error(ctx, "failed to delete category", err)
		return apperrors.Storage(err, "failed to delete category")
	}
	s.log.Info(s.log.WithField(ctx, "category_id", id), "category deleted")
	return nil
}

// Products lists published products newest first, optionally within one category
func (s *CatalogService) Products(ctx context.Context, category string) ([]models.Product, error) {
	products, err := s.store.ListProducts(ctx, ProductFilter{
		Category:      strings.TrimSpace(category),
		PublishedOnly: true,
	})
	if err != nil {
		s.log.Error(ctx, "failed to list products", err)
		return nil, apperrors.Storage(err, "failed to list products")
	}
	return products, nil
}

// Product loads one product by id, published or not
func (s *CatalogService) Product(ctx context.Context, id string) (*models.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.NotFound("Product not found")
	}
	product, err := s.store.FindProduct(ctx, id)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return nil, apperrors.NotFound("Product not found")
		}
		s.log.Error(ctx, "failed to load product", err)
		return nil, apperrors.Storage(err, "failed to load product")
	}
	return product, nil
}

// CreateProduct stores a new catalog product
func (s *CatalogService) CreateProduct(ctx context.Context, in NewProductInput) (*models.Product, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Category = strings.TrimSpace(in.Category)
	if err := s.validate.Struct(in); err != nil {
		return nil, apperrors.Validation("Product title and category are required")
	}
	dims := in.Dimensions
	if dims.W < 0 || dims.D < 0 || dims.H < 0 {
		return nil, apperrors.Validation("Product dimensions must not be negative")
	}

	published := true
	if in.Published != nil {
		published = *in.Published
	}

	now := s.now().UTC()
	product := &models.Product{
		Title:       in.Title,
		Category:    in.Category,
		Tagline:     strings.TrimSpace(in.Tagline),
		Description: strings.TrimSpace(in.Description),
		Materials:   cleanList(in.Materials),
		Dimensions:  dims,
		Image:       strings.TrimSpace(in.Image),
		PriceRange:  strings.TrimSpace(in.PriceRange),
		Tags:        cleanList(in.Tags),
		Published:   published,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.InsertProduct(ctx, product); err != nil {
		s.log.Error(ctx, "failed to store product", err)
		return nil, apperrors.Storage(err, "failed to create product")
	}

	s.log.Info(s.log.WithFields(ctx, map[string]any{"product_id": product.ID, "category": product.Category}), "product created")
	return product, nil
}

// DeleteProduct removes a product. Orders that reference it keep their copy.
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.store.DeleteProduct(ctx, strings.TrimSpace(id)); err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return apperrors.NotFound("Product not found")
		}
		s.log.Error(ctx, "failed to delete product", err)
		return apperrors.Storage(err, "failed to delete product")
	}
	s.log.Info(s.log.WithField(ctx, "product_id", id), "product deleted")
	return nil
}

func normalizeFilters(f models.CategoryFilters) models.CategoryFilters {
	return models.CategoryFilters{
		Materials: cleanList(f.Materials),
		Styles:    cleanList(f.Styles),
		Sizes:     cleanList(f.Sizes),
	}
}

// cleanList trims values and drops blanks, keeping the original order
func cleanList(values []string) models.StringList {
	out := models.StringList{}
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
