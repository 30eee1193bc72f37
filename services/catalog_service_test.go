package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/an-furnish/furnish-api/apperrors"
	"github.com/an-furnish/furnish-api/models"
)

func newCatalogServiceFixture(t *testing.T) *CatalogService {
	t.Helper()
	return NewCatalogService(CatalogServiceOptions{
		Store: NewGormCatalogStore(setupTestDB(t)),
		Now:   newFixedClock(testNow).Now,
	})
}

func TestCatalogService_CreateCategory(t *testing.T) {
	svc := newCatalogServiceFixture(t)
	ctx := context.Background()

	category, err := svc.CreateCategory(ctx, NewCategoryInput{
		Name: "  Living Room ",
		AllowedFilters: models.CategoryFilters{
			Materials: models.StringList{"Oak", " ", "Linen "},
		},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, category.ID)
	assert.Equal(t, "Living Room", category.Name)
	assert.Equal(t, "living-room", category.Slug)
	assert.Equal(t, models.StringList{"Oak", "Linen"}, category.AllowedFilters.Materials)
	assert.NotNil(t, category.AllowedFilters.Sizes)
	assert.True(t, testNow.Equal(category.CreatedAt))

	_, err = svc.CreateCategory(ctx, NewCategoryInput{Name: "Living room"})
	assert.Equal(t, apperrors.CodeConflict, apperrors.CodeOf(err))

	custom, err := svc.CreateCategory(ctx, NewCategoryInput{Name: "Living Room", Slug: "Lounge"})
	require.NoError(t, err)
	assert.Equal(t, "lounge", custom.Slug)

	for _, in := range []NewCategoryInput{{Name: "   "}, {Name: "!!!"}} {
		_, err := svc.CreateCategory(ctx, in)
		assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(err), "input %+v", in)
	}

	categories, err := svc.Categories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 2)

	require.NoError(t, svc.DeleteCategory(ctx, category.ID))
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(svc.DeleteCategory(ctx, category.ID)))
}

func TestCatalogService_Products(t *testing.T) {
	svc := newCatalogServiceFixture(t)
	ctx := context.Background()

	hidden := false
	draft, err := svc.CreateProduct(ctx, NewProductInput{Title: "Prototype Stool", Category: "Chairs", Published: &hidden})
	require.NoError(t, err)
	assert.False(t, draft.Published)

	chair, err := svc.CreateProduct(ctx, NewProductInput{
		Title:      " Oslo Lounge Chair ",
		Category:   "Chairs",
		Materials:  []string{"Ash", ""},
		Tags:       []string{"bestseller"},
		Dimensions: models.ProductDimensions{W: 80, D: 85, H: 76},
		PriceRange: "BDT 35,000 - 45,000",
	})
	require.NoError(t, err)
	assert.True(t, chair.Published)
	assert.Equal(t, "Oslo Lounge Chair", chair.Title)
	assert.Equal(t, models.StringList{"Ash"}, chair.Materials)

	listed, err := svc.Products(ctx, "Chairs")
	require.NoError(t, err)
	require.Len(t, listed, 1, "drafts stay off the storefront")
	assert.Equal(t, chair.ID, listed[0].ID)

	loaded, err := svc.Product(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, "Prototype Stool", loaded.Title)

	for _, in := range []NewProductInput{
		{Category: "Chairs"},
		{Title: "No category"},
		{Title: "Bent", Category: "Chairs", Dimensions: models.ProductDimensions{W: -1}},
	} {
		_, err := svc.CreateProduct(ctx, in)
		assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(err), "input %+v", in)
	}

	require.NoError(t, svc.DeleteProduct(ctx, chair.ID))
	_, err = svc.Product(ctx, chair.ID)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
	_, err = svc.Product(ctx, " ")
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(svc.DeleteProduct(ctx, chair.ID)))
}

// brokenCatalogStore fails every call
type brokenCatalogStore struct {
	CatalogStore
	err error
}

func (s brokenCatalogStore) ListCategories(context.Context) ([]models.Category, error) {
	return nil, s.err
}

func (s brokenCatalogStore) ListProducts(context.Context, ProductFilter) ([]models.Product, error) {
	return nil, s.err
}

func (s brokenCatalogStore) InsertProduct(context.Context, *models.Product) error { return s.err }

func TestCatalogService_StorageFailure(t *testing.T) {
	boom := errors.New("disk full")
	svc := NewCatalogService(CatalogServiceOptions{Store: brokenCatalogStore{err: boom}})
	ctx := context.Background()

	_, err := svc.Categories(ctx)
	assert.Equal(t, apperrors.CodeStorage, apperrors.CodeOf(err))
	assert.ErrorIs(t, err, boom)

	_, err = svc.Products(ctx, "")
	assert.Equal(t, apperrors.CodeStorage, apperrors.CodeOf(err))

	_, err = svc.CreateProduct(ctx, NewProductInput{Title: "Chair", Category: "Chairs"})
	assert.Equal(t, apperrors.CodeStorage, apperrors.CodeOf(err))
}

func TestCatalogServiceSingleton(t *testing.T) {
	original := GetCatalogService()
	defer SetCatalogService(original)

	svc := InitCatalogService(CatalogServiceOptions{Store: brokenCatalogStore{}})
	assert.Same(t, svc, GetCatalogService())

	SetCatalogService(nil)
	assert.Nil(t, GetCatalogService())
}
