package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/gorm"

	"github.com/an-furnish/furnish-api/models"
)

const (
	categoriesCollection = "categories"
	productsCollection   = "products"
)

// Sentinel errors returned by CatalogStore implementations
var (
	ErrCategoryNotFound  = errors.New("category not found")
	ErrDuplicateCategory = errors.New("category slug already in use")
	ErrProductNotFound   = errors.New("product not found")
)

// ProductFilter narrows ListProducts. Zero values match everything.
type ProductFilter struct {
	Category      string
	PublishedOnly bool
}

// CatalogStore persists the product catalog and its categories
type CatalogStore interface {
	// ListCategories returns categories ordered by name
	ListCategories(ctx context.Context) ([]models.Category, error)
	// InsertCategory assigns the id and stores category. A taken slug yields ErrDuplicateCategory.
	InsertCategory(ctx context.Context, category *models.Category) error
	DeleteCategory(ctx context.Context, id string) error
	// ListProducts returns products newest first
	ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error)
	FindProduct(ctx context.Context, id string) (*models.Product, error)
	InsertProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id string) error
}

// GormCatalogStore keeps the catalog in the relational database
type GormCatalogStore struct {
	db *gorm.DB
}

func NewGormCatalogStore(db *gorm.DB) *GormCatalogStore {
	return &GormCatalogStore{db: db}
}

// Migrate creates or updates the categories and products tables
func (s *GormCatalogStore) Migrate() error {
	if err := s.db.AutoMigrate(&models.Category{}, &models.Product{}); err != nil {
		return fmt.Errorf("failed to migrate catalog: %w", err)
	}
	return nil
}

func (s *GormCatalogStore) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories := []models.Category{}
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	normalizeCategories(categories)
	return categories, nil
}

func (s *GormCatalogStore) InsertCategory(ctx context.Context, category *models.Category) error {
	if category.ID == "" {
		category.ID = uuid.NewString()
	}
	if err := s.db.WithContext(ctx).Create(category).Error; err != nil {
		if isDuplicateKey(err) {
			category.ID = ""
			return ErrDuplicateCategory
		}
		return fmt.Errorf("failed to insert category: %w", err)
	}
	return nil
}

func (s *GormCatalogStore) DeleteCategory(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Category{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete category: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func (s *GormCatalogStore) ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	query := s.db.WithContext(ctx).Order("created_at DESC")
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.PublishedOnly {
		query = query.Where("published = ?", true)
	}

	products := []models.Product{}
	if err := query.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	for i := range products {
		normalizeProduct(&products[i])
	}
	return products, nil
}

func (s *GormCatalogStore) FindProduct(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	normalizeProduct(&product)
	return &product, nil
}

func (s *GormCatalogStore) InsertProduct(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	if err := s.db.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

func (s *GormCatalogStore) DeleteProduct(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// normalizeProduct puts timestamps in UTC whatever zone the driver decoded them in
func normalizeProduct(product *models.Product) {
	product.CreatedAt = product.CreatedAt.UTC()
	product.UpdatedAt = product.UpdatedAt.UTC()
}

func normalizeCategories(categories []models.Category) {
	for i := range categories {
		categories[i].CreatedAt = categories[i].CreatedAt.UTC()
		categories[i].UpdatedAt = categories[i].UpdatedAt.UTC()
	}
}

// MongoCatalogStore keeps the catalog in the categories and products collections
type MongoCatalogStore struct {
	categories *mongo.Collection
	products   *mongo.Collection
}

func NewMongoCatalogStore(db *mongo.Database) *MongoCatalogStore {
	return &MongoCatalogStore{
		categories: db.Collection(categoriesCollection),
		products:   db.Collection(productsCollection),
	}
}

// EnsureIndexes creates the unique slug index and the product listing index
func (s *MongoCatalogStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.categories.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "slug", Value: 1}},
		Options: options.Index().SetName("slug_unique").SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create category indexes: %w", err)
	}

	_, err = s.products.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "category", Value: 1}, {Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("category_createdAt"),
	})
	if err != nil {
		return fmt.Errorf("failed to create product indexes: %w", err)
	}
	return nil
}

func (s *MongoCatalogStore) ListCategories(ctx context.Context) ([]models.Category, error) {
	cursor, err := s.categories.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer cursor.Close(ctx)

	categories := []models.Category{}
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}
	normalizeCategories(categories)
	return categories, nil
}

func (s *MongoCatalogStore) InsertCategory(ctx context.Context, category *models.Category) error {
	if category.ID == "" {
		category.ID = uuid.NewString()
	}
	if _, err := s.categories.InsertOne(ctx, category); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			category.ID = ""
			return ErrDuplicateCategory
		}
		return fmt.Errorf("failed to insert category: %w", err)
	}
	return nil
}

func (s *MongoCatalogStore) DeleteCategory(ctx context.Context, id string) error {
	res, err := s.categories.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func (s *MongoCatalogStore) ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	query := bson.M{}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.PublishedOnly {
		query["published"] = true
	}

	cursor, err := s.products.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	for i := range products {
		normalizeProduct(&products[i])
	}
	return products, nil
}

func (s *MongoCatalogStore) FindProduct(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := s.products.FindOne(ctx, bson.M{"_id": id}).Decode(&product); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	normalizeProduct(&product)
	return &product, nil
}

func (s *MongoCatalogStore) InsertProduct(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	if _, err := s.products.InsertOne(ctx, product); err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

func (s *MongoCatalogStore) DeleteProduct(ctx context.Context, id string) error {
	res, err := s.products.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrProductNotFound
	}
	return nil
}
