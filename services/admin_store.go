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

const adminUsersCollection = "admin_users"

// AdminStore persists back-office accounts
type AdminStore interface {
	Count(ctx context.Context) (int64, error)
	// Create assigns the id and stores admin. A taken username yields ErrDuplicateAdmin.
	Create(ctx context.Context, admin *models.AdminUser) error
	FindByUsername(ctx context.Context, username string) (*models.AdminUser, error)
	FindByID(ctx context.Context, id string) (*models.AdminUser, error)
}

// GormAdminStore keeps admins in the relational database
type GormAdminStore struct {
	db *gorm.DB
}

func NewGormAdminStore(db *gorm.DB) *GormAdminStore {
	return &GormAdminStore{db: db}
}

// Migrate creates or updates the admin_users table
func (s *GormAdminStore) Migrate() error {
	if err := s.db.AutoMigrate(&models.AdminUser{}); err != nil {
		return fmt.Errorf("failed to migrate admin users: %w", err)
	}
	return nil
}

func (s *GormAdminStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.AdminUser{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count admins: %w", err)
	}
	return n, nil
}

func (s *GormAdminStore) Create(ctx context.Context, admin *models.AdminUser) error {
	if admin.ID == "" {
		admin.ID = uuid.NewString()
	}
	if err := s.db.WithContext(ctx).Create(admin).Error; err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateAdmin
		}
		return fmt.Errorf("failed to create admin: %w", err)
	}
	return nil
}

func (s *GormAdminStore) FindByUsername(ctx context.Context, username string) (*models.AdminUser, error) {
	return s.findOne(ctx, "username = ?", username)
}

func (s *GormAdminStore) FindByID(ctx context.Context, id string) (*models.AdminUser, error) {
	return s.findOne(ctx, "id = ?", id)
}

func (s *GormAdminStore) findOne(ctx context.Context, query, arg string) (*models.AdminUser, error) {
	var admin models.AdminUser
	if err := s.db.WithContext(ctx).Where(query, arg).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAdminNotFound
		}
		return nil, fmt.Errorf("failed to load admin: %w", err)
	}
	return &admin, nil
}

// MongoAdminStore keeps admins in the admin_users collection
type MongoAdminStore struct {
	coll *mongo.Collection
}

func NewMongoAdminStore(db *mongo.Database) *MongoAdminStore {
	return &MongoAdminStore{coll: db.Collection(adminUsersCollection)}
}

// EnsureIndexes creates the unique username index
func (s *MongoAdminStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetName("username_unique").SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create admin indexes: %w", err)
	}
	return nil
}

func (s *MongoAdminStore) Count(ctx context.Context) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count admins: %w", err)
	}
	return n, nil
}

func (s *MongoAdminStore) Create(ctx context.Context, admin *models.AdminUser) error {
	if admin.ID == "" {
		admin.ID = uuid.NewString()
	}
	if _, err := s.coll.InsertOne(ctx, admin); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateAdmin
		}
		return fmt.Errorf("failed to create admin: %w", err)
	}
	return nil
}

func (s *MongoAdminStore) FindByUsername(ctx context.Context, username string) (*models.AdminUser, error) {
	return s.findOne(ctx, bson.M{"username": username})
}

func (s *MongoAdminStore) FindByID(ctx context.Context, id string) (*models.AdminUser, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *MongoAdminStore) findOne(ctx context.Context, filter bson.M) (*models.AdminUser, error) {
	var admin models.AdminUser
	if err := s.coll.FindOne(ctx, filter).Decode(&admin); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrAdminNotFound
		}
		return nil, fmt.Errorf("failed to load admin: %w", err)
	}
	return &admin, nil
}
