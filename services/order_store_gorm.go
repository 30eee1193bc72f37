package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/an-furnish/furnish-api/metrics"
	"github.com/an-furnish/furnish-api/models"
)

// GormOrderStore keeps orders in PostgreSQL or SQLite. Status writes use an
// optimistic version check so concurrent note appends are never lost.
type GormOrderStore struct {
	db         *gorm.DB
	maxRetries int
	metrics    *metrics.OrderMetrics
}

// NewGormOrderStore builds a store over db. maxRetries bounds the compare-and-swap loop.
func NewGormOrderStore(db *gorm.DB, maxRetries int, m *metrics.OrderMetrics) *GormOrderStore {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &GormOrderStore{db: db, maxRetries: maxRetries, metrics: m}
}

// Migrate creates or updates the design_requests table
func (s *GormOrderStore) Migrate() error {
	if err := s.db.AutoMigrate(&models.DesignRequest{}); err != nil {
		return fmt.Errorf("failed to migrate design requests: %w", err)
	}
	return nil
}

func (s *GormOrderStore) Insert(ctx context.Context, order *models.DesignRequest) error {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	if order.Notes == nil {
		order.Notes = models.NoteList{}
	}

	if err := s.db.WithContext(ctx).Create(order).Error; err != nil {
		if isDuplicateKey(err) {
			order.ID = ""
			return ErrDuplicateCode
		}
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return nil
}

func (s *GormOrderStore) FindByID(ctx context.Context, id string) (*models.DesignRequest, error) {
	return s.findOne(ctx, "id = ?", id)
}

func (s *GormOrderStore) FindByCode(ctx context.Context, code string) (*models.DesignRequest, error) {
	return s.findOne(ctx, "human_code = ?", code)
}

func (s *GormOrderStore) findOne(ctx context.Context, query string, arg string) (*models.DesignRequest, error) {
	var order models.DesignRequest
	if err := s.db.WithContext(ctx).Where(query, arg).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	normalizeOrder(&order)
	return &order, nil
}

func (s *GormOrderStore) List(ctx context.Context, opts ListOptions) ([]models.DesignRequest, error) {
	query := s.db.WithContext(ctx).Order("created_at DESC").Order("id DESC")
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit).Offset(opts.Offset())
	}

	var orders []models.DesignRequest
	if err := query.Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	for i := range orders {
		normalizeOrder(&orders[i])
	}
	return orders, nil
}

func (s *GormOrderStore) UpdateStatus(ctx context.Context, id string, change StatusChange) (*models.DesignRequest, models.OrderStatus, error) {
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		current, err := s.FindByID(ctx, id)
		if err != nil {
			return nil, "", err
		}

		notes := make(models.NoteList, 0, len(current.Notes)+1)
		notes = append(notes, current.Notes...)
		if change.Note != "" {
			notes = append(notes, change.Note)
		}

		result := s.db.WithContext(ctx).
			Model(&models.DesignRequest{}).
			Where("id = ? AND version = ?", id, current.Version).
			Updates(map[string]any{
				"status":     change.Status,
				"notes":      notes,
				"updated_at": change.At,
				"version":    current.Version + 1,
			})
		if result.Error != nil {
			return nil, "", fmt.Errorf("failed to update order status: %w", result.Error)
		}
		if result.RowsAffected == 1 {
			previous := current.Status
			current.Status = change.Status
			current.Notes = notes
			current.UpdatedAt = change.At.UTC()
			current.Version++
			return current, previous, nil
		}

		// Another writer bumped the version between our read and write
		s.metrics.IncNoteConflict()
		if err := ctx.Err(); err != nil {
			return nil, "", err
		}
	}
	return nil, "", ErrConcurrentUpdate
}

func (s *GormOrderStore) SetAttachment(ctx context.Context, id, key string, at time.Time) (*models.DesignRequest, error) {
	result := s.db.WithContext(ctx).
		Model(&models.DesignRequest{}).
		Where("id = ? AND status = ? AND (attachment_key IS NULL OR attachment_key = '')", id, models.StatusNew).
		Updates(map[string]any{
			"attachment_key": key,
			"updated_at":     at,
			"version":        gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to record attachment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		if _, err := s.FindByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrAttachmentNotAllowed
	}
	return s.FindByID(ctx, id)
}

func (s *GormOrderStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// isDuplicateKey recognises unique violations whether or not the dialector translated them
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "sqlstate 23505")
}
