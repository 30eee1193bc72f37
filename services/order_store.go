package services

import (
	"context"
	"errors"
	"time"

	"github.com/an-furnish/furnish-api/models"
)

// Sentinel errors returned by OrderStore implementations
var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrDuplicateCode        = errors.New("order code already in use")
	ErrConcurrentUpdate     = errors.New("order was modified concurrently")
	ErrAttachmentNotAllowed = errors.New("order no longer accepts an attachment")
	ErrAdminNotFound        = errors.New("admin not found")
	ErrDuplicateAdmin       = errors.New("admin username already in use")
)

// ListOptions pages through orders. A zero Limit returns every order.
type ListOptions struct {
	Page  int
	Limit int
}

// Offset is the number of rows skipped for the requested page
func (o ListOptions) Offset() int {
	if o.Limit <= 0 || o.Page <= 1 {
		return 0
	}
	return (o.Page - 1) * o.Limit
}

// StatusChange is applied atomically by OrderStore.UpdateStatus
type StatusChange struct {
	Status models.OrderStatus
	// Note is the formatted history line to append; empty means no append
	Note string
	At   time.Time
}

// OrderStore persists design requests
type OrderStore interface {
	// Insert assigns the internal id and stores order. A taken human code yields ErrDuplicateCode.
	Insert(ctx context.Context, order *models.DesignRequest) error
	FindByID(ctx context.Context, id string) (*models.DesignRequest, error)
	FindByCode(ctx context.Context, code string) (*models.DesignRequest, error)
	// List returns orders newest first
	List(ctx context.Context, opts ListOptions) ([]models.DesignRequest, error)
	// UpdateStatus sets the status, appends the note and refreshes updatedAt as one write.
	// It returns the updated order and the status it replaced.
	UpdateStatus(ctx context.Context, id string, change StatusChange) (*models.DesignRequest, models.OrderStatus, error)
	// SetAttachment records key only while the order is New and has no attachment
	SetAttachment(ctx context.Context, id, key string, at time.Time) (*models.DesignRequest, error)
	Ping(ctx context.Context) error
}

// normalizeOrder puts timestamps in UTC whatever zone the driver decoded them in
func normalizeOrder(order *models.DesignRequest) {
	order.CreatedAt = order.CreatedAt.UTC()
	order.UpdatedAt = order.UpdatedAt.UTC()
	if order.Notes == nil {
		order.Notes = models.NoteList{}
	}
}
