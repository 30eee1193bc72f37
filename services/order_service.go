package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/an-furnish/furnish-api/apperrors"
	"github.com/an-furnish/furnish-api/logger"
	"github.com/an-furnish/furnish-api/metrics"
	"github.com/an-furnish/furnish-api/models"
	"github.com/an-furnish/furnish-api/utils"
)

const (
	defaultCategory = "Custom"
	defaultBudget   = "Not specified"
	// noteTimeLayout renders note timestamps like 3/14/2026, 9:26:53 AM
	noteTimeLayout = "1/2/2006, 3:04:05 PM"
)

// NewOrderInput is the partial order submitted by a customer
type NewOrderInput struct {
	// Product is set when the order starts from a catalog product
	Product        *models.ProductRef
	Category       string
	Specifications models.Specifications
	Contact        models.Contact
	Budget         string
	Timeline       string
}

// StatusUpdate is the outcome of OrderService.UpdateStatus
type StatusUpdate struct {
	Order    *models.DesignRequest
	Previous models.OrderStatus
	Advice   models.TransitionAdvice
}

// OrderServiceOptions wires an OrderService
type OrderServiceOptions struct {
	Store   OrderStore
	Images  ImageService
	Logger  *logger.Logger
	Metrics *metrics.OrderMetrics
	// Location renders note timestamps and picks the year in order codes; UTC when nil
	Location        *time.Location
	MaxCodeAttempts int
	GenerateCode    CodeGenerator
	Now             func() time.Time
}

// OrderService owns the order lifecycle: creation, lookup, listing, status updates
// and reference image attachment
type OrderService struct {
	store           OrderStore
	images          ImageService
	log             *logger.Logger
	metrics         *metrics.OrderMetrics
	loc             *time.Location
	maxCodeAttempts int
	generateCode    CodeGenerator
	now             func() time.Time
	validate        *validator.Validate
}

var orderServiceInstance *OrderService

// NewOrderService builds an OrderService, filling unset options with defaults
func NewOrderService(opts OrderServiceOptions) *OrderService {
	s := &OrderService{
		store:           opts.Store,
		images:          opts.Images,
		log:             opts.Logger,
		metrics:         opts.Metrics,
		loc:             opts.Location,
		maxCodeAttempts: opts.MaxCodeAttempts,
		generateCode:    opts.GenerateCode,
		now:             opts.Now,
		validate:        validator.New(validator.WithRequiredStructEnabled()),
	}
	if s.log == nil {
		s.log = logger.Nop()
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.maxCodeAttempts < 1 {
		s.maxCodeAttempts = 5
	}
	if s.generateCode == nil {
		s.generateCode = RandomOrderCode
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// InitOrderService builds the process-wide OrderService
func InitOrderService(opts OrderServiceOptions) *OrderService {
	orderServiceInstance = NewOrderService(opts)
	return orderServiceInstance
}

// GetOrderService returns the initialized order service instance
func GetOrderService() *OrderService {
	return orderServiceInstance
}

// SetOrderService sets the order service instance (primarily for testing)
func SetOrderService(service *OrderService) {
	orderServiceInstance = service
}

// Store exposes the backing store for health checks
func (s *OrderService) Store() OrderStore {
	return s.store
}

// Create validates and stores a new order with status New and a fresh human code
func (s *OrderService) Create(ctx context.Context, in NewOrderInput) (*models.DesignRequest, error) {
	contact := trimContact(in.Contact)
	if err := s.validate.Struct(contact); err != nil {
		return nil, apperrors.Validation(contactErrorMessage(err))
	}

	now := s.timestamp()
	order := &models.DesignRequest{
		FlowType:       models.FlowCustom,
		Category:       firstNonBlank(in.Category, defaultCategory),
		Specifications: in.Specifications,
		Contact:        contact,
		Budget:         firstNonBlank(in.Budget, defaultBudget),
		Status:         models.StatusNew,
		Notes:          models.NoteList{},
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if timeline := strings.TrimSpace(in.Timeline); timeline != "" {
		order.Timeline = &timeline
	}
	if p := in.Product; p != nil && strings.TrimSpace(p.ID) != "" {
		id := strings.TrimSpace(p.ID)
		title := strings.TrimSpace(p.Title)
		order.FlowType = models.FlowPredefined
		order.ProductID = &id
		order.ProductName = &title
		if strings.TrimSpace(in.Category) == "" && strings.TrimSpace(p.Category) != "" {
			order.Category = strings.TrimSpace(p.Category)
		}
	}

	for attempt := 1; ; attempt++ {
		order.ID = ""
		order.HumanCode = s.generateCode(now.In(s.loc))

		err := s.store.Insert(ctx, order)
		if err == nil {
			break
		}
		if !errors.Is(err, ErrDuplicateCode) {
			s.log.Error(ctx, "failed to store order", err)
			return nil, apperrors.Storage(err, "failed to store order")
		}

		s.metrics.IncCodeCollision()
		logCtx := s.log.WithFields(ctx, map[string]any{"human_code": order.HumanCode, "attempt": attempt})
		s.log.Warn(logCtx, "order code collision")
		if attempt >= s.maxCodeAttempts {
			return nil, apperrors.Storage(
				fmt.Errorf("no free order code after %d attempts: %w", attempt, err),
				"failed to allocate an order code",
			)
		}
	}

	s.metrics.IncCreated(string(order.FlowType))
	logCtx := s.log.WithFields(ctx, map[string]any{
		"order_id":   order.ID,
		"human_code": order.HumanCode,
		"flow":       order.FlowType,
		"specified":  !order.Specifications.IsZero(),
	})
	s.log.Info(logCtx, "order created")
	return order, nil
}

// GetByInternalID returns the order with the given internal id
func (s *OrderService) GetByInternalID(ctx context.Context, id string) (*models.DesignRequest, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.NotFound("Order not found")
	}
	order, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, s.lookupError(ctx, err)
	}
	s.attachURL(ctx, order)
	return order, nil
}

// GetByHumanCode returns the order with exactly this code; matching is case-sensitive
func (s *OrderService) GetByHumanCode(ctx context.Context, code string) (*models.DesignRequest, error) {
	if code == "" {
		return nil, apperrors.NotFound("Order not found")
	}
	order, err := s.store.FindByCode(ctx, code)
	if err != nil {
		return nil, s.lookupError(ctx, err)
	}
	s.attachURL(ctx, order)
	return order, nil
}

// ListAll returns orders newest first. Zero options return every order.
func (s *OrderService) ListAll(ctx context.Context, opts ListOptions) ([]models.DesignRequest, error) {
	if opts.Page < 0 || opts.Limit < 0 {
		return nil, apperrors.Validation("page and limit must not be negative")
	}
	if opts.Limit > 0 && opts.Page == 0 {
		opts.Page = 1
	}

	orders, err := s.store.List(ctx, opts)
	if err != nil {
		s.log.Error(ctx, "failed to list orders", err)
		return nil, apperrors.Storage(err, "failed to list orders")
	}
	for i := range orders {
		s.attachURL(ctx, &orders[i])
	}
	return orders, nil
}

// UpdateStatus sets the order's status and appends a timestamped note when note is not blank.
// Any taxonomy value is accepted from any status; unusual moves are reported in Advice.
func (s *OrderService) UpdateStatus(ctx context.Context, id, status, note string) (*StatusUpdate, error) {
	next, err := models.ParseStatus(status)
	if err != nil {
		return nil, apperrors.Validation("Invalid status value")
	}

	at := s.timestamp()
	change := StatusChange{Status: next, At: at}
	if trimmed := strings.TrimSpace(note); trimmed != "" {
		change.Note = FormatNote(at, s.loc, trimmed)
	}

	order, previous, err := s.store.UpdateStatus(ctx, id, change)
	if err != nil {
		switch {
		case errors.Is(err, ErrOrderNotFound):
			return nil, apperrors.NotFound("Order not found")
		case errors.Is(err, ErrConcurrentUpdate):
			s.log.Warn(s.log.WithOrderID(ctx, id), "status update gave up after concurrent writes")
			return nil, apperrors.Wrap(apperrors.CodeConflict, err, "Order was updated by someone else, please retry")
		default:
			s.log.Error(ctx, "failed to update order status", err)
			return nil, apperrors.Storage(err, "failed to update order status")
		}
	}

	advice := s.CheckTransition(previous, next)
	s.metrics.IncStatusUpdate(string(next))
	logCtx := s.log.WithFields(ctx, map[string]any{
		"order_id": order.ID,
		"from":     previous,
		"to":       next,
		"noted":    change.Note != "",
	})
	if advice.Unusual {
		s.metrics.IncUnusualTransition()
		s.log.Warn(s.log.WithField(logCtx, "reason", advice.Reason), "unusual status transition")
	} else {
		s.log.Info(logCtx, "order status updated")
	}

	s.attachURL(ctx, order)
	return &StatusUpdate{Order: order, Previous: previous, Advice: advice}, nil
}

// CheckTransition flags status moves an admin may not have intended. It never blocks.
func (s *OrderService) CheckTransition(from, to models.OrderStatus) models.TransitionAdvice {
	return models.CheckTransition(from, to)
}

// AttachImage uploads the customer's reference image. Only one image is accepted,
// and only while the order is still New.
func (s *OrderService) AttachImage(ctx context.Context, id string, file *multipart.FileHeader) (*models.DesignRequest, error) {
	if s.images == nil {
		return nil, apperrors.Storage(errors.New("image storage is not configured"), "image uploads are unavailable")
	}

	order, err := s.GetByInternalID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.HasAttachment() {
		return nil, apperrors.Conflict("An image is already attached to this order")
	}
	if order.Status != models.StatusNew {
		return nil, apperrors.Conflict("Images can only be attached to new orders")
	}

	key, err := s.images.UploadImage(ctx, order.HumanCode, file)
	if err != nil {
		var uploadErr *utils.FileUploadError
		if errors.As(err, &uploadErr) {
			return nil, apperrors.Wrap(apperrors.CodeValidation, err, uploadErr.Message)
		}
		s.log.Error(s.log.WithOrderID(ctx, id), "failed to upload attachment", err)
		return nil, apperrors.Storage(err, "failed to upload image")
	}

	updated, err := s.store.SetAttachment(ctx, id, key, s.timestamp())
	if err != nil {
		if delErr := s.images.DeleteImage(ctx, key); delErr != nil {
			s.log.Error(s.log.WithField(ctx, "key", key), "failed to remove orphaned attachment", delErr)
		}
		switch {
		case errors.Is(err, ErrOrderNotFound):
			return nil, apperrors.NotFound("Order not found")
		case errors.Is(err, ErrAttachmentNotAllowed):
			return nil, apperrors.Conflict("Order no longer accepts an image")
		default:
			s.log.Error(ctx, "failed to record attachment", err)
			return nil, apperrors.Storage(err, "failed to record attachment")
		}
	}

	s.log.Info(s.log.WithOrderID(ctx, id), "attachment stored")
	s.attachURL(ctx, updated)
	return updated, nil
}

// FormatNote renders a status note history line
func FormatNote(at time.Time, loc *time.Location, note string) string {
	if loc == nil {
		loc = time.UTC
	}
	return at.In(loc).Format(noteTimeLayout) + ": " + note
}

// timestamp is now in UTC at the millisecond precision both stores keep
func (s *OrderService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func (s *OrderService) lookupError(ctx context.Context, err error) error {
	if errors.Is(err, ErrOrderNotFound) {
		return apperrors.NotFound("Order not found")
	}
	s.log.Error(ctx, "failed to load order", err)
	return apperrors.Storage(err, "failed to load order")
}

// attachURL fills the presigned attachment link; a signing failure leaves it empty
func (s *OrderService) attachURL(ctx context.Context, order *models.DesignRequest) {
	if s.images == nil || order == nil || !order.HasAttachment() {
		return
	}
	url, err := s.images.GetImageURL(ctx, *order.AttachmentKey)
	if err != nil {
		s.log.Error(s.log.WithOrderID(ctx, order.ID), "failed to sign attachment url", err)
		return
	}
	order.AttachmentURL = &url
}

func trimContact(c models.Contact) models.Contact {
	return models.Contact{
		Name:    strings.TrimSpace(c.Name),
		Phone:   strings.TrimSpace(c.Phone),
		Email:   strings.TrimSpace(c.Email),
		City:    strings.TrimSpace(c.City),
		Address: strings.TrimSpace(c.Address),
	}
}

func contactErrorMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Contact name and phone are required"
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, strings.ToLower(fe.Field()))
	}
	verb := "is"
	if len(fields) > 1 {
		verb = "are"
	}
	return fmt.Sprintf("Contact %s %s required", strings.Join(fields, " and "), verb)
}

func firstNonBlank(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}
