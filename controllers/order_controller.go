package controllers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/an-furnish/furnish-api/apperrors"
	"github.com/an-furnish/furnish-api/config"
	"github.com/an-furnish/furnish-api/middleware"
	"github.com/an-furnish/furnish-api/models"
	"github.com/an-furnish/furnish-api/services"
)

// StatusWarningHeader carries the advisory message for unusual status moves
const StatusWarningHeader = "X-Status-Warning"

const defaultStoreTimeout = 5 * time.Second

// CreateOrderRequest represents the request body for submitting a design request.
// A catalog product can be sent either as a product object or as flat productId/productName.
type CreateOrderRequest struct {
	Product        *models.ProductRef    `json:"product"`
	ProductID      *string               `json:"productId"`
	ProductName    *string               `json:"productName"`
	Category       string                `json:"category"`
	Specifications models.Specifications `json:"specifications"`
	Contact        models.Contact        `json:"contact"`
	Budget         string                `json:"budget"`
	Timeline       *string               `json:"timeline"`
}

func (r CreateOrderRequest) toInput() services.NewOrderInput {
	in := services.NewOrderInput{
		Product:        r.Product,
		Category:       r.Category,
		Specifications: r.Specifications,
		Contact:        r.Contact,
		Budget:         r.Budget,
	}
	if in.Product == nil && r.ProductID != nil && strings.TrimSpace(*r.ProductID) != "" {
		in.Product = &models.ProductRef{ID: *r.ProductID}
		if r.ProductName != nil {
			in.Product.Title = *r.ProductName
		}
	}
	if r.Timeline != nil {
		in.Timeline = *r.Timeline
	}
	return in
}

// UpdateStatusRequest represents the request body for changing an order's status
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note"`
}

// storeContext bounds store calls made on behalf of a request
func storeContext(c *gin.Context) (context.Context, context.CancelFunc) {
	timeout := defaultStoreTimeout
	if cfg := config.GetConfig(); cfg != nil && cfg.StoreTimeout > 0 {
		timeout = cfg.StoreTimeout
	}
	return context.WithTimeout(c.Request.Context(), timeout)
}

// CreateOrder handles POST /api/orders - submits a new design request (public)
func CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.WriteError(c, apperrors.Validation("Invalid request data"))
		return
	}

	ctx, cancel := storeContext(c)
	defer cancel()

	order, err := services.GetOrderService().Create(ctx, req.toInput())
	if err != nil {
		middleware.WriteErrorAs(c, err, "Failed to submit order, please try again")
		return
	}

	c.JSON(http.StatusCreated, order)
}

// ListOrders handles GET /api/orders - lists every order newest first (admin)
// Optional ?page=&limit= paginate the result.
func ListOrders(c *gin.Context) {
	page, err := queryInt(c, "page")
	if err != nil {
		middleware.WriteError(c, apperrors.Validation("page must be a non-negative integer"))
		return
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		middleware.WriteError(c, apperrors.Validation("limit must be a non-negative integer"))
		return
	}

	ctx, cancel := storeContext(c)
	defer cancel()

	orders, err := services.GetOrderService().ListAll(ctx, services.ListOptions{Page: page, Limit: limit})
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	if orders == nil {
		orders = []models.DesignRequest{}
	}

	c.JSON(http.StatusOK, orders)
}

// TrackOrder handles GET /api/orders/track/:humanCode - public order tracking
func TrackOrder(c *gin.Context) {
	ctx, cancel := storeContext(c)
	defer cancel()

	order, err := services.GetOrderService().GetByHumanCode(ctx, c.Param("humanCode"))
	if err != nil {
		middleware.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, trackingView{DesignRequest: order, Progress: order.Progress()})
}

// trackingView is the order plus its step on the progress bar, -1 once cancelled
type trackingView struct {
	*models.DesignRequest
	Progress int `json:"progress"`
}

// GetOrder handles GET /api/orders/:id - loads one order by internal id (admin)
func GetOrder(c *gin.Context) {
	ctx, cancel := storeContext(c)
	defer cancel()

	order, err := services.GetOrderService().GetByInternalID(ctx, c.Param("id"))
	if err != nil {
		middleware.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// UpdateOrderStatus handles PUT /api/orders/:id/status (admin)
// Unusual moves are applied and reported in the X-Status-Warning header.
func UpdateOrderStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.WriteError(c, apperrors.Validation("Invalid status value"))
		return
	}

	ctx, cancel := storeContext(c)
	defer cancel()
	if claims, err := middleware.GetAdminClaims(c); err == nil {
		ctx = middleware.LoggerFrom(c).WithField(ctx, "admin", claims.Username)
	}

	result, err := services.GetOrderService().UpdateStatus(ctx, c.Param("id"), req.Status, req.Note)
	if err != nil {
		middleware.WriteError(c, err)
		return
	}

	if result.Advice.Unusual {
		c.Header(StatusWarningHeader, result.Advice.Reason)
	}
	c.JSON(http.StatusOK, result.Order)
}

// UploadOrderAttachment handles POST /api/orders/:id/attachment - multipart field "image"
func UploadOrderAttachment(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		middleware.WriteError(c, apperrors.Validation("No image file provided"))
		return
	}

	ctx, cancel := storeContext(c)
	defer cancel()

	order, err := services.GetOrderService().AttachImage(ctx, c.Param("id"), file)
	if err != nil {
		middleware.WriteErrorAs(c, err, "Failed to upload image, please try again")
		return
	}

	c.JSON(http.StatusOK, order)
}

// GetOrderStatuses handles GET /api/orders/statuses - the tracking page's progress steps
func GetOrderStatuses(c *gin.Context) {
	all := models.AllStatuses()
	terminal := make([]models.OrderStatus, 0, 2)
	for _, status := range all {
		if status.IsTerminal() {
			terminal = append(terminal, status)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"all":      all,
		"progress": models.ProgressSteps(),
		"terminal": terminal,
	})
}

func queryInt(c *gin.Context, name string) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, strconv.ErrRange
	}
	return n, nil
}
