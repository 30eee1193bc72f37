package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/an-furnish/furnish-api/apperrors"
	"github.com/an-furnish/furnish-api/middleware"
	"github.com/an-furnish/furnish-api/models"
	"github.com/an-furnish/furnish-api/services"
)

// CreateCategoryRequest is the admin payload for POST /api/categories
type CreateCategoryRequest struct {
	Name           string                 `json:"name"`
	Slug           string                 `json:"slug"`
	Image          string                 `json:"image"`
	AllowedFilters models.CategoryFilters `json:"allowedFilters"`
}

// CreateProductRequest is the admin payload for POST /api/products
type CreateProductRequest struct {
	Title       string                   `json:"title"`
	Category    string                   `json:"category"`
	Tagline     string                   `json:"tagline"`
	Description string                   `json:"description"`
	Materials   []string                 `json:"materials"`
	Dimensions  models.ProductDimensions `json:"dimensions"`
	Image       string                   `json:"image"`
	PriceRange  string                   `json:"priceRange"`
	Tags        []string                 `json:"tags"`
	Published   *bool                    `json:"published"`
}

// ListCategories handles GET /api/categories (public)
func ListCategories(c *gin.Context) {
	ctx, cancel := storeContext(c)
	defer cancel()

	categories, err := services.GetCatalogService().Categories(ctx)
	if err != nil {
		middleware.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, categories)
}

// CreateCategory handles POST /api/categories (admin)
func CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.WriteError(c, apperrors.Validation("Invalid request data"))
		return
	}

	ctx, cancel := storeContext(c)
	defer cancel()

	category, err := services.GetCatalogService().CreateCategory(ctx, services.NewCategoryInput{
		Name:           req.Name,
		Slug:           req.Slug,
		Image:          req.Image,
		AllowedFilters: req.AllowedFilters,
	})
	if err != nil {
		middleware.WriteError(c, err)
		return
	}

	c.JSON(http.StatusCreated, category)
}

// DeleteCategory handles DELETE /api/categories/:id (admin)
func DeleteCategory(c *gin.Context) {
	ctx, cancel := storeContext(c)
	defer cancel()

	if err := services.GetCatalogService().DeleteCategory(ctx, c.Param("id")); err != nil {
		middleware.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Deleted"})
}

// ListProducts handles GET /api/products?category= (public, published only)
func ListProducts(c *gin.Context) {
	ctx, cancel := storeContext(c)
	defer cancel()

	products, err := services.GetCatalogService().Products(ctx, c.Query("category"))
	if err != nil {
		middleware.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, products)
}

// GetProduct handles GET /api/products/:id (public)
func GetProduct(c *gin.Context) {
	ctx, cancel := storeContext(c)
	defer cancel()

	product, err := services.GetCatalogService().Product(ctx, c.Param("id"))
	if err != nil {
		middleware.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// CreateProduct handles POST /api/products (admin)
func CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.WriteError(c, apperrors.Validation("Invalid request data"))
		return
	}

	ctx, cancel := storeContext(c)
	defer cancel()

	product, err := services.GetCatalogService().CreateProduct(ctx, services.NewProductInput{
		Title:       req.Title,
		Category:    req.Category,
		Tagline:     req.Tagline,
		Description: req.Description,
		Materials:   req.Materials,
		Dimensions:  req.Dimensions,
		Image:       req.Image,
		PriceRange:  req.PriceRange,
		Tags:        req.Tags,
		Published:   req.Published,
	})
	if err != nil {
		middleware.WriteError(c, err)
		return
	}

	c.JSON(http.StatusCreated, product)
}

// DeleteProduct handles DELETE /api/products/:id (admin)
func DeleteProduct(c *gin.Context) {
	ctx, cancel := storeContext(c)
	defer cancel()

	if err := services.GetCatalogService().DeleteProduct(ctx, c.Param("id")); err != nil {
		middleware.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Deleted"})
}
