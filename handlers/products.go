package handlers

import (
	"errors"
	"net/http"
	"path/filepath"
	"strconv"

	"market-delivery-api/models"
	"market-delivery-api/repositories"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductHandler serves the catalog endpoints
type ProductHandler struct {
	products  *repositories.ProductRepository
	uploadDir string
}

func NewProductHandler(products *repositories.ProductRepository, uploadDir string) *ProductHandler {
	return &ProductHandler{products: products, uploadDir: uploadDir}
}

// List returns the whole catalog
func (h *ProductHandler) List(c *gin.Context) {
	products, err := h.products.FindAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load products"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(products), "products": products})
}

// ListActive returns products currently offered to customers
func (h *ProductHandler) ListActive(c *gin.Context) {
	products, err := h.products.FindActive()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load products"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(products), "products": products})
}

// Create adds a catalog entry from a multipart form with an optional image.
// Prices here are indicative only — settlement happens against the physical
// receipt via the order's final total.
func (h *ProductHandler) Create(c *gin.Context) {
	name := c.PostForm("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}
	price, err := strconv.ParseFloat(c.PostForm("indicativePrice"), 64)
	if err != nil || price <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "indicativePrice must be a positive number"})
		return
	}

	product := models.Product{
		Name:            name,
		Category:        c.PostForm("category"),
		IndicativePrice: price,
		IsActive:        c.DefaultPostForm("isActive", "true") != "false",
	}

	if file, err := c.FormFile("image"); err == nil {
		filename := uuid.NewString() + filepath.Ext(file.Filename)
		if err := c.SaveUploadedFile(file, filepath.Join(h.uploadDir, filename)); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store image"})
			return
		}
		product.ImageURL = "/uploads/" + filename
	}

	if err := h.products.Create(&product); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Product created", "product": product})
}

// Update applies a partial update to allow-listed fields only
func (h *ProductHandler) Update(c *gin.Context) {
	var req map[string]interface{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	allowed := map[string]bool{"name": true, "category": true, "indicative_price": true, "is_active": true, "image_url": true}
	updates := map[string]interface{}{}
	for k, v := range req {
		if allowed[k] {
			updates[k] = v
		}
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No updatable fields supplied"})
		return
	}

	product, err := h.products.UpdateFields(c.Param("id"), updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product updated", "product": product})
}
