package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/billiard-pos/cache"
	"github.com/yeremiapane/billiard-pos/dto"
	"github.com/yeremiapane/billiard-pos/models"
	"github.com/yeremiapane/billiard-pos/services"
	"github.com/yeremiapane/billiard-pos/utils"
)

var (
	errCategoryNotFound = errors.New("category not found")
	errCategoryExists   = errors.New("category already exists")
)

// ProductController serves the F&B catalog. Every write bumps the catalog
// cache version so cached GET /products and GET /categories go stale.
type ProductController struct {
	DB      *gorm.DB
	Catalog *cache.Catalog
}

func NewProductController(db *gorm.DB, catalog *cache.Catalog) *ProductController {
	return &ProductController{DB: db, Catalog: catalog}
}

func (pc *ProductController) GetAllCategories(c *gin.Context) {
	categories := []models.ProductCategory{}
	if err := pc.DB.WithContext(c.Request.Context()).Order("name ASC").Find(&categories).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All product categories", categories)
}

func (pc *ProductController) CreateCategory(c *gin.Context) {
	var req dto.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	ctx := c.Request.Context()
	name := strings.TrimSpace(req.Name)

	var existing int64
	if err := pc.DB.WithContext(ctx).Model(&models.ProductCategory{}).Where("name = ?", name).Count(&existing).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	if existing > 0 {
		utils.RespondErrorCode(c, http.StatusBadRequest, "CATEGORY_EXISTS", errCategoryExists)
		return
	}

	category := models.ProductCategory{Name: name}
	if err := pc.DB.WithContext(ctx).Create(&category).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	pc.Catalog.Invalidate(ctx)

	utils.RespondJSON(c, http.StatusCreated, "Category created", category)
}

// GetAllProducts accepts ?category_id= and ?active=true|false.
func (pc *ProductController) GetAllProducts(c *gin.Context) {
	query := pc.DB.WithContext(c.Request.Context()).Preload("Category").Order("name ASC")
	if categoryID := c.Query("category_id"); categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}
	switch c.Query("active") {
	case "true":
		query = query.Where("active = ?", true)
	case "false":
		query = query.Where("active = ?", false)
	}

	products := []models.Product{}
	if err := query.Find(&products).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All products", products)
}

func (pc *ProductController) CreateProduct(c *gin.Context) {
	var req dto.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	ctx := c.Request.Context()

	if !pc.categoryExists(c, req.CategoryID) {
		return
	}

	product := models.Product{
		CategoryID: req.CategoryID,
		Name:       strings.TrimSpace(req.Name),
		Price:      req.Price,
		Stock:      req.Stock,
		Active:     true,
	}
	err := pc.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Category").Create(&product).Error; err != nil {
			return err
		}
		// a zero bool is skipped on insert, so inactive needs its own write
		if req.Active != nil && !*req.Active {
			product.Active = false
			return tx.Model(&product).Update("active", false).Error
		}
		return nil
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	pc.Catalog.Invalidate(ctx)

	utils.InfoLogger.Printf("Product created: %s (%s)", product.Name, utils.FormatRupiah(product.Price))
	utils.RespondJSON(c, http.StatusCreated, "Product created", product)
}

func (pc *ProductController) UpdateProduct(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	ctx := c.Request.Context()

	product, ok := pc.findProduct(c, id)
	if !ok {
		return
	}

	updates := map[string]interface{}{}
	if req.CategoryID != nil {
		if !pc.categoryExists(c, *req.CategoryID) {
			return
		}
		updates["category_id"] = *req.CategoryID
	}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}
	if len(updates) > 0 {
		if err := pc.DB.WithContext(ctx).Model(product).Updates(updates).Error; err != nil {
			respondServiceError(c, err)
			return
		}
		pc.Catalog.Invalidate(ctx)
	}

	product, ok = pc.findProduct(c, id)
	if !ok {
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Product updated", product)
}

// AdjustStock applies a signed delta; the result may never go below zero.
func (pc *ProductController) AdjustStock(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req dto.StockAdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	ctx := c.Request.Context()

	if _, ok := pc.findProduct(c, id); !ok {
		return
	}

	res := pc.DB.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND stock + ? >= 0", id, req.Delta).
		Update("stock", gorm.Expr("stock + ?", req.Delta))
	if res.Error != nil {
		respondServiceError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		respondServiceError(c, services.ErrInsufficientStock)
		return
	}
	pc.Catalog.Invalidate(ctx)

	product, ok := pc.findProduct(c, id)
	if !ok {
		return
	}
	utils.InfoLogger.Printf("Stock adjusted for %s by %d, now %d", product.Name, req.Delta, product.Stock)
	utils.RespondJSON(c, http.StatusOK, "Stock adjusted", product)
}

func (pc *ProductController) findProduct(c *gin.Context, id uint) (*models.Product, bool) {
	var product models.Product
	err := pc.DB.WithContext(c.Request.Context()).Preload("Category").First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondServiceError(c, services.ErrProductNotFound)
		return nil, false
	}
	if err != nil {
		respondServiceError(c, err)
		return nil, false
	}
	return &product, true
}

func (pc *ProductController) categoryExists(c *gin.Context, id uint) bool {
	var count int64
	if err := pc.DB.WithContext(c.Request.Context()).Model(&models.ProductCategory{}).Where("id = ?", id).Count(&count).Error; err != nil {
		respondServiceError(c, err)
		return false
	}
	if count == 0 {
		utils.RespondErrorCode(c, http.StatusNotFound, "CATEGORY_NOT_FOUND", errCategoryNotFound)
		return false
	}
	return true
}
