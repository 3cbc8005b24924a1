package controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yeremiapane/billiard-pos/controllers"
	"github.com/yeremiapane/billiard-pos/models"
)

func setupProductRouter(db *gorm.DB) *gin.Engine {
	// nil catalog: caching and invalidation are no-ops
	productCtrl := controllers.NewProductController(db, nil)

	router := newEngine()
	router.GET("/categories", productCtrl.GetAllCategories)
	router.POST("/categories", productCtrl.CreateCategory)
	router.GET("/products", productCtrl.GetAllProducts)
	router.POST("/products", productCtrl.CreateProduct)
	router.PATCH("/products/:id", productCtrl.UpdateProduct)
	router.POST("/products/:id/stock", productCtrl.AdjustStock)
	return router
}

func createCategory(t *testing.T, router *gin.Engine, name string) models.ProductCategory {
	w, env := doJSON(t, router, http.MethodPost, "/categories", map[string]string{"name": name})
	require.Equal(t, http.StatusCreated, w.Code, env.Message)
	var category models.ProductCategory
	decode(t, env, &category)
	return category
}

func TestCreateCategoryRejectsDuplicates(t *testing.T) {
	db := setupTestDB(t)
	router := setupProductRouter(db)

	createCategory(t, router, "Drinks")
	createCategory(t, router, "Food")

	w, env := doJSON(t, router, http.MethodPost, "/categories", map[string]string{"name": " Drinks "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "CATEGORY_EXISTS", env.Code)

	w, env = doJSON(t, router, http.MethodGet, "/categories", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var categories []models.ProductCategory
	decode(t, env, &categories)
	require.Len(t, categories, 2)
	assert.Equal(t, "Drinks", categories[0].Name)
}

func TestCreateProductAndFilter(t *testing.T) {
	db := setupTestDB(t)
	router := setupProductRouter(db)
	drinks := createCategory(t, router, "Drinks")
	food := createCategory(t, router, "Food")

	w, env := doJSON(t, router, http.MethodPost, "/products", map[string]interface{}{
		"category_id": drinks.ID, "name": "Kopi Susu", "price": 18000, "stock": 20,
	})
	require.Equal(t, http.StatusCreated, w.Code, env.Message)

	w, env = doJSON(t, router, http.MethodPost, "/products", map[string]interface{}{
		"category_id": food.ID, "name": "Mie Goreng", "price": 25000, "stock": 5, "active": false,
	})
	require.Equal(t, http.StatusCreated, w.Code, env.Message)
	var hidden models.Product
	decode(t, env, &hidden)
	assert.False(t, hidden.Active)

	var stored models.Product
	require.NoError(t, db.First(&stored, hidden.ID).Error)
	assert.False(t, stored.Active)

	w, env = doJSON(t, router, http.MethodPost, "/products", map[string]interface{}{
		"category_id": 999, "name": "Ghost", "price": 1000,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "CATEGORY_NOT_FOUND", env.Code)

	var products []models.Product
	w, env = doJSON(t, router, http.MethodGet, "/products?active=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, env, &products)
	require.Len(t, products, 1)
	assert.Equal(t, "Kopi Susu", products[0].Name)
	assert.Equal(t, "Drinks", products[0].Category.Name)

	w, env = doJSON(t, router, http.MethodGet, fmt.Sprintf("/products?category_id=%d", food.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, env, &products)
	require.Len(t, products, 1)
	assert.Equal(t, "Mie Goreng", products[0].Name)

	w, env = doJSON(t, router, http.MethodGet, "/products", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, env, &products)
	assert.Len(t, products, 2)
}

func TestUpdateProduct(t *testing.T) {
	db := setupTestDB(t)
	router := setupProductRouter(db)
	drinks := createCategory(t, router, "Drinks")

	w, env := doJSON(t, router, http.MethodPost, "/products", map[string]interface{}{
		"category_id": drinks.ID, "name": "Air Mineral", "price": 5000, "stock": 30,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var product models.Product
	decode(t, env, &product)

	path := fmt.Sprintf("/products/%d", product.ID)
	w, env = doJSON(t, router, http.MethodPatch, path, map[string]interface{}{"price": 6000, "active": false})
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	decode(t, env, &product)
	assert.Equal(t, int64(6000), product.Price)
	assert.False(t, product.Active)
	assert.Equal(t, 30, product.Stock)

	w, env = doJSON(t, router, http.MethodPatch, "/products/999", map[string]interface{}{"price": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "PRODUCT_NOT_FOUND", env.Code)
}

func TestAdjustStockNeverGoesNegative(t *testing.T) {
	db := setupTestDB(t)
	router := setupProductRouter(db)
	drinks := createCategory(t, router, "Drinks")

	w, env := doJSON(t, router, http.MethodPost, "/products", map[string]interface{}{
		"category_id": drinks.ID, "name": "Teh Botol", "price": 7000, "stock": 10,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var product models.Product
	decode(t, env, &product)
	path := fmt.Sprintf("/products/%d/stock", product.ID)

	w, env = doJSON(t, router, http.MethodPost, path, map[string]int{"delta": 5})
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	decode(t, env, &product)
	assert.Equal(t, 15, product.Stock)

	w, env = doJSON(t, router, http.MethodPost, path, map[string]int{"delta": -16})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INSUFFICIENT_STOCK", env.Code)

	w, env = doJSON(t, router, http.MethodPost, path, map[string]int{"delta": -15})
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	decode(t, env, &product)
	assert.Equal(t, 0, product.Stock)

	w, env = doJSON(t, router, http.MethodPost, path, map[string]int{"delta": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Code)
}
