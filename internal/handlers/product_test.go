package handlers_test

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JastiRaja/parnika-backend/internal/models"
)

type productEnvelope struct {
	Success bool           `json:"success"`
	Data    models.Product `json:"data"`
}

type productListEnvelope struct {
	Success    bool             `json:"success"`
	Data       []models.Product `json:"data"`
	Pagination struct {
		CurrentPage  int   `json:"current_page"`
		ItemsPerPage int   `json:"items_per_page"`
		TotalItems   int64 `json:"total_items"`
	} `json:"pagination"`
}

func seedCatalog(t *testing.T, e *env) (models.Product, models.Product, models.Product) {
	silk := e.createProduct(t, models.Product{
		Name: "Silk Saree", Description: "Handwoven kanchipuram silk",
		Price: 2500, Category: "sarees", Stock: 10,
	})
	cotton := e.createProduct(t, models.Product{
		Name: "Cotton Saree", Description: "Everyday cotton",
		Price: 800, Category: "sarees", Stock: 20,
	})
	necklace := e.createProduct(t, models.Product{
		Name: "Kundan Necklace", Description: "Bridal set",
		Price: 4500, Category: "jewellery", Stock: 3,
	})
	return silk, cotton, necklace
}

func TestListProducts_FiltersAndPaginates(t *testing.T) {
	e := newEnv(t)
	silk, _, necklace := seedCatalog(t, e)

	var out productListEnvelope

	resp := e.request(t, http.MethodGet, "/api/products?category=sarees", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &out)
	assert.Len(t, out.Data, 2)
	assert.EqualValues(t, 2, out.Pagination.TotalItems)

	resp = e.request(t, http.MethodGet, "/api/products?search=SILK", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &out)
	require.Len(t, out.Data, 1)
	assert.Equal(t, silk.ID, out.Data[0].ID)

	resp = e.request(t, http.MethodGet, "/api/products?min_price=3000", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &out)
	require.Len(t, out.Data, 1)
	assert.Equal(t, necklace.ID, out.Data[0].ID)

	resp = e.request(t, http.MethodGet, "/api/products?max_price=1000", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &out)
	require.Len(t, out.Data, 1)
	assert.Equal(t, "Cotton Saree", out.Data[0].Name)

	resp = e.request(t, http.MethodGet, "/api/products?page=2&limit=2", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &out)
	assert.Len(t, out.Data, 1)
	assert.Equal(t, 2, out.Pagination.CurrentPage)
	assert.Equal(t, 2, out.Pagination.ItemsPerPage)
	assert.EqualValues(t, 3, out.Pagination.TotalItems)
}

func TestListCategories_DistinctAndSorted(t *testing.T) {
	e := newEnv(t)
	seedCatalog(t, e)
	e.createProduct(t, models.Product{Name: "Uncategorised", Price: 10, Stock: 1})

	resp := e.request(t, http.MethodGet, "/api/products/categories", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Success bool     `json:"success"`
		Data    []string `json:"data"`
	}
	decodeBody(t, resp, &out)
	assert.Equal(t, []string{"jewellery", "sarees"}, out.Data)
}

func TestGetProduct_NotFound(t *testing.T) {
	e := newEnv(t)

	resp := e.request(t, http.MethodGet, "/api/products/"+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = e.request(t, http.MethodGet, "/api/products/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateProduct_AdminOnly(t *testing.T) {
	e := newEnv(t)
	_, customerToken := e.createUser(t, "Asha Rao", "asha@example.com", models.RoleCustomer)
	_, adminToken := e.createUser(t, "Admin", "admin@example.com", models.RoleAdmin)

	body := map[string]interface{}{
		"name":                "Banarasi Saree",
		"description":         "Zari border",
		"price":               3200,
		"category":            "sarees",
		"stock":               5,
		"has_delivery_charge": true,
		"delivery_charge":     60,
		"images": []map[string]interface{}{
			{"url": "/uploads/a.jpg", "alt_text": "front", "display_order": 1},
			{"url": "/uploads/b.jpg", "alt_text": "back", "display_order": 2},
		},
		"specifications": []map[string]interface{}{
			{"label": "Fabric", "value": "Silk", "display_order": 1},
		},
	}

	resp := e.request(t, http.MethodPost, "/api/products", customerToken, body)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = e.request(t, http.MethodPost, "/api/products", adminToken, body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var out productEnvelope
	decodeBody(t, resp, &out)
	assert.Equal(t, "Banarasi Saree", out.Data.Name)
	assert.Len(t, out.Data.Images, 2)
	assert.Len(t, out.Data.Specifications, 1)

	// The public detail endpoint returns the children too.
	resp = e.request(t, http.MethodGet, "/api/products/"+out.Data.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &out)
	assert.Len(t, out.Data.Images, 2)
	assert.Len(t, out.Data.Specifications, 1)
}

func TestCreateProduct_Validation(t *testing.T) {
	e := newEnv(t)
	_, adminToken := e.createUser(t, "Admin", "admin@example.com", models.RoleAdmin)

	resp := e.request(t, http.MethodPost, "/api/products", adminToken, map[string]interface{}{
		"name":  "",
		"price": -5,
		"stock": -1,
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var out envelope
	decodeBody(t, resp, &out)
	require.Equal(t, "validation failed", out.Message)

	fields := make([]string, 0, len(out.Errors))
	for _, fe := range out.Errors {
		fields = append(fields, fe.Field)
	}
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "price")
	assert.Contains(t, fields, "stock")
}

func TestUpdateProduct_ReplacesChildrenAndKeepsRatings(t *testing.T) {
	e := newEnv(t)
	_, adminToken := e.createUser(t, "Admin", "admin@example.com", models.RoleAdmin)

	product := e.createProduct(t, models.Product{
		Name: "Silk Saree", Price: 2500, Category: "sarees", Stock: 10,
		Images: []models.ProductImage{
			{URL: "/uploads/old1.jpg", DisplayOrder: 1},
			{URL: "/uploads/old2.jpg", DisplayOrder: 2},
		},
	})

	// Simulate existing review aggregates.
	require.NoError(t, e.db.Model(&models.Product{}).
		Where("id = ?", product.ID).
		UpdateColumns(map[string]interface{}{"rating_average": 4.5, "rating_count": 2}).Error)

	resp := e.request(t, http.MethodPut, "/api/products/"+product.ID.String(), adminToken,
		map[string]interface{}{
			"name":     "Silk Saree Deluxe",
			"price":    2800,
			"category": "sarees",
			"stock":    8,
			"images": []map[string]interface{}{
				{"url": "/uploads/new.jpg", "display_order": 1},
			},
		})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out productEnvelope
	decodeBody(t, resp, &out)
	assert.Equal(t, "Silk Saree Deluxe", out.Data.Name)
	assert.Equal(t, 2800.0, out.Data.Price)
	assert.Equal(t, 4.5, out.Data.RatingAverage)
	assert.Equal(t, 2, out.Data.RatingCount)

	var images []models.ProductImage
	require.NoError(t, e.db.Where("product_id = ?", product.ID).Find(&images).Error)
	require.Len(t, images, 1)
	assert.Equal(t, "/uploads/new.jpg", images[0].URL)
}

func TestDeleteProduct_RemovesChildren(t *testing.T) {
	e := newEnv(t)
	user, _ := e.createUser(t, "Asha Rao", "asha@example.com", models.RoleCustomer)
	_, adminToken := e.createUser(t, "Admin", "admin@example.com", models.RoleAdmin)

	product := e.createProduct(t, models.Product{
		Name: "Silk Saree", Price: 2500, Stock: 10,
		Images:         []models.ProductImage{{URL: "/uploads/a.jpg"}},
		Specifications: []models.ProductSpecification{{Label: "Fabric", Value: "Silk"}},
	})
	require.NoError(t, e.db.Create(&models.ProductReview{
		ProductID: product.ID, UserID: user.ID, UserName: user.Name, Rating: 5,
	}).Error)

	resp := e.request(t, http.MethodDelete, "/api/products/"+product.ID.String(), adminToken, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	var count int64
	e.db.Model(&models.Product{}).Where("id = ?", product.ID).Count(&count)
	assert.Zero(t, count)
	e.db.Model(&models.ProductImage{}).Where("product_id = ?", product.ID).Count(&count)
	assert.Zero(t, count)
	e.db.Model(&models.ProductSpecification{}).Where("product_id = ?", product.ID).Count(&count)
	assert.Zero(t, count)
	e.db.Model(&models.ProductReview{}).Where("product_id = ?", product.ID).Count(&count)
	assert.Zero(t, count)
}

func TestAddReview_UpsertsAndRecomputesAggregates(t *testing.T) {
	e := newEnv(t)
	_, firstToken := e.createUser(t, "Alice", "alice@example.com", models.RoleCustomer)
	_, secondToken := e.createUser(t, "Bob", "bob@example.com", models.RoleCustomer)

	product := e.createProduct(t, models.Product{Name: "Silk Saree", Price: 2500, Stock: 10})
	reviewURL := "/api/products/" + product.ID.String() + "/reviews"

	resp := e.request(t, http.MethodPost, reviewURL, firstToken,
		map[string]interface{}{"rating": 5, "comment": "gorgeous"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var reloaded models.Product
	require.NoError(t, e.db.First(&reloaded, "id = ?", product.ID).Error)
	assert.Equal(t, 5.0, reloaded.RatingAverage)
	assert.Equal(t, 1, reloaded.RatingCount)

	resp = e.request(t, http.MethodPost, reviewURL, secondToken,
		map[string]interface{}{"rating": 3, "comment": "colour faded"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	require.NoError(t, e.db.First(&reloaded, "id = ?", product.ID).Error)
	assert.Equal(t, 4.0, reloaded.RatingAverage)
	assert.Equal(t, 2, reloaded.RatingCount)

	// A second submission by the same user replaces their earlier review.
	resp = e.request(t, http.MethodPost, reviewURL, firstToken,
		map[string]interface{}{"rating": 1, "comment": "tore after a wash"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	require.NoError(t, e.db.First(&reloaded, "id = ?", product.ID).Error)
	assert.Equal(t, 2.0, reloaded.RatingAverage)
	assert.Equal(t, 2, reloaded.RatingCount)

	var reviews int64
	e.db.Model(&models.ProductReview{}).Where("product_id = ?", product.ID).Count(&reviews)
	assert.EqualValues(t, 2, reviews)
}

func TestAddReview_Validation(t *testing.T) {
	e := newEnv(t)
	_, token := e.createUser(t, "Asha Rao", "asha@example.com", models.RoleCustomer)
	product := e.createProduct(t, models.Product{Name: "Silk Saree", Price: 2500, Stock: 10})

	reviewURL := "/api/products/" + product.ID.String() + "/reviews"

	resp := e.request(t, http.MethodPost, reviewURL, token, map[string]interface{}{"rating": 0})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = e.request(t, http.MethodPost, reviewURL, token, map[string]interface{}{"rating": 6})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = e.request(t, http.MethodPost, "/api/products/"+uuid.NewString()+"/reviews",
		token, map[string]interface{}{"rating": 4})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = e.request(t, http.MethodPost, reviewURL, "", map[string]interface{}{"rating": 4})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
