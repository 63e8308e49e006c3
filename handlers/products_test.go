package handlers_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postProductForm(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	return buf, w.FormDataContentType()
}

func TestCreateAndListProducts(t *testing.T) {
	r, _ := setupServer(t)

	buf, contentType := postProductForm(t, map[string]string{
		"name":            "Olive Oil 1L",
		"category":        "pantry",
		"indicativePrice": "7.5",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/products", buf)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	body := requireStatus(t, w, http.StatusCreated)

	product := body["product"].(map[string]interface{})
	assert.Equal(t, "Olive Oil 1L", product["name"])
	assert.Equal(t, 7.5, product["indicative_price"])
	assert.Equal(t, true, product["is_active"])
	productID := product["id"].(string)

	body = requireStatus(t, doJSON(t, r, http.MethodGet, "/api/products", nil), http.StatusOK)
	assert.Equal(t, float64(1), body["count"])

	// deactivate and confirm the active listing hides it
	body = requireStatus(t, doJSON(t, r, http.MethodPatch, "/api/products/"+productID,
		map[string]interface{}{"is_active": false}), http.StatusOK)
	assert.Equal(t, false, body["product"].(map[string]interface{})["is_active"])

	body = requireStatus(t, doJSON(t, r, http.MethodGet, "/api/products/active", nil), http.StatusOK)
	assert.Equal(t, float64(0), body["count"])
	body = requireStatus(t, doJSON(t, r, http.MethodGet, "/api/products", nil), http.StatusOK)
	assert.Equal(t, float64(1), body["count"])
}

func TestCreateInactiveProduct(t *testing.T) {
	r, _ := setupServer(t)

	buf, contentType := postProductForm(t, map[string]string{
		"name":            "Seasonal Figs",
		"category":        "produce",
		"indicativePrice": "4.0",
		"isActive":        "false",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/products", buf)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	body := requireStatus(t, w, http.StatusCreated)

	product := body["product"].(map[string]interface{})
	assert.Equal(t, false, product["is_active"])
	productID := product["id"].(string)

	// the stored row is inactive too, not just the response
	body = requireStatus(t, doJSON(t, r, http.MethodGet, "/api/products/active", nil), http.StatusOK)
	assert.Equal(t, float64(0), body["count"])

	// an inactive product cannot be ordered
	requireStatus(t, doJSON(t, r, http.MethodPost, "/api/orders", map[string]interface{}{
		"orderType":       "supermarket",
		"customerEmail":   "customer@x.com",
		"customerName":    "Customer",
		"customerPhone":   "0790000000",
		"deliveryAddress": "12 Rainbow St",
		"items":           []map[string]interface{}{{"productId": productID, "quantity": 1}},
	}), http.StatusBadRequest)
}

func TestCreateProductValidation(t *testing.T) {
	r, _ := setupServer(t)

	buf, contentType := postProductForm(t, map[string]string{"indicativePrice": "7.5"})
	req := httptest.NewRequest(http.MethodPost, "/api/products", buf)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	requireStatus(t, w, http.StatusBadRequest)

	buf, contentType = postProductForm(t, map[string]string{"name": "Free Stuff", "indicativePrice": "-1"})
	req = httptest.NewRequest(http.MethodPost, "/api/products", buf)
	req.Header.Set("Content-Type", contentType)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	requireStatus(t, w, http.StatusBadRequest)
}

func TestUpdateProductIgnoresUnknownFields(t *testing.T) {
	r, _ := setupServer(t)

	buf, contentType := postProductForm(t, map[string]string{
		"name":            "Dates 500g",
		"indicativePrice": "3.0",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/products", buf)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	body := requireStatus(t, w, http.StatusCreated)
	productID := body["product"].(map[string]interface{})["id"].(string)

	// only the id field was supplied, and ids are not updatable
	requireStatus(t, doJSON(t, r, http.MethodPatch, "/api/products/"+productID,
		map[string]interface{}{"id": "hijacked"}), http.StatusBadRequest)

	requireStatus(t, doJSON(t, r, http.MethodPatch, "/api/products/missing",
		map[string]interface{}{"name": "x"}), http.StatusNotFound)
}
