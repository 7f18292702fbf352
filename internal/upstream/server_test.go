package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/akosarev/storefront/internal/api"
	"github.com/akosarev/storefront/internal/models"
)

var testSecret = []byte("upstream-test-secret")

type testEnv struct {
	E  *echo.Echo
	DB *gorm.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := Open(context.Background(), "")
	require.NoError(t, err)

	e := echo.New()
	Register(e, &Handler{DB: db, JWTSecret: testSecret})

	return &testEnv{E: e, DB: db}
}

func makeToken(t *testing.T, sub string) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString(testSecret)
	require.NoError(t, err)
	return signed
}

func (env *testEnv) doJSON(t *testing.T, method, path string, body any, token string) (*httptest.ResponseRecorder, api.Envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "accessToken", Value: token})
	}

	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)

	var out api.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return rec, out
}

func TestViewCartJoinsProducts(t *testing.T) {
	env := newTestEnv(t)
	token := makeToken(t, "user-1")

	product := ProductRecord{Name: "mug", Price: 12.5, Images: []models.Image{{URL: "u", Title: "front"}}}
	require.NoError(t, env.DB.Create(&product).Error)
	require.NoError(t, env.DB.Create(&CartLineRecord{UserID: "user-1", ProductID: product.ID, Quantity: 2}).Error)
	require.NoError(t, env.DB.Create(&CartLineRecord{UserID: "user-1", ProductID: "gone", Quantity: 1}).Error)
	require.NoError(t, env.DB.Create(&CartLineRecord{UserID: "someone-else", ProductID: product.ID, Quantity: 5}).Error)

	rec, envl := env.doJSON(t, http.MethodGet, "/view-cart-product", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, envl.Success)

	var items []models.LineItem
	require.NoError(t, json.Unmarshal(envl.Data, &items))
	require.Len(t, items, 2)

	byProduct := map[string]models.LineItem{}
	for _, li := range items {
		byProduct[li.ProductID] = li
	}

	withProduct := byProduct[product.ID]
	require.NotNil(t, withProduct.Product)
	assert.Equal(t, "mug", withProduct.Product.Name)
	assert.Equal(t, 12.5, withProduct.Product.Price)
	assert.Len(t, withProduct.Product.Images, 1)

	orphan := byProduct["gone"]
	assert.Nil(t, orphan.Product, "deleted product must not break the cart read")
	assert.Equal(t, 1, orphan.Quantity)
}

func TestUpdateQuantityEnforcesFloor(t *testing.T) {
	env := newTestEnv(t)
	token := makeToken(t, "user-1")

	line := CartLineRecord{UserID: "user-1", ProductID: "p1", Quantity: 2}
	require.NoError(t, env.DB.Create(&line).Error)

	rec, envl := env.doJSON(t, http.MethodPost, "/update-cart-product",
		map[string]any{"lineItemId": line.ID, "quantity": 0}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, envl.Success)

	var unchanged CartLineRecord
	require.NoError(t, env.DB.First(&unchanged, "id = ?", line.ID).Error)
	assert.Equal(t, 2, unchanged.Quantity)
}

func TestUpdateQuantityUpdatesOwnLine(t *testing.T) {
	env := newTestEnv(t)
	token := makeToken(t, "user-1")

	line := CartLineRecord{UserID: "user-1", ProductID: "p1", Quantity: 2}
	require.NoError(t, env.DB.Create(&line).Error)

	rec, envl := env.doJSON(t, http.MethodPost, "/update-cart-product",
		map[string]any{"lineItemId": line.ID, "quantity": 3}, token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, envl.Success)

	var updated CartLineRecord
	require.NoError(t, env.DB.First(&updated, "id = ?", line.ID).Error)
	assert.Equal(t, 3, updated.Quantity)
}

func TestUpdateQuantityWrongUserIsNotFound(t *testing.T) {
	env := newTestEnv(t)

	line := CartLineRecord{UserID: "user-1", ProductID: "p1", Quantity: 2}
	require.NoError(t, env.DB.Create(&line).Error)

	rec, envl := env.doJSON(t, http.MethodPost, "/update-cart-product",
		map[string]any{"lineItemId": line.ID, "quantity": 3}, makeToken(t, "intruder"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, envl.Success)
}

func TestDeleteLineItem(t *testing.T) {
	env := newTestEnv(t)
	token := makeToken(t, "user-1")

	line := CartLineRecord{UserID: "user-1", ProductID: "p1", Quantity: 2}
	require.NoError(t, env.DB.Create(&line).Error)

	rec, envl := env.doJSON(t, http.MethodPost, "/delete-cart-product",
		map[string]any{"lineItemId": line.ID}, token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, envl.Success)

	var count int64
	require.NoError(t, env.DB.Model(&CartLineRecord{}).Where("id = ?", line.ID).Count(&count).Error)
	assert.Zero(t, count)

	rec, envl = env.doJSON(t, http.MethodPost, "/delete-cart-product",
		map[string]any{"lineItemId": line.ID}, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, envl.Success)
}

func TestAddToCartUpserts(t *testing.T) {
	env := newTestEnv(t)
	token := makeToken(t, "user-1")

	product := ProductRecord{Name: "mug", Price: 12.5}
	require.NoError(t, env.DB.Create(&product).Error)

	rec, envl := env.doJSON(t, http.MethodPost, "/add-cart-product",
		map[string]any{"productId": product.ID, "quantity": 2}, token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, envl.Success)

	rec, envl = env.doJSON(t, http.MethodPost, "/add-cart-product",
		map[string]any{"productId": product.ID}, token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, envl.Success)

	var line CartLineRecord
	require.NoError(t, env.DB.First(&line, "user_id = ? AND product_id = ?", "user-1", product.ID).Error)
	assert.Equal(t, 3, line.Quantity)
}

func TestUnauthorizedWithoutCookie(t *testing.T) {
	env := newTestEnv(t)

	rec, envl := env.doJSON(t, http.MethodGet, "/view-cart-product", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, envl.Success)
}
