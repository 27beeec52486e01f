package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/shop/internal/api"
	"github.com/RoyceAzure/lab/shop/internal/api/handler"
	m "github.com/RoyceAzure/lab/shop/internal/api/middleware"
	"github.com/RoyceAzure/lab/shop/internal/domain/model"
	"github.com/RoyceAzure/lab/shop/internal/infra/repository/memory"
	"github.com/RoyceAzure/lab/shop/internal/service"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type RouterTestSuite struct {
	suite.Suite
	store   *memory.Store
	bucket  *m.TokenBucket
	handler http.Handler
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}

func (suite *RouterTestSuite) SetupTest() {
	suite.store = memory.NewStore(memory.WithLockTimeout(time.Second))
	require.NoError(suite.T(), suite.store.PutProduct(model.Product{
		ProductID: 1, Name: "Mug", Brand: "Acme", Price: decimal.RequireFromString("19.99"), AvailableQuantity: 4,
	}))
	cartID := uint(1)
	suite.store.PutCart(model.Cart{CartID: cartID, CartItems: []model.CartItem{{ProductID: 1, Quantity: 2}}})
	suite.store.PutUserProfile(model.UserProfile{UserProfileID: 1, UserName: "royce", CartID: &cartID})

	logger := zerolog.Nop()
	server := api.NewServer(
		handler.NewCheckoutHandler(service.NewCheckoutService(suite.store, service.WithLogger(&logger))),
		handler.NewOrderHandler(service.NewOrderService(suite.store, suite.store)),
		handler.NewProductHandler(service.NewProductService(suite.store, nil)),
	)
	suite.bucket = m.NewTokenBucket(&m.LimiterConfig{Capacity: 100, RatePS: 100, RefillRate: time.Second})
	suite.handler = SetupRouter(server, suite.bucket, &logger)
}

func (suite *RouterTestSuite) TearDownTest() {
	suite.bucket.Stop()
}

func (suite *RouterTestSuite) do(method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequestWithContext(context.Background(), method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	suite.handler.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(suite.T(), json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func (suite *RouterTestSuite) TestCheckoutFlow() {
	rec, body := suite.do(http.MethodPost, "/api/v1/users/1/checkout", "")
	require.Equal(suite.T(), http.StatusCreated, rec.Code)
	require.NotEmpty(suite.T(), rec.Header().Get("X-Request-Id"))

	order := body["data"].(map[string]any)
	require.Equal(suite.T(), "39.98", order["total_price"])
	require.Equal(suite.T(), "NEW", order["status"])
	orderID := order["order_id"].(string)

	rec, _ = suite.do(http.MethodPut, "/api/v1/products/1/price", `{"price":"29.99"}`)
	require.Equal(suite.T(), http.StatusOK, rec.Code)

	rec, body = suite.do(http.MethodGet, "/api/v1/orders/"+orderID, "")
	require.Equal(suite.T(), http.StatusOK, rec.Code)
	items := body["data"].(map[string]any)["items"].([]any)
	require.Equal(suite.T(), "19.99", items[0].(map[string]any)["unit_price"])

	rec, body = suite.do(http.MethodGet, "/api/v1/users/1/orders", "")
	require.Equal(suite.T(), http.StatusOK, rec.Code)
	require.Len(suite.T(), body["data"].([]any), 1)

	rec, body = suite.do(http.MethodGet, "/api/v1/products/1/stock", "")
	require.Equal(suite.T(), http.StatusOK, rec.Code)
	require.Equal(suite.T(), float64(2), body["data"].(map[string]any)["available_quantity"])

	rec, body = suite.do(http.MethodPost, "/api/v1/users/1/checkout", "")
	require.Equal(suite.T(), http.StatusNotFound, rec.Code)
	require.Equal(suite.T(), "CART_NOT_FOUND", body["error"].(map[string]any)["code"])
}

func (suite *RouterTestSuite) TestCheckoutInsufficientStock() {
	require.NoError(suite.T(), suite.store.UpdateAvailableQuantity(context.Background(), 1, 1))

	rec, body := suite.do(http.MethodPost, "/api/v1/users/1/checkout", "")
	require.Equal(suite.T(), http.StatusConflict, rec.Code)

	errBody := body["error"].(map[string]any)
	require.Equal(suite.T(), "INSUFFICIENT_STOCK", errBody["code"])
	details := errBody["details"].(map[string]any)
	require.Equal(suite.T(), float64(1), details["product_id"])
	require.Equal(suite.T(), float64(1), details["available"])
	require.Equal(suite.T(), float64(2), details["requested"])
}

func (suite *RouterTestSuite) TestCheckoutEmptyCart() {
	cartID := uint(2)
	suite.store.PutCart(model.Cart{CartID: cartID})
	suite.store.PutUserProfile(model.UserProfile{UserProfileID: 2, UserName: "empty", CartID: &cartID})

	rec, body := suite.do(http.MethodPost, "/api/v1/users/2/checkout", "")
	require.Equal(suite.T(), http.StatusUnprocessableEntity, rec.Code)
	require.Equal(suite.T(), "CART_EMPTY", body["error"].(map[string]any)["code"])
}

func (suite *RouterTestSuite) TestBadRequests() {
	rec, _ := suite.do(http.MethodPost, "/api/v1/users/abc/checkout", "")
	require.Equal(suite.T(), http.StatusBadRequest, rec.Code)

	rec, _ = suite.do(http.MethodPut, "/api/v1/products/1/price", `{"price":"abc"}`)
	require.Equal(suite.T(), http.StatusBadRequest, rec.Code)

	rec, body := suite.do(http.MethodPut, "/api/v1/products/1/price", `{"price":"-1"}`)
	require.Equal(suite.T(), http.StatusBadRequest, rec.Code)
	require.Equal(suite.T(), "INVALID_PRICE", body["error"].(map[string]any)["code"])

	rec, _ = suite.do(http.MethodGet, "/api/v1/products/99/stock", "")
	require.Equal(suite.T(), http.StatusNotFound, rec.Code)

	rec, _ = suite.do(http.MethodGet, "/api/v1/orders/missing", "")
	require.Equal(suite.T(), http.StatusNotFound, rec.Code)

	rec, _ = suite.do(http.MethodGet, "/api/v1/users/404/orders", "")
	require.Equal(suite.T(), http.StatusNotFound, rec.Code)
}

func (suite *RouterTestSuite) TestCheckoutThrottled() {
	suite.bucket.Stop()
	suite.bucket = m.NewTokenBucket(&m.LimiterConfig{Capacity: 1, RatePS: 1, RefillRate: time.Hour})
	logger := zerolog.Nop()
	server := api.NewServer(
		handler.NewCheckoutHandler(service.NewCheckoutService(suite.store, service.WithLogger(&logger))),
		handler.NewOrderHandler(service.NewOrderService(suite.store, suite.store)),
		handler.NewProductHandler(service.NewProductService(suite.store, nil)),
	)
	suite.handler = SetupRouter(server, suite.bucket, &logger)

	rec, _ := suite.do(http.MethodPost, "/api/v1/users/1/checkout", "")
	require.Equal(suite.T(), http.StatusCreated, rec.Code)

	rec, _ = suite.do(http.MethodPost, "/api/v1/users/1/checkout", "")
	require.Equal(suite.T(), http.StatusTooManyRequests, rec.Code)
	require.Equal(suite.T(), "1", rec.Header().Get("Retry-After"))

	// 只限制結帳
	rec, _ = suite.do(http.MethodGet, "/api/v1/users/1/orders", "")
	require.Equal(suite.T(), http.StatusOK, rec.Code)
}
