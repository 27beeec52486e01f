package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/RoyceAzure/lab/shop/internal/api/dto"
	"github.com/RoyceAzure/lab/shop/internal/domain/model"
	"github.com/shopspring/decimal"
)

type IProductService interface {
	UpdateProductPrice(ctx context.Context, productID uint, price decimal.Decimal) (*model.Product, error)
	GetStock(ctx context.Context, productID uint) (int, error)
}

type ProductHandler struct {
	productService IProductService
}

func NewProductHandler(productService IProductService) *ProductHandler {
	if productService == nil {
		panic("productService cannot be nil")
	}
	return &ProductHandler{productService: productService}
}

// UpdatePrice PUT /products/{productID}/price, body {"price": "29.99"}
func (h *ProductHandler) UpdatePrice(w http.ResponseWriter, r *http.Request) {
	productID, err := uintParam(r, "productID")
	if err != nil {
		ErrorJSON(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid product id", nil)
		return
	}

	var req dto.UpdatePriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ErrorJSON(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		ErrorJSON(w, r, http.StatusBadRequest, "INVALID_PRICE", "price must be a decimal string", nil)
		return
	}

	product, err := h.productService.UpdateProductPrice(r.Context(), productID, price)
	if err != nil {
		writeServiceError(w, r, err, http.StatusNotFound)
		return
	}
	SuccessJSON(w, http.StatusOK, dto.ToProductDTO(product))
}

func (h *ProductHandler) GetStock(w http.ResponseWriter, r *http.Request) {
	productID, err := uintParam(r, "productID")
	if err != nil {
		ErrorJSON(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid product id", nil)
		return
	}

	stock, err := h.productService.GetStock(r.Context(), productID)
	if err != nil {
		writeServiceError(w, r, err, http.StatusNotFound)
		return
	}
	SuccessJSON(w, http.StatusOK, dto.StockDTO{ProductID: productID, AvailableQuantity: stock})
}
