package handler

import (
	"context"
	"net/http"

	"github.com/RoyceAzure/lab/shop/internal/api/dto"
	"github.com/RoyceAzure/lab/shop/internal/domain/model"
	"github.com/go-chi/chi/v5"
)

type IOrderService interface {
	GetOrder(ctx context.Context, orderID string) (*model.Order, error)
	ListOrdersByUser(ctx context.Context, userProfileID uint) ([]model.Order, error)
}

type OrderHandler struct {
	orderService IOrderService
}

func NewOrderHandler(orderService IOrderService) *OrderHandler {
	if orderService == nil {
		panic("orderService cannot be nil")
	}
	return &OrderHandler{orderService: orderService}
}

func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")
	if orderID == "" {
		ErrorJSON(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid order id", nil)
		return
	}

	order, err := h.orderService.GetOrder(r.Context(), orderID)
	if err != nil {
		writeServiceError(w, r, err, http.StatusNotFound)
		return
	}
	SuccessJSON(w, http.StatusOK, dto.ToOrderDTO(order))
}

func (h *OrderHandler) ListUserOrders(w http.ResponseWriter, r *http.Request) {
	userID, err := uintParam(r, "userID")
	if err != nil {
		ErrorJSON(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid user id", nil)
		return
	}

	orders, err := h.orderService.ListOrdersByUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err, http.StatusNotFound)
		return
	}

	res := make([]dto.OrderDTO, 0, len(orders))
	for i := range orders {
		res = append(res, dto.ToOrderDTO(&orders[i]))
	}
	SuccessJSON(w, http.StatusOK, res)
}
