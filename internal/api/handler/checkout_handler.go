package handler

import (
	"context"
	"net/http"

	"github.com/RoyceAzure/lab/shop/internal/api/dto"
	"github.com/RoyceAzure/lab/shop/internal/domain/model"
)

type ICheckoutService interface {
	Checkout(ctx context.Context, userProfileID uint) (*model.Order, error)
}

type CheckoutHandler struct {
	checkoutService ICheckoutService
}

func NewCheckoutHandler(checkoutService ICheckoutService) *CheckoutHandler {
	if checkoutService == nil {
		panic("checkoutService cannot be nil")
	}
	return &CheckoutHandler{checkoutService: checkoutService}
}

// Checkout POST /users/{userID}/checkout
// 成功回 201 與訂單內容
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID, err := uintParam(r, "userID")
	if err != nil {
		ErrorJSON(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid user id", nil)
		return
	}

	order, err := h.checkoutService.Checkout(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err, http.StatusConflict)
		return
	}
	SuccessJSON(w, http.StatusCreated, dto.ToOrderDTO(order))
}
