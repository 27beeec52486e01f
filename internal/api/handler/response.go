package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/RoyceAzure/lab/shop/internal/api/dto"
	"github.com/RoyceAzure/lab/shop/internal/constants"
	"github.com/RoyceAzure/lab/shop/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// 等鎖逾時時建議 client 重試的秒數
const lockRetryAfterSeconds = 1

type Response struct {
	Data any `json:"data"`
}

type ResponseError struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	Details   any    `json:"details,omitempty"`
}

func SuccessJSON(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, Response{Data: data})
}

func ErrorJSON(w http.ResponseWriter, r *http.Request, status int, code string, message string, details any) {
	requestID, _ := r.Context().Value(constants.RequestIDKey).(string)
	writeJSON(w, status, ResponseError{Error: ErrorBody{
		Code:      code,
		Message:   message,
		RequestID: requestID,
		Details:   details,
	}})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("encode response failed")
	}
}

// writeServiceError 將 service 錯誤轉成對應的 http status
// productMissingStatus 讓結帳時的商品不存在回 409, 一般查詢回 404
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, productMissingStatus int) {
	var stockErr *service.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		ErrorJSON(w, r, http.StatusConflict, "INSUFFICIENT_STOCK", stockErr.Error(), dto.InsufficientStockDetail{
			ProductID: stockErr.ProductID,
			Available: stockErr.Available,
			Requested: stockErr.Requested,
		})
	case errors.Is(err, service.ErrCartNotFound):
		ErrorJSON(w, r, http.StatusNotFound, "CART_NOT_FOUND", err.Error(), nil)
	case errors.Is(err, service.ErrCartEmpty):
		ErrorJSON(w, r, http.StatusUnprocessableEntity, "CART_EMPTY", err.Error(), nil)
	case errors.Is(err, service.ErrInvalidQuantity):
		ErrorJSON(w, r, http.StatusUnprocessableEntity, "INVALID_QUANTITY", err.Error(), nil)
	case errors.Is(err, service.ErrLockTimeout):
		w.Header().Set("Retry-After", strconv.Itoa(lockRetryAfterSeconds))
		ErrorJSON(w, r, http.StatusServiceUnavailable, "LOCK_TIMEOUT", "resource busy, retry later", nil)
	case errors.Is(err, service.ErrProductNotFound):
		ErrorJSON(w, r, productMissingStatus, "PRODUCT_NOT_FOUND", err.Error(), nil)
	case errors.Is(err, service.ErrOrderNotFound):
		ErrorJSON(w, r, http.StatusNotFound, "ORDER_NOT_FOUND", err.Error(), nil)
	case errors.Is(err, service.ErrUserProfileNotFound):
		ErrorJSON(w, r, http.StatusNotFound, "USER_NOT_FOUND", err.Error(), nil)
	case errors.Is(err, service.ErrInvalidPrice):
		ErrorJSON(w, r, http.StatusBadRequest, "INVALID_PRICE", err.Error(), nil)
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("unexpected service error")
		ErrorJSON(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error", nil)
	}
}

func uintParam(r *http.Request, name string) (uint, error) {
	v, err := strconv.ParseUint(chi.URLParam(r, name), 10, 0)
	if err != nil {
		return 0, err
	}
	return uint(v), nil
}
