package cancelorder

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/quickcart/order-svc/internal/dal/store"
	"github.com/quickcart/order-svc/internal/service/models/order"
	"github.com/quickcart/order-svc/internal/service/services/ordersvc"
)

// service is an interface for the service layer.
type service interface {
	CancelOrder(ctx context.Context, orderID uuid.UUID, customerID int64, reason string) error
}

// cancelOrderRequest represents a cancel order request.
type cancelOrderRequest struct {
	CustomerID int64  `json:"customerId" validate:"gt=0"`
	Reason     string `json:"reason"     validate:"required"`
}

// CancelOrder handles the cancel order request.
func CancelOrder(w http.ResponseWriter, r *http.Request, service service) {
	orderID, err := uuid.Parse(chi.URLParam(r, "orderID"))
	if err != nil {
		http.Error(w, "invalid order id", http.StatusBadRequest)

		return
	}

	req := cancelOrderRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding request body for cancel order", "error", err)

		return
	}

	if err := validator.New().Struct(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error validating request body for cancel order", "error", err)

		return
	}

	if err := service.CancelOrder(r.Context(), orderID, req.CustomerID, req.Reason); err != nil {
		var cannotCancel *order.CannotCancelError

		switch {
		case store.IsNotFound(err):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, ordersvc.ErrForbidden):
			http.Error(w, err.Error(), http.StatusForbidden)
		case errors.As(err, &cannotCancel), errors.Is(err, store.ErrStatusConflict):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
			slog.Error("Error cancelling order", "order_id", orderID, "error", err)
		}

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
