package createorder

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/quickcart/order-svc/internal/service/models/currency"
	"github.com/quickcart/order-svc/internal/service/models/order"
	"github.com/quickcart/order-svc/internal/service/models/orderitem"
)

// service is an interface for the service layer.
type service interface {
	CreateOrder(ctx context.Context, customerID int64, items []orderitem.OrderItem) (*order.Order, error)
}

// itemInCreateOrderRequest represents an item in a create order request.
type itemInCreateOrderRequest struct {
	ProductID     int64  `json:"productId"     validate:"gt=0"`
	Quantity      int    `json:"quantity"      validate:"gt=0"`
	ProductTitle  string `json:"productTitle"  validate:"required"`
	PriceCents    int64  `json:"priceCents"    validate:"gte=0"`
	PriceCurrency string `json:"priceCurrency" validate:"required"`
}

// toModel converts itemInCreateOrderRequest to orderitem.OrderItem.
func (r *itemInCreateOrderRequest) toModel() (*orderitem.OrderItem, error) {
	cur, err := currency.ParseCurrency(r.PriceCurrency)
	if err != nil {
		return nil, err
	}

	return orderitem.New(r.ProductID, r.ProductTitle, r.Quantity, r.PriceCents, cur)
}

// createOrderRequest represents a create order request.
type createOrderRequest struct {
	CustomerID int64                      `json:"customerId" validate:"gt=0"`
	OrderItems []itemInCreateOrderRequest `json:"orderItems" validate:"required,min=1,dive"`
}

// Validate validates the create order request.
func (r *createOrderRequest) Validate() error {
	return validator.New().Struct(r)
}

// CreateOrder handles the create order request.
func CreateOrder(w http.ResponseWriter, r *http.Request, service service) {
	req := createOrderRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding request body for create order", "error", err)

		return
	}

	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error validating request body for create order", "error", err)

		return
	}

	items := make([]orderitem.OrderItem, len(req.OrderItems))
	for i := range req.OrderItems {
		item, err := req.OrderItems[i].toModel()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			slog.Error("Error converting item request to model", "error", err)

			return
		}
		items[i] = *item
	}

	created, err := service.CreateOrder(r.Context(), req.CustomerID, items)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, order.ErrEmptyItems) || errors.Is(err, order.ErrCurrencyMismatch) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		slog.Error("Error creating order", "error", err)

		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(created); err != nil {
		slog.Error("Error sending response for create order", "error", err)
	}
}
