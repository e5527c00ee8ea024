package main

import (
	"time"

	"github.com/taldoflemis/usersnack/cucina"
)

type StartSelectionRequest struct {
	PizzaID int `json:"pizza_id" validate:"required,min=1"`
}

// CustomerInfoRequest mirrors the order payload of the upstream service.
// Field-level validation happens in ordine so the error shape matches the
// service's own rejections.
type CustomerInfoRequest struct {
	CustomerName    string `json:"customer_name"`
	DeliveryAddress string `json:"delivery_address"`
	CustomerPhone   string `json:"customer_phone"`
	CustomerEmail   string `json:"customer_email"`
	Notes           string `json:"notes"`
}

type SelectionResponse struct {
	SelectionID    string                  `json:"selection_id"`
	Pizza          cucina.Pizza            `json:"pizza"`
	Extras         []cucina.Extra          `json:"extras"`
	Quantity       int                     `json:"quantity"`
	SelectedExtras []int                   `json:"selected_extras"`
	Price          *cucina.CalculatedPrice `json:"price"`
	PriceSource    string                  `json:"price_source,omitempty"`
	PricePending   bool                    `json:"price_pending"`
}

type OrderPlacedResponse struct {
	Message string       `json:"message"`
	Order   cucina.Order `json:"order"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type ValidationErrorResponse struct {
	Errors cucina.FieldErrors `json:"errors"`
}

// ConfirmedOrder is the event fanned out to live-order subscribers after
// the upstream service accepted an order.
type ConfirmedOrder struct {
	EventID   string       `json:"event_id"`
	PizzaName string       `json:"pizza_name"`
	Order     cucina.Order `json:"order"`
	PlacedAt  time.Time    `json:"placed_at"`
}
