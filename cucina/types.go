// Package cucina is the typed client for the remote catalog/order service
// (the "kitchen"). It owns the wire data model; every monetary value is a
// decimal so nothing is lost between the wire and the math.
package cucina

import (
	"time"

	"github.com/shopspring/decimal"
)

type Ingredient struct {
	Name string `json:"name"`
}

// Pizza is immutable once fetched; the detail view owns its copy for the
// lifetime of the view.
type Pizza struct {
	ID              int             `json:"id"`
	Name            string          `json:"name"`
	BasePrice       decimal.Decimal `json:"base_price"`
	Description     string          `json:"description,omitempty"`
	Ingredients     []Ingredient    `json:"ingredients"`
	NutritionalInfo string          `json:"nutritional_info,omitempty"`
}

// Extra is an optional add-on with its own price. Extras are fetched once
// per session and shared read-only.
type Extra struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description,omitempty"`
}

// CalculatedPrice is a derived value, recomputed on every selection change
// and never persisted.
type CalculatedPrice struct {
	PizzaID    int             `json:"pizza_id"`
	PizzaName  string          `json:"pizza_name"`
	BasePrice  decimal.Decimal `json:"base_price"`
	Quantity   int             `json:"quantity"`
	ExtraIDs   []int           `json:"extras_ids"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// PriceRequest is the body of POST /pizza/{id}/calculate_price/.
type PriceRequest struct {
	Extras   []int `json:"extras"`
	Quantity int   `json:"quantity"`
}

// OrderRequest is write-only: built just before submission and handed to
// the service. Optional customer fields are empty strings, never null.
type OrderRequest struct {
	Pizza           int    `json:"pizza"`
	Extras          []int  `json:"extras"`
	Quantity        int    `json:"quantity"`
	CustomerName    string `json:"customer_name"`
	DeliveryAddress string `json:"delivery_address"`
	CustomerPhone   string `json:"customer_phone"`
	CustomerEmail   string `json:"customer_email"`
	Notes           string `json:"notes"`
}

// Order is the confirmation payload returned by the service.
type Order struct {
	ID              int             `json:"id"`
	Pizza           int             `json:"pizza"`
	Extras          []int           `json:"extras"`
	Quantity        int             `json:"quantity"`
	CustomerName    string          `json:"customer_name"`
	DeliveryAddress string          `json:"delivery_address"`
	CustomerPhone   string          `json:"customer_phone"`
	CustomerEmail   string          `json:"customer_email"`
	Notes           string          `json:"notes"`
	TotalPrice      decimal.Decimal `json:"total_price"`
	Status          string          `json:"status,omitempty"`
	CreatedAt       time.Time       `json:"created_at,omitzero"`
}
