package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	healthgo "github.com/hellofresh/health-go/v5"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	slogecho "github.com/samber/slog-echo"
	"github.com/shopspring/decimal"
	"github.com/taldoflemis/usersnack/cucina"
	"github.com/taldoflemis/usersnack/ordine"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var (
	tracer = otel.Tracer("forno")
	meter  = otel.Meter("forno")
)

// listResponse mimics the paginated envelope of the real kitchen service.
// The dev catalog never pages, so next and previous stay null.
type listResponse[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

func listOf[T any](items []T) listResponse[T] {
	if items == nil {
		items = []T{}
	}
	return listResponse[T]{Count: len(items), Results: items}
}

type detailResponse struct {
	Detail string `json:"detail"`
}

// Store holds the seeded catalog and the orders placed against it, all in
// memory. Orders reset on restart, which is the point of a dev kitchen.
type Store struct {
	mu          sync.Mutex
	pizzas      []cucina.Pizza
	pizzaByID   map[int]cucina.Pizza
	extras      []cucina.Extra
	extraByID   map[int]cucina.Extra
	orders      []cucina.Order
	nextOrderID int
}

func NewStore(pizzas []cucina.Pizza, extras []cucina.Extra) *Store {
	pizzaByID := make(map[int]cucina.Pizza, len(pizzas))
	for _, p := range pizzas {
		pizzaByID[p.ID] = p
	}
	extraByID := make(map[int]cucina.Extra, len(extras))
	for _, e := range extras {
		extraByID[e.ID] = e
	}

	return &Store{
		pizzas:      pizzas,
		pizzaByID:   pizzaByID,
		extras:      extras,
		extraByID:   extraByID,
		nextOrderID: 1,
	}
}

// priceFor computes base_price*quantity plus each known extra times the
// quantity. Unknown extra ids contribute nothing.
func (s *Store) priceFor(pizza cucina.Pizza, extras []int, quantity int) decimal.Decimal {
	qty := decimal.NewFromInt(int64(quantity))
	total := pizza.BasePrice.Mul(qty)

	for _, id := range extras {
		extra, ok := s.extraByID[id]
		if !ok {
			continue
		}
		total = total.Add(extra.Price.Mul(qty))
	}
	return total
}

func (s *Store) searchPizzas(term string) []cucina.Pizza {
	if term == "" {
		return s.pizzas
	}

	term = strings.ToLower(term)
	matches := []cucina.Pizza{}
	for _, p := range s.pizzas {
		if strings.Contains(strings.ToLower(p.Name), term) ||
			strings.Contains(strings.ToLower(p.Description), term) {
			matches = append(matches, p)
		}
	}
	return matches
}

func (s *Store) createOrder(req cucina.OrderRequest, total decimal.Decimal) cucina.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	order := cucina.Order{
		ID:              s.nextOrderID,
		Pizza:           req.Pizza,
		Extras:          req.Extras,
		Quantity:        req.Quantity,
		CustomerName:    req.CustomerName,
		DeliveryAddress: req.DeliveryAddress,
		CustomerPhone:   req.CustomerPhone,
		CustomerEmail:   req.CustomerEmail,
		Notes:           req.Notes,
		TotalPrice:      total,
		Status:          "received",
		CreatedAt:       time.Now().UTC(),
	}
	s.nextOrderID++
	s.orders = append(s.orders, order)
	return order
}

type KitchenHandler struct {
	store          *Store
	health         *healthgo.Health
	ordersReceived metric.Int64Counter
}

func NewKitchenHandler(
	e *echo.Echo,
	settings *Settings,
	store *Store,
	health *healthgo.Health,
) (*KitchenHandler, error) {
	logger := slog.Default()
	e.HideBanner = true
	e.Use(slogecho.New(logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: settings.HTTP.CORS.Origins,
		AllowMethods: settings.HTTP.CORS.Methods,
		AllowHeaders: settings.HTTP.CORS.Headers,
	}))
	e.Use(otelecho.Middleware(settings.App.Name))

	ordersReceived, err := meter.Int64Counter(
		"forno.orders.received",
		metric.WithDescription("Orders accepted by the dev kitchen"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		return nil, err
	}

	handler := &KitchenHandler{
		store:          store,
		health:         health,
		ordersReceived: ordersReceived,
	}

	e.GET("/healthz", handler.HealthCheck)

	api := e.Group("/usersnack/api/v1")
	api.GET("/pizza/", handler.ListPizzas)
	api.GET("/pizza/:id/", handler.GetPizza)
	api.POST("/pizza/:id/calculate_price/", handler.CalculatePrice)
	api.GET("/extra/", handler.ListExtras)
	api.POST("/order/", handler.CreateOrder)
	api.GET("/order/", handler.ListOrders)
	api.GET("/order/:id/", handler.GetOrder)

	return handler, nil
}

func (h *KitchenHandler) ListPizzas(c echo.Context) error {
	pizzas := h.store.searchPizzas(c.QueryParam("search"))
	return c.JSON(http.StatusOK, listOf(pizzas))
}

func (h *KitchenHandler) GetPizza(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, detailResponse{Detail: "Not found."})
	}

	pizza, ok := h.store.pizzaByID[id]
	if !ok {
		return c.JSON(http.StatusNotFound, detailResponse{Detail: "Not found."})
	}
	return c.JSON(http.StatusOK, pizza)
}

func (h *KitchenHandler) ListExtras(c echo.Context) error {
	return c.JSON(http.StatusOK, listOf(h.store.extras))
}

func (h *KitchenHandler) CalculatePrice(c echo.Context) error {
	ctx := c.Request().Context()
	_, span := tracer.Start(ctx, "KitchenHandler.CalculatePrice")
	defer span.End()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, detailResponse{Detail: "Not found."})
	}
	pizza, ok := h.store.pizzaByID[id]
	if !ok {
		return c.JSON(http.StatusNotFound, detailResponse{Detail: "Not found."})
	}

	var req cucina.PriceRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, detailResponse{Detail: "Malformed request body."})
	}
	if req.Quantity < 1 {
		return c.JSON(http.StatusBadRequest, cucina.FieldErrors{
			"quantity": {"Ensure this value is greater than or equal to 1."},
		})
	}

	extras := req.Extras
	if extras == nil {
		extras = []int{}
	}
	sort.Ints(extras)

	return c.JSON(http.StatusOK, cucina.CalculatedPrice{
		PizzaID:    pizza.ID,
		PizzaName:  pizza.Name,
		BasePrice:  pizza.BasePrice,
		Quantity:   req.Quantity,
		ExtraIDs:   extras,
		TotalPrice: h.store.priceFor(pizza, extras, req.Quantity),
	})
}

func (h *KitchenHandler) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracer.Start(ctx, "KitchenHandler.CreateOrder")
	defer span.End()

	var req cucina.OrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, detailResponse{Detail: "Malformed request body."})
	}

	if errs := h.validateOrder(req); len(errs) > 0 {
		slog.InfoContext(ctx, "rejecting order", slog.Any("errors", errs))
		return c.JSON(http.StatusBadRequest, errs)
	}

	if req.Extras == nil {
		req.Extras = []int{}
	}
	pizza := h.store.pizzaByID[req.Pizza]
	order := h.store.createOrder(req, h.store.priceFor(pizza, req.Extras, req.Quantity))

	h.ordersReceived.Add(ctx, 1)
	slog.InfoContext(ctx, "order received",
		slog.Int("order-id", order.ID),
		slog.Int("pizza-id", order.Pizza),
		slog.String("total", order.TotalPrice.String()))

	return c.JSON(http.StatusCreated, order)
}

// validateOrder mirrors the rejection shape of the real kitchen: one entry
// per offending field, each holding a list of messages.
func (h *KitchenHandler) validateOrder(req cucina.OrderRequest) cucina.FieldErrors {
	errs := cucina.FieldErrors{}

	if _, ok := h.store.pizzaByID[req.Pizza]; !ok {
		errs["pizza"] = append(errs["pizza"],
			fmt.Sprintf("Invalid pk %q - object does not exist.", strconv.Itoa(req.Pizza)))
	}
	for _, id := range req.Extras {
		if _, ok := h.store.extraByID[id]; !ok {
			errs["extras"] = append(errs["extras"],
				fmt.Sprintf("Invalid pk %q - object does not exist.", strconv.Itoa(id)))
		}
	}
	if req.Quantity < 1 {
		errs["quantity"] = append(errs["quantity"],
			"Ensure this value is greater than or equal to 1.")
	}
	if strings.TrimSpace(req.CustomerName) == "" {
		errs["customer_name"] = append(errs["customer_name"], "This field may not be blank.")
	}
	if strings.TrimSpace(req.DeliveryAddress) == "" {
		errs["delivery_address"] = append(errs["delivery_address"], "This field may not be blank.")
	}
	if req.CustomerPhone != "" && !ordine.ValidPhone(req.CustomerPhone) {
		errs["customer_phone"] = append(errs["customer_phone"], "Enter a valid phone number.")
	}
	if req.CustomerEmail != "" && !ordine.ValidEmail(req.CustomerEmail) {
		errs["customer_email"] = append(errs["customer_email"], "Enter a valid email address.")
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (h *KitchenHandler) ListOrders(c echo.Context) error {
	h.store.mu.Lock()
	orders := make([]cucina.Order, len(h.store.orders))
	copy(orders, h.store.orders)
	h.store.mu.Unlock()

	return c.JSON(http.StatusOK, listOf(orders))
}

func (h *KitchenHandler) GetOrder(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, detailResponse{Detail: "Not found."})
	}

	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	for _, order := range h.store.orders {
		if order.ID == id {
			return c.JSON(http.StatusOK, order)
		}
	}
	return c.JSON(http.StatusNotFound, detailResponse{Detail: "Not found."})
}

func (h *KitchenHandler) HealthCheck(c echo.Context) error {
	check := h.health.Measure(c.Request().Context())

	statusCode := http.StatusOK
	if check.Status != healthgo.StatusOK {
		statusCode = http.StatusServiceUnavailable
	}
	return c.JSON(statusCode, check)
}
