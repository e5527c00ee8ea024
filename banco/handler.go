package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	healthgo "github.com/hellofresh/health-go/v5"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	slogecho "github.com/samber/slog-echo"
	"github.com/taldoflemis/usersnack/cucina"
	"github.com/taldoflemis/usersnack/ordine"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	tracer = otel.Tracer("banco")
	meter  = otel.Meter("banco")
)

const orderPlacedMessage = "Order placed successfully! We'll prepare your delicious pizza right away."

type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

type MainHandler struct {
	kitchen      *cucina.Client
	sessions     *SessionStore
	submitter    *ordine.Submitter
	publisher    OrderPublisher
	health       *healthgo.Health
	ordersPlaced metric.Int64Counter
	ordersFailed metric.Int64Counter
}

func NewMainHandler(
	e *echo.Echo,
	settings *Settings,
	kitchen *cucina.Client,
	sessions *SessionStore,
	submitter *ordine.Submitter,
	publisher OrderPublisher,
	health *healthgo.Health,
) (*MainHandler, error) {
	logger := slog.Default()
	e.HideBanner = true
	e.Validator = &requestValidator{validate: validator.New()}
	e.Use(slogecho.New(logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: settings.HTTP.CORS.Origins,
		AllowMethods: settings.HTTP.CORS.Methods,
		AllowHeaders: settings.HTTP.CORS.Headers,
	}))
	e.Use(otelecho.Middleware(settings.App.Name,
		otelecho.WithMetricAttributeFn(func(r *http.Request) []attribute.KeyValue {
			return []attribute.KeyValue{
				attribute.String("client.ip", r.RemoteAddr),
				attribute.String("user.agent", r.UserAgent()),
			}
		}),
	))

	ordersPlaced, err := meter.Int64Counter(
		"banco.orders.placed",
		metric.WithDescription("Orders accepted by the kitchen service"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		return nil, err
	}

	ordersFailed, err := meter.Int64Counter(
		"banco.orders.failed",
		metric.WithDescription("Order submissions rejected locally or upstream"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		return nil, err
	}

	handler := &MainHandler{
		kitchen:      kitchen,
		sessions:     sessions,
		submitter:    submitter,
		publisher:    publisher,
		health:       health,
		ordersPlaced: ordersPlaced,
		ordersFailed: ordersFailed,
	}

	e.GET("/healthz", handler.HealthCheck)
	v1 := e.Group("/v1")

	v1.GET("/pizza", handler.ListPizzas)
	v1.GET("/pizza/:id", handler.GetPizza)
	v1.GET("/extra", handler.ListExtras)

	v1.POST("/selection", handler.StartSelection)
	v1.GET("/selection/:id", handler.GetSelection)
	v1.POST("/selection/:id/quantity/increment", handler.IncrementQuantity)
	v1.POST("/selection/:id/quantity/decrement", handler.DecrementQuantity)
	v1.POST("/selection/:id/extra/:extraID/toggle", handler.ToggleExtra)
	v1.POST("/selection/:id/order", handler.PlaceOrder)

	v1.GET("/order", handler.ListOrders)
	v1.GET("/order/live", handler.GetLiveOrdersSSE)
	v1.GET("/order/:id", handler.GetOrder)

	return handler, nil
}

// ListPizzas godoc
//
// @Summary List pizzas, optionally filtered by a search term
// @Tags pizza
// @Produce json
// @Param search query string false "Search term, matched by the catalog service"
// @Success 200 {array} cucina.Pizza
// @Failure 502 {object} ErrorResponse
// @Router /v1/pizza [get]
func (h *MainHandler) ListPizzas(c echo.Context) error {
	ctx := c.Request().Context()

	pizzas, err := h.kitchen.ListPizzas(ctx, c.QueryParam("search"))
	if err != nil {
		return h.catalogUnavailable(c, "failed to fetch pizzas", err)
	}
	return c.JSON(http.StatusOK, pizzas)
}

// GetPizza godoc
//
// @Summary Get a single pizza
// @Tags pizza
// @Produce json
// @Param id path int true "Pizza ID"
// @Success 200 {object} cucina.Pizza
// @Failure 404 {object} ErrorResponse
// @Router /v1/pizza/{id} [get]
func (h *MainHandler) GetPizza(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid pizza id"})
	}

	pizza, err := h.kitchen.GetPizza(ctx, id)
	if err != nil {
		var svcErr *cucina.ServiceError
		if errors.As(err, &svcErr) && svcErr.StatusCode == http.StatusNotFound {
			return c.JSON(http.StatusNotFound, ErrorResponse{Error: "Pizza not found"})
		}
		return h.catalogUnavailable(c, "failed to fetch pizza", err)
	}
	return c.JSON(http.StatusOK, pizza)
}

// ListExtras godoc
//
// @Summary List available extras
// @Tags extra
// @Produce json
// @Success 200 {array} cucina.Extra
// @Failure 502 {object} ErrorResponse
// @Router /v1/extra [get]
func (h *MainHandler) ListExtras(c echo.Context) error {
	extras, err := h.kitchen.ListExtras(c.Request().Context())
	if err != nil {
		return h.catalogUnavailable(c, "failed to fetch extras", err)
	}
	return c.JSON(http.StatusOK, extras)
}

// StartSelection godoc
//
// @Summary Start customizing a pizza
// @Tags selection
// @Accept json
// @Produce json
// @Param selection body StartSelectionRequest true "Pizza to customize"
// @Success 201 {object} SelectionResponse
// @Failure 404 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /v1/selection [post]
func (h *MainHandler) StartSelection(c echo.Context) error {
	ctx := c.Request().Context()

	var req StartSelectionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	// The detail view needs the pizza and the extras catalog together.
	type pizzaResult struct {
		pizza *cucina.Pizza
		err   error
	}
	type extrasResult struct {
		extras []cucina.Extra
		err    error
	}

	pizzaCh := make(chan pizzaResult, 1)
	extrasCh := make(chan extrasResult, 1)
	go func() {
		pizza, err := h.kitchen.GetPizza(ctx, req.PizzaID)
		pizzaCh <- pizzaResult{pizza: pizza, err: err}
	}()
	go func() {
		extras, err := h.kitchen.ListExtras(ctx)
		extrasCh <- extrasResult{extras: extras, err: err}
	}()

	pr := <-pizzaCh
	er := <-extrasCh

	if pr.err != nil {
		var svcErr *cucina.ServiceError
		if errors.As(pr.err, &svcErr) && svcErr.StatusCode == http.StatusNotFound {
			return c.JSON(http.StatusNotFound, ErrorResponse{Error: "Pizza not found"})
		}
		return h.catalogUnavailable(c, "failed to fetch pizza", pr.err)
	}
	if er.err != nil {
		return h.catalogUnavailable(c, "failed to fetch extras", er.err)
	}

	sess := h.sessions.Create(ctx, *pr.pizza, er.extras)

	slog.InfoContext(ctx, "selection session started",
		slog.String("session-id", sess.ID),
		slog.Int("pizza-id", pr.pizza.ID))

	return c.JSON(http.StatusCreated, selectionResponse(sess))
}

// GetSelection godoc
//
// @Summary Get the current selection and price
// @Tags selection
// @Produce json
// @Param id path string true "Selection ID"
// @Success 200 {object} SelectionResponse
// @Failure 404 {object} ErrorResponse
// @Router /v1/selection/{id} [get]
func (h *MainHandler) GetSelection(c echo.Context) error {
	sess, ok := h.sessions.Get(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "selection not found"})
	}
	return c.JSON(http.StatusOK, selectionResponse(sess))
}

// IncrementQuantity godoc
//
// @Summary Increase the quantity by one
// @Tags selection
// @Produce json
// @Param id path string true "Selection ID"
// @Success 200 {object} SelectionResponse
// @Failure 404 {object} ErrorResponse
// @Router /v1/selection/{id}/quantity/increment [post]
func (h *MainHandler) IncrementQuantity(c echo.Context) error {
	sess, ok := h.sessions.Get(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "selection not found"})
	}

	snap := sess.IncQuantity()
	h.sessions.Recalculate(c.Request().Context(), sess, snap)

	return c.JSON(http.StatusOK, selectionResponse(sess))
}

// DecrementQuantity godoc
//
// @Summary Decrease the quantity by one, never below one
// @Tags selection
// @Produce json
// @Param id path string true "Selection ID"
// @Success 200 {object} SelectionResponse
// @Failure 404 {object} ErrorResponse
// @Router /v1/selection/{id}/quantity/decrement [post]
func (h *MainHandler) DecrementQuantity(c echo.Context) error {
	sess, ok := h.sessions.Get(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "selection not found"})
	}

	snap := sess.DecQuantity()
	h.sessions.Recalculate(c.Request().Context(), sess, snap)

	return c.JSON(http.StatusOK, selectionResponse(sess))
}

// ToggleExtra godoc
//
// @Summary Add or remove an extra
// @Tags selection
// @Produce json
// @Param id path string true "Selection ID"
// @Param extraID path int true "Extra ID"
// @Success 200 {object} SelectionResponse
// @Failure 404 {object} ErrorResponse
// @Router /v1/selection/{id}/extra/{extraID}/toggle [post]
func (h *MainHandler) ToggleExtra(c echo.Context) error {
	sess, ok := h.sessions.Get(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "selection not found"})
	}

	extraID, err := strconv.Atoi(c.Param("extraID"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid extra id"})
	}

	snap := sess.ToggleExtra(extraID)
	h.sessions.Recalculate(c.Request().Context(), sess, snap)

	return c.JSON(http.StatusOK, selectionResponse(sess))
}

// PlaceOrder godoc
//
// @Summary Place the order for the current selection
// @Tags order
// @Accept json
// @Produce json
// @Param id path string true "Selection ID"
// @Param customer body CustomerInfoRequest true "Customer information"
// @Success 201 {object} OrderPlacedResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ValidationErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /v1/selection/{id}/order [post]
func (h *MainHandler) PlaceOrder(c echo.Context) error {
	ctx := c.Request().Context()

	sess, ok := h.sessions.Get(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "selection not found"})
	}

	var req CustomerInfoRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request"})
	}

	view := sess.View()
	info := ordine.CustomerInfo{
		Name:    req.CustomerName,
		Address: req.DeliveryAddress,
		Phone:   req.CustomerPhone,
		Email:   req.CustomerEmail,
		Notes:   req.Notes,
	}

	order, err := h.submitter.Submit(ctx, &view.Pizza, view.Quote, view.Snapshot, info)
	if err != nil {
		h.ordersFailed.Add(ctx, 1)

		var valErr *ordine.ValidationError
		var subErr *ordine.SubmitError
		switch {
		case errors.Is(err, ordine.ErrNoQuote):
			return c.JSON(http.StatusConflict, ErrorResponse{Error: "Unable to place order. Please try again."})
		case errors.As(err, &valErr):
			return c.JSON(http.StatusUnprocessableEntity, ValidationErrorResponse{Errors: valErr.Fields})
		case errors.As(err, &subErr):
			return c.JSON(http.StatusBadGateway, ErrorResponse{Error: subErr.Message})
		default:
			return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "unexpected error"})
		}
	}

	h.ordersPlaced.Add(ctx, 1)

	confirmed := ConfirmedOrder{
		EventID:   uuid.New().String(),
		PizzaName: view.Pizza.Name,
		Order:     *order,
		PlacedAt:  time.Now(),
	}
	if err := h.publisher.PublishOrder(ctx, confirmed); err != nil {
		// The order is already accepted upstream; the live feed just misses it.
		slog.ErrorContext(ctx, "failed to publish confirmed order", slog.Any("err", err))
	}

	h.sessions.Drop(sess.ID)

	return c.JSON(http.StatusCreated, OrderPlacedResponse{
		Message: orderPlacedMessage,
		Order:   *order,
	})
}

// GetOrder godoc
//
// @Summary Get an order by id
// @Tags order
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} cucina.Order
// @Failure 404 {object} ErrorResponse
// @Router /v1/order/{id} [get]
func (h *MainHandler) GetOrder(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid order id"})
	}

	order, err := h.kitchen.GetOrder(c.Request().Context(), id)
	if err != nil {
		var svcErr *cucina.ServiceError
		if errors.As(err, &svcErr) && svcErr.StatusCode == http.StatusNotFound {
			return c.JSON(http.StatusNotFound, ErrorResponse{Error: "Order not found"})
		}
		return h.catalogUnavailable(c, "failed to fetch order", err)
	}
	return c.JSON(http.StatusOK, order)
}

// ListOrders godoc
//
// @Summary List orders
// @Tags order
// @Produce json
// @Success 200 {array} cucina.Order
// @Failure 502 {object} ErrorResponse
// @Router /v1/order [get]
func (h *MainHandler) ListOrders(c echo.Context) error {
	orders, err := h.kitchen.ListOrders(c.Request().Context())
	if err != nil {
		return h.catalogUnavailable(c, "failed to fetch orders", err)
	}
	return c.JSON(http.StatusOK, orders)
}

// GetLiveOrdersSSE godoc
//
// @Summary Stream confirmed orders via Server-Sent Events
// @Tags order
// @Produce text/event-stream
// @Success 200 {object} ConfirmedOrder
// @Router /v1/order/live [get]
func (h *MainHandler) GetLiveOrdersSSE(c echo.Context) error {
	ctx := c.Request().Context()

	flusher, ok := c.Response().Writer.(http.Flusher)
	if !ok {
		slog.ErrorContext(ctx, "streaming unsupported by response writer")
		return echo.NewHTTPError(http.StatusInternalServerError, "Streaming unsupported")
	}

	ch, unsubscribe, err := h.publisher.SubscribeOrders(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to subscribe to confirmed orders", slog.Any("err", err))
		return err
	}
	defer unsubscribe()

	c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "client closed live orders stream")
			return nil
		case order := <-ch:
			data, err := json.Marshal(order)
			if err != nil {
				slog.ErrorContext(ctx, "marshal confirmed order for SSE", slog.Any("err", err))
				continue
			}
			if _, err := c.Response().Writer.Write([]byte("data: " + string(data) + "\n\n")); err != nil {
				slog.ErrorContext(ctx, "write SSE", slog.Any("err", err))
				return err
			}
			flusher.Flush()
		}
	}
}

// HealthCheck godoc
//
// @Summary Check the health of the service
// @Tags health
// @Produce json
// @Success 200 {object} healthgo.Check
// @Failure 503 {object} healthgo.Check
// @Router /healthz [get]
func (h *MainHandler) HealthCheck(c echo.Context) error {
	check := h.health.Measure(c.Request().Context())

	statusCode := http.StatusOK
	if check.Status != healthgo.StatusOK {
		statusCode = http.StatusServiceUnavailable
	}

	return c.JSON(statusCode, check)
}

func (h *MainHandler) catalogUnavailable(c echo.Context, msg string, err error) error {
	slog.ErrorContext(c.Request().Context(), msg, slog.Any("err", err))
	return c.JSON(http.StatusBadGateway, ErrorResponse{
		Error: "Failed to load data from the catalog service. Please try again later.",
	})
}

func selectionResponse(sess *Session) SelectionResponse {
	view := sess.View()

	resp := SelectionResponse{
		SelectionID:    sess.ID,
		Pizza:          view.Pizza,
		Extras:         view.Extras,
		Quantity:       view.Snapshot.Quantity,
		SelectedExtras: view.Snapshot.ExtraIDs,
		PricePending:   view.Pending,
	}
	if view.Quote != nil {
		price := view.Quote.CalculatedPrice
		resp.Price = &price
		resp.PriceSource = string(view.Quote.Source)
	}
	return resp
}
