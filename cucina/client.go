package cucina

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/taldoflemis/usersnack/crosta"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("cucina")

// Client talks to the remote catalog/order service. The service is the
// source of truth for pricing; callers handle its unavailability.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

func NewClient(settings crosta.UpstreamSettings) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(settings.TimeoutInSeconds) * time.Second,
		},
		baseURL: strings.TrimRight(settings.BaseURL, "/"),
	}
}

// listEnvelope tolerates both a bare JSON array and the paginated
// {"results": [...]} shape the service emits for list endpoints.
type listEnvelope[T any] struct {
	Results []T `json:"results"`
}

func decodeList[T any](body []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []T
		err := json.Unmarshal(trimmed, &items)
		return items, err
	}
	var envelope listEnvelope[T]
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, err
	}
	return envelope.Results, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, payload any) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "cucina.Client."+op, trace.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.path", path),
	))
	defer span.End()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.SetStatus(codes.Error, "request failed")
		span.RecordError(err)
		return nil, &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		span.SetStatus(codes.Error, "read body failed")
		span.RecordError(err)
		return nil, &NetworkError{Op: op, Err: err}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
		svcErr := &ServiceError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Body:       string(data),
			Fields:     parseFieldErrors(data),
		}
		slog.DebugContext(ctx, "upstream rejected request",
			slog.String("op", op),
			slog.Int("status", resp.StatusCode))
		return nil, svcErr
	}

	return data, nil
}

// ListPizzas fetches the catalog. A non-empty search term is forwarded
// verbatim; matching semantics belong to the service.
func (c *Client) ListPizzas(ctx context.Context, search string) ([]Pizza, error) {
	query := url.Values{}
	if search != "" {
		query.Set("search", search)
	}

	data, err := c.do(ctx, "ListPizzas", http.MethodGet, "/pizza/", query, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[Pizza](data)
}

func (c *Client) GetPizza(ctx context.Context, id int) (*Pizza, error) {
	data, err := c.do(ctx, "GetPizza", http.MethodGet, fmt.Sprintf("/pizza/%d/", id), nil, nil)
	if err != nil {
		return nil, err
	}

	var pizza Pizza
	if err := json.Unmarshal(data, &pizza); err != nil {
		return nil, err
	}
	return &pizza, nil
}

// CalculatePrice asks the service to price the current selection. The
// service may apply discounts the client does not know about.
func (c *Client) CalculatePrice(ctx context.Context, pizzaID int, extras []int, quantity int) (*CalculatedPrice, error) {
	if extras == nil {
		extras = []int{}
	}
	payload := PriceRequest{Extras: extras, Quantity: quantity}

	data, err := c.do(ctx, "CalculatePrice", http.MethodPost,
		fmt.Sprintf("/pizza/%d/calculate_price/", pizzaID), nil, payload)
	if err != nil {
		return nil, err
	}

	var price CalculatedPrice
	if err := json.Unmarshal(data, &price); err != nil {
		return nil, err
	}
	return &price, nil
}

func (c *Client) ListExtras(ctx context.Context) ([]Extra, error) {
	data, err := c.do(ctx, "ListExtras", http.MethodGet, "/extra/", nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[Extra](data)
}

func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	if req.Extras == nil {
		req.Extras = []int{}
	}

	data, err := c.do(ctx, "CreateOrder", http.MethodPost, "/order/", nil, req)
	if err != nil {
		return nil, err
	}

	var order Order
	if err := json.Unmarshal(data, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) GetOrder(ctx context.Context, id int) (*Order, error) {
	data, err := c.do(ctx, "GetOrder", http.MethodGet, fmt.Sprintf("/order/%d/", id), nil, nil)
	if err != nil {
		return nil, err
	}

	var order Order
	if err := json.Unmarshal(data, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) ListOrders(ctx context.Context) ([]Order, error) {
	data, err := c.do(ctx, "ListOrders", http.MethodGet, "/order/", nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[Order](data)
}

// Ping is used by health checks; any response from the extras endpoint
// counts as alive.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, "Ping", http.MethodGet, "/extra/", nil, nil)
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return err
	}
	// A service-level rejection still proves the service answers.
	return nil
}
