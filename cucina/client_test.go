package cucina

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taldoflemis/usersnack/crosta"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(crosta.UpstreamSettings{
		BaseURL:          server.URL,
		TimeoutInSeconds: 2,
	})
}

func TestListPizzasDecodesBareArray(t *testing.T) {
	// Arrange
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pizza/", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":1,"name":"Margherita","base_price":"8.99","ingredients":[{"name":"tomato"},{"name":"mozzarella"}]}]`))
	})

	// Act
	pizzas, err := client.ListPizzas(context.Background(), "")

	// Assert
	require.NoError(t, err)
	require.Len(t, pizzas, 1)
	assert.Equal(t, "Margherita", pizzas[0].Name)
	assert.True(t, pizzas[0].BasePrice.Equal(decimal.RequireFromString("8.99")))
	assert.Equal(t, "tomato", pizzas[0].Ingredients[0].Name)
}

func TestListPizzasDecodesResultsEnvelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"count":2,"results":[{"id":1,"name":"Margherita","base_price":8.99},{"id":2,"name":"Diavola","base_price":"10.50"}]}`))
	})

	pizzas, err := client.ListPizzas(context.Background(), "")

	require.NoError(t, err)
	require.Len(t, pizzas, 2)
	// decimals survive whether the wire carries a string or a number
	assert.True(t, pizzas[0].BasePrice.Equal(decimal.RequireFromString("8.99")))
	assert.True(t, pizzas[1].BasePrice.Equal(decimal.RequireFromString("10.50")))
}

func TestListPizzasForwardsSearchVerbatim(t *testing.T) {
	var gotSearch string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotSearch = r.URL.Query().Get("search")
		w.Write([]byte(`[]`))
	})

	_, err := client.ListPizzas(context.Background(), "spicy Salami")

	require.NoError(t, err)
	assert.Equal(t, "spicy Salami", gotSearch)
}

func TestGetPizzaNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail":"Not found."}`))
	})

	_, err := client.GetPizza(context.Background(), 99)

	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, http.StatusNotFound, svcErr.StatusCode)
}

func TestCalculatePriceSendsSelection(t *testing.T) {
	// Arrange
	var gotBody PriceRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pizza/7/calculate_price/", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{"pizza_id":7,"pizza_name":"Margherita","base_price":"10.00","quantity":2,"extras_ids":[1],"total_price":"25.00"}`))
	})

	// Act
	price, err := client.CalculatePrice(context.Background(), 7, []int{1}, 2)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, PriceRequest{Extras: []int{1}, Quantity: 2}, gotBody)
	assert.True(t, price.TotalPrice.Equal(decimal.RequireFromString("25.00")))
}

func TestCalculatePriceNeverSendsNullExtras(t *testing.T) {
	var raw map[string]json.RawMessage
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		w.Write([]byte(`{"pizza_id":7,"quantity":1,"total_price":"10.00"}`))
	})

	_, err := client.CalculatePrice(context.Background(), 7, nil, 1)

	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw["extras"]))
}

func TestCreateOrderParsesFieldRejection(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"customer_name":["required"],"delivery_address":"too short"}`))
	})

	_, err := client.CreateOrder(context.Background(), OrderRequest{Pizza: 7, Quantity: 1})

	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, FieldErrors{
		"customer_name":    {"required"},
		"delivery_address": {"too short"},
	}, svcErr.Fields)
}

func TestUnreachableServiceIsNetworkError(t *testing.T) {
	// Arrange: the server is stopped before the call
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := NewClient(crosta.UpstreamSettings{BaseURL: server.URL, TimeoutInSeconds: 1})
	server.Close()

	// Act
	_, err := client.ListExtras(context.Background())

	// Assert
	var netErr *NetworkError
	assert.ErrorAs(t, err, &netErr)
}

func TestFieldErrorsFlatten(t *testing.T) {
	tests := []struct {
		name   string
		fields FieldErrors
		want   string
	}{
		{
			name:   "single field single message",
			fields: FieldErrors{"customer_name": {"required"}},
			want:   "customer_name: required",
		},
		{
			name: "messages joined by comma, fields by semicolon",
			fields: FieldErrors{
				"customer_phone": {"too short", "digits only"},
				"customer_name":  {"required"},
			},
			want: "customer_name: required; customer_phone: too short, digits only",
		},
		{
			name:   "empty",
			fields: FieldErrors{},
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.fields.Flatten())
		})
	}
}
