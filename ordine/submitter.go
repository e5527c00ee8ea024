package ordine

import (
	"context"
	"errors"
	"log/slog"

	"github.com/taldoflemis/usersnack/cucina"
	"go.opentelemetry.io/otel/attribute"
)

// OrderService is the remote order-creation endpoint.
type OrderService interface {
	CreateOrder(ctx context.Context, req cucina.OrderRequest) (*cucina.Order, error)
}

// ErrNoQuote signals a submission attempted before a pizza and a calculated
// price were available.
var ErrNoQuote = errors.New("unable to place order, retry")

// ValidationError carries local field-keyed validation failures. It never
// reaches the network layer.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	return "invalid customer info: " + e.Fields.Flatten()
}

// SubmitError wraps an upstream rejection with the message shown to the
// customer. The failure is recoverable: the form stays usable and
// resubmission is allowed.
type SubmitError struct {
	Message string
	Err     error
}

func (e *SubmitError) Error() string {
	return e.Message
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

const (
	failureLabel          = "Order failed: "
	genericFailureMessage = "Failed to place order. Please check your information and try again."
)

// Submitter validates customer info, builds the order payload and hands it
// to the remote service.
type Submitter struct {
	svc OrderService
}

func NewSubmitter(svc OrderService) *Submitter {
	return &Submitter{svc: svc}
}

// Submit places an order for the given selection snapshot. pizza and quote
// are the prerequisites of the detail view; either missing fails fast with
// ErrNoQuote before anything else happens.
func (s *Submitter) Submit(ctx context.Context, pizza *cucina.Pizza, quote *Quote, snap Snapshot, info CustomerInfo) (*cucina.Order, error) {
	ctx, span := tracer.Start(ctx, "Submitter.Submit")
	defer span.End()

	if pizza == nil || quote == nil {
		return nil, ErrNoQuote
	}

	span.SetAttributes(
		attribute.Int("pizza.id", pizza.ID),
		attribute.Int("selection.quantity", snap.Quantity),
		attribute.IntSlice("selection.extras", snap.ExtraIDs),
	)

	if fieldErrs := info.Validate(); len(fieldErrs) > 0 {
		slog.DebugContext(ctx, "customer info rejected locally",
			slog.String("fields", fieldErrs.Flatten()))
		return nil, &ValidationError{Fields: fieldErrs}
	}

	req := cucina.OrderRequest{
		Pizza:           pizza.ID,
		Extras:          snap.ExtraIDs,
		Quantity:        snap.Quantity,
		CustomerName:    info.Name,
		DeliveryAddress: info.Address,
		CustomerPhone:   info.Phone,
		CustomerEmail:   info.Email,
		Notes:           info.Notes,
	}

	order, err := s.svc.CreateOrder(ctx, req)
	if err != nil {
		span.RecordError(err)
		slog.ErrorContext(ctx, "order submission failed",
			slog.Int("pizza-id", pizza.ID),
			slog.Any("err", err))
		return nil, &SubmitError{Message: userMessage(err), Err: err}
	}

	slog.InfoContext(ctx, "order placed",
		slog.Int("order-id", order.ID),
		slog.Int("pizza-id", pizza.ID),
		slog.Int("quantity", snap.Quantity))

	return order, nil
}

// userMessage turns an upstream failure into the single human-readable
// string surfaced on the form. Structured field rejections flatten to
// "field: m1, m2; field2: m3"; unstructured bodies pass through verbatim;
// no response at all gets the generic retry message.
func userMessage(err error) string {
	var svcErr *cucina.ServiceError
	if errors.As(err, &svcErr) {
		if len(svcErr.Fields) > 0 {
			return failureLabel + svcErr.Fields.Flatten()
		}
		if svcErr.Body != "" {
			return failureLabel + svcErr.Body
		}
	}
	return genericFailureMessage
}
