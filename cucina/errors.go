package cucina

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// FieldErrors maps a field name to the messages the service attached to it,
// mirroring the rejection payload of the order endpoint.
type FieldErrors map[string][]string

// Flatten renders the map as "field: m1, m2; field2: m3". Fields are sorted
// so the message is deterministic.
func (f FieldErrors) Flatten() string {
	fields := make([]string, 0, len(f))
	for field := range f {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+strings.Join(f[field], ", "))
	}
	return strings.Join(parts, "; ")
}

// NetworkError means no usable response arrived at all: connection refused,
// DNS failure, client timeout.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("cucina: %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ServiceError is a non-success status with a payload. Fields is populated
// when the body is a field-keyed validation rejection.
type ServiceError struct {
	Op         string
	StatusCode int
	Body       string
	Fields     FieldErrors
}

func (e *ServiceError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("cucina: %s: status %d: %s", e.Op, e.StatusCode, e.Fields.Flatten())
	}
	return fmt.Sprintf("cucina: %s: status %d: %s", e.Op, e.StatusCode, e.Body)
}

// parseFieldErrors decodes a DRF-style rejection body, where each field maps
// to either a message or a list of messages. Returns nil when the body has
// some other shape.
func parseFieldErrors(body []byte) FieldErrors {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil || len(raw) == 0 {
		return nil
	}

	fields := make(FieldErrors, len(raw))
	for field, value := range raw {
		switch v := value.(type) {
		case string:
			fields[field] = []string{v}
		case []any:
			msgs := make([]string, 0, len(v))
			for _, item := range v {
				msg, ok := item.(string)
				if !ok {
					return nil
				}
				msgs = append(msgs, msg)
			}
			fields[field] = msgs
		default:
			return nil
		}
	}
	return fields
}
