package ordine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidPhone(t *testing.T) {
	tests := []struct {
		name  string
		phone string
		want  bool
	}{
		{"letters", "abc", false},
		{"international with separators", "+1 555-123-4567", true},
		{"plain digits", "5551234567", true},
		{"parens and dashes", "(555) 123-4567", true},
		{"too few digits", "555-1234", false},
		{"plus in the middle", "555+1234567890", false},
		{"dots are not separators", "555.123.456.789", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidPhone(tt.phone))
		})
	}
}

func TestValidEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
		want  bool
	}{
		{"plain", "mario@example.com", true},
		{"subdomain", "mario@mail.example.co", true},
		{"missing at", "mario.example.com", false},
		{"missing tld", "mario@example", false},
		{"spaces", "mario rossi@example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidEmail(tt.email))
		})
	}
}

func TestCustomerInfoValidate(t *testing.T) {
	tests := []struct {
		name       string
		info       CustomerInfo
		wantFields []string
	}{
		{
			name:       "empty name and address",
			info:       CustomerInfo{},
			wantFields: []string{FieldCustomerName, FieldDeliveryAddress},
		},
		{
			name:       "whitespace only counts as empty",
			info:       CustomerInfo{Name: "   ", Address: "\t"},
			wantFields: []string{FieldCustomerName, FieldDeliveryAddress},
		},
		{
			name:       "bad phone",
			info:       CustomerInfo{Name: "Mario", Address: "Via Roma 1", Phone: "abc"},
			wantFields: []string{FieldCustomerPhone},
		},
		{
			name:       "bad email",
			info:       CustomerInfo{Name: "Mario", Address: "Via Roma 1", Email: "not-an-email"},
			wantFields: []string{FieldCustomerEmail},
		},
		{
			name: "all valid, optionals present",
			info: CustomerInfo{
				Name:    "Mario",
				Address: "Via Roma 1",
				Phone:   "+1 555-123-4567",
				Email:   "mario@example.com",
				Notes:   "ring twice",
			},
			wantFields: nil,
		},
		{
			name:       "optionals may be empty",
			info:       CustomerInfo{Name: "Mario", Address: "Via Roma 1"},
			wantFields: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			errs := tt.info.Validate()

			// Assert
			assert.Len(t, errs, len(tt.wantFields))
			for _, field := range tt.wantFields {
				assert.Contains(t, errs, field)
			}
		})
	}
}
