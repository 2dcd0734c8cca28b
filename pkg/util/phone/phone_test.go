package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		region   string
		national string
		e164     string
	}{
		{"local", "9876543210", "IN", "9876543210", "+919876543210"},
		{"spaced", "98765 43210", "IN", "9876543210", "+919876543210"},
		{"international", "+91 98765-43210", "US", "9876543210", "+919876543210"},
		{"default region", "9876543210", "", "9876543210", "+919876543210"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := Parse(tt.raw, tt.region)
			require.NoError(t, err)
			assert.Equal(t, tt.national, n.National)
			assert.Equal(t, tt.e164, n.E164)
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, raw := range []string{"", "   ", "abc", "12"} {
		_, err := Parse(raw, "IN")
		assert.ErrorIs(t, err, ErrInvalid, raw)
	}
}

func TestLastDigits(t *testing.T) {
	assert.Equal(t, "3210", LastDigits("9876543210", 4))
	assert.Equal(t, "3210", LastDigits("+91 98765-43210", 4))
	assert.Equal(t, "12", LastDigits("12", 4))
	assert.Equal(t, "", LastDigits("", 4))
}
