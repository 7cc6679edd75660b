package utils

import (
	"testing"

	"github.com/gofrs/uuid"
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenUuidFromFields(t *testing.T) {
	tests := []struct {
		name  string
		a, b  []string
		equal bool
	}{
		{name: "same fields", a: []string{"USDT", "asset"}, b: []string{"USDT", "asset"}, equal: true},
		{name: "order matters", a: []string{"USDT", "asset"}, b: []string{"asset", "USDT"}},
		{name: "boundaries matter", a: []string{"ab", "c"}, b: []string{"a", "bc"}},
		{name: "empty field", a: []string{"", "ab"}, b: []string{"ab", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := GenUuidFromFields(tt.a...), GenUuidFromFields(tt.b...)
			assert.Equal(t, tt.equal, a == b)
			assert.NotEqual(t, uuid.Nil, uuid.FromStringOrNil(a))
		})
	}
}

func TestUint256FromDecimal(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected *uint256.Int
		wantErr  error
	}{
		{
			name:     "one",
			input:    "1",
			expected: uint256.NewInt(1_000_000_000_000),
		},
		{
			name:     "percentage",
			input:    "0.8",
			expected: uint256.NewInt(800_000_000_000),
		},
		{
			name:     "truncates below precision",
			input:    "0.0000000000019",
			expected: uint256.NewInt(1),
		},
		{
			name:    "negative",
			input:   "-1",
			wantErr: ErrNegativeDecimal,
		},
		{
			name:    "overflow",
			input:   "1e80",
			wantErr: ErrDecimalOverflow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Uint256FromDecimal(decimal.RequireFromString(tt.input))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result, "expected %s, got %s", tt.expected, result)
		})
	}
}

func TestDecimalFromUint256(t *testing.T) {
	assert.True(t, DecimalFromUint256(nil).IsZero())
	assert.True(t, DecimalFromUint256(MustUint256FromString("1.05")).Equal(decimal.RequireFromString("1.05")))
	assert.Panics(t, func() { MustUint256FromString("-0.5") })
}

func TestAprToApy(t *testing.T) {
	assert.True(t, AprToApy(decimal.Zero).IsZero())

	apy := AprToApy(decimal.RequireFromString("0.1"))
	// continuous compounding bound: e^0.1 - 1
	assert.True(t, apy.GreaterThan(decimal.RequireFromString("0.1")))
	assert.True(t, apy.LessThan(decimal.RequireFromString("0.10517092")))
}
