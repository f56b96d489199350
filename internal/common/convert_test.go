package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDecimal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"currency marker", "R$ 12,34", "12.34"},
		{"percent marker", "5%", "5"},
		{"negative percent", "-2,61%", "-2.61"},
		{"plain integer", "108", "108"},
		{"whitespace", "  R$ 1,05  ", "1.05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, err := ToDecimal(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, value.String())
		})
	}
}

func TestToDecimal_Invalid(t *testing.T) {
	_, err := ToDecimal("not a number")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConversion)

	_, err = ToDecimal("")
	assert.ErrorIs(t, err, ErrConversion)
}

func TestToDecimalOrNil(t *testing.T) {
	value := ToDecimalOrNil("R$ 750.000")
	require.NotNil(t, value)
	assert.Equal(t, "750.000", value.String())

	assert.Nil(t, ToDecimalOrNil("garbage"))
	assert.Nil(t, ToDecimalOrNil(""))
}

func TestToDateOrNil(t *testing.T) {
	date := ToDateOrNil("31/12/2012")
	require.NotNil(t, date)
	assert.Equal(t, time.Date(2012, time.December, 31, 0, 0, 0, 0, time.UTC), *date)

	// Impossible calendar date
	assert.Nil(t, ToDateOrNil("31/02/2020"))
	assert.Nil(t, ToDateOrNil("2020-02-01"))
	assert.Nil(t, ToDateOrNil("yesterday"))
}
