package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "$0.00", FormatCurrency(0))
	assert.Equal(t, "$441.00", FormatCurrency(441))
	assert.Equal(t, "$1,234.56", FormatCurrency(1234.56))
	assert.Equal(t, "$1,000,000.00", FormatCurrency(1_000_000))
	assert.Equal(t, "-$512.75", FormatCurrency(-512.75))
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "5.00%", FormatPercent(0.05))
	assert.Equal(t, "4.41%", FormatPercent(0.0441))
	assert.Equal(t, "100.00%", FormatPercent(1))
}

func TestFormatStrike(t *testing.T) {
	assert.Equal(t, "475", FormatStrike(475))
	assert.Equal(t, "475.50", FormatStrike(475.5))
}
