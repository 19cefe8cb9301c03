package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatBRL(t *testing.T) {
	assert.Equal(t, "R$ 1.234,50", FormatBRL(123450))
	assert.Equal(t, "R$ 0,05", FormatBRL(5))
	assert.Equal(t, "-R$ 10,00", FormatBRL(-1000))
}

func TestFormatCount(t *testing.T) {
	assert.Equal(t, "950", FormatCount(950))
	assert.Equal(t, "9.999", FormatCount(9999))
	assert.Equal(t, "12,3 mil", FormatCount(12_300))
	assert.Equal(t, "1,2 mi", FormatCount(1_200_000))
}
