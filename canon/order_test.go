package canon

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScalarText(t *testing.T) {
	assert.Equal(t, "null", scalarText(NullValue()))
	assert.Equal(t, "false", scalarText(BoolValue(false)))
	assert.Equal(t, "10", scalarText(NumberValue(10)))
	assert.Equal(t, "x", scalarText(StringValue("x")))
}

func TestNumberText(t *testing.T) {
	assert.Equal(t, "NaN", numberText(math.NaN()))
	assert.Equal(t, "Infinity", numberText(math.Inf(1)))
	assert.Equal(t, "-Infinity", numberText(math.Inf(-1)))
	assert.Equal(t, "1e+21", numberText(1e21))
	assert.Equal(t, "10", numberText(10))
	assert.Equal(t, "0", numberText(math.Copysign(0, -1)))
}
