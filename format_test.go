package jform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "plain", FormatValue("plain"))
	assert.Equal(t, "8443", FormatValue(8443.0))
	assert.Equal(t, "0.25", FormatValue(0.25))
	assert.Equal(t, "true", FormatValue(true))
	assert.Equal(t, "null", FormatValue(nil))
	assert.Equal(t, `["a",1,null]`, FormatValue(Array{"a", 1.0, nil}))
	assert.Equal(t, "[\n  {\n    \"k\": 1\n  }\n]", FormatValue(Array{Object{{Key: "k", Value: 1.0}}}))
	assert.Equal(t, `{"k":"v"}`, FormatValue(Object{{Key: "k", Value: "v"}}))
}

func TestFormatCell(t *testing.T) {
	assert.Equal(t, "", FormatCell(nil, false))
	assert.Equal(t, "null", FormatCell(nil, true))
	assert.Equal(t, "a, 2, , true", FormatCell(Array{"a", 2.0, nil, true}, true))
	assert.Equal(t, `[{"k":1}]`, FormatCell(Array{Object{{Key: "k", Value: 1.0}}}, true))
	assert.Equal(t, "1e+21", FormatCell(1e21, true))
}
