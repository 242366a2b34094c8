package logging

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineOmitsEmptyFields(t *testing.T) {
	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(Line(Fields{Step: "order.create", OrderNumber: 7})), &got))

	assert.Equal(t, "order.create", got["step"])
	assert.Equal(t, float64(7), got["order_number"])
	assert.Equal(t, Service, got["service"])
	assert.NotContains(t, got, "order_id")
	assert.NotContains(t, got, "error")
	assert.Contains(t, got, "timestamp")
}

func TestLineUsesFieldTags(t *testing.T) {
	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(Line(Fields{
		OrderID:    "o-1",
		Queue:      "pagamentos",
		Status:     "parked",
		DurationMS: 12,
		Error:      "order number 7 not found",
	})), &got))

	assert.Equal(t, "o-1", got["order_id"])
	assert.Equal(t, "pagamentos", got["queue"])
	assert.Equal(t, "parked", got["status"])
	assert.Equal(t, float64(12), got["duration_ms"])
	assert.Equal(t, "order number 7 not found", got["error"])
	assert.NotContains(t, got, "Fields")
	assert.NotContains(t, got, "order_number")
}
