package messaging

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eyabmansour/pfe-licence-api/internal/models"
)

func TestParseEvent(t *testing.T) {
	body := []byte(`{"type":"order.created","order_id":7,"user_id":3,"status":"PENDING","total_price":24.0}`)

	var event models.OrderEvent
	require.NoError(t, ParseEvent(body, &event))
	assert.Equal(t, models.EventOrderCreated, event.Type)
	assert.Equal(t, int64(7), event.OrderID)
}

func TestParseEventMalformedBody(t *testing.T) {
	var event models.OrderEvent
	err := ParseEvent([]byte(`{"type":`), &event)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBadMessage))
}

func TestShouldRequeue(t *testing.T) {
	assert.True(t, shouldRequeue(errors.New("connection reset")),
		"transient failures are redelivered")
	assert.False(t, shouldRequeue(ErrBadMessage))
	assert.False(t, shouldRequeue(fmt.Errorf("handling event: %w", ErrBadMessage)),
		"wrapped bad-message errors are dropped too")
}
