package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusTerminalSet(t *testing.T) {
	terminals := []Status{StatusDelivered, StatusPickedUp, StatusCancelled}
	open := []Status{StatusReceived, StatusPendingConfirm, StatusPreparing, StatusReadyForPickup, StatusOutForDelivery}

	for _, s := range terminals {
		assert.True(t, s.IsTerminal(), s)
	}
	for _, s := range open {
		assert.False(t, s.IsTerminal(), s)
	}
}

func TestParseStatus(t *testing.T) {
	for _, tok := range []string{
		"order_received", "pending_confirmation", "preparing", "ready_for_pickup",
		"picked_up", "out_for_delivery", "delivered", "cancelled",
	} {
		s, err := ParseStatus(tok)
		require.NoError(t, err, tok)
		assert.Equal(t, tok, s.String())
	}

	for _, tok := range []string{"", "Delivered", "shipped", "DELIVERED", "order received"} {
		_, err := ParseStatus(tok)
		assert.ErrorIs(t, err, ErrUnknownStatus, tok)
	}
}

func TestStatusLabels(t *testing.T) {
	assert.Equal(t, "Out for Delivery", StatusOutForDelivery.Label())
	assert.Equal(t, "Order Received", StatusReceived.Label())
	// unknown values fall back to the raw token, labels are display only
	assert.Equal(t, "weird", Status("weird").Label())
}
