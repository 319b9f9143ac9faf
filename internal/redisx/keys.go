package redisx

import "time"

const (
	// Order status cache: order_status:{number} -> {"status":"...","updatedAt":"..."}
	KeyOrderStatus = "order_status:%s"

	// Dedup for event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"

	// Pub/sub channel for the admin realtime stream. Best effort: listeners
	// that are not subscribed at publish time miss the event, and that is
	// fine - the admin list is always the ground truth.
	ChannelOrderEvents = "orders.live"
)

var (
	TTLStatusCache = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
)
