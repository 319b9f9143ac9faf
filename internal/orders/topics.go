package orders

const (
	// All lifecycle events for one order land on a single topic keyed by
	// order_id, so they stay ordered relative to each other.
	TopicOrderEvents = "order.events"
)

func PartitionKey(orderID string) []byte { return []byte(orderID) }
