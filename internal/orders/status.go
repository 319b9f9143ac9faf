package orders

type Status string

const (
	StatusReceived       Status = "order_received"
	StatusPendingConfirm Status = "pending_confirmation"
	StatusPreparing      Status = "preparing"
	StatusReadyForPickup Status = "ready_for_pickup"
	StatusOutForDelivery Status = "out_for_delivery"
	StatusDelivered      Status = "delivered"
	StatusPickedUp       Status = "picked_up"
	StatusCancelled      Status = "cancelled"
)

// Single source of truth for which statuses end the pipeline.
var terminal = map[Status]bool{
	StatusDelivered: true,
	StatusPickedUp:  true,
	StatusCancelled: true,
}

var known = map[Status]bool{
	StatusReceived:       true,
	StatusPendingConfirm: true,
	StatusPreparing:      true,
	StatusReadyForPickup: true,
	StatusOutForDelivery: true,
	StatusDelivered:      true,
	StatusPickedUp:       true,
	StatusCancelled:      true,
}

// labels is presentation only; staff screens show these, business logic
// never reads them.
var labels = map[Status]string{
	StatusReceived:       "Order Received",
	StatusPendingConfirm: "Pending Confirmation",
	StatusPreparing:      "Preparing",
	StatusReadyForPickup: "Ready for Pickup",
	StatusOutForDelivery: "Out for Delivery",
	StatusDelivered:      "Delivered",
	StatusPickedUp:       "Picked Up",
	StatusCancelled:      "Cancelled",
}

func (s Status) IsTerminal() bool { return terminal[s] }

func (s Status) String() string { return string(s) }

func (s Status) Label() string {
	if l, ok := labels[s]; ok {
		return l
	}
	return string(s)
}

// ParseStatus accepts only the canonical tokens. Anything else is a state
// error, never silently coerced.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !known[st] {
		return "", ErrUnknownStatus
	}
	return st, nil
}
