package notify

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"

	"github.com/burgerhouseweligama-hub/burger-house-sub000/internal/orders"
)

// ErrNoTemplate means the status token has no message template. That is a
// configuration error on our side, never something a customer should see;
// the dispatcher refuses to emit such events at all.
var ErrNoTemplate = errors.New("no template for status")

// StatusTemplate is the fixed tuple each recognized status maps to.
type StatusTemplate struct {
	Subject   string
	Heading   string
	Narrative string
	Color     string // emphasis color for the heading
}

var statusTemplates = map[orders.Status]StatusTemplate{
	orders.StatusReceived: {
		Subject:   "We received your order",
		Heading:   "Order Received",
		Narrative: "Thanks for ordering! Your order is in and the kitchen has been told.",
		Color:     "#2d6cdf",
	},
	orders.StatusPendingConfirm: {
		Subject:   "Your order is awaiting confirmation",
		Heading:   "Pending Confirmation",
		Narrative: "We are confirming a detail on your order and will update you shortly.",
		Color:     "#b8860b",
	},
	orders.StatusPreparing: {
		Subject:   "Your order is being prepared",
		Heading:   "Preparing",
		Narrative: "The grill is on. Your order is being prepared right now.",
		Color:     "#e67e22",
	},
	orders.StatusReadyForPickup: {
		Subject:   "Your order is ready for pickup",
		Heading:   "Ready for Pickup",
		Narrative: "Your order is packed and waiting at the counter.",
		Color:     "#16a085",
	},
	orders.StatusOutForDelivery: {
		Subject:   "Your order is on the way",
		Heading:   "Out for Delivery",
		Narrative: "Your order left the kitchen and is on its way to you.",
		Color:     "#8e44ad",
	},
	orders.StatusDelivered: {
		Subject:   "Your order has been delivered",
		Heading:   "Delivered",
		Narrative: "Your order was delivered. Enjoy your meal!",
		Color:     "#27ae60",
	},
	orders.StatusPickedUp: {
		Subject:   "Thanks for picking up your order",
		Heading:   "Picked Up",
		Narrative: "Your order was picked up. Enjoy your meal!",
		Color:     "#27ae60",
	},
	orders.StatusCancelled: {
		Subject:   "Your order was cancelled",
		Heading:   "Cancelled",
		Narrative: "Your order has been cancelled. If this is unexpected, call us.",
		Color:     "#c0392b",
	},
}

func HasTemplate(s orders.Status) bool {
	_, ok := statusTemplates[s]
	return ok
}

func TemplateFor(s orders.Status) (StatusTemplate, error) {
	t, ok := statusTemplates[s]
	if !ok {
		return StatusTemplate{}, fmt.Errorf("%w: %q", ErrNoTemplate, s)
	}
	return t, nil
}

var emailTmpl = template.Must(template.New("order_email").Funcs(template.FuncMap{
	"cents": func(c int) float64 { return float64(c) / 100 },
}).Parse(`<html>
<body style="font-family:sans-serif;color:#333">
  <h2 style="color:{{.T.Color}}">{{.T.Heading}}</h2>
  <p>Hi {{.O.CustomerName}},</p>
  <p>{{.T.Narrative}}</p>
  <p>Order <strong>{{.O.Number}}</strong></p>
  <table cellpadding="4">
    {{range .O.Lines}}<tr>
      <td>{{.Name}}</td><td>x{{.Qty}}</td>
    </tr>{{end}}
    <tr><td><strong>Total</strong></td><td><strong>Rs {{printf "%.2f" (cents .O.TotalCents)}}</strong></td></tr>
  </table>
  {{if .O.Address}}<p>Delivery to: {{.O.Address}}, {{.O.City}} {{.O.PostalCode}}</p>{{end}}
  <p>Burger House, Weligama</p>
</body>
</html>`))

// RenderEmail produces the customer message for the order's current status.
func RenderEmail(o *orders.Order) (subject, html string, err error) {
	t, err := TemplateFor(o.Status)
	if err != nil {
		return "", "", err
	}
	var buf bytes.Buffer
	if err := emailTmpl.Execute(&buf, struct {
		T StatusTemplate
		O *orders.Order
	}{t, o}); err != nil {
		return "", "", fmt.Errorf("render email: %w", err)
	}
	return fmt.Sprintf("%s - Order %s", t.Subject, o.Number), buf.String(), nil
}
