package orders

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewOrderNumber builds the human-readable order number, e.g.
// BH-20260901-7F3A2C. Uniqueness is backstopped by the unique constraint
// on orders.number.
func NewOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("BH-%s-%s", now.UTC().Format("20060102"), suffix)
}
