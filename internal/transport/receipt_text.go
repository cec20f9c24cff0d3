package transport

import (
	"fmt"
	"strings"

	"shopfront/internal/domain"
)

// FormatReceiptText renders a receipt as flat text. Every figure comes
// straight from the archived receipt; nothing is recomputed here.
func FormatReceiptText(r domain.Receipt) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Order #%d\n", r.Number)
	fmt.Fprintf(&b, "Receipt %s\n", r.ID)
	fmt.Fprintf(&b, "Date    %s\n\n", r.CreatedAt.Format("2006-01-02 15:04:05 MST"))

	for _, line := range r.Lines {
		fmt.Fprintf(&b, "%-24s %3d x %8s  %10s\n",
			line.ItemName,
			line.Quantity,
			line.UnitPrice.StringFixed(2),
			line.LineTotal().StringFixed(2),
		)
	}

	fmt.Fprintf(&b, "\n%-24s %s\n", "Subtotal", r.Subtotal.StringFixed(2))
	fmt.Fprintf(&b, "%-24s %s\n", "Service charge", r.ServiceCharge.StringFixed(2))
	fmt.Fprintf(&b, "%-24s %s\n", "Tax", r.Tax.StringFixed(2))
	fmt.Fprintf(&b, "%-24s %s\n", "Grand total", r.GrandTotal.StringFixed(2))

	return b.String()
}
