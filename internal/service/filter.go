package service

import "github.com/dayanaadylkhanova/travel-portal/internal/entity"

// FilterFlights keeps lines that carry a carrier, origin or destination code.
// Input order is preserved.
func FilterFlights(lines []entity.InvoiceLine) []entity.InvoiceLine {
	out := make([]entity.InvoiceLine, 0, len(lines))
	for _, l := range lines {
		if l.IsFlight() {
			out = append(out, l)
		}
	}
	return out
}
