package entity

import (
	"strings"
	"time"
)

// InvoiceLine is one row returned by the invoice export procedure. Typed
// fields are extracted from the known columns; Values keeps every column in
// source order for previews and CSV export.
type InvoiceLine struct {
	CarrierCode     string
	OriginCode      string
	DestinationCode string
	Amount          string
	Currency        string
	InvoiceDate     time.Time
	Values          []any
}

// IsFlight reports whether the line carries carrier or leg information.
func (l InvoiceLine) IsFlight() bool {
	return strings.TrimSpace(l.CarrierCode) != "" ||
		strings.TrimSpace(l.OriginCode) != "" ||
		strings.TrimSpace(l.DestinationCode) != ""
}

// InvoiceSet is the result of one export call for a single account.
type InvoiceSet struct {
	Columns []string
	Lines   []InvoiceLine
}

// DateRange is a calendar-day range; both bounds are inclusive dates in UTC.
type DateRange struct {
	From      time.Time
	To        time.Time
	IsDefault bool
}

const isoDate = "2006-01-02"

func (r DateRange) FromISO() string { return r.From.Format(isoDate) }
func (r DateRange) ToISO() string   { return r.To.Format(isoDate) }
