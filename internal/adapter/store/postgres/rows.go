package postgres

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dayanaadylkhanova/travel-portal/internal/entity"
)

// Column names of the export procedure. Matching is case-insensitive.
var (
	carrierColumns     = []string{"carrcd"}
	originColumns      = []string{"fdestcd"}
	destinationColumns = []string{"tdestcd"}
	amountColumns      = []string{"amount"}
	currencyColumns    = []string{"currency", "currcd"}
	dateColumns        = []string{"invodate", "invoicedate", "invdate"}
)

type columnIndex struct {
	carrier, origin, destination, amount, currency, date int
}

func indexColumns(cols []string) columnIndex {
	pos := make(map[string]int, len(cols))
	for i, c := range cols {
		k := strings.ToLower(strings.TrimSpace(c))
		if _, dup := pos[k]; !dup {
			pos[k] = i
		}
	}
	find := func(names []string) int {
		for _, n := range names {
			if i, ok := pos[n]; ok {
				return i
			}
		}
		return -1
	}
	return columnIndex{
		carrier:     find(carrierColumns),
		origin:      find(originColumns),
		destination: find(destinationColumns),
		amount:      find(amountColumns),
		currency:    find(currencyColumns),
		date:        find(dateColumns),
	}
}

func lineFromValues(idx columnIndex, vals []any) entity.InvoiceLine {
	at := func(i int) any {
		if i < 0 || i >= len(vals) {
			return nil
		}
		return vals[i]
	}

	line := entity.InvoiceLine{
		CarrierCode:     strings.TrimSpace(textValue(at(idx.carrier))),
		OriginCode:      strings.TrimSpace(textValue(at(idx.origin))),
		DestinationCode: strings.TrimSpace(textValue(at(idx.destination))),
		Amount:          strings.TrimSpace(textValue(at(idx.amount))),
		Currency:        strings.TrimSpace(textValue(at(idx.currency))),
		Values:          make([]any, len(vals)),
	}
	if t, ok := at(idx.date).(time.Time); ok {
		line.InvoiceDate = t.UTC()
	}
	for i, v := range vals {
		line.Values[i] = plainValue(v)
	}
	return line
}

// textValue renders a decoded column value as text. pgx returns numeric
// columns as pgtype.Numeric, which is a driver.Valuer.
func textValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case time.Time:
		return x.UTC().Format("2006-01-02")
	case driver.Valuer:
		dv, err := x.Value()
		if err != nil || dv == nil {
			return ""
		}
		if _, again := dv.(driver.Valuer); again {
			return fmt.Sprint(dv)
		}
		return textValue(dv)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// plainValue turns driver types into values the JSON and CSV writers can
// print as-is.
func plainValue(v any) any {
	switch x := v.(type) {
	case nil, string, bool, int16, int32, int64, float32, float64:
		return x
	case time.Time:
		return x.UTC()
	case []byte:
		return string(x)
	default:
		return textValue(x)
	}
}
