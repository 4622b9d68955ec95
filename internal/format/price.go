// Package format renders prices for API responses. Amounts are stored as
// minor currency units everywhere; formatting happens only at the edge.
package format

import (
	"errors"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// PriceFormatter renders minor-unit amounts in one currency.
type PriceFormatter struct {
	unit    currency.Unit
	symbol  string
	printer *message.Printer
}

// NewPriceFormatter constructs a formatter for the ISO currency code.
func NewPriceFormatter(code string) (*PriceFormatter, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, errors.New("format: currency code is required")
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return nil, err
	}

	printer := message.NewPrinter(language.English)
	return &PriceFormatter{
		unit:    unit,
		symbol:  printer.Sprint(currency.Symbol(unit)),
		printer: printer,
	}, nil
}

// Currency returns the ISO code the formatter renders.
func (f *PriceFormatter) Currency() string {
	return f.unit.String()
}

// Minor renders a minor-unit amount, e.g. 119900 -> "$1,199.00".
func (f *PriceFormatter) Minor(amount int64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}
	// Integer split keeps amounts beyond float64 precision exact.
	units := amount / 100
	cents := amount % 100
	rendered := f.printer.Sprintf("%v.%02d", number.Decimal(units), cents)
	if negative {
		return "-" + f.symbol + rendered
	}
	return f.symbol + rendered
}
