package format

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// CurrencySymbol prefixes currency values when the column asks for it.
const CurrencySymbol = "£"

var currencyLocale = language.BritishEnglish

// Currency renders value in accounting style: rounded to 2 decimals,
// thousands separated, negatives in parentheses. Values that are not
// numeric come back as their plain text.
func Currency(value any, showSymbol bool) string {
	f, ok := ToFloat(value)
	if !ok {
		return Text(value)
	}
	f = round2(f)
	p := message.NewPrinter(currencyLocale)
	s := p.Sprint(number.Decimal(math.Abs(f), number.MaxFractionDigits(2)))
	if showSymbol {
		s = CurrencySymbol + s
	}
	if f < 0 {
		s = "(" + s + ")"
	}
	return s
}
