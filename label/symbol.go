package label

import "github.com/robotomize/ratesboard/internal/strutil"

// Symbol is an ISO 4217 alphabetic currency code
type Symbol string

func (s Symbol) String() string {
	return string(s)
}

const (
	AED Symbol = "AED"
	AUD Symbol = "AUD"
	CAD Symbol = "CAD"
	CHF Symbol = "CHF"
	DKK Symbol = "DKK"
	EUR Symbol = "EUR"
	GBP Symbol = "GBP"
	INR Symbol = "INR"
	JPY Symbol = "JPY"
	LKR Symbol = "LKR"
	MAD Symbol = "MAD"
	MXN Symbol = "MXN"
	NOK Symbol = "NOK"
	NZD Symbol = "NZD"
	SEK Symbol = "SEK"
	SGD Symbol = "SGD"
	THB Symbol = "THB"
	TRY Symbol = "TRY"
	USD Symbol = "USD"
	ZAR Symbol = "ZAR"
)

// ParseSymbol normalizes a raw sheet code, so " usd" and "USD" give the same Symbol
func ParseSymbol(code string) Symbol {
	return Symbol(strutil.UpperTrim(code))
}
