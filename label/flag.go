package label

// Flags maps the symbols shown on the board to their flag glyphs
var Flags = map[Symbol]string{
	EUR: "🇪🇺",
	USD: "🇺🇸",
	GBP: "🇬🇧",
	AED: "🇦🇪",
	AUD: "🇦🇺",
	CAD: "🇨🇦",
	CHF: "🇨🇭",
	SEK: "🇸🇪",
	NOK: "🇳🇴",
	DKK: "🇩🇰",
	JPY: "🇯🇵",
	LKR: "🇱🇰",
	INR: "🇮🇳",
	THB: "🇹🇭",
	TRY: "🇹🇷",
	MAD: "🇲🇦",
	SGD: "🇸🇬",
	MXN: "🇲🇽",
	NZD: "🇳🇿",
	ZAR: "🇿🇦",
}

// Flag returns the flag glyph for a currency code or an empty string if the code is unknown
func Flag(code string) string {
	if code == "" {
		return ""
	}

	return Flags[ParseSymbol(code)]
}
