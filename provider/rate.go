package provider

// DefaultOrder is the sort key of a record without an explicit order
const DefaultOrder = 9999

// Rate is a single board row as published in the sheet. Buy and Sell keep the sheet formatting
type Rate struct {
	Order    int    `json:"order"`
	Code     string `json:"code"`
	Currency string `json:"currency"`
	Buy      string `json:"buy"`
	Sell     string `json:"sell"`
}

// Valid reports whether the record identifies a currency by code or by name
func (r Rate) Valid() bool {
	return r.Code != "" || r.Currency != ""
}

// Less orders records by Order, then by Code
func (r Rate) Less(other Rate) bool {
	if r.Order != other.Order {
		return r.Order < other.Order
	}

	return r.Code < other.Code
}
