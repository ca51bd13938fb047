package sheet

import (
	"errors"
	"strconv"
	"strings"

	"github.com/robotomize/ratesboard/internal/strutil"
	"github.com/robotomize/ratesboard/provider"
)

var (
	errEmptyPayload   = errors.New("payload is empty")
	errHeaderNotValid = errors.New("header names neither code nor currency column")
)

const (
	columnOrder    = "order"
	columnCode     = "code"
	columnCurrency = "currency"
	columnBuy      = "buy"
	columnSell     = "sell"
)

// decodeFunc turns a raw payload into sheet rows
type decodeFunc func([]byte) (sheetRates, error)

type sheetRates struct {
	// ordered is set when the sheet has an order column
	ordered bool
	rates   []provider.Rate
}

// sheetHeader keeps the position of each known column, -1 if the column is absent
type sheetHeader struct {
	order    int
	code     int
	currency int
	buy      int
	sell     int
}

func (h sheetHeader) cell(cols []string, idx int) string {
	if idx < 0 || idx >= len(cols) {
		return ""
	}

	return cols[idx]
}

// decodeRecords builds rates from a table whose first record is the header. Records that name neither a
// code nor a currency are dropped
func decodeRecords(records [][]string) (sheetRates, error) {
	var result sheetRates

	if len(records) == 0 {
		return result, errEmptyPayload
	}

	header, err := parseHeader(records[0])
	if err != nil {
		return result, err
	}

	result.ordered = header.order >= 0
	result.rates = make([]provider.Rate, 0, len(records)-1)

	for _, cols := range records[1:] {
		rate := provider.Rate{
			Order:    parseOrder(header.cell(cols, header.order)),
			Code:     header.cell(cols, header.code),
			Currency: header.cell(cols, header.currency),
			Buy:      header.cell(cols, header.buy),
			Sell:     header.cell(cols, header.sell),
		}

		if !rate.Valid() {
			continue
		}

		result.rates = append(result.rates, rate)
	}

	return result, nil
}

func parseHeader(cols []string) (sheetHeader, error) {
	header := sheetHeader{order: -1, code: -1, currency: -1, buy: -1, sell: -1}

	for n, column := range cols {
		var pos *int
		switch strutil.Fold(column) {
		case columnOrder:
			pos = &header.order
		case columnCode:
			pos = &header.code
		case columnCurrency:
			pos = &header.currency
		case columnBuy:
			pos = &header.buy
		case columnSell:
			pos = &header.sell
		default:
			continue
		}

		// the first column with a given name wins
		if *pos < 0 {
			*pos = n
		}
	}

	if header.code < 0 && header.currency < 0 {
		return header, errHeaderNotValid
	}

	return header, nil
}

// parseOrder reads the leading integer of a cell, so "3" and "3.0" both give 3.
// Cells without leading digits give provider.DefaultOrder
func parseOrder(s string) int {
	s = strings.TrimSpace(s)

	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}

	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}

	if end == digits {
		return provider.DefaultOrder
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return provider.DefaultOrder
	}

	return n
}
