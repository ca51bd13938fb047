package sheet

import (
	"strings"
)

const (
	lineSep   = "\n"
	columnSep = ","
	bom       = "\ufeff"
)

// decodeCSV parses a published sheet. Lines are split on commas without quoting support, so a comma
// inside a cell shifts the following cells. This matches what the board sheets are expected to contain
func decodeCSV() decodeFunc {
	return func(b []byte) (sheetRates, error) {
		text := strings.TrimSpace(strings.TrimPrefix(string(b), bom))
		if text == "" {
			return sheetRates{}, errEmptyPayload
		}

		lines := strings.Split(text, lineSep)

		records := make([][]string, 0, len(lines))
		for _, line := range lines {
			records = append(records, splitLine(line))
		}

		return decodeRecords(records)
	}
}

func splitLine(line string) []string {
	cols := strings.Split(line, columnSep)
	for i := range cols {
		cols[i] = strings.TrimSpace(cols[i])
	}

	return cols
}
