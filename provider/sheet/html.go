package sheet

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var errHTMLNotValid = errors.New("html not valid")

const (
	selectorTable = "table"
	selectorRows  = "tbody tr"
	selectorCells = "td"
)

// decodeHTML parses a sheet published as a web page. The first table of the page is read, row
// header cells are skipped and rows without data cells are ignored
func decodeHTML() decodeFunc {
	return func(b []byte) (sheetRates, error) {
		if len(bytes.TrimSpace(b)) == 0 {
			return sheetRates{}, errEmptyPayload
		}

		root, err := html.Parse(bytes.NewReader(b))
		if err != nil {
			return sheetRates{}, fmt.Errorf("%w: html parse: %v", errHTMLNotValid, err)
		}

		doc := goquery.NewDocumentFromNode(root)

		table := doc.Find(selectorTable).First()
		if table.Length() == 0 {
			return sheetRates{}, fmt.Errorf("%w: no table", errHTMLNotValid)
		}

		var records [][]string
		table.Find(selectorRows).Each(func(_ int, row *goquery.Selection) {
			cells := row.ChildrenFiltered(selectorCells)
			if cells.Length() == 0 {
				return
			}

			cols := make([]string, 0, cells.Length())
			cells.Each(func(_ int, cell *goquery.Selection) {
				cols = append(cols, strings.TrimSpace(cell.Text()))
			})

			records = append(records, cols)
		})

		return decodeRecords(records)
	}
}
