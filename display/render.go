package display

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/robotomize/ratesboard/internal/strutil"
	"github.com/robotomize/ratesboard/label"
	"github.com/robotomize/ratesboard/provider"
)

// Level of the status line
type Level byte

const (
	LevelNone Level = iota
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "none"
	}
}

func (l Level) class() string {
	switch l {
	case LevelWarning:
		return classWarning
	case LevelError:
		return classError
	default:
		return ""
	}
}

type row struct {
	Flag     string
	Code     string
	Currency string
	Buy      string
	Sell     string
}

// RenderRates replaces the rate rows. An empty list renders the EmptyText row
func (d *Display) RenderRates(rates []provider.Rate) error {
	rows := make([]row, 0, len(rates))
	for _, r := range rates {
		rows = append(rows, row{
			Flag:     label.Flag(r.Code),
			Code:     r.Code,
			Currency: r.Currency,
			Buy:      strutil.OrDefault(r.Buy, Placeholder),
			Sell:     strutil.OrDefault(r.Sell, Placeholder),
		})
	}

	var buf bytes.Buffer
	if err := rowsTmpl.ExecuteTemplate(&buf, rowsTemplate, struct {
		Rows  []row
		Empty string
	}{
		Rows:  rows,
		Empty: EmptyText,
	}); err != nil {
		return fmt.Errorf("rows tmpl execute: %w", err)
	}

	d.mtx.Lock()
	defer d.mtx.Unlock()

	d.doc.Find(selectorRatesBody).SetHtml(buf.String())

	return nil
}

// RenderEmpty shows the EmptyText row
func (d *Display) RenderEmpty() error {
	return d.RenderRates(nil)
}

// SetStatus writes the status line. LevelNone with an empty text clears it
func (d *Display) SetStatus(level Level, text string) {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	sel := d.doc.Find(selectorStatus)
	sel.RemoveClass(classWarning, classError)
	if class := level.class(); class != "" {
		sel.AddClass(class)
	}
	sel.SetText(text)
}

// SetLastUpdated writes the last updated label, e.g. "Last updated: 18 Oct 2026, 14:05"
func (d *Display) SetLastUpdated(t time.Time) {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	d.doc.Find(selectorLastUpdated).SetText(lastUpdatedPrefix + t.In(d.loc).Format(lastUpdatedLayout))
}

// SetReload makes viewers reload the page every period. Zero or less removes the reload
func (d *Display) SetReload(period time.Duration) {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	meta := d.doc.Find(selectorReload)
	if period <= 0 {
		meta.Remove()
		return
	}

	seconds := int(period / time.Second)
	if seconds < 1 {
		seconds = 1
	}

	if meta.Length() > 0 {
		meta.SetAttr("content", strconv.Itoa(seconds))
		return
	}

	d.doc.Find("head").AppendHtml(fmt.Sprintf(`<meta http-equiv="refresh" content="%d">`, seconds))
}

// Status returns the current status line
func (d *Display) Status() (Level, string) {
	d.mtx.RLock()
	defer d.mtx.RUnlock()

	sel := d.doc.Find(selectorStatus)
	level := LevelNone
	switch {
	case sel.HasClass(classError):
		level = LevelError
	case sel.HasClass(classWarning):
		level = LevelWarning
	}

	return level, sel.Text()
}
