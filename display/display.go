// Package display keeps the board as an HTML document in memory. The rates loader writes into its
// regions and the slide timer toggles which slide is active; HTTP handlers render it as is.
package display

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const (
	layoutFile   = "assets/board.html"
	rowsTemplate = "rows"
)

const (
	selectorRatesBody   = "#rates-body"
	selectorStatus      = "#error-message"
	selectorLastUpdated = "#last-updated"
	selectorSlide       = ".slide"
	selectorReload      = `meta[http-equiv="refresh"]`
)

const (
	classActive  = "active"
	classWarning = "status--warning"
	classError   = "status--error"
)

const (
	// EmptyText is shown in place of the rate rows when there is nothing to show
	EmptyText = "No rates available."
	// Placeholder replaces a missing buy or sell price
	Placeholder = "-"

	lastUpdatedLayout = "02 Jan 2006, 15:04"
	lastUpdatedPrefix = "Last updated: "
)

var ErrRegionNotFound = errors.New("layout region not found")

var (
	//go:embed assets
	assets embed.FS

	rowsTmpl = template.Must(template.ParseFS(assets, "assets/rows.tmpl"))
)

type Option func(*Display)

// WithLocation set the time zone of the last updated label
func WithLocation(loc *time.Location) Option {
	return func(d *Display) {
		d.loc = loc
	}
}

// Display is safe for concurrent use
type Display struct {
	mtx sync.RWMutex

	root *html.Node
	doc  *goquery.Document
	loc  *time.Location

	active int
	slides int
}

// Default returns a display built from the bundled layout
func Default(opts ...Option) (*Display, error) {
	f, err := assets.Open(layoutFile)
	if err != nil {
		return nil, fmt.Errorf("open layout: %w", err)
	}
	defer f.Close()

	return New(f, opts...)
}

// New parses a layout. The layout must contain the #rates-body, #error-message and #last-updated
// regions. Slides are the elements with the "slide" class
func New(layout io.Reader, opts ...Option) (*Display, error) {
	root, err := html.Parse(layout)
	if err != nil {
		return nil, fmt.Errorf("html parse: %w", err)
	}

	d := &Display{
		root: root,
		doc:  goquery.NewDocumentFromNode(root),
		loc:  time.Local,
	}

	for _, opt := range opts {
		opt(d)
	}

	for _, selector := range []string{selectorRatesBody, selectorStatus, selectorLastUpdated} {
		if d.doc.Find(selector).Length() == 0 {
			return nil, fmt.Errorf("%w: %s", ErrRegionNotFound, selector)
		}
	}

	d.slides = d.doc.Find(selectorSlide).Length()
	if d.slides > 0 {
		d.showSlide(0)
	}

	return d, nil
}

// WriteHTML renders the current state of the board
func (d *Display) WriteHTML(w io.Writer) error {
	d.mtx.RLock()
	defer d.mtx.RUnlock()

	if err := html.Render(w, d.root); err != nil {
		return fmt.Errorf("html render: %w", err)
	}

	return nil
}

// HTML returns the rendered board
func (d *Display) HTML() (string, error) {
	var buf bytes.Buffer
	if err := d.WriteHTML(&buf); err != nil {
		return "", err
	}

	return buf.String(), nil
}
