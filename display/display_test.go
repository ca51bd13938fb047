package display

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/robotomize/ratesboard/provider"
)

func render(t *testing.T, d *Display) *goquery.Document {
	t.Helper()

	out, err := d.HTML()
	if err != nil {
		t.Fatalf("render html: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(out))
	if err != nil {
		t.Fatalf("parse rendered html: %v", err)
	}

	return doc
}

func cells(doc *goquery.Document, selector string) []string {
	var list []string
	doc.Find("#rates-body " + selector).Each(func(_ int, s *goquery.Selection) {
		list = append(list, strings.TrimSpace(s.Text()))
	})
	return list
}

func TestNew_Layout(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		err    error
		layout string
		slides int
	}{
		{
			name:   "test_layout_minimal",
			layout: `<html><body><div id="rates-body"></div><p id="error-message"></p><p id="last-updated"></p></body></html>`,
			slides: 0,
		},
		{
			name: "test_layout_slides",
			layout: `<html><body>
<div class="slide"><div id="rates-body"></div><p id="error-message"></p><p id="last-updated"></p></div>
<div class="slide active"></div>
</body></html>`,
			slides: 2,
		},
		{
			name:   "test_layout_missing_rates_body",
			err:    ErrRegionNotFound,
			layout: `<html><body><p id="error-message"></p></body></html>`,
		},
		{
			name:   "test_layout_missing_status",
			err:    ErrRegionNotFound,
			layout: `<html><body><div id="rates-body"></div><p id="last-updated"></p></body></html>`,
		},
		{
			name:   "test_layout_missing_last_updated",
			err:    ErrRegionNotFound,
			layout: `<html><body><div id="rates-body"></div><p id="error-message"></p></body></html>`,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			d, err := New(strings.NewReader(tc.layout))
			if !errors.Is(err, tc.err) {
				diff := cmp.Diff(tc.err, err, cmpopts.EquateErrors())
				t.Fatalf("mismatch (-want, +got):\n%s", diff)
			}

			if tc.err != nil {
				return
			}

			if diff := cmp.Diff(tc.slides, d.SlideCount()); diff != "" {
				t.Errorf("mismatch (-want, +got):\n%s", diff)
			}

			if tc.slides > 0 {
				doc := render(t, d)
				if diff := cmp.Diff(1, doc.Find(".slide.active").Length()); diff != "" {
					t.Errorf("mismatch (-want, +got):\n%s", diff)
				}
				if !doc.Find(".slide").First().HasClass("active") {
					t.Errorf("first slide must be active")
				}
			}
		})
	}
}

func TestDisplay_RenderRates(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		rates     []provider.Rate
		flags     []string
		codes     []string
		names     []string
		buys      []string
		sells     []string
		emptyRows int
	}{
		{
			name: "test_render_rows",
			rates: []provider.Rate{
				{Code: "USD", Currency: "US Dollar", Buy: "3.67", Sell: "3.70"},
				{Code: "XAU", Currency: "Gold", Buy: "240", Sell: "251"},
			},
			flags: []string{"🇺🇸", ""},
			codes: []string{"USD", "XAU"},
			names: []string{"US Dollar", "Gold"},
			buys:  []string{"3.67", "240"},
			sells: []string{"3.70", "251"},
		},
		{
			name: "test_render_placeholders",
			rates: []provider.Rate{
				{Code: "EUR", Currency: "Euro"},
				{Currency: "Silver", Buy: "1.2"},
			},
			flags: []string{"🇪🇺", ""},
			codes: []string{"EUR", ""},
			names: []string{"Euro", "Silver"},
			buys:  []string{"-", "1.2"},
			sells: []string{"-", "-"},
		},
		{
			name: "test_render_escapes_markup",
			rates: []provider.Rate{
				{Code: "GBP", Currency: "<b>Pound</b>", Buy: "4.90", Sell: "5.02"},
			},
			flags: []string{"🇬🇧"},
			codes: []string{"GBP"},
			names: []string{"<b>Pound</b>"},
			buys:  []string{"4.90"},
			sells: []string{"5.02"},
		},
		{
			name:      "test_render_empty",
			rates:     nil,
			emptyRows: 1,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			d, err := Default(WithLocation(time.UTC))
			if err != nil {
				t.Fatalf("default display: %v", err)
			}

			if err := d.RenderRates(tc.rates); err != nil {
				t.Fatalf("render rates: %v", err)
			}

			doc := render(t, d)

			if diff := cmp.Diff(tc.flags, cells(doc, ".cell-flag"), cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("flags mismatch (-want, +got):\n%s", diff)
			}
			if diff := cmp.Diff(tc.codes, cells(doc, ".cell-code"), cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("codes mismatch (-want, +got):\n%s", diff)
			}
			if diff := cmp.Diff(tc.names, cells(doc, ".cell-currency"), cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("names mismatch (-want, +got):\n%s", diff)
			}
			if diff := cmp.Diff(tc.buys, cells(doc, ".cell-buy"), cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("buys mismatch (-want, +got):\n%s", diff)
			}
			if diff := cmp.Diff(tc.sells, cells(doc, ".cell-sell"), cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("sells mismatch (-want, +got):\n%s", diff)
			}

			if doc.Find("#rates-body b").Length() != 0 {
				t.Errorf("sheet markup must be escaped")
			}

			empty := 0
			doc.Find("#rates-body .cell").Each(func(_ int, s *goquery.Selection) {
				if strings.TrimSpace(s.Text()) == EmptyText {
					empty++
				}
			})
			if diff := cmp.Diff(tc.emptyRows, empty); diff != "" {
				t.Errorf("empty row mismatch (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestDisplay_RenderReplacesRows(t *testing.T) {
	t.Parallel()

	d, err := Default()
	if err != nil {
		t.Fatalf("default display: %v", err)
	}

	if err := d.RenderRates([]provider.Rate{{Code: "USD"}, {Code: "EUR"}, {Code: "GBP"}}); err != nil {
		t.Fatalf("render rates: %v", err)
	}

	if err := d.RenderRates([]provider.Rate{{Code: "AED"}}); err != nil {
		t.Fatalf("render rates: %v", err)
	}

	if diff := cmp.Diff([]string{"AED"}, cells(render(t, d), ".cell-code")); diff != "" {
		t.Errorf("mismatch (-want, +got):\n%s", diff)
	}

	if err := d.RenderEmpty(); err != nil {
		t.Fatalf("render empty: %v", err)
	}

	doc := render(t, d)
	if diff := cmp.Diff(0, len(cells(doc, ".cell-code"))); diff != "" {
		t.Errorf("mismatch (-want, +got):\n%s", diff)
	}
	if !strings.Contains(doc.Find("#rates-body").Text(), EmptyText) {
		t.Errorf("expected %q row", EmptyText)
	}
}

func TestDisplay_SetStatus(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		level   Level
		text    string
		classes []string
	}{
		{
			name:    "test_status_warning",
			level:   LevelWarning,
			text:    "Unable to load latest rates - showing last data.",
			classes: []string{"status--warning"},
		},
		{
			name:    "test_status_error",
			level:   LevelError,
			text:    "Unable to load rates. Please check the connection.",
			classes: []string{"status--error"},
		},
		{
			name:  "test_status_clear",
			level: LevelNone,
			text:  "",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			d, err := Default()
			if err != nil {
				t.Fatalf("default display: %v", err)
			}

			// start from the opposite level to check classes are replaced
			d.SetStatus(LevelError, "previous")
			d.SetStatus(LevelWarning, "previous")
			d.SetStatus(tc.level, tc.text)

			level, text := d.Status()
			if diff := cmp.Diff(tc.level, level); diff != "" {
				t.Errorf("level mismatch (-want, +got):\n%s", diff)
			}
			if diff := cmp.Diff(tc.text, text); diff != "" {
				t.Errorf("text mismatch (-want, +got):\n%s", diff)
			}

			sel := render(t, d).Find("#error-message")
			var classes []string
			for _, class := range []string{"status--warning", "status--error"} {
				if sel.HasClass(class) {
					classes = append(classes, class)
				}
			}
			if diff := cmp.Diff(tc.classes, classes, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("classes mismatch (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestDisplay_SetLastUpdated(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("GST", 4*60*60)
	d, err := Default(WithLocation(loc))
	if err != nil {
		t.Fatalf("default display: %v", err)
	}

	d.SetLastUpdated(time.Date(2026, time.October, 18, 10, 5, 0, 0, time.UTC))

	got := render(t, d).Find("#last-updated").Text()
	if diff := cmp.Diff("Last updated: 18 Oct 2026, 14:05", got); diff != "" {
		t.Errorf("mismatch (-want, +got):\n%s", diff)
	}
}

func TestDisplay_SetReload(t *testing.T) {
	t.Parallel()

	d, err := Default()
	if err != nil {
		t.Fatalf("default display: %v", err)
	}

	d.SetReload(15 * time.Second)
	d.SetReload(20 * time.Second)

	meta := render(t, d).Find(`meta[http-equiv="refresh"]`)
	if diff := cmp.Diff(1, meta.Length()); diff != "" {
		t.Fatalf("mismatch (-want, +got):\n%s", diff)
	}
	content, _ := meta.Attr("content")
	if diff := cmp.Diff("20", content); diff != "" {
		t.Errorf("mismatch (-want, +got):\n%s", diff)
	}

	d.SetReload(0)
	if n := render(t, d).Find(`meta[http-equiv="refresh"]`).Length(); n != 0 {
		t.Errorf("reload meta must be removed, found %d", n)
	}
}

func TestDisplay_Slides(t *testing.T) {
	t.Parallel()

	d, err := Default()
	if err != nil {
		t.Fatalf("default display: %v", err)
	}

	if diff := cmp.Diff(3, d.SlideCount()); diff != "" {
		t.Fatalf("mismatch (-want, +got):\n%s", diff)
	}

	var visited []int
	for i := 0; i < 7; i++ {
		visited = append(visited, d.NextSlide())

		doc := render(t, d)
		active := doc.Find(".slide.active")
		if diff := cmp.Diff(1, active.Length()); diff != "" {
			t.Fatalf("exactly one slide must be active (-want, +got):\n%s", diff)
		}
		if diff := cmp.Diff(d.ActiveSlide(), doc.Find(".slide").IndexOfSelection(active)); diff != "" {
			t.Errorf("mismatch (-want, +got):\n%s", diff)
		}
	}

	if diff := cmp.Diff([]int{1, 2, 0, 1, 2, 0, 1}, visited); diff != "" {
		t.Errorf("mismatch (-want, +got):\n%s", diff)
	}

	if diff := cmp.Diff(2, d.ShowSlide(-1)); diff != "" {
		t.Errorf("mismatch (-want, +got):\n%s", diff)
	}
	if diff := cmp.Diff(0, d.ShowSlide(3)); diff != "" {
		t.Errorf("mismatch (-want, +got):\n%s", diff)
	}
}

func TestDisplay_NoSlides(t *testing.T) {
	t.Parallel()

	d, err := New(strings.NewReader(`<div id="rates-body"></div><p id="error-message"></p><p id="last-updated"></p>`))
	if err != nil {
		t.Fatalf("new display: %v", err)
	}

	if diff := cmp.Diff(-1, d.NextSlide()); diff != "" {
		t.Errorf("mismatch (-want, +got):\n%s", diff)
	}
	if diff := cmp.Diff(-1, d.ActiveSlide()); diff != "" {
		t.Errorf("mismatch (-want, +got):\n%s", diff)
	}
}

func TestDisplay_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	d, err := Default()
	if err != nil {
		t.Fatalf("default display: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			_ = d.RenderRates([]provider.Rate{{Code: "USD", Buy: "1", Sell: "2"}})
		}()
		go func() {
			defer wg.Done()
			d.NextSlide()
		}()
		go func() {
			defer wg.Done()
			if _, err := d.HTML(); err != nil {
				t.Errorf("render html: %v", err)
			}
		}()
	}
	wg.Wait()

	if diff := cmp.Diff(1, render(t, d).Find(".slide.active").Length()); diff != "" {
		t.Errorf("mismatch (-want, +got):\n%s", diff)
	}
}
