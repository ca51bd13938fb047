package sheet

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/robotomize/ratesboard/provider"
	"github.com/robotomize/ratesboard/provider/httputil"
)

const (
	// Name of the source in logs and reports
	Name = "sheet"

	// DefaultURL is the published CSV export of the board sheet
	DefaultURL = "https://docs.google.com/spreadsheets/d/e/2PACX-1vR4jaSDSAyxPrg6t6zSq-40nxkoEOOevw3nhjOjZv2aeqfIW8sMKbJ9EMYnlx6GCNWSQqo5DkD3s32T/pub?gid=0&single=true&output=csv"

	// DefaultCacheBustParam is the query parameter that forces a fresh export
	DefaultCacheBustParam = "cacheBust"
)

const (
	csvMediaType  = "text/csv"
	htmlMediaType = "text/html"
)

// ErrUnknownFormat is returned by ParseFormat for an unsupported publishing format
var ErrUnknownFormat = errors.New("unknown sheet format")

// Format is the way the sheet is published
type Format string

const (
	FormatCSV  Format = "csv"
	FormatHTML Format = "html"
)

// ParseFormat returns the format with the given name, an empty name is FormatCSV
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatHTML:
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

var defaultLatestResource = url.URL{
	Scheme:   "https",
	Host:     "docs.google.com",
	Path:     "/spreadsheets/d/e/2PACX-1vR4jaSDSAyxPrg6t6zSq-40nxkoEOOevw3nhjOjZv2aeqfIW8sMKbJ9EMYnlx6GCNWSQqo5DkD3s32T/pub",
	RawQuery: "gid=0&single=true&output=csv",
}

var _ provider.Source = (*source)(nil)

type Option func(*source)

// WithURL set the address of the published CSV
func WithURL(u url.URL) Option {
	return func(s *source) {
		s.client.latestURL = u
	}
}

// WithCacheBustParam set the name of the freshness query parameter
func WithCacheBustParam(param string) Option {
	return func(s *source) {
		s.client.cacheBustParam = param
	}
}

// WithFormat set how the sheet is published: as a CSV export or as a web page
func WithFormat(f Format) Option {
	return func(s *source) {
		switch f {
		case FormatHTML:
			s.client.decodeFunc = decodeHTML()
			s.client.accept = htmlMediaType
		default:
			s.client.decodeFunc = decodeCSV()
			s.client.accept = csvMediaType
		}
	}
}

// WithMaxBodySize set the largest payload accepted from the sheet
func WithMaxBodySize(n int64) Option {
	return func(s *source) {
		s.client.SourceHTTPClient = s.client.SourceHTTPClient.WithMaxBodySize(n)
	}
}

// WithClock set the time source of the freshness parameter
func WithClock(now func() time.Time) Option {
	return func(s *source) {
		s.client.now = now
	}
}

type fetcher struct {
	latestURL      url.URL
	cacheBustParam string
	accept         string
	now            func() time.Time
	decodeFunc
	httputil.SourceHTTPClient
}

func NewSource(client *http.Client, opts ...Option) *source {
	s := &source{
		client: fetcher{
			latestURL:        defaultLatestResource,
			cacheBustParam:   DefaultCacheBustParam,
			accept:           csvMediaType,
			now:              time.Now,
			decodeFunc:       decodeCSV(),
			SourceHTTPClient: httputil.NewHTTPClient(client),
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

type source struct {
	client fetcher
}

func (s *source) Name() string {
	return Name
}

// URL returns the configured address without the freshness parameter
func (s *source) URL() url.URL {
	return s.client.latestURL
}

func (s *source) FetchLatest(ctx context.Context) ([]provider.Rate, error) {
	list, err := s.fetchingPlan(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching plan: %w", err)
	}

	return list, nil
}

func (s *source) fetchingPlan(ctx context.Context) ([]provider.Rate, error) {
	b, err := s.client.Get(
		ctx,
		s.client.latestURL,
		httputil.WithCacheBust(s.client.cacheBustParam, s.client.now),
		httputil.WithAccept(s.client.accept),
	)
	if err != nil {
		return nil, fmt.Errorf("fetching: %w", err)
	}

	list, err := s.decode(b, s.client.decodeFunc)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	return list, nil
}

func (s *source) decode(b []byte, decodeFunc decodeFunc) ([]provider.Rate, error) {
	sheet, err := decodeFunc(b)
	if err != nil {
		return nil, fmt.Errorf("%T decode func: %w", decodeFunc, err)
	}

	if sheet.ordered {
		sort.SliceStable(sheet.rates, func(i, j int) bool {
			return sheet.rates[i].Less(sheet.rates[j])
		})
	}

	return sheet.rates, nil
}
