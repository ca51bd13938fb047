package httputil

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultUserAgent = "ratesboard/0.0.0"

// DefaultMaxBodySize limits the payload read from a source
const DefaultMaxBodySize = 4 << 20

var (
	ErrStatusCode   = errors.New("http status is not successful")
	ErrBodyTooLarge = errors.New("http body exceeds size limit")
)

// DefaultClient return preconfigured HTTP client for sources. Compression is negotiated by
// SourceHTTPClient itself
func DefaultClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			DisableCompression:    true,
			IdleConnTimeout:       5 * time.Minute,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
			ResponseHeaderTimeout: 10 * time.Second,
		},
	}
}

// NewHTTPClient return prepared SourceHTTPClient
func NewHTTPClient(client *http.Client) SourceHTTPClient {
	return SourceHTTPClient{client: client, maxBodySize: DefaultMaxBodySize}
}

type SourceHTTPClient struct {
	client      *http.Client
	maxBodySize int64
}

// RequestOption changes an outgoing request before it is sent
type RequestOption func(req *http.Request)

// WithCacheBust appends a query parameter holding the current unix time in milliseconds and asks
// intermediaries not to serve a cached copy. Published sheets are cached aggressively otherwise
func WithCacheBust(param string, now func() time.Time) RequestOption {
	return func(req *http.Request) {
		if now == nil {
			now = time.Now
		}

		query := req.URL.Query()
		query.Set(param, strconv.FormatInt(now().UnixNano()/int64(time.Millisecond), 10))
		req.URL.RawQuery = query.Encode()
		req.Header.Set("Cache-Control", "no-cache")
		req.Header.Set("Pragma", "no-cache")
	}
}

// WithAccept sets the Accept header
func WithAccept(mediaType string) RequestOption {
	return func(req *http.Request) {
		req.Header.Set("Accept", mediaType)
	}
}

func (f SourceHTTPClient) UserAgent() string {
	return defaultUserAgent
}

// WithMaxBodySize returns a copy of the client that refuses bodies larger than n bytes
func (f SourceHTTPClient) WithMaxBodySize(n int64) SourceHTTPClient {
	f.maxBodySize = n
	return f
}

// Get implements HTTP method GET client and returns the slice byte from the body
func (f SourceHTTPClient) Get(ctx context.Context, u url.URL, opts ...RequestOption) ([]byte, error) {
	return f.fetch(ctx, u, opts...)
}

func (f SourceHTTPClient) fetch(ctx context.Context, u url.URL, opts ...RequestOption) ([]byte, error) {
	req, err := f.prepareRequest(ctx, u, opts...)
	if err != nil {
		return nil, fmt.Errorf("build HTTP request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("make HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("http status: %d, %s: %w", resp.StatusCode, resp.Status, ErrStatusCode)
	}

	var reader io.ReadCloser
	contentType := resp.Header.Get("Content-Type")
	contentEncoding := resp.Header.Get("Content-Encoding")
	switch {
	case strings.Contains(contentType, "application/x-gzip"), strings.Contains(contentEncoding, "gzip"):
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("unable create gzip.NewReader: %w", err)
		}
		reader = gz
		defer reader.Close()

	default:
		reader = resp.Body
	}

	limit := f.maxBodySize
	if limit <= 0 {
		limit = DefaultMaxBodySize
	}

	b, err := io.ReadAll(io.LimitReader(reader, limit+1))
	if err != nil {
		if !errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("read body: %w", err)
		}
	}

	if int64(len(b)) > limit {
		return nil, fmt.Errorf("%w: %d bytes", ErrBodyTooLarge, limit)
	}

	return b, nil
}

func (f SourceHTTPClient) prepareRequest(ctx context.Context, u url.URL, opts ...RequestOption) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("http.NewRequestWithContext: %w", err)
	}

	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Accept-Encoding", "gzip")

	for _, opt := range opts {
		opt(req)
	}

	return req, nil
}
