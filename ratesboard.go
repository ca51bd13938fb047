package ratesboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robotomize/ratesboard/display"
	"github.com/robotomize/ratesboard/internal/hashio"
	"github.com/robotomize/ratesboard/internal/logging"
	"github.com/robotomize/ratesboard/provider"
	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultRequestTimeout  = 10 * time.Second
	DefaultRetryNum        = 0
	DefaultRetryDuration   = 5 * time.Second
	DefaultRefreshInterval = 60 * time.Second
	DefaultSlideDuration   = 30 * time.Second
)

const (
	// StaleText is shown next to the previous rates when a refresh fails
	StaleText = "Unable to load latest rates – showing last data."
	// UnavailableText is shown when a refresh fails and there is nothing to fall back to
	UnavailableText = "Unable to load rates. Please check the connection."
)

type Status byte

const (
	StatusUnavailable Status = iota
	StatusStale
	StatusOK
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusStale:
		return "stale"
	default:
		return "unavailable"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type Option func(*Board)

type Options struct {
	RetryNum        uint64
	RetryDuration   time.Duration
	RequestTimeout  time.Duration
	RefreshInterval time.Duration
	SlideDuration   time.Duration
}

// WithRetryNum set number of repeated requests within one refresh. Zero leaves retrying to the next tick
func WithRetryNum(n uint64) Option {
	return func(b *Board) {
		b.opts.RetryNum = n
	}
}

// WithRetryDuration constant pause between repeated requests
func WithRetryDuration(t time.Duration) Option {
	return func(b *Board) {
		b.opts.RetryDuration = t
	}
}

// WithRequestTimeout set a timeout for a single source request
func WithRequestTimeout(t time.Duration) Option {
	return func(b *Board) {
		b.opts.RequestTimeout = t
	}
}

// WithRefreshInterval set how often the rates are reloaded
func WithRefreshInterval(t time.Duration) Option {
	return func(b *Board) {
		b.opts.RefreshInterval = t
	}
}

// WithSlideDuration set how long each slide stays on screen
func WithSlideDuration(t time.Duration) Option {
	return func(b *Board) {
		b.opts.SlideDuration = t
	}
}

// WithClock set the time source used for the last updated label and reports
func WithClock(now func() time.Time) Option {
	return func(b *Board) {
		b.now = now
	}
}

// Snapshot is the complete result of one successful refresh. It is never modified once published
type Snapshot struct {
	Rates     []provider.Rate
	UpdatedAt time.Time
	// Digest is the hex SHA-1 of the rates, equal snapshots have equal digests
	Digest string
}

// Report describes the outcome of a refresh
type Report struct {
	Source    string
	Status    Status
	Err       error
	Attempted time.Time
	// Snapshot on display after the refresh, nil if there is none
	Snapshot *Snapshot
}

func (r Report) ErrorMessage() string {
	if r.Err == nil {
		return ""
	}

	return r.Err.Error()
}

// New return a board that loads rates from source into view
func New(source provider.Source, view *display.Display, opts ...Option) *Board {
	b := &Board{
		opts: Options{
			RetryNum:        DefaultRetryNum,
			RetryDuration:   DefaultRetryDuration,
			RequestTimeout:  DefaultRequestTimeout,
			RefreshInterval: DefaultRefreshInterval,
			SlideDuration:   DefaultSlideDuration,
		},
		source:  source,
		display: view,
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(b)
	}

	if b.opts.RetryDuration <= 0 {
		b.opts.RetryDuration = DefaultRetryDuration
	}

	if b.opts.RequestTimeout <= 0 {
		b.opts.RequestTimeout = DefaultRequestTimeout
	}

	if b.opts.RefreshInterval <= 0 {
		b.opts.RefreshInterval = DefaultRefreshInterval
	}

	if b.opts.SlideDuration <= 0 {
		b.opts.SlideDuration = DefaultSlideDuration
	}

	return b
}

type Board struct {
	opts    Options
	source  provider.Source
	display *display.Display
	now     func() time.Time

	// refreshes are serialized so the snapshot has a single writer at a time
	refreshMtx sync.Mutex
	snapshot   atomic.Pointer[Snapshot]
	report     atomic.Pointer[Report]
}

// Options returns the effective board options
func (b *Board) Options() Options {
	return b.opts
}

// Snapshot returns the last good snapshot or nil if no refresh succeeded yet
func (b *Board) Snapshot() *Snapshot {
	return b.snapshot.Load()
}

// LastReport returns the outcome of the latest refresh. Before the first refresh the status is StatusUnavailable
func (b *Board) LastReport() Report {
	if r := b.report.Load(); r != nil {
		return *r
	}

	return Report{Source: b.source.Name(), Status: StatusUnavailable}
}

// WriteHTML renders the board
func (b *Board) WriteHTML(w io.Writer) error {
	return b.display.WriteHTML(w)
}

// Refresh loads the latest rates and updates the display. A failed load never discards the previous
// snapshot: it stays on screen with a warning. Without a previous snapshot the board shows that no
// rates are available
func (b *Board) Refresh(ctx context.Context) Report {
	b.refreshMtx.Lock()
	defer b.refreshMtx.Unlock()

	logger := logging.FromContext(ctx)

	report := Report{
		Source:    b.source.Name(),
		Attempted: b.now(),
	}

	rates, err := b.fetch(ctx)
	if err != nil && ctx.Err() != nil {
		// the caller gave up, the sheet did not fail: leave the display and the last report as they are
		report.Err = err
		report.Snapshot = b.snapshot.Load()
		report.Status = StatusUnavailable
		if report.Snapshot != nil {
			report.Status = StatusStale
		}

		logger.Debugw("refresh cancelled", "source", report.Source, "error", err)

		return report
	}

	switch {
	case err == nil:
		prev := b.snapshot.Load()
		snap := b.newSnapshot(ctx, rates, report.Attempted)
		b.snapshot.Store(snap)

		if err := b.display.RenderRates(snap.Rates); err != nil {
			logger.Errorw("render rates", "source", report.Source, "error", err)
		}
		b.display.SetLastUpdated(snap.UpdatedAt)
		b.display.SetStatus(display.LevelNone, "")

		report.Status = StatusOK
		report.Snapshot = snap

		if prev != nil && prev.Digest == snap.Digest {
			logger.Debugw("rates unchanged", "source", report.Source, "digest", snap.Digest)
		} else {
			logger.Infow("rates refreshed", "source", report.Source, "rates", len(snap.Rates), "digest", snap.Digest)
		}

	case b.snapshot.Load() != nil:
		b.display.SetStatus(display.LevelWarning, StaleText)

		report.Status = StatusStale
		report.Err = err
		report.Snapshot = b.snapshot.Load()

		logger.Warnw("unable to load rates, showing last data",
			"source", report.Source,
			"updated_at", report.Snapshot.UpdatedAt,
			"error", err,
		)

	default:
		if err := b.display.RenderEmpty(); err != nil {
			logger.Errorw("render empty rates", "source", report.Source, "error", err)
		}
		b.display.SetStatus(display.LevelError, UnavailableText)

		report.Status = StatusUnavailable
		report.Err = err

		logger.Errorw("unable to load rates", "source", report.Source, "error", err)
	}

	b.report.Store(&report)

	return report
}

// Run loads the rates, shows the first slide and then keeps refreshing the rates and rotating the slides
// on their own intervals until ctx is done
func (b *Board) Run(ctx context.Context) error {
	logger := logging.FromContext(ctx)

	b.display.ShowSlide(0)
	b.Refresh(ctx)

	logger.Infow("board started",
		"refresh_interval", b.opts.RefreshInterval,
		"slide_duration", b.opts.SlideDuration,
		"slides", b.display.SlideCount(),
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return every(ctx, b.opts.RefreshInterval, func() {
			b.Refresh(ctx)
		})
	})
	g.Go(func() error {
		return every(ctx, b.opts.SlideDuration, func() {
			b.display.NextSlide()
		})
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("board loop: %w", err)
	}

	logger.Infow("board stopped")

	return nil
}

func every(ctx context.Context, d time.Duration, fn func()) error {
	ticker := time.NewTicker(d)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			fn()
		}
	}
}

func (b *Board) fetch(ctx context.Context) ([]provider.Rate, error) {
	backoff, err := retry.NewConstant(b.opts.RetryDuration)
	if err != nil {
		return nil, fmt.Errorf("retry backoff: %w", err)
	}

	backoff = retry.WithMaxRetries(b.opts.RetryNum, backoff)

	var (
		rates   []provider.Rate
		lastErr error
	)
	if err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, b.opts.RequestTimeout)
		defer cancel()

		list, err := b.source.FetchLatest(ctx)
		if err != nil {
			lastErr = fmt.Errorf("fetch latest: %w", err)
			return retry.RetryableError(lastErr)
		}

		rates = list

		return nil
	}); err != nil {
		// go-retry hands back its retryable wrapper once retries are exhausted
		if lastErr != nil && errors.Is(err, lastErr) {
			return nil, lastErr
		}

		return nil, err
	}

	return rates, nil
}

func (b *Board) newSnapshot(ctx context.Context, rates []provider.Rate, updatedAt time.Time) *Snapshot {
	list := make([]provider.Rate, len(rates))
	copy(list, rates)

	digest, err := digestRates(list)
	if err != nil {
		logging.FromContext(ctx).Warnw("digest rates", "error", err)
	}

	return &Snapshot{
		Rates:     list,
		UpdatedAt: updatedAt,
		Digest:    digest,
	}
}

func digestRates(rates []provider.Rate) (string, error) {
	var buf bytes.Buffer
	for _, r := range rates {
		fmt.Fprintf(&buf, "%d\x1f%s\x1f%s\x1f%s\x1f%s\n", r.Order, r.Code, r.Currency, r.Buy, r.Sell)
	}

	return hashio.HexSum(&buf, hashio.SHA1())
}
