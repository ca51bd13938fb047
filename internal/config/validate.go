package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/robotomize/ratesboard/provider/sheet"
	"go.uber.org/zap/zapcore"
)

// Validate checks that all required fields are set and values are valid. Every problem is reported,
// each one wraps ErrInvalid
func (c *Config) Validate() error {
	var result *multierror.Error

	invalid := func(format string, args ...interface{}) {
		result = multierror.Append(result, fmt.Errorf("%w: "+format, append([]interface{}{ErrInvalid}, args...)...))
	}

	if u, err := url.Parse(c.Source.URL); err != nil {
		invalid("source.url: %v", err)
	} else if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		invalid("source.url must be an absolute http(s) address, got %q", c.Source.URL)
	}

	if _, err := sheet.ParseFormat(c.Source.Format); err != nil {
		invalid("source.format: %v", err)
	}
	if c.Source.CacheBustParam == "" {
		invalid("source.cache_bust_param is required")
	}
	if c.Source.RequestTimeout <= 0 {
		invalid("source.request_timeout must be > 0, got %s", c.Source.RequestTimeout)
	}
	if c.Source.RetryDuration <= 0 {
		invalid("source.retry_duration must be > 0, got %s", c.Source.RetryDuration)
	}

	if c.Source.MaxBodySize < 0 {
		invalid("source.max_body_size must be >= 0, got %d", c.Source.MaxBodySize)
	}

	if c.Display.RefreshInterval <= 0 {
		invalid("display.refresh_interval must be > 0, got %s", c.Display.RefreshInterval)
	}
	if c.Display.SlideDuration <= 0 {
		invalid("display.slide_duration must be > 0, got %s", c.Display.SlideDuration)
	}
	if c.Display.Reload <= 0 {
		invalid("display.reload must be > 0, got %s", c.Display.Reload)
	} else if c.Display.SlideDuration > 0 && c.Display.Reload > c.Display.SlideDuration {
		invalid("display.reload (%s) cannot exceed display.slide_duration (%s)", c.Display.Reload, c.Display.SlideDuration)
	}
	if _, err := time.LoadLocation(c.Display.Timezone); err != nil {
		invalid("display.timezone: %v", err)
	}

	if c.Server.Addr == "" {
		invalid("server.addr is required")
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		invalid("log.level: %v", err)
	}

	return result.ErrorOrNil()
}
