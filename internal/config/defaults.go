package config

import (
	"time"

	"github.com/robotomize/ratesboard/provider/httputil"
	"github.com/robotomize/ratesboard/provider/sheet"
)

// Default values for optional configuration fields.
const (
	DefaultSourceURL       = sheet.DefaultURL
	DefaultSourceFormat    = string(sheet.FormatCSV)
	DefaultCacheBustParam  = sheet.DefaultCacheBustParam
	DefaultRequestTimeout  = 10 * time.Second
	DefaultRetryDuration   = 5 * time.Second
	DefaultMaxBodySize     = httputil.DefaultMaxBodySize
	DefaultRefreshInterval = 60 * time.Second
	DefaultSlideDuration   = 30 * time.Second
	DefaultTimezone        = "Local"
	DefaultAddr            = ":8080"
	DefaultReadTimeout     = 5 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultLogLevel        = "info"
)

func (c *Config) applyDefaults() {
	// Source defaults
	if c.Source.URL == "" {
		c.Source.URL = DefaultSourceURL
	}
	if c.Source.Format == "" {
		c.Source.Format = DefaultSourceFormat
	}
	if c.Source.CacheBustParam == "" {
		c.Source.CacheBustParam = DefaultCacheBustParam
	}
	if c.Source.RequestTimeout == 0 {
		c.Source.RequestTimeout = DefaultRequestTimeout
	}
	if c.Source.RetryDuration == 0 {
		c.Source.RetryDuration = DefaultRetryDuration
	}
	if c.Source.MaxBodySize == 0 {
		c.Source.MaxBodySize = DefaultMaxBodySize
	}

	// Display defaults
	if c.Display.RefreshInterval == 0 {
		c.Display.RefreshInterval = DefaultRefreshInterval
	}
	if c.Display.SlideDuration == 0 {
		c.Display.SlideDuration = DefaultSlideDuration
	}
	if c.Display.Reload == 0 {
		c.Display.Reload = c.Display.SlideDuration
		if c.Display.RefreshInterval < c.Display.Reload {
			c.Display.Reload = c.Display.RefreshInterval
		}
	}
	if c.Display.Timezone == "" {
		c.Display.Timezone = DefaultTimezone
	}

	// Server defaults
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = DefaultReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = DefaultWriteTimeout
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}
