// Package transport builds the HTTP clients shared by the HTTP based data
// providers.
package transport

import (
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// Config holds the HTTP settings of a provider.
type Config struct {
	// HTTPClient, when set, is used as is and the retry settings are ignored.
	HTTPClient *http.Client
	// Header is added to every request.
	Header http.Header
	// Timeout bounds a whole request, retries included.
	Timeout      time.Duration
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
}

// DefaultConfig returns a 10s timeout with two retries.
func DefaultConfig() *Config {
	return &Config{
		Header:       http.Header{},
		Timeout:      10 * time.Second,
		RetryMax:     2,
		RetryWaitMin: 200 * time.Millisecond,
		RetryWaitMax: 2 * time.Second,
	}
}

// Client returns the http.Client described by the config.
func (c *Config) Client() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = c.RetryMax
	rc.RetryWaitMin = c.RetryWaitMin
	rc.RetryWaitMax = c.RetryWaitMax
	// keep default CheckRetry (retries on 429/5xx and honors Retry-After)
	rc.Logger = nil

	httpClient := rc.StandardClient()
	httpClient.Timeout = c.Timeout
	return httpClient
}

// ApplyHeaders copies the config headers, then extra, onto req.
// Keys in extra replace config values.
func (c *Config) ApplyHeaders(req *http.Request, extra http.Header) {
	for key, values := range c.Header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	for key, values := range extra {
		req.Header.Del(key)
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
}
