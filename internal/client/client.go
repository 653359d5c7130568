// Package client builds the HTTP clients used to talk to Kodi and to the metadata service.
package client

import (
	"net/http"
	"time"
)

// Options configures an HTTP client built by New.
type Options struct {
	Timeout   time.Duration
	UserAgent string

	// Username and Password enable basic auth on every request when Username is non-empty.
	Username string
	Password string
}

// New creates an HTTP client that negotiates gzip, brotli and zstd responses
// and stamps the configured User-Agent and credentials on every request.
func New(opts Options) *http.Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	// Clone DefaultTransport to keep its pooling, dial timeouts and HTTP/2 settings
	base := http.DefaultTransport.(*http.Transport).Clone()

	return &http.Client{
		Timeout: timeout,
		Transport: &headerTransport{
			next:      newCompressionTransport(base),
			userAgent: opts.UserAgent,
			username:  opts.Username,
			password:  opts.Password,
		},
	}
}

// headerTransport sets request-wide headers without mutating the caller's request
type headerTransport struct {
	next      http.RoundTripper
	userAgent string
	username  string
	password  string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = cloneRequest(req)
	if t.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", t.userAgent)
	}
	if t.username != "" {
		req.SetBasicAuth(t.username, t.password)
	}
	return t.next.RoundTrip(req)
}
