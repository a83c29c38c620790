// Package httpx builds the outbound HTTP client shared by the feed,
// price and Telegram clients.
package httpx

import (
	"net/http"
	"net/url"
	"time"
)

// UserAgent is sent by clients whose upstream rejects Go's default agent.
const UserAgent = "Mozilla/5.0 (compatible; VNScreener/1.0)"

// Timeout bounds every request made through NewClient.
const Timeout = 30 * time.Second

// NewClient returns a client with Timeout, routed through proxyURL when one
// is set. An unparsable proxyURL is ignored.
func NewClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   Timeout,
		Transport: transport,
	}
}
