// Package http builds the outbound HTTP client used for payment processor calls.
package http

import (
	"net"
	"net/http"
	"time"
)

// NewHTTPClient returns a client with bounded dial, handshake and total request times.
// http.DefaultClient has no timeout, so outbound calls never use it.
func NewHTTPClient(timeout time.Duration) *http.Client {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: t}
}
