package app

import (
	"net"
	"net/http"
	"time"
)

// newHTTPClient returns the client used to fetch documents. A run fetches a
// single page, so the pool is small and timeouts are short.
func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = TimeoutDefault
	}
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConnsPerHost:   2,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}
