package app

import (
	"net/http"
	"reflect"
	"testing"
	"time"
)

func TestNewHTTPClient_Config(t *testing.T) {
	c := newHTTPClient(0)
	if c.Timeout != TimeoutDefault {
		t.Fatalf("expected default timeout, got %v", c.Timeout)
	}
	tr, ok := c.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("expected http.Transport")
	}
	if tr.Proxy == nil {
		t.Fatalf("expected proxy from environment")
	}
	// Ensure we didn't return the default client's transport
	if reflect.ValueOf(http.DefaultTransport).Pointer() == reflect.ValueOf(tr).Pointer() {
		t.Fatalf("transport should not be default")
	}
	if c := newHTTPClient(5 * time.Second); c.Timeout != 5*time.Second {
		t.Fatalf("timeout = %v", c.Timeout)
	}
}
