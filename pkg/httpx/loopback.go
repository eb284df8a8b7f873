package httpx

import (
	"net/http"
	"net/http/httptest"
	"time"
)

// InternalBaseURL is the synthetic origin used for loopback requests.
// No socket is ever bound for this host.
const InternalBaseURL = "http://gseal.internal"

// LoopbackTransport is an http.RoundTripper that serves each request
// directly through an in-process handler instead of the network.
type LoopbackTransport struct {
	Handler http.Handler
}

// RoundTrip executes the request against the wrapped handler and
// returns the recorded response.
func (t *LoopbackTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rec := httptest.NewRecorder()
	t.Handler.ServeHTTP(rec, req)
	resp := rec.Result()
	resp.Request = req
	return resp, nil
}

// NewLoopbackClient returns an HTTP client whose requests are routed
// into handler without network binding.
func NewLoopbackClient(handler http.Handler, timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: &LoopbackTransport{Handler: handler},
		Timeout:   timeout,
	}
}
