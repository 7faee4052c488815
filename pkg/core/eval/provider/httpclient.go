package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"
)

// transport is the seam Adapter O and Adapter A drive their HTTP round
// trips through. *httpJSONClient satisfies it for production use; tests
// substitute a fake so the tool-calling loop can be driven without a live
// HTTP backend.
type transport interface {
	postJSON(ctx context.Context, url string, headers map[string]string, body []byte) (int, []byte, error)
}

// httpJSONClient issues JSON POST requests over fasthttp, optionally paced
// by a rate limiter so high orchestrator concurrency does not trip
// provider-side rate limits. A nil limiter disables pacing entirely.
type httpJSONClient struct {
	client  *fasthttp.Client
	limiter *rate.Limiter
}

func newHTTPJSONClient(limiter *rate.Limiter) *httpJSONClient {
	return &httpJSONClient{
		client:  &fasthttp.Client{},
		limiter: limiter,
	}
}

// postJSON issues a POST to url with the given headers and body, waiting on
// the limiter (if any) first. It returns the response status and body, or
// an error for transport-level failures. Non-2xx and invalid-JSON handling
// is the caller's responsibility per each adapter's own error wording.
func (c *httpJSONClient) postJSON(ctx context.Context, url string, headers map[string]string, body []byte) (int, []byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, nil, fmt.Errorf("provider: rate limiter wait failed: %w", err)
		}
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	req.SetBody(body)

	deadline, hasDeadline := ctx.Deadline()
	var err error
	if hasDeadline {
		err = c.client.DoDeadline(req, resp, deadline)
	} else {
		err = c.client.DoTimeout(req, resp, 120*time.Second)
	}
	if err != nil {
		return 0, nil, fmt.Errorf("provider: request failed: %w", err)
	}

	status := resp.StatusCode()
	respBody := append([]byte(nil), resp.Body()...)
	return status, respBody, nil
}

func headBytes(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n])
}
