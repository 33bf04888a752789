package rest

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/loykin/repobatch/internal/common"
	"github.com/loykin/repobatch/internal/httpc"
	"github.com/tidwall/gjson"
)

// maxErrMessage bounds how much of an upstream error body is carried into a
// failure record.
const maxErrMessage = 512

// Response is the successful result of a Call.
type Response struct {
	StatusCode int
	Body       []byte
}

// JSON parses the response body as JSON for gjson path extraction.
func (r *Response) JSON() gjson.Result {
	return gjson.ParseBytes(r.Body)
}

// Client wraps outbound REST calls: it attaches the auth and content
// headers, executes the call within the configured timeout, and converts
// transport errors and non-2xx statuses into the run's error taxonomy.
type Client struct {
	http       *resty.Client
	authHeader string
	headers    map[string]string
	logger     *common.Logger
}

// New builds a Client from the given HTTP factory and Authorization header
// value. Extra headers apply to every request (e.g. the GitHub Accept
// header).
func New(h *httpc.Httpc, authHeader string, headers map[string]string) *Client {
	return &Client{
		http:       h.New(),
		authHeader: authHeader,
		headers:    headers,
		logger:     common.GetLogger().WithComponent("rest"),
	}
}

// Call executes one REST call. body may be nil, a raw []byte/string JSON
// document, or any JSON-marshalable value. A non-2xx status returns the
// response together with an *APIError so callers can record both.
func (c *Client) Call(ctx context.Context, method, url string, body interface{}) (*Response, error) {
	req := c.http.R().SetContext(ctx).SetHeader("Authorization", c.authHeader)
	for k, v := range c.headers {
		req.SetHeader(k, v)
	}
	if body != nil {
		req.SetHeader("Content-Type", "application/json")
		req.SetBody(body)
	}

	c.logger.Debug("calling API", "method", method, "url", url)

	resp, err := execByMethod(req, method, url)
	if err != nil {
		cerr := classify(err)
		c.logger.Debug("API call failed", "method", method, "url", url, "error", cerr)
		return nil, cerr
	}

	out := &Response{StatusCode: resp.StatusCode(), Body: resp.Body()}
	if out.StatusCode >= 400 {
		return out, &APIError{Status: out.StatusCode, Message: truncate(string(out.Body), maxErrMessage)}
	}
	return out, nil
}

// Get is shorthand for a bodyless GET.
func (c *Client) Get(ctx context.Context, url string) (*Response, error) {
	return c.Call(ctx, http.MethodGet, url, nil)
}

func execByMethod(req *resty.Request, method, url string) (*resty.Response, error) {
	switch method {
	case http.MethodGet:
		return req.Get(url)
	case http.MethodPost:
		return req.Post(url)
	case http.MethodPut:
		return req.Put(url)
	case http.MethodPatch:
		return req.Patch(url)
	case http.MethodDelete:
		return req.Delete(url)
	default:
		return nil, fmt.Errorf("rest: unsupported method: %s", method)
	}
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
