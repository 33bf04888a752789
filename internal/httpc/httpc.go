package httpc

import (
	"crypto/tls"
	"time"

	"github.com/go-resty/resty/v2"
)

type Httpc struct {
	TlsConfig *tls.Config
	Timeout   time.Duration
	Trace     *Trace
}

// New returns a resty.Client configured according to the receiver's TLS and
// timeout settings. Defaults: MinVersion TLS1.3 when MinVersion is zero.
// When Trace is set, every request and response is appended to the debug
// trace; the hooks return nil unconditionally so tracing can never alter
// control flow.
func (h *Httpc) New() *resty.Client {
	c := resty.New()
	if h.Timeout > 0 {
		c.SetTimeout(h.Timeout)
	}
	if cfg := h.TlsConfig; cfg != nil {
		if cfg.MinVersion == 0 {
			cfg.MinVersion = tls.VersionTLS13
		}
		c.SetTLSClientConfig(cfg)
	}
	if t := h.Trace; t != nil {
		c.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			t.Request(req.Method, req.URL, bodyBytes(req.Body))
			return nil
		})
		c.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
			t.Response(resp.StatusCode(), resp.Body())
			return nil
		})
		c.OnError(func(_ *resty.Request, err error) {
			t.Error(err)
		})
	}
	return c
}

func bodyBytes(body interface{}) []byte {
	switch b := body.(type) {
	case []byte:
		return b
	case string:
		return []byte(b)
	default:
		return nil
	}
}
