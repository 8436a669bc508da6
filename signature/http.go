// signature/http.go
package signature

import (
	"bytes"
	"io"
	"net/http"
)

// FromHTTPRequest adapts r for verification. The body is buffered and put
// back on r so later handlers can still read it.
func FromHTTPRequest(r *http.Request) *Request {
	headers := make(map[string]string, len(r.Header))
	for name, values := range r.Header {
		if len(values) > 0 {
			headers[name] = values[0]
		}
	}

	query := make(map[string]interface{})
	for name, values := range r.URL.Query() {
		if len(values) == 1 {
			query[name] = values[0]
		} else {
			query[name] = values
		}
	}

	req := &Request{Headers: headers, Query: query}
	if r.Body == nil || r.Body == http.NoBody {
		return req
	}

	raw, err := io.ReadAll(r.Body)
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil {
		return req
	}
	req.Body = bytes.NewReader(raw)
	return req
}
