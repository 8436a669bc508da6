// signature/model.go
package signature

import (
	"io"
	"strings"
)

const (
	HeaderAPIKey    = "x-api-key"
	HeaderSignature = "x-api-signature"
)

// Request is the part of an inbound call that takes part in signing.
// Query is any JSON-encodable value; Body is read once and, when it is an
// io.Seeker, rewound first.
type Request struct {
	Headers map[string]string
	Query   interface{}
	Body    io.Reader
}

// Header looks a header up case-insensitively.
func (r *Request) Header(name string) string {
	if r == nil || r.Headers == nil {
		return ""
	}
	if v, ok := r.Headers[name]; ok {
		return v
	}
	for k, v := range r.Headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// Credential is what the credential authority holds for a public key.
type Credential struct {
	AppName   string `json:"app_name" validate:"required"`
	PublicKey string `json:"public_key" validate:"required"`
	Scope     string `json:"scope"`
}

type credentialResponse struct {
	Data *Credential `json:"data" validate:"required"`
}
