package credential

import (
	"encoding/base64"
	"errors"
	"strings"
)

// Flavor selects the auth header shape for the upstream API.
type Flavor int

const (
	// AzureDevOps uses `Basic base64(":" + token)`.
	AzureDevOps Flavor = iota
	// GitHub uses `Bearer <token>`.
	GitHub
)

// Credential is an opaque token held in memory for the process duration.
// It is never persisted and must never be logged; header rendering is the
// only way the token leaves this package.
type Credential struct {
	token  string
	bearer bool
}

// New builds a Credential from a raw token. bearer forces Bearer rendering
// regardless of API flavor (OAuth2 access tokens).
func New(token string, bearer bool) (Credential, error) {
	t := strings.TrimSpace(token)
	if t == "" {
		return Credential{}, errors.New("credential: empty token")
	}
	return Credential{token: t, bearer: bearer}, nil
}

// Header renders the Authorization header value for the given API flavor.
func (c Credential) Header(f Flavor) string {
	if c.bearer {
		return "Bearer " + c.token
	}
	switch f {
	case AzureDevOps:
		return "Basic " + base64.StdEncoding.EncodeToString([]byte(":"+c.token))
	default:
		return "Bearer " + c.token
	}
}
