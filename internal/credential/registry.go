package credential

import (
	"context"
	"errors"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// Provider is the plugin interface for a credential source. Implementations
// are lightweight wrappers around configuration that can produce a token
// once per run.
type Provider interface {
	Acquire(ctx context.Context) (Credential, error)
}

// Factory builds a Provider instance from a loosely-typed spec map.
type Factory func(spec map[string]interface{}) (Provider, error)

// In-memory registry of provider factories keyed by normalized type.
var providers = map[string]Factory{}

func normalizeKey(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Register registers a credential provider factory under a type key
// (e.g., "env", "prompt"). The key is normalized to lower-case.
func Register(typ string, f Factory) {
	key := normalizeKey(typ)
	if key == "" || f == nil {
		return
	}
	providers[key] = f
}

// Resolve builds a Provider from the type and spec and acquires the token.
// Any failure here is fatal to the run: no API call may be attempted
// without a credential.
func Resolve(ctx context.Context, typ string, spec map[string]interface{}) (Credential, error) {
	f, ok := providers[normalizeKey(typ)]
	if !ok {
		return Credential{}, errors.New("credential: unsupported provider type: " + typ)
	}
	p, err := f(spec)
	if err != nil {
		return Credential{}, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return p.Acquire(ctx)
}

// Built-in provider registrations
func init() {
	Register("env", func(spec map[string]interface{}) (Provider, error) {
		var c EnvConfig
		if err := mapstructure.Decode(spec, &c); err != nil {
			return nil, err
		}
		return envProvider{c: c}, nil
	})

	Register("dotenv", func(spec map[string]interface{}) (Provider, error) {
		var c DotenvConfig
		if err := mapstructure.Decode(spec, &c); err != nil {
			return nil, err
		}
		return dotenvProvider{c: c}, nil
	})

	Register("prompt", func(spec map[string]interface{}) (Provider, error) {
		var c PromptConfig
		if err := mapstructure.Decode(spec, &c); err != nil {
			return nil, err
		}
		return promptProvider{c: c}, nil
	})

	Register("oauth2", func(spec map[string]interface{}) (Provider, error) {
		var c OAuth2Config
		if err := mapstructure.Decode(spec, &c); err != nil {
			return nil, err
		}
		return oauth2Provider{c: c}, nil
	})
}
