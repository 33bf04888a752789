package credential

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// OAuth2Config holds configuration for the Client Credentials grant, for
// organizations that front the APIs with an OAuth2 identity provider
// instead of handing out PATs.
type OAuth2Config struct {
	ClientID  string   `mapstructure:"client_id"`
	ClientSec string   `mapstructure:"client_secret"`
	TokenURL  string   `mapstructure:"token_url"`
	Scopes    []string `mapstructure:"scopes"`
}

type oauth2Provider struct{ c OAuth2Config }

func (p oauth2Provider) Acquire(ctx context.Context) (Credential, error) {
	clientID := strings.TrimSpace(p.c.ClientID)
	clientSecret := strings.TrimSpace(p.c.ClientSec)
	tokenURL := strings.TrimSpace(p.c.TokenURL)
	if tokenURL == "" {
		return Credential{}, errors.New("credential oauth2: token_url is required")
	}
	if clientID == "" || clientSecret == "" {
		return Credential{}, errors.New("credential oauth2: client_id and client_secret are required")
	}
	cc := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
		Scopes:       p.c.Scopes,
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	tok, err := cc.Token(ctx)
	if err != nil {
		return Credential{}, err
	}
	// OAuth2 access tokens always render as Bearer, regardless of API flavor.
	return New(tok.AccessToken, true)
}
