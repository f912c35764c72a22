package catalog

import (
	"context"
	"errors"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// StaticToken returns a credential that always presents token.
func StaticToken(token string) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
}

// TokenFunc is a credential supplier called before every request, so the
// caller can refresh the token whenever it likes.
type TokenFunc func() (string, error)

// Token implements oauth2.TokenSource.
func (f TokenFunc) Token() (*oauth2.Token, error) {
	tok, err := f()
	if err != nil {
		return nil, err
	}
	if tok == "" {
		return nil, errors.New("token supplier returned an empty token")
	}
	return &oauth2.Token{AccessToken: tok, TokenType: "Bearer"}, nil
}

// ClientCredentials returns a credential obtained with the OAuth2 client
// credentials flow. Tokens are reused until they expire.
func ClientCredentials(ctx context.Context, clientID, clientSecret, tokenURL string) oauth2.TokenSource {
	cfg := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
	}
	return cfg.TokenSource(ctx)
}
