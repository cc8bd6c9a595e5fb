package ladder

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Credentials identify the application to the ladder service.
type Credentials struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
}

// TokenSource returns a caching OAuth2 client-credentials token source.
// Token requests are sent with hc when it is not nil.
func TokenSource(ctx context.Context, creds Credentials, hc *http.Client) oauth2.TokenSource {
	if hc != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, hc)
	}
	cfg := clientcredentials.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		TokenURL:     creds.TokenURL,
	}
	return cfg.TokenSource(ctx)
}
