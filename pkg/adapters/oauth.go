package adapters

import (
	"context"
	"fmt"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/riaz37/meetgenie-sub001/pkg/platform"
)

// oauthAdapter backs the platforms that use the OAuth2 client-credentials
// grant (Teams and Google Meet). The token source caches and refreshes
// tokens transparently.
type oauthAdapter struct {
	restAdapter
}

// NewTeams creates a Teams adapter against baseURL.
func NewTeams(baseURL string) platform.Adapter {
	return &oauthAdapter{restAdapter: newRESTAdapter(platform.Teams, baseURL)}
}

// NewGoogleMeet creates a Google Meet adapter against baseURL.
func NewGoogleMeet(baseURL string) platform.Adapter {
	return &oauthAdapter{restAdapter: newRESTAdapter(platform.GoogleMeet, baseURL)}
}

// Authenticate mints an initial token through the client-credentials grant
// and keeps the refreshing token source for later requests.
func (a *oauthAdapter) Authenticate(ctx context.Context, creds platform.Credentials) error {
	if creds.Kind != platform.CredentialOAuthClient {
		return fmt.Errorf("%s requires oauth_client credentials, got %s", a.name, creds.Kind)
	}
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return fmt.Errorf("%s client id and secret are required", a.name)
	}
	if creds.TokenURL == "" {
		return fmt.Errorf("%s token url is required", a.name)
	}

	cc := clientcredentials.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		TokenURL:     creds.TokenURL,
	}
	ts := cc.TokenSource(context.Background())

	// Mint one token now so bad credentials fail at startup, not on the
	// first join.
	if _, err := ts.Token(); err != nil {
		return fmt.Errorf("token request failed: %w", err)
	}

	a.setBearer(func(ctx context.Context) (string, error) {
		token, err := ts.Token()
		if err != nil {
			return "", err
		}
		return token.AccessToken, nil
	})
	return nil
}
