package adapters

import (
	"context"
	"fmt"
	"net/http"

	"github.com/riaz37/meetgenie-sub001/pkg/platform"
)

// WebexAdapter speaks to a Webex-style API with a pre-issued access token.
type WebexAdapter struct {
	restAdapter
}

// NewWebex creates a Webex adapter against baseURL.
func NewWebex(baseURL string) *WebexAdapter {
	return &WebexAdapter{restAdapter: newRESTAdapter(platform.Webex, baseURL)}
}

// Authenticate verifies the access token against the identity endpoint and
// installs it as the bearer for subsequent requests.
func (a *WebexAdapter) Authenticate(ctx context.Context, creds platform.Credentials) error {
	if creds.Kind != platform.CredentialAccessToken {
		return fmt.Errorf("webex requires access_token credentials, got %s", creds.Kind)
	}
	if creds.Token == "" {
		return fmt.Errorf("webex access token is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/v1/me", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+creds.Token)

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("token verification returned status %d", resp.StatusCode)
	}

	token := creds.Token
	a.setBearer(func(ctx context.Context) (string, error) {
		return token, nil
	})
	return nil
}
