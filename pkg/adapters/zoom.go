package adapters

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/riaz37/meetgenie-sub001/pkg/platform"
)

// zoomTokenTTL is how long each signed SDK JWT stays valid. Tokens are
// re-signed per request, so the TTL only needs to cover request latency.
const zoomTokenTTL = 2 * time.Hour

// ZoomAdapter speaks to a Zoom-style API authenticated with an HS256 SDK
// JWT signed from the configured key/secret pair.
type ZoomAdapter struct {
	restAdapter
}

// NewZoom creates a Zoom adapter against baseURL.
func NewZoom(baseURL string) *ZoomAdapter {
	return &ZoomAdapter{restAdapter: newRESTAdapter(platform.Zoom, baseURL)}
}

// Authenticate validates the key/secret pair by signing a token with it.
// Signing happens locally; reachability is the health probe's concern.
func (a *ZoomAdapter) Authenticate(ctx context.Context, creds platform.Credentials) error {
	if creds.Kind != platform.CredentialAPIKey {
		return fmt.Errorf("zoom requires api_key credentials, got %s", creds.Kind)
	}
	if creds.Key == "" || creds.Secret == "" {
		return fmt.Errorf("zoom sdk key and secret are required")
	}

	// Fail now if the material cannot sign at all.
	if _, err := signSDKToken(creds.Key, creds.Secret); err != nil {
		return err
	}

	a.setBearer(func(ctx context.Context) (string, error) {
		return signSDKToken(creds.Key, creds.Secret)
	})
	return nil
}

func signSDKToken(key, secret string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"appKey":   key,
		"iat":      now.Unix(),
		"exp":      now.Add(zoomTokenTTL).Unix(),
		"tokenExp": now.Add(zoomTokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign sdk token: %w", err)
	}
	return signed, nil
}
