package platform

import "fmt"

// CredentialKind discriminates the auth model a platform uses.
type CredentialKind string

const (
	CredentialAPIKey      CredentialKind = "api_key"
	CredentialOAuthClient CredentialKind = "oauth_client"
	CredentialAccessToken CredentialKind = "access_token"
)

// Credentials is a tagged union over the auth models of the supported
// platforms. Values are immutable once constructed and must never be
// logged in full; String redacts every secret field.
type Credentials struct {
	Kind CredentialKind

	// api_key
	Key    string
	Secret string

	// oauth_client
	ClientID     string
	ClientSecret string
	TokenURL     string

	// access_token (token plus the client pair that issued it)
	Token string
}

// APIKeyCredentials builds key/secret credentials (Zoom SDK style).
func APIKeyCredentials(key, secret string) Credentials {
	return Credentials{Kind: CredentialAPIKey, Key: key, Secret: secret}
}

// OAuthClientCredentials builds client-credentials grant credentials.
func OAuthClientCredentials(clientID, clientSecret, tokenURL string) Credentials {
	return Credentials{
		Kind:         CredentialOAuthClient,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
	}
}

// AccessTokenCredentials builds static-token credentials with the issuing
// client pair attached.
func AccessTokenCredentials(token, clientID, clientSecret string) Credentials {
	return Credentials{
		Kind:         CredentialAccessToken,
		Token:        token,
		ClientID:     clientID,
		ClientSecret: clientSecret,
	}
}

// IsZero reports whether no credential material is present at all.
func (c Credentials) IsZero() bool {
	return c.Key == "" && c.Secret == "" && c.ClientID == "" &&
		c.ClientSecret == "" && c.Token == ""
}

// String renders the credentials with all secret material redacted.
func (c Credentials) String() string {
	switch c.Kind {
	case CredentialAPIKey:
		return fmt.Sprintf("api_key{key:%s secret:%s}", redact(c.Key), redact(c.Secret))
	case CredentialOAuthClient:
		return fmt.Sprintf("oauth_client{client_id:%s client_secret:%s}", c.ClientID, redact(c.ClientSecret))
	case CredentialAccessToken:
		return fmt.Sprintf("access_token{token:%s client_id:%s}", redact(c.Token), c.ClientID)
	}
	return "credentials{}"
}

func redact(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + "****"
}
