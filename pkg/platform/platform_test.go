package platform

import (
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Platform
		wantErr bool
	}{
		{"ZOOM", Zoom, false},
		{"zoom", Zoom, false},
		{" Teams ", Teams, false},
		{"google_meet", GoogleMeet, false},
		{"WEBEX", Webex, false},
		{"skype", "", true},
		{"", "", true},
	}

	for _, test := range tests {
		got, err := Parse(test.in)
		if test.wantErr {
			if err == nil {
				t.Errorf("Parse(%q) expected error, got %v", test.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("Parse(%q) returned error: %v", test.in, err)
			continue
		}
		if got != test.want {
			t.Errorf("Parse(%q) = %v, want %v", test.in, got, test.want)
		}
	}
}

func TestCredentialsStringRedactsSecrets(t *testing.T) {
	tests := []struct {
		name   string
		creds  Credentials
		secret string
	}{
		{"api_key", APIKeyCredentials("sdk-key-value", "sdk-secret-value"), "sdk-secret-value"},
		{"oauth_client", OAuthClientCredentials("client", "client-secret-value", "https://example.com/token"), "client-secret-value"},
		{"access_token", AccessTokenCredentials("token-value", "client", "secret"), "token-value"},
	}

	for _, test := range tests {
		if s := test.creds.String(); strings.Contains(s, test.secret) {
			t.Errorf("%s: String() leaked secret material: %s", test.name, s)
		}
	}
}

func TestCredentialsIsZero(t *testing.T) {
	if !(Credentials{}).IsZero() {
		t.Error("empty credentials should be zero")
	}
	if APIKeyCredentials("k", "s").IsZero() {
		t.Error("populated credentials should not be zero")
	}
}
