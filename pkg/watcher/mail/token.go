package mail

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
)

// NewHTTPClient builds an authenticated HTTP client from the OAuth app
// credentials and the stored user token. An expired token is refreshed
// through its refresh token and the refreshed copy persisted back to
// tokenPath. A missing token file, or a token that cannot be refreshed,
// is an unrecoverable credential failure: the returned error tells the
// operator to re-run the auth setup.
func NewHTTPClient(ctx context.Context, credentialsPath, tokenPath string) (*http.Client, error) {
	creds, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("cannot read credentials file %s: %w", credentialsPath, err)
	}
	cfg, err := google.ConfigFromJSON(creds, gmail.GmailReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("cannot parse credentials file: %w", err)
	}

	tokData, err := os.ReadFile(tokenPath)
	if err != nil {
		return nil, fmt.Errorf("no token at %s (run the auth setup first): %w", tokenPath, err)
	}
	tok := &oauth2.Token{}
	if err := json.Unmarshal(tokData, tok); err != nil {
		return nil, fmt.Errorf("cannot parse token file %s: %w", tokenPath, err)
	}

	ts := cfg.TokenSource(ctx, tok)

	// Force a refresh now so credential failure is fatal at startup, not
	// mid-poll.
	fresh, err := ts.Token()
	if err != nil {
		return nil, fmt.Errorf("token refresh failed (re-run the auth setup to re-authenticate): %w", err)
	}
	if fresh.AccessToken != tok.AccessToken {
		if err := saveToken(tokenPath, fresh); err != nil {
			log.Printf("Could not persist refreshed token: %v", err)
		} else {
			log.Printf("Token refreshed and saved")
		}
	}

	return oauth2.NewClient(ctx, ts), nil
}

func saveToken(path string, tok *oauth2.Token) error {
	data, err := json.Marshal(tok)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
