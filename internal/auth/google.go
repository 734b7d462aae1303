package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

var ErrGoogleVerification = errors.New("google verification failed")

// TokenVerifier resolves a Google ID token into an email and display name.
// Kept as an interface so handlers are testable without network access.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (email, name string, err error)
}

const tokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

type googleVerifier struct {
	client   *http.Client
	audience string
}

// NewGoogleVerifier verifies ID tokens against Google's tokeninfo endpoint.
// When audience is non-empty the token's aud claim must match it.
func NewGoogleVerifier(audience string) TokenVerifier {
	return &googleVerifier{
		client:   &http.Client{Timeout: 10 * time.Second},
		audience: audience,
	}
}

func (g *googleVerifier) VerifyIDToken(ctx context.Context, idToken string) (string, string, error) {
	endpoint := tokenInfoURL + "?id_token=" + url.QueryEscape(idToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", "", fmt.Errorf("build tokeninfo request: %w", err)
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrGoogleVerification, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", "", ErrGoogleVerification
	}

	var info struct {
		Email         string `json:"email"`
		EmailVerified string `json:"email_verified"`
		Name          string `json:"name"`
		Audience      string `json:"aud"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrGoogleVerification, err)
	}
	if info.Email == "" || info.EmailVerified != "true" {
		return "", "", ErrGoogleVerification
	}
	if g.audience != "" && info.Audience != g.audience {
		return "", "", ErrGoogleVerification
	}
	return info.Email, info.Name, nil
}
