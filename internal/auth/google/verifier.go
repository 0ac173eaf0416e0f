package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/glimmer-social/backend/internal/auth/domain"
	commonerrors "github.com/glimmer-social/backend/internal/common/errors"
)

const tokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

// TokenVerifier validates a Google id token and extracts the profile the
// login flow needs.
type TokenVerifier interface {
	Verify(ctx context.Context, idToken string) (*domain.GoogleProfile, error)
}

// TokenInfoVerifier validates tokens against Google's tokeninfo endpoint.
type TokenInfoVerifier struct {
	clientID string
	client   *http.Client
}

func NewTokenInfoVerifier(clientID string) *TokenInfoVerifier {
	return &TokenInfoVerifier{
		clientID: clientID,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (v *TokenInfoVerifier) Verify(ctx context.Context, idToken string) (*domain.GoogleProfile, error) {
	endpoint := tokenInfoURL + "?id_token=" + url.QueryEscape(idToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, commonerrors.ErrInvalidToken.WithCause(err)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, commonerrors.ErrInvalidToken.WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, commonerrors.ErrInvalidToken.WithCause(
			fmt.Errorf("tokeninfo returned status %d", resp.StatusCode))
	}

	var payload struct {
		Aud           string `json:"aud"`
		Email         string `json:"email"`
		EmailVerified string `json:"email_verified"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, commonerrors.ErrInvalidToken.WithCause(err)
	}

	if payload.Aud != v.clientID {
		return nil, commonerrors.ErrInvalidToken.WithCause(fmt.Errorf("audience mismatch"))
	}
	if payload.Email == "" || payload.EmailVerified != "true" {
		return nil, commonerrors.ErrInvalidToken.WithCause(fmt.Errorf("email missing or unverified"))
	}

	return &domain.GoogleProfile{
		Email:   payload.Email,
		Name:    payload.Name,
		Picture: payload.Picture,
	}, nil
}
