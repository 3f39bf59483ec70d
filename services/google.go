package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
)

const (
	googleTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"
	googleUserInfoURL  = "https://www.googleapis.com/oauth2/v2/userinfo"
	httpClientTimeout  = 30 * time.Second
)

var ErrGoogleAudience = errors.New("token was not issued for this application")

// GoogleProfile is what the identity provider confirms about a token holder.
type GoogleProfile struct {
	Email         string
	Name          string
	EmailVerified bool
}

// GoogleVerifier checks an OAuth access token with the identity provider.
type GoogleVerifier interface {
	Verify(ctx context.Context, accessToken string) (*GoogleProfile, error)
}

type googleTokenInfo struct {
	Audience         string `json:"aud"`
	Email            string `json:"email"`
	EmailVerified    string `json:"email_verified"`
	ErrorDescription string `json:"error_description"`
}

type googleUserInfo struct {
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
}

type googleVerifier struct {
	clientID     string
	tokenInfoURL string
	userInfoURL  string
	httpClient   *http.Client
}

// NewGoogleVerifier returns a verifier that requires tokens to be issued for
// clientID. An empty clientID skips the audience check.
func NewGoogleVerifier(clientID string) GoogleVerifier {
	return &googleVerifier{
		clientID:     clientID,
		tokenInfoURL: googleTokenInfoURL,
		userInfoURL:  googleUserInfoURL,
		httpClient:   &http.Client{Timeout: httpClientTimeout},
	}
}

func (v *googleVerifier) Verify(ctx context.Context, accessToken string) (*GoogleProfile, error) {
	info, err := v.tokenInfo(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	if v.clientID != "" && info.Audience != v.clientID {
		return nil, ErrGoogleAudience
	}

	user, err := v.userInfo(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	email := user.Email
	if email == "" {
		email = info.Email
	}
	return &GoogleProfile{
		Email:         email,
		Name:          user.Name,
		EmailVerified: user.VerifiedEmail || info.EmailVerified == "true",
	}, nil
}

func (v *googleVerifier) tokenInfo(ctx context.Context, accessToken string) (*googleTokenInfo, error) {
	endpoint := v.tokenInfoURL + "?access_token=" + url.QueryEscape(accessToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get token info: %w", err)
	}
	defer resp.Body.Close()

	var info googleTokenInfo
	if err := decodeGoogle(resp, &info); err != nil {
		return nil, fmt.Errorf("failed to get token info: %w", err)
	}
	return &info, nil
}

func (v *googleVerifier) userInfo(ctx context.Context, accessToken string) (*googleUserInfo, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, v.httpClient)
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}
	defer resp.Body.Close()

	var info googleUserInfo
	if err := decodeGoogle(resp, &info); err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}
	return &info, nil
}

func decodeGoogle(resp *http.Response, out interface{}) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d, body: %s", resp.StatusCode, string(body))
	}
	return json.Unmarshal(body, out)
}
