// Package oauth implements the account-resolution side of the federated
// login flow: it builds the provider authorization redirect, then exchanges
// the callback code for a provider profile. The provider's own handshake is
// an external collaborator; this package only talks to its endpoints.
package oauth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ivolkov/secrethold/internal/logger"
	"github.com/ivolkov/secrethold/internal/model"
)

// Provider describes one configured OAuth provider.
type Provider struct {
	Name         string
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	ProfileURL   string
	RedirectURL  string
	Scopes       []string
}

// Client drives the provider round-trip for every configured provider.
type Client struct {
	providers  map[string]Provider
	states     model.OAuthStateStore
	httpClient *http.Client
	logger     *logger.Logger
}

// NewClient creates a Client over the given providers and state store.
func NewClient(providers map[string]Provider, states model.OAuthStateStore, logger *logger.Logger) *Client {
	return &Client{
		providers:  providers,
		states:     states,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
}

// Begin stores a single-use state with a PKCE verifier and returns the
// provider authorization URL to redirect the browser to.
func (c *Client) Begin(ctx context.Context, providerName string) (string, error) {
	provider, ok := c.providers[providerName]
	if !ok {
		return "", fmt.Errorf("unknown provider %q", providerName)
	}

	state, err := generateToken(32)
	if err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	verifier, err := generateToken(48)
	if err != nil {
		return "", fmt.Errorf("failed to generate code verifier: %w", err)
	}

	err = c.states.Create(ctx, model.OAuthState{
		State:        state,
		Provider:     providerName,
		CodeVerifier: verifier,
		ExpiresAt:    time.Now().Add(model.PendingStateDuration),
	})
	if err != nil {
		return "", fmt.Errorf("failed to persist oauth state: %w", err)
	}

	query := url.Values{}
	query.Set("response_type", "code")
	query.Set("client_id", provider.ClientID)
	query.Set("redirect_uri", provider.RedirectURL)
	query.Set("scope", strings.Join(provider.Scopes, " "))
	query.Set("state", state)
	query.Set("code_challenge", computeS256Challenge(verifier))
	query.Set("code_challenge_method", "S256")

	authURL, err := url.Parse(provider.AuthURL)
	if err != nil {
		return "", fmt.Errorf("invalid provider auth url: %w", err)
	}
	authURL.RawQuery = query.Encode()

	return authURL.String(), nil
}

// Complete validates the callback state, exchanges the code and fetches the
// provider profile. It returns the federated identity for account resolution.
func (c *Client) Complete(ctx context.Context, providerName, state, code string) (model.FederatedIdentity, error) {
	provider, ok := c.providers[providerName]
	if !ok {
		return model.FederatedIdentity{}, fmt.Errorf("unknown provider %q", providerName)
	}

	pending, err := c.states.GetByState(ctx, state)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.FederatedIdentity{}, model.ErrInvalidState
		}
		return model.FederatedIdentity{}, fmt.Errorf("failed to get oauth state: %w", err)
	}
	if pending.Consumed || pending.Provider != providerName || !pending.ExpiresAt.After(time.Now()) {
		return model.FederatedIdentity{}, model.ErrInvalidState
	}

	if err := c.states.Consume(ctx, state); err != nil {
		return model.FederatedIdentity{}, fmt.Errorf("failed to consume oauth state: %w", err)
	}

	accessToken, err := c.exchangeCode(ctx, provider, code, pending.CodeVerifier)
	if err != nil {
		c.logger.Error("OAuth client: code exchange failed",
			"provider", providerName,
			"error", err.Error())
		return model.FederatedIdentity{}, fmt.Errorf("failed to exchange code: %w", err)
	}

	identity, err := c.fetchProfile(ctx, provider, accessToken)
	if err != nil {
		c.logger.Error("OAuth client: profile fetch failed",
			"provider", providerName,
			"error", err.Error())
		return model.FederatedIdentity{}, fmt.Errorf("failed to fetch profile: %w", err)
	}

	return identity, nil
}

func (c *Client) exchangeCode(ctx context.Context, provider Provider, code, codeVerifier string) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", provider.RedirectURL)
	form.Set("client_id", provider.ClientID)
	form.Set("client_secret", provider.ClientSecret)
	form.Set("code_verifier", codeVerifier)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, provider.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token endpoint returned %d", resp.StatusCode)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	if payload.AccessToken == "" {
		return "", errors.New("missing access token")
	}

	return payload.AccessToken, nil
}

func (c *Client) fetchProfile(ctx context.Context, provider Provider, accessToken string) (model.FederatedIdentity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, provider.ProfileURL, nil)
	if err != nil {
		return model.FederatedIdentity{}, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.FederatedIdentity{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return model.FederatedIdentity{}, fmt.Errorf("profile endpoint returned %d", resp.StatusCode)
	}

	var payload struct {
		Sub     string `json:"sub"`
		ID      string `json:"id"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return model.FederatedIdentity{}, err
	}

	subject := firstNonEmpty(payload.Sub, payload.ID)
	if subject == "" {
		return model.FederatedIdentity{}, errors.New("missing provider user id")
	}

	return model.FederatedIdentity{
		Provider:       provider.Name,
		ProviderUserID: subject,
		Hints: model.ProfileHints{
			DisplayName: firstNonEmpty(payload.Name, subject),
			AvatarURL:   payload.Picture,
		},
	}, nil
}

func generateToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

func computeS256Challenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
