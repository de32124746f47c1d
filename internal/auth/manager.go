// Package auth owns the OAuth2 credential lifecycle: PKCE authorization,
// code exchange, refresh and file persistence. Every component that needs an
// authenticated marketplace call obtains its credential here.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/fabioricardopires-tech/hub-vendas-ml/internal/config"
	"github.com/fabioricardopires-tech/hub-vendas-ml/internal/domain"
)

// Manager is the single authority for the stored credential.
type Manager struct {
	store      *FileStore
	httpClient *http.Client
	appID      string
	secretKey  string
	redirect   string
	apiBase    string
	authBase   string
	logger     *slog.Logger
}

func NewManager(cfg config.MarketplaceConfig, store *FileStore, logger *slog.Logger) *Manager {
	return &Manager{
		store: store,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		appID:     cfg.AppID,
		secretKey: cfg.SecretKey,
		redirect:  cfg.RedirectURI,
		apiBase:   cfg.APIBaseURL,
		authBase:  cfg.AuthBaseURL,
		logger:    logger.With("component", "auth"),
	}
}

// ValidCredential returns a credential usable for at least the refresh window.
// A stale credential triggers exactly one refresh attempt; a missing credential
// or a rejected refresh yields domain.ErrNeedsAuth.
func (m *Manager) ValidCredential(ctx context.Context) (*domain.Credential, error) {
	cred := m.store.Load()
	if cred == nil || cred.ExpiresAt.IsZero() {
		return nil, domain.ErrNeedsAuth
	}

	now := time.Now()
	if cred.Fresh(now) {
		m.logger.Debug("stored credential still valid", "expires_at", cred.ExpiresAt)
		return cred, nil
	}

	if cred.RefreshToken == "" {
		return nil, domain.ErrNeedsAuth
	}

	m.logger.Info("access token stale, refreshing", "expires_at", cred.ExpiresAt)
	refreshed, err := m.refresh(ctx, cred.RefreshToken)
	if err != nil {
		m.logger.Error("token refresh rejected", "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrNeedsAuth, err)
	}

	if err := m.store.Save(refreshed, time.Now()); err != nil {
		return nil, fmt.Errorf("persist refreshed credential: %w", err)
	}
	m.logger.Info("token refreshed", "expires_at", refreshed.ExpiresAt)
	return refreshed, nil
}

// BeginAuthorization generates a PKCE verifier and the authorization URL the
// operator must visit. No state is mutated; the verifier must be passed back to
// ExchangeCode.
func (m *Manager) BeginAuthorization() (authURL, codeVerifier string, err error) {
	verifier, err := newCodeVerifier()
	if err != nil {
		return "", "", err
	}

	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("client_id", m.appID)
	q.Set("redirect_uri", m.redirect)
	q.Set("code_challenge", codeChallenge(verifier))
	q.Set("code_challenge_method", "S256")

	return m.authBase + "/authorization?" + q.Encode(), verifier, nil
}

// ExchangeCode trades an authorization code for a fresh credential pair and
// persists it.
func (m *Manager) ExchangeCode(ctx context.Context, code, codeVerifier string) (*domain.Credential, error) {
	cred, err := m.tokenRequest(ctx, map[string]string{
		"grant_type":    "authorization_code",
		"client_id":     m.appID,
		"client_secret": m.secretKey,
		"code":          code,
		"redirect_uri":  m.redirect,
		"code_verifier": codeVerifier,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNeedsAuth, err)
	}

	if err := m.store.Save(cred, time.Now()); err != nil {
		return nil, fmt.Errorf("persist credential: %w", err)
	}
	m.logger.Info("authorization code exchanged", "expires_at", cred.ExpiresAt)
	return cred, nil
}

func (m *Manager) refresh(ctx context.Context, refreshToken string) (*domain.Credential, error) {
	return m.tokenRequest(ctx, map[string]string{
		"grant_type":    "refresh_token",
		"client_id":     m.appID,
		"client_secret": m.secretKey,
		"refresh_token": refreshToken,
	})
}

func (m *Manager) tokenRequest(ctx context.Context, payload map[string]string) (*domain.Credential, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.apiBase+"/oauth/token", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("token endpoint status %d: %s", resp.StatusCode, detail)
	}

	var cred domain.Credential
	if err := json.NewDecoder(resp.Body).Decode(&cred); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	return &cred, nil
}
