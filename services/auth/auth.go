package authsvc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

const (
	authURL  = "https://accounts.google.com/o/oauth2/auth"
	tokenURL = "https://oauth2.googleapis.com/token"

	// a token this close to expiry is refreshed eagerly
	expirySkew = 30 * time.Second
)

// TokenSource mints access tokens for API requests.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Token is a cached OAuth 2.0 access token.
type Token struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	Expiry       time.Time `json:"expiry"`
}

func (t *Token) Valid() bool {
	return t != nil && t.AccessToken != "" && time.Now().Add(expirySkew).Before(t.Expiry)
}

// Source implements TokenSource with a service account key when one is
// configured, falling back to the OAuth 2.0 installed-app flow. OAuth
// tokens are cached on disk across runs.
type Source struct {
	conf   *core.Config
	log    core.Logger
	client *http.Client

	key *serviceAccountKey // nil in OAuth mode

	mu  sync.Mutex
	tok *Token
}

var _ TokenSource = (*Source)(nil)

func NewSource(conf *core.Config, log core.Logger) *Source {
	src := &Source{
		conf:   conf,
		log:    log,
		client: &http.Client{Timeout: conf.Google.RequestTimeout},
	}
	if key, err := loadServiceAccountKey(conf.Google.ServiceAccountFile); err == nil {
		src.key = key
	} else if !os.IsNotExist(errors.Cause(err)) {
		log.Warn("service account key not usable, falling back to OAuth", err)
	}
	if src.key == nil {
		src.tok = src.loadCachedToken()
	}
	return src
}

// UsesServiceAccount reports whether a service account key was loaded.
func (s *Source) UsesServiceAccount() bool { return s.key != nil }

func (s *Source) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tok.Valid() {
		return s.tok.AccessToken, nil
	}

	var (
		tok *Token
		err error
	)
	switch {
	case s.key != nil:
		tok, err = s.serviceAccountToken(ctx)
	case s.tok != nil && s.tok.RefreshToken != "":
		tok, err = s.refresh(ctx, s.tok.RefreshToken)
		if err != nil {
			s.log.Warn("token refresh failed, starting a new login", err)
			tok, err = s.login(ctx)
		}
	default:
		tok, err = s.login(ctx)
	}
	if err != nil {
		return "", err
	}

	s.tok = tok
	if s.key == nil {
		if err := s.cacheToken(tok); err != nil {
			s.log.Warn("caching token", err)
		}
	}
	return tok.AccessToken, nil
}

// Login forces a fresh interactive OAuth login regardless of any cached
// token. It is a no-op under a service account.
func (s *Source) Login(ctx context.Context) error {
	if s.key != nil {
		s.log.Info("service account configured, no interactive login needed")
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tok, err := s.login(ctx)
	if err != nil {
		return err
	}
	s.tok = tok
	return s.cacheToken(tok)
}

// Reset deletes the cached token, forcing authentication on the next call.
func (s *Source) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tok = nil
	if err := os.Remove(s.conf.Google.TokenFile); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "removing cached token")
	}
	return nil
}

func (s *Source) loadCachedToken() *Token {
	data, err := os.ReadFile(s.conf.Google.TokenFile)
	if err != nil {
		return nil
	}
	var tok Token
	if err := json.Unmarshal(data, &tok); err != nil {
		s.log.Warn("cached token unreadable, ignoring it", err)
		return nil
	}
	return &tok
}

func (s *Source) cacheToken(tok *Token) error {
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding token")
	}
	return errors.Wrap(os.WriteFile(s.conf.Google.TokenFile, data, 0o600), "writing token cache")
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

type tokenError struct {
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

// exchange posts a grant to the token endpoint and returns the minted token.
func (s *Source) exchange(ctx context.Context, endpoint string, form url.Values) (*Token, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errors.Wrap(err, "building token request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "requesting token")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var tokErr tokenError
		if err := json.NewDecoder(resp.Body).Decode(&tokErr); err == nil && tokErr.Code != "" {
			return nil, errors.Errorf("token endpoint: %s: %s", tokErr.Code, tokErr.Description)
		}
		return nil, errors.Errorf("token endpoint: unexpected status %d", resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, errors.Wrap(err, "decoding token response")
	}
	return &Token{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		TokenType:    tr.TokenType,
		Expiry:       time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second),
	}, nil
}

func (s *Source) refresh(ctx context.Context, refreshToken string) (*Token, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
		"client_id":     {s.conf.Google.ClientID},
		"client_secret": {s.conf.Google.ClientSecret},
	}
	tok, err := s.exchange(ctx, tokenURL, form)
	if err != nil {
		return nil, err
	}
	if tok.RefreshToken == "" {
		tok.RefreshToken = refreshToken
	}
	return tok, nil
}
