package authsvc

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// how long the loopback server waits for the browser redirect
const loginTimeout = 5 * time.Minute

// login runs the OAuth 2.0 installed-app flow: a loopback server catches
// the browser redirect and the authorization code is exchanged for a token.
func (s *Source) login(ctx context.Context) (*Token, error) {
	google := s.conf.Google
	if google.ClientID == "" || google.ClientSecret == "" {
		return nil, errors.New("GOOGLECLIENTID and GOOGLECLIENTSECRET must be configured (or provide a service account key file)")
	}

	state := uuid.New().String()
	redirectURI := fmt.Sprintf("http://localhost:%d/callback", google.RedirectPort)

	authQuery := url.Values{
		"client_id":     {google.ClientID},
		"redirect_uri":  {redirectURI},
		"response_type": {"code"},
		"scope":         {strings.Join(google.Scopes, " ")},
		"access_type":   {"offline"},
		"prompt":        {"consent"},
		"state":         {state},
	}
	s.log.Info("Open this URL in your browser to authenticate:\n\n  " + authURL + "?" + authQuery.Encode() + "\n")

	code, err := s.waitForCallback(ctx, state)
	if err != nil {
		return nil, err
	}

	form := url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"client_id":     {google.ClientID},
		"client_secret": {google.ClientSecret},
		"redirect_uri":  {redirectURI},
	}
	return s.exchange(ctx, tokenURL, form)
}

// waitForCallback serves the redirect endpoint until one authorization
// code arrives or the login times out.
func (s *Source) waitForCallback(ctx context.Context, state string) (string, error) {
	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.GET("/callback", func(c echo.Context) error {
		if c.QueryParam("state") != state {
			return c.String(http.StatusBadRequest, "State mismatch, please retry the login.")
		}
		if errParam := c.QueryParam("error"); errParam != "" {
			select {
			case errCh <- errors.Errorf("authorization denied: %s", errParam):
			default:
			}
			return c.String(http.StatusBadRequest, "Authorization denied.")
		}
		select {
		case codeCh <- c.QueryParam("code"):
		default:
		}
		return c.String(http.StatusOK, "Authentication complete. You can close this tab.")
	})

	go func() {
		if err := e.Start(fmt.Sprintf("localhost:%d", s.conf.Google.RedirectPort)); err != nil && err != http.ErrServerClosed {
			select {
			case errCh <- errors.Wrap(err, "starting callback server"):
			default:
			}
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = e.Shutdown(shutdownCtx)
	}()

	select {
	case code := <-codeCh:
		return code, nil
	case err := <-errCh:
		return "", err
	case <-time.After(loginTimeout):
		return "", errors.New("timed out waiting for the browser login")
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
