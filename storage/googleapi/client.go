package googleapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

const (
	classroomBaseURL = "https://classroom.googleapis.com/v1"
	driveBaseURL     = "https://www.googleapis.com/drive/v3"
)

// TokenSource mints the bearer token attached to every request;
// satisfied by services/auth.Source.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client is the authenticated HTTP client shared by all repositories.
type Client struct {
	HTTP   *http.Client
	Tokens TokenSource

	// overridable in tests
	ClassroomURL string
	DriveURL     string
}

func NewClient(conf *core.Config, tokens TokenSource) *Client {
	return &Client{
		HTTP:         &http.Client{Timeout: conf.Google.RequestTimeout},
		Tokens:       tokens,
		ClassroomURL: classroomBaseURL,
		DriveURL:     driveBaseURL,
	}
}

// APIError is the error envelope returned by Google APIs.
type APIError struct {
	Code    int      `json:"code"`
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Reasons []string `json:"-"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("google api: %d %s: %s", e.Code, e.Status, e.Message)
}

func (e *APIError) HasReason(reason string) bool {
	for _, r := range e.Reasons {
		if r == reason {
			return true
		}
	}
	return false
}

type apiErrorEnvelope struct {
	Error struct {
		Code    int    `json:"code"`
		Status  string `json:"status"`
		Message string `json:"message"`
		Errors  []struct {
			Reason string `json:"reason"`
		} `json:"errors"`
	} `json:"error"`
}

// send issues an authenticated request and returns the raw response; the
// caller owns the body. Non-2xx responses are drained and returned as
// *APIError.
func (c *Client) send(ctx context.Context, method, url string, body io.Reader) (*http.Response, error) {
	token, err := c.Tokens.Token(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "acquiring token")
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, errors.Wrap(err, "building request")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", method, url)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, parseAPIError(resp)
	}
	return resp, nil
}

// doJSON issues a request and decodes the JSON response into out (when
// out is non-nil).
func (c *Client) doJSON(ctx context.Context, method, url string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return errors.Wrap(err, "encoding request body")
		}
		body = strings.NewReader(string(data))
	}

	resp, err := c.send(ctx, method, url, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return errors.Wrap(json.NewDecoder(resp.Body).Decode(out), "decoding response")
}

func parseAPIError(resp *http.Response) error {
	apiErr := &APIError{Code: resp.StatusCode, Status: resp.Status}
	var envelope apiErrorEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil && envelope.Error.Code != 0 {
		apiErr.Code = envelope.Error.Code
		apiErr.Status = envelope.Error.Status
		apiErr.Message = envelope.Error.Message
		for _, e := range envelope.Error.Errors {
			apiErr.Reasons = append(apiErr.Reasons, e.Reason)
		}
	}
	return apiErr
}
