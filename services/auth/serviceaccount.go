package authsvc

import (
	"context"
	"encoding/json"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"
)

// serviceAccountKey is the JSON key file downloaded from the Google
// Cloud console for a service account.
type serviceAccountKey struct {
	Type         string `json:"type"`
	ClientEmail  string `json:"client_email"`
	PrivateKey   string `json:"private_key"`
	PrivateKeyID string `json:"private_key_id"`
	TokenURI     string `json:"token_uri"`
}

func loadServiceAccountKey(path string) (*serviceAccountKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	var key serviceAccountKey
	if err := json.Unmarshal(data, &key); err != nil {
		return nil, errors.Wrapf(err, "parsing service account key %s", path)
	}
	if key.Type != "service_account" {
		return nil, errors.Errorf("%s is not a service account key (type %q)", path, key.Type)
	}
	if key.TokenURI == "" {
		key.TokenURI = tokenURL
	}
	return &key, nil
}

// serviceAccountToken signs a JWT assertion with the account's private
// key and trades it for an access token.
func (s *Source) serviceAccountToken(ctx context.Context) (*Token, error) {
	rsaKey, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(s.key.PrivateKey))
	if err != nil {
		return nil, errors.Wrap(err, "parsing service account private key")
	}

	now := time.Now()
	assertion := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"iss":   s.key.ClientEmail,
		"scope": strings.Join(s.conf.Google.Scopes, " "),
		"aud":   s.key.TokenURI,
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	})
	assertion.Header["kid"] = s.key.PrivateKeyID

	signed, err := assertion.SignedString(rsaKey)
	if err != nil {
		return nil, errors.Wrap(err, "signing service account assertion")
	}

	form := url.Values{
		"grant_type": {"urn:ietf:params:oauth:grant-type:jwt-bearer"},
		"assertion":  {signed},
	}
	return s.exchange(ctx, s.key.TokenURI, form)
}
