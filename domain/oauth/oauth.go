// Package oauth provides OAuth value types and pure functions for the token
// endpoint of the commerce API.
// This package has NO dependencies on I/O.
package oauth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// GrantType identifies an OAuth grant.
type GrantType string

const (
	GrantClientCredentials GrantType = "client_credentials"
	GrantPassword          GrantType = "password"
	GrantRefreshToken      GrantType = "refresh_token"
)

// IsValid returns true if the grant type is known.
func (g GrantType) IsValid() bool {
	switch g {
	case GrantClientCredentials, GrantPassword, GrantRefreshToken:
		return true
	}
	return false
}

// DefaultLeeway is subtracted from the token lifetime so a token is renewed
// before the server rejects it.
const DefaultLeeway = 30 * time.Second

// Errors returned by ParseToken and Credentials.Validate.
var (
	ErrNoAccessToken = errors.New("token response has no access_token")
	ErrInvalidGrant  = errors.New("invalid grant configuration")
)

// Credentials describe how to obtain a token (value type).
type Credentials struct {
	ClientID     string
	ClientSecret string
	Scopes       []string
	Grant        GrantType

	// Password grant
	Username string
	Password string

	// Refresh token grant
	RefreshToken string
}

// Validate checks that the fields required by the grant are present.
func (c Credentials) Validate() error {
	if c.ClientID == "" || c.ClientSecret == "" {
		return errors.Join(ErrInvalidGrant, errors.New("client id and secret are required"))
	}
	switch c.grant() {
	case GrantClientCredentials:
	case GrantPassword:
		if c.Username == "" || c.Password == "" {
			return errors.Join(ErrInvalidGrant, errors.New("password grant requires username and password"))
		}
	case GrantRefreshToken:
		if c.RefreshToken == "" {
			return errors.Join(ErrInvalidGrant, errors.New("refresh_token grant requires a refresh token"))
		}
	default:
		return errors.Join(ErrInvalidGrant, errors.New("unknown grant type "+string(c.Grant)))
	}
	return nil
}

func (c Credentials) grant() GrantType {
	if c.Grant == "" {
		return GrantClientCredentials
	}
	return c.Grant
}

// Scope returns the space-separated scope parameter.
func (c Credentials) Scope() string {
	return strings.Join(c.Scopes, " ")
}

// Form builds the token request form parameters. Client credentials are
// sent as basic auth, not in the form.
func (c Credentials) Form() url.Values {
	form := url.Values{"grant_type": {string(c.grant())}}
	if scope := c.Scope(); scope != "" {
		form.Set("scope", scope)
	}
	switch c.grant() {
	case GrantPassword:
		form.Set("username", c.Username)
		form.Set("password", c.Password)
	case GrantRefreshToken:
		form.Set("refresh_token", c.RefreshToken)
	}
	return form
}

// CacheKey identifies tokens obtained with these credentials at tokenURL.
// Secrets are hashed, never used verbatim.
func (c Credentials) CacheKey(tokenURL string) string {
	scopes := append([]string(nil), c.Scopes...)
	sort.Strings(scopes)

	h := sha256.New()
	for _, part := range []string{
		tokenURL, c.ClientID, c.ClientSecret, string(c.grant()),
		strings.Join(scopes, " "), c.Username, c.Password,
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return "token:" + hex.EncodeToString(h.Sum(nil))
}

// Token is an access token (immutable value type).
type Token struct {
	AccessToken  string
	TokenType    string
	Scope        string
	RefreshToken string
	ExpiresAt    time.Time // zero means no expiry was announced
}

// IsExpired reports whether the token must be renewed at now, allowing for
// leeway.
func (t Token) IsExpired(now time.Time, leeway time.Duration) bool {
	if t.AccessToken == "" {
		return true
	}
	if t.ExpiresAt.IsZero() {
		return false
	}
	return !now.Add(leeway).Before(t.ExpiresAt)
}

// Authorization returns the Authorization header value.
func (t Token) Authorization() string {
	typ := t.TokenType
	if typ == "" || strings.EqualFold(typ, "bearer") {
		typ = "Bearer"
	}
	return typ + " " + t.AccessToken
}

// Scopes returns the granted scopes.
func (t Token) Scopes() []string {
	return strings.Fields(t.Scope)
}

// TokenResponse is the token endpoint response body.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	Scope        string `json:"scope"`
	RefreshToken string `json:"refresh_token"`
}

// ParseToken decodes a token endpoint response received at now.
func ParseToken(body []byte, now time.Time) (Token, error) {
	var resp TokenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Token{}, errors.Join(ErrNoAccessToken, err)
	}
	if resp.AccessToken == "" {
		return Token{}, ErrNoAccessToken
	}

	tok := Token{
		AccessToken:  resp.AccessToken,
		TokenType:    resp.TokenType,
		Scope:        resp.Scope,
		RefreshToken: resp.RefreshToken,
	}
	if resp.ExpiresIn > 0 {
		tok.ExpiresAt = now.Add(time.Duration(resp.ExpiresIn) * time.Second)
	}
	return tok, nil
}
