package httpclient

import (
	"fmt"
	"net/http"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/kbukum/apikit/validation"
)

// AuthType selects how requests are authenticated.
type AuthType string

const (
	AuthNone   AuthType = ""
	AuthBearer AuthType = "bearer"
	AuthBasic  AuthType = "basic"
	AuthAPIKey AuthType = "api_key"
	// AuthJWT mints a short-lived HS256 token per request.
	AuthJWT    AuthType = "jwt"
	AuthCustom AuthType = "custom"
)

// KeyLocation is where an API key is sent.
type KeyLocation string

const (
	KeyInHeader KeyLocation = "header"
	KeyInQuery  KeyLocation = "query"
)

const (
	DefaultAPIKeyName = "X-API-Key"
	DefaultJWTTTL     = 5 * time.Minute
)

var (
	authTypes    = []string{string(AuthBearer), string(AuthBasic), string(AuthAPIKey), string(AuthJWT), string(AuthCustom)}
	keyLocations = []string{string(KeyInHeader), string(KeyInQuery)}
)

// AuthConfig is applied to every request after the header merge, so it
// overrides any Authorization header set by callers. Only the fields of the
// selected Type are read.
type AuthConfig struct {
	Type AuthType `yaml:"type" mapstructure:"type"`

	Token string `yaml:"token" mapstructure:"token"`

	Username string `yaml:"username" mapstructure:"username"`
	Password string `yaml:"password" mapstructure:"password"`

	Key string `yaml:"key" mapstructure:"key"`
	// In defaults to the header.
	In KeyLocation `yaml:"in" mapstructure:"in"`
	// Name of the header or query parameter; defaults to X-API-Key.
	Name string `yaml:"name" mapstructure:"name"`

	Secret   string        `yaml:"secret" mapstructure:"secret"`
	Issuer   string        `yaml:"issuer" mapstructure:"issuer"`
	Subject  string        `yaml:"subject" mapstructure:"subject"`
	Audience []string      `yaml:"audience" mapstructure:"audience"`
	TTL      time.Duration `yaml:"ttl" mapstructure:"ttl"`

	Apply func(*http.Request) error `yaml:"-" mapstructure:"-"`
}

// BearerAuth sends token as a Bearer Authorization header.
func BearerAuth(token string) *AuthConfig {
	return &AuthConfig{Type: AuthBearer, Token: token}
}

// BasicAuth sends HTTP Basic credentials.
func BasicAuth(username, password string) *AuthConfig {
	return &AuthConfig{Type: AuthBasic, Username: username, Password: password}
}

// APIKeyAuth sends key in the header name, X-API-Key when name is empty.
func APIKeyAuth(name, key string) *AuthConfig {
	return &AuthConfig{Type: AuthAPIKey, Key: key, In: KeyInHeader, Name: name}
}

// APIKeyQueryAuth sends key as the query parameter name.
func APIKeyQueryAuth(name, key string) *AuthConfig {
	return &AuthConfig{Type: AuthAPIKey, Key: key, In: KeyInQuery, Name: name}
}

// JWTAuth mints an HS256 token signed with secret for every request.
func JWTAuth(secret, issuer, subject string) *AuthConfig {
	return &AuthConfig{Type: AuthJWT, Secret: secret, Issuer: issuer, Subject: subject}
}

// CustomAuth runs fn on every request. An error fails the request before it
// is sent.
func CustomAuth(fn func(*http.Request) error) *AuthConfig {
	return &AuthConfig{Type: AuthCustom, Apply: fn}
}

func (a *AuthConfig) validate(v *validation.Validator) {
	if a == nil || a.Type == AuthNone {
		return
	}
	v.OneOf("auth.type", string(a.Type), authTypes)
	switch a.Type {
	case AuthAPIKey:
		if a.In != "" {
			v.OneOf("auth.in", string(a.In), keyLocations)
		}
	case AuthJWT:
		v.Custom(a.Secret != "", "auth.secret", "is required for jwt auth").
			NonNegative("auth.ttl", a.TTL)
	case AuthCustom:
		v.Custom(a.Apply != nil, "auth.apply", "is required for custom auth")
	}
}

func (a *AuthConfig) apply(req *http.Request) error {
	if a == nil {
		return nil
	}
	switch a.Type {
	case AuthBearer:
		req.Header.Set(headerAuthorization, "Bearer "+a.Token)
	case AuthBasic:
		req.SetBasicAuth(a.Username, a.Password)
	case AuthAPIKey:
		if a.In == KeyInQuery {
			q := req.URL.Query()
			q.Set(a.keyName(), a.Key)
			req.URL.RawQuery = q.Encode()
			return nil
		}
		req.Header.Set(a.keyName(), a.Key)
	case AuthJWT:
		token, err := a.mint(time.Now())
		if err != nil {
			return err
		}
		req.Header.Set(headerAuthorization, "Bearer "+token)
	case AuthCustom:
		if a.Apply != nil {
			return a.Apply(req)
		}
	}
	return nil
}

func (a *AuthConfig) keyName() string {
	if a.Name == "" {
		return DefaultAPIKeyName
	}
	return a.Name
}

func (a *AuthConfig) mint(now time.Time) (string, error) {
	ttl := a.TTL
	if ttl == 0 {
		ttl = DefaultJWTTTL
	}
	claims := gojwt.RegisteredClaims{
		Issuer:    a.Issuer,
		Subject:   a.Subject,
		Audience:  gojwt.ClaimStrings(a.Audience),
		IssuedAt:  gojwt.NewNumericDate(now),
		NotBefore: gojwt.NewNumericDate(now),
		ExpiresAt: gojwt.NewNumericDate(now.Add(ttl)),
	}
	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte(a.Secret))
	if err != nil {
		return "", fmt.Errorf("sign jwt: %w", err)
	}
	return token, nil
}

// sensitiveHeaders lists the headers masked in request logs.
func (a *AuthConfig) sensitiveHeaders() []string {
	names := []string{headerAuthorization}
	if a != nil && a.Type == AuthAPIKey && a.In != KeyInQuery {
		names = append(names, http.CanonicalHeaderKey(a.keyName()))
	}
	return names
}
