package providers

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/i474232898/heweather-bot/internal/weather"
)

const (
	// HeaderAPIKey carries a static QWeather API key.
	HeaderAPIKey = "X-QW-Api-Key"

	tokenBackdate = 30 * time.Second
	tokenLifetime = 900 * time.Second
	// A cached token is replaced once it is this close to expiry.
	tokenRenewBefore = 60 * time.Second
)

// Credentials is the credential material from configuration.
type Credentials struct {
	APIKey        string
	UseJWT        bool
	JWTSub        string // project id
	JWTKid        string // credential id
	JWTPrivateKey string // PKCS#8 PEM Ed25519 key
}

// CredentialProvider produces the authorization header for QWeather requests.
// A static API key wins over JWT mode. Signed tokens are cached until shortly
// before they expire.
type CredentialProvider struct {
	creds Credentials
	now   func() time.Time

	mu      sync.Mutex
	token   string
	expires time.Time
}

// NewCredentialProvider creates a new CredentialProvider.
func NewCredentialProvider(creds Credentials) *CredentialProvider {
	// Keys pasted into env vars usually carry escaped newlines.
	creds.JWTPrivateKey = strings.ReplaceAll(creds.JWTPrivateKey, `\n`, "\n")
	return &CredentialProvider{
		creds: creds,
		now:   time.Now,
	}
}

// UsesJWT reports whether requests are authorized with signed tokens.
func (p *CredentialProvider) UsesJWT() bool {
	return p.creds.APIKey == "" && p.creds.UseJWT
}

// Apply sets the authorization header on req.
func (p *CredentialProvider) Apply(req *http.Request) error {
	name, value, err := p.Header()
	if err != nil {
		return err
	}
	req.Header.Set(name, value)
	return nil
}

// Header returns the authorization header name and value.
func (p *CredentialProvider) Header() (string, string, error) {
	if p.creds.APIKey != "" {
		return HeaderAPIKey, p.creds.APIKey, nil
	}
	if !p.creds.UseJWT {
		return "", "", &weather.ConfigError{Msg: "no credential configured, set an API key or enable JWT"}
	}
	token, err := p.Token()
	if err != nil {
		return "", "", err
	}
	return "Authorization", "Bearer " + token, nil
}

// Token returns a signed JWT, reusing the cached one while it is fresh.
func (p *CredentialProvider) Token() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	if p.token != "" && now.Before(p.expires.Add(-tokenRenewBefore)) {
		return p.token, nil
	}

	token, expires, err := p.sign(now)
	if err != nil {
		return "", err
	}
	p.token, p.expires = token, expires
	return token, nil
}

func (p *CredentialProvider) sign(now time.Time) (string, time.Time, error) {
	c := p.creds
	if c.JWTSub == "" || c.JWTKid == "" || c.JWTPrivateKey == "" {
		return "", time.Time{}, &weather.ConfigError{Msg: "missing required JWT configuration (sub, kid, private key)"}
	}

	key, err := jwt.ParseEdPrivateKeyFromPEM([]byte(c.JWTPrivateKey))
	if err != nil {
		return "", time.Time{}, &weather.ConfigError{Msg: "invalid JWT private key: " + err.Error()}
	}

	expires := now.Add(tokenLifetime)
	claims := jwt.RegisteredClaims{
		Subject:   c.JWTSub,
		IssuedAt:  jwt.NewNumericDate(now.Add(-tokenBackdate)),
		ExpiresAt: jwt.NewNumericDate(expires),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	t.Header["kid"] = c.JWTKid
	delete(t.Header, "typ")

	signed, err := t.SignedString(key)
	if err != nil {
		return "", time.Time{}, &weather.ConfigError{Msg: "sign JWT: " + err.Error()}
	}
	return signed, expires, nil
}
