// Package credential mints and checks SAS-style read credentials for the
// post image namespace.
package credential

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	signedVersion    = "2024-01-01"
	signedResource   = "c"
	signedPermission = "r"

	// clockSkew tolerates issuers and verifiers whose clocks drift slightly.
	clockSkew = 5 * time.Minute
)

var (
	ErrMissingSecret = errors.New("credential: signing secret is empty")
	ErrInvalidTTL    = errors.New("credential: ttl must be positive")
	ErrEmptyScope    = errors.New("credential: scope is empty")
)

// Credential is a signed, time-bounded read capability for a blob namespace.
type Credential struct {
	Token     string    `json:"token"`
	Scope     string    `json:"scope"`
	StartsAt  time.Time `json:"starts_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (c Credential) String() string { return c.Token }

// Sign appends the credential to a blob URL.
func (c Credential) Sign(ref string) string {
	if strings.Contains(ref, "?") {
		return ref + "&" + c.Token
	}
	return ref + "?" + c.Token
}

// Issuer is safe for concurrent use; its secret never changes after NewIssuer.
type Issuer struct {
	secret []byte
	scope  string
	ttl    time.Duration
	now    func() time.Time
}

type Option func(*Issuer)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) { i.now = now }
}

// NewIssuer fails when the secret is missing so that misconfiguration
// surfaces at startup.
func NewIssuer(secret, scope string, ttl time.Duration, opts ...Option) (*Issuer, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if scope == "" {
		return nil, ErrEmptyScope
	}
	if ttl <= 0 {
		return nil, ErrInvalidTTL
	}
	i := &Issuer{
		secret: []byte(secret),
		scope:  scope,
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// Scope is the namespace prefix credentials are issued for by default.
func (i *Issuer) Scope() string { return i.scope }

// Issue mints a credential for the default scope.
func (i *Issuer) Issue() (Credential, error) {
	return i.IssueFor(i.scope)
}

// IssueFor mints a credential for scope. Two calls never return the same token.
func (i *Issuer) IssueFor(scope string) (Credential, error) {
	if scope == "" {
		return Credential{}, ErrEmptyScope
	}
	start := i.now().UTC().Truncate(time.Second)
	expiry := start.Add(i.ttl)
	nonce := uuid.NewString()

	v := url.Values{}
	v.Set("sv", signedVersion)
	v.Set("sr", signedResource)
	v.Set("sp", signedPermission)
	v.Set("scope", scope)
	v.Set("st", start.Format(time.RFC3339))
	v.Set("se", expiry.Format(time.RFC3339))
	v.Set("nonce", nonce)
	v.Set("sig", i.sign(v))

	return Credential{
		Token:     v.Encode(),
		Scope:     scope,
		StartsAt:  start,
		ExpiresAt: expiry,
	}, nil
}

// Validate reports whether token was issued by this issuer and is currently
// valid. It never panics on malformed input.
func (i *Issuer) Validate(token string) bool {
	_, err := i.Parse(token)
	return err == nil
}

// Parse verifies token and returns the credential it encodes.
func (i *Issuer) Parse(token string) (Credential, error) {
	token = strings.TrimPrefix(strings.TrimSpace(token), "?")
	if token == "" {
		return Credential{}, errors.New("credential: empty token")
	}
	v, err := url.ParseQuery(token)
	if err != nil {
		return Credential{}, fmt.Errorf("credential: malformed token: %w", err)
	}
	for _, key := range []string{"sv", "sr", "sp", "scope", "st", "se", "nonce", "sig"} {
		if v.Get(key) == "" {
			return Credential{}, fmt.Errorf("credential: missing %q", key)
		}
	}
	if v.Get("sv") != signedVersion || v.Get("sr") != signedResource || v.Get("sp") != signedPermission {
		return Credential{}, errors.New("credential: unsupported signed fields")
	}

	got, err := base64.RawURLEncoding.DecodeString(v.Get("sig"))
	if err != nil {
		return Credential{}, fmt.Errorf("credential: malformed signature: %w", err)
	}
	want, _ := base64.RawURLEncoding.DecodeString(i.sign(v))
	if !hmac.Equal(got, want) {
		return Credential{}, errors.New("credential: signature mismatch")
	}

	start, err := time.Parse(time.RFC3339, v.Get("st"))
	if err != nil {
		return Credential{}, fmt.Errorf("credential: malformed start: %w", err)
	}
	expiry, err := time.Parse(time.RFC3339, v.Get("se"))
	if err != nil {
		return Credential{}, fmt.Errorf("credential: malformed expiry: %w", err)
	}
	now := i.now()
	if now.Before(start.Add(-clockSkew)) {
		return Credential{}, errors.New("credential: not yet valid")
	}
	if !now.Before(expiry) {
		return Credential{}, errors.New("credential: expired")
	}

	return Credential{
		Token:     token,
		Scope:     v.Get("scope"),
		StartsAt:  start,
		ExpiresAt: expiry,
	}, nil
}

// Permits reports whether token is valid and covers the blob path. Paths
// with dot-dot segments are never covered.
func (i *Issuer) Permits(token, blobPath string) bool {
	c, err := i.Parse(token)
	if err != nil {
		return false
	}
	for _, segment := range strings.Split(strings.ReplaceAll(blobPath, "\\", "/"), "/") {
		if segment == ".." {
			return false
		}
	}
	cleaned := strings.TrimPrefix(path.Clean("/"+blobPath), "/")
	scope := strings.Trim(c.Scope, "/")
	return cleaned == scope || strings.HasPrefix(cleaned, scope+"/")
}

// sign computes the signature over the canonical string-to-sign.
func (i *Issuer) sign(v url.Values) string {
	stringToSign := strings.Join([]string{
		v.Get("sp"),
		v.Get("st"),
		v.Get("se"),
		v.Get("scope"),
		v.Get("sv"),
		v.Get("sr"),
		v.Get("nonce"),
	}, "\n")
	mac := hmac.New(sha256.New, i.secret)
	mac.Write([]byte(stringToSign))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
