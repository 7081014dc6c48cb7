package auth

import (
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func authFailed(code, description string) *AuthError {
	return &AuthError{Code: code, Description: description, Status: http.StatusUnauthorized}
}

// JWKSVerifier validates RS256 bearer tokens against the identity
// provider's JSON Web Key Set. Keys are cached and refreshed when an
// unknown kid shows up or the cache goes stale.
type JWKSVerifier struct {
	Issuer     string
	Audience   string
	JWKSURL    string
	HTTPClient *http.Client

	mu      sync.Mutex
	keys    map[string]*rsa.PublicKey
	fetched time.Time
}

// NewJWKSVerifier builds a verifier for an Auth0-style tenant: the issuer
// is https://{domain}/ and the audience is the application's client id.
func NewJWKSVerifier(domain, clientID string) *JWKSVerifier {
	return &JWKSVerifier{
		Issuer:     "https://" + domain + "/",
		Audience:   clientID,
		JWKSURL:    "https://" + domain + "/.well-known/jwks.json",
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type tokenClaims struct {
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// Verify checks the Authorization header and returns the token claims.
// Non-RS256 tokens, unknown signing keys, expired tokens and wrong
// audience or issuer are all rejected.
func (v *JWKSVerifier) Verify(r *http.Request) (*Claims, *AuthError) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, authFailed("no auth header", "Authorization header is missing")
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, authFailed("invalid_header", "Invalid header. Use an RS256 signed JWT Access Token")
	}

	var claims tokenClaims
	_, err := jwt.ParseWithClaims(parts[1], &claims, v.keyFor,
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithAudience(v.Audience),
		jwt.WithIssuer(v.Issuer),
	)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, authFailed("token_expired", "token is expired")
	case errors.Is(err, jwt.ErrTokenInvalidAudience), errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return nil, authFailed("invalid_claims", "incorrect claims, please check the audience and issuer")
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return nil, authFailed("invalid_header", "Invalid header. Use an RS256 signed JWT Access Token")
	default:
		return nil, authFailed("invalid_header", "Unable to parse authentication token.")
	}

	return &Claims{
		Subject:  claims.Subject,
		Nickname: claims.Nickname,
		Email:    claims.Email,
	}, nil
}

func (v *JWKSVerifier) keyFor(token *jwt.Token) (any, error) {
	kid, _ := token.Header["kid"].(string)
	if kid == "" {
		return nil, errors.New("token has no kid header")
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	key, ok := v.keys[kid]
	if !ok || time.Since(v.fetched) > time.Hour {
		if err := v.refreshLocked(); err != nil {
			return nil, err
		}
		key, ok = v.keys[kid]
	}
	if !ok {
		return nil, fmt.Errorf("no RSA key in JWKS for kid %q", kid)
	}
	return key, nil
}

type jwks struct {
	Keys []struct {
		Kty string `json:"kty"`
		Kid string `json:"kid"`
		Use string `json:"use"`
		N   string `json:"n"`
		E   string `json:"e"`
	} `json:"keys"`
}

func (v *JWKSVerifier) refreshLocked() error {
	resp, err := v.HTTPClient.Get(v.JWKSURL)
	if err != nil {
		return fmt.Errorf("fetch JWKS: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch JWKS: unexpected status %d", resp.StatusCode)
	}

	var set jwks
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return fmt.Errorf("decode JWKS: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(set.Keys))
	for _, k := range set.Keys {
		if k.Kty != "RSA" {
			continue
		}
		pub, err := rsaKey(k.N, k.E)
		if err != nil {
			return fmt.Errorf("parse JWKS key %q: %w", k.Kid, err)
		}
		keys[k.Kid] = pub
	}
	v.keys = keys
	v.fetched = time.Now()
	return nil
}

func rsaKey(n, e string) (*rsa.PublicKey, error) {
	nb, err := base64.RawURLEncoding.DecodeString(n)
	if err != nil {
		return nil, err
	}
	eb, err := base64.RawURLEncoding.DecodeString(e)
	if err != nil {
		return nil, err
	}
	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nb),
		E: int(new(big.Int).SetBytes(eb).Int64()),
	}, nil
}
