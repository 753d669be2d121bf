package jwt

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Algorithm identifiers accepted by Backend. They are the JWS "alg" names.
const (
	AlgHS256 = "HS256"
	AlgHS384 = "HS384"
	AlgHS512 = "HS512"
	AlgRS256 = "RS256"
	AlgRS384 = "RS384"
	AlgRS512 = "RS512"
	AlgPS256 = "PS256"
	AlgPS384 = "PS384"
	AlgPS512 = "PS512"
	AlgES256 = "ES256"
	AlgES384 = "ES384"
	AlgES512 = "ES512"
	AlgEdDSA = "EdDSA"
)

var (
	// ErrUnsupportedAlgorithm is returned for unknown or disallowed algorithm names, including "none".
	ErrUnsupportedAlgorithm = errors.New("unsupported signing algorithm")
	// ErrInvalidKey is returned when key material does not fit the algorithm.
	ErrInvalidKey = errors.New("invalid key for signing algorithm")
)

var methods = map[string]jwt.SigningMethod{
	AlgHS256: jwt.SigningMethodHS256,
	AlgHS384: jwt.SigningMethodHS384,
	AlgHS512: jwt.SigningMethodHS512,
	AlgRS256: jwt.SigningMethodRS256,
	AlgRS384: jwt.SigningMethodRS384,
	AlgRS512: jwt.SigningMethodRS512,
	AlgPS256: jwt.SigningMethodPS256,
	AlgPS384: jwt.SigningMethodPS384,
	AlgPS512: jwt.SigningMethodPS512,
	AlgES256: jwt.SigningMethodES256,
	AlgES384: jwt.SigningMethodES384,
	AlgES512: jwt.SigningMethodES512,
	AlgEdDSA: jwt.SigningMethodEdDSA,
}

// Supported reports whether alg names an algorithm Backend can sign and verify.
func Supported(alg string) bool {
	_, ok := methods[alg]
	return ok
}

// IsSymmetric reports whether alg is an HMAC algorithm.
func IsSymmetric(alg string) bool {
	return strings.HasPrefix(alg, "HS") && Supported(alg)
}

// Backend signs and verifies compact JWS tokens carrying map claims.
//
// The same key material is used on both sides: a shared secret for HMAC, and a
// PEM private key for RSA, RSA-PSS, ECDSA and EdDSA (a PEM public key or a raw
// Ed25519 key is also accepted for verification). Backend holds no state and is
// safe for concurrent use.
type Backend struct{}

// NewBackend returns a Backend.
func NewBackend() *Backend {
	return &Backend{}
}

// Sign serializes claims as a JWS compact token signed with key under alg.
func (b *Backend) Sign(claims map[string]any, key []byte, alg string) (string, error) {
	method, ok := methods[alg]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, alg)
	}
	signKey, err := signKeyFor(alg, key)
	if err != nil {
		return "", err
	}

	token := jwt.NewWithClaims(method, jwt.MapClaims(claims))
	return token.SignedString(signKey)
}

// Verify checks the signature of token against key and alg and returns its
// claims. Registered time claims are not interpreted here; callers apply their
// own temporal rules. Numbers are returned as json.Number.
//
// Segments must be canonical unpadded base64url: a signature whose trailing
// character differs only in unused bits does not verify.
func (b *Backend) Verify(token string, key []byte, alg string) (map[string]any, error) {
	if !Supported(alg) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, alg)
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{alg}),
		jwt.WithoutClaimsValidation(),
		jwt.WithJSONNumber(),
		jwt.WithStrictDecoding(),
	)
	claims := jwt.MapClaims{}
	parsed, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != alg {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}
		return verifyKeyFor(alg, key)
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, jwt.ErrTokenSignatureInvalid
	}

	return map[string]any(claims), nil
}

func signKeyFor(alg string, key []byte) (interface{}, error) {
	if len(key) == 0 {
		return nil, ErrInvalidKey
	}
	switch {
	case strings.HasPrefix(alg, "HS"):
		return key, nil
	case strings.HasPrefix(alg, "RS"), strings.HasPrefix(alg, "PS"):
		priv, err := jwt.ParseRSAPrivateKeyFromPEM(key)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
		}
		return priv, nil
	case strings.HasPrefix(alg, "ES"):
		priv, err := jwt.ParseECPrivateKeyFromPEM(key)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
		}
		return priv, nil
	case alg == AlgEdDSA:
		return parseEdPrivateKey(key)
	default:
		return nil, ErrUnsupportedAlgorithm
	}
}

func verifyKeyFor(alg string, key []byte) (interface{}, error) {
	if len(key) == 0 {
		return nil, ErrInvalidKey
	}
	switch {
	case strings.HasPrefix(alg, "HS"):
		return key, nil
	case strings.HasPrefix(alg, "RS"), strings.HasPrefix(alg, "PS"):
		return parseRSAVerifyKey(key)
	case strings.HasPrefix(alg, "ES"):
		return parseECVerifyKey(key)
	case alg == AlgEdDSA:
		return parseEdVerifyKey(key)
	default:
		return nil, ErrUnsupportedAlgorithm
	}
}

func parseRSAVerifyKey(key []byte) (*rsa.PublicKey, error) {
	if pub, err := jwt.ParseRSAPublicKeyFromPEM(key); err == nil {
		return pub, nil
	}
	priv, err := jwt.ParseRSAPrivateKeyFromPEM(key)
	if err != nil {
		return nil, ErrInvalidKey
	}
	return &priv.PublicKey, nil
}

func parseECVerifyKey(key []byte) (*ecdsa.PublicKey, error) {
	if pub, err := jwt.ParseECPublicKeyFromPEM(key); err == nil {
		return pub, nil
	}
	priv, err := jwt.ParseECPrivateKeyFromPEM(key)
	if err != nil {
		return nil, ErrInvalidKey
	}
	return &priv.PublicKey, nil
}

func parseEdVerifyKey(key []byte) (ed25519.PublicKey, error) {
	if pub, err := parseEdPublicKey(key); err == nil {
		return pub, nil
	}
	priv, err := parseEdPrivateKey(key)
	if err != nil {
		return nil, ErrInvalidKey
	}
	return priv.Public().(ed25519.PublicKey), nil
}

func parseEdPrivateKey(key []byte) (ed25519.PrivateKey, error) {
	if len(key) == ed25519.PrivateKeySize {
		return ed25519.PrivateKey(key), nil
	}
	parsed, err := jwt.ParseEdPrivateKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 private key")
	}
	edKey, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("invalid ed25519 private key type")
	}
	return edKey, nil
}

func parseEdPublicKey(key []byte) (ed25519.PublicKey, error) {
	if len(key) == ed25519.PublicKeySize {
		return ed25519.PublicKey(key), nil
	}
	parsed, err := jwt.ParseEdPublicKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 public key")
	}
	edKey, ok := parsed.(ed25519.PublicKey)
	if !ok {
		return nil, errors.New("invalid ed25519 public key type")
	}
	return edKey, nil
}
