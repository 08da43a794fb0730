// Package sessiontoken encodes a credential record into a session token so the whole record
// can travel in a cookie. Tokens are signed JWTs sealed in a JWE, so the refresh token they
// carry is unreadable outside the server.
package sessiontoken

import (
	"crypto/sha256"
	"fmt"
	"io"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-session-keeper/credential"
	"github.com/jrsteele09/go-session-keeper/internal/errors"
	"golang.org/x/crypto/hkdf"
)

const (
	minSecretLength = 32
	keyLength       = 32

	signingKeyInfo    = "session-keeper session token signing"
	encryptionKeyInfo = "session-keeper session token encryption"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Claims is the payload of a session token.
type Claims struct {
	Credential credential.Record `json:"cred"`
	jwt.RegisteredClaims
}

// Codec signs session tokens with HMAC-SHA256 and encrypts them with AES-256-GCM.
// Both keys are derived from one secret.
type Codec struct {
	signingKey    []byte
	encryptionKey []byte
	encrypter     jose.Encrypter
	issuer        string
	maxAge        time.Duration
}

// NewCodec creates a codec. secret must be at least 32 bytes.
func NewCodec(secret, issuer string, maxAge time.Duration) (*Codec, error) {
	if len(secret) < minSecretLength {
		return nil, errors.Wrapf(errors.ErrMissingConfig, "session secret must be at least %d bytes", minSecretLength)
	}
	if maxAge <= 0 {
		return nil, errors.Wrapf(errors.ErrMissingConfig, "session max age must be positive")
	}

	signingKey, err := deriveKey(secret, signingKeyInfo)
	if err != nil {
		return nil, err
	}
	encryptionKey, err := deriveKey(secret, encryptionKeyInfo)
	if err != nil {
		return nil, err
	}

	encrypter, err := jose.NewEncrypter(
		jose.A256GCM,
		jose.Recipient{Algorithm: jose.DIRECT, Key: encryptionKey},
		(&jose.EncrypterOptions{}).WithContentType("JWT"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session token encrypter: %w", err)
	}

	return &Codec{
		signingKey:    signingKey,
		encryptionKey: encryptionKey,
		encrypter:     encrypter,
		issuer:        issuer,
		maxAge:        maxAge,
	}, nil
}

func deriveKey(secret, info string) ([]byte, error) {
	key := make([]byte, keyLength)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(info)), key); err != nil {
		return nil, fmt.Errorf("failed to derive session key: %w", err)
	}
	return key, nil
}

// MaxAge is how long an encoded token stays valid.
func (c *Codec) MaxAge() time.Duration {
	return c.maxAge
}

// Encode signs and encrypts rec into a token valid for the codec's max age.
func (c *Codec) Encode(rec credential.Record) (string, error) {
	now := NowTimeFunc()
	claims := Claims{
		Credential: rec,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   rec.Principal.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.maxAge)),
			ID:        uuid.New().String(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.signingKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	sealed, err := c.encrypter.Encrypt([]byte(signed))
	if err != nil {
		return "", fmt.Errorf("failed to encrypt session token: %w", err)
	}
	token, err := sealed.CompactSerialize()
	if err != nil {
		return "", fmt.Errorf("failed to serialize session token: %w", err)
	}
	return token, nil
}

// Decode decrypts and verifies token and returns the record it carries.
func (c *Codec) Decode(token string) (credential.Record, error) {
	sealed, err := jose.ParseEncrypted(token, []jose.KeyAlgorithm{jose.DIRECT}, []jose.ContentEncryption{jose.A256GCM})
	if err != nil {
		return credential.Record{}, fmt.Errorf("%w: %w", errors.ErrInvalidSessionToken, err)
	}
	signed, err := sealed.Decrypt(c.encryptionKey)
	if err != nil {
		return credential.Record{}, fmt.Errorf("%w: %w", errors.ErrInvalidSessionToken, err)
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(NowTimeFunc),
	}
	if c.issuer != "" {
		options = append(options, jwt.WithIssuer(c.issuer))
	}

	var claims Claims
	_, err = jwt.NewParser(options...).ParseWithClaims(string(signed), &claims, func(*jwt.Token) (interface{}, error) {
		return c.signingKey, nil
	})
	if err != nil {
		return credential.Record{}, fmt.Errorf("%w: %w", errors.ErrInvalidSessionToken, err)
	}
	return claims.Credential, nil
}
