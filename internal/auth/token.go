package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidToken indicates a token that failed signature, decoding, or
// expiry checks. Callers must not distinguish the cause.
var ErrInvalidToken = errors.New("auth: invalid token")

// Claims is the signed payload carried inside a bearer token.
type Claims struct {
	UserID    int64  `json:"uid"`
	TokenID   string `json:"jti"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp,omitempty"`
}

// Codec issues and verifies stateless bearer tokens. Tokens are a base64url
// JSON claims payload joined with an HMAC-SHA256 signature over the payload
// bytes. No server-side state is kept; revocation happens indirectly when the
// embedded user no longer exists.
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewCodec constructs a Codec. A ttl of zero disables the expiry claim, which
// matches deployments that still rely on non-expiring tokens.
func NewCodec(secret string, ttl time.Duration) *Codec {
	return &Codec{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue produces a signed token binding the user identifier.
func (c *Codec) Issue(userID int64) (string, error) {
	now := c.now()
	claims := Claims{
		UserID:   userID,
		TokenID:  uuid.NewString(),
		IssuedAt: now.Unix(),
	}
	if c.ttl > 0 {
		claims.ExpiresAt = now.Add(c.ttl).Unix()
	}
	payload, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(payload) + "." +
		base64.RawURLEncoding.EncodeToString(c.sign(payload)), nil
}

// Verify checks the signature and expiry and returns the embedded user ID.
func (c *Codec) Verify(token string) (int64, error) {
	payloadPart, sigPart, ok := strings.Cut(token, ".")
	if !ok {
		return 0, ErrInvalidToken
	}
	payload, err := base64.RawURLEncoding.DecodeString(payloadPart)
	if err != nil {
		return 0, ErrInvalidToken
	}
	sig, err := base64.RawURLEncoding.DecodeString(sigPart)
	if err != nil {
		return 0, ErrInvalidToken
	}
	if !hmac.Equal(sig, c.sign(payload)) {
		return 0, ErrInvalidToken
	}
	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return 0, ErrInvalidToken
	}
	if claims.UserID <= 0 {
		return 0, ErrInvalidToken
	}
	if claims.ExpiresAt > 0 && c.now().Unix() >= claims.ExpiresAt {
		return 0, ErrInvalidToken
	}
	return claims.UserID, nil
}

func (c *Codec) sign(payload []byte) []byte {
	mac := hmac.New(sha256.New, c.secret)
	_, _ = mac.Write(payload)
	return mac.Sum(nil)
}
